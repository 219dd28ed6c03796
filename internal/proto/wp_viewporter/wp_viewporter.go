// Package wp_viewporter contains client bindings for the stable
// viewporter protocol, written in the style of go-wayland-scanner output
// so they interoperate with github.com/rajveermalviya/go-wayland proxies.
package wp_viewporter

import "github.com/rajveermalviya/go-wayland/wayland/client"

// WpViewporter : surface cropping and scaling
//
// The global interface exposing surface cropping and scaling capabilities
// is used to instantiate an interface extension for a wl_surface object.
type WpViewporter struct {
	client.BaseProxy
}

// NewWpViewporter : surface cropping and scaling
func NewWpViewporter(ctx *client.Context) *WpViewporter {
	wpViewporter := &WpViewporter{}
	ctx.Register(wpViewporter)
	return wpViewporter
}

// Destroy : unbind from the cropping and scaling interface
//
// Informs the server that the client will not be using this protocol
// object anymore. This does not affect any other objects.
func (i *WpViewporter) Destroy() error {
	defer i.Context().Unregister(i)
	const opcode = 0
	const _reqBufLen = 8
	var _reqBuf [_reqBufLen]byte
	l := 0
	client.PutUint32(_reqBuf[l:4], i.ID())
	l += 4
	client.PutUint32(_reqBuf[l:l+4], uint32(_reqBufLen<<16|opcode&0x0000ffff))
	l += 4
	err := i.Context().WriteMsg(_reqBuf[:], nil)
	return err
}

// GetViewport : extend surface interface for crop and scale
//
// Instantiate an interface extension for the given wl_surface to crop and
// scale its content.
func (i *WpViewporter) GetViewport(surface *client.Surface) (*WpViewport, error) {
	id := NewWpViewport(i.Context())
	const opcode = 1
	const _reqBufLen = 8 + 4 + 4
	var _reqBuf [_reqBufLen]byte
	l := 0
	client.PutUint32(_reqBuf[l:4], i.ID())
	l += 4
	client.PutUint32(_reqBuf[l:l+4], uint32(_reqBufLen<<16|opcode&0x0000ffff))
	l += 4
	client.PutUint32(_reqBuf[l:l+4], id.ID())
	l += 4
	client.PutUint32(_reqBuf[l:l+4], surface.ID())
	l += 4
	err := i.Context().WriteMsg(_reqBuf[:], nil)
	return id, err
}

func (i *WpViewporter) Dispatch(opcode uint32, fd int, data []byte) {}

// WpViewport : crop and scale interface to a wl_surface
//
// An additional interface to a wl_surface object, which allows the client
// to specify the cropping and scaling of the surface contents.
type WpViewport struct {
	client.BaseProxy
}

// NewWpViewport : crop and scale interface to a wl_surface
func NewWpViewport(ctx *client.Context) *WpViewport {
	wpViewport := &WpViewport{}
	ctx.Register(wpViewport)
	return wpViewport
}

// Destroy : remove scaling and cropping from the surface
//
// The associated wl_surface's crop and scale state is removed. The change
// is applied on the next wl_surface.commit.
func (i *WpViewport) Destroy() error {
	defer i.Context().Unregister(i)
	const opcode = 0
	const _reqBufLen = 8
	var _reqBuf [_reqBufLen]byte
	l := 0
	client.PutUint32(_reqBuf[l:4], i.ID())
	l += 4
	client.PutUint32(_reqBuf[l:l+4], uint32(_reqBufLen<<16|opcode&0x0000ffff))
	l += 4
	err := i.Context().WriteMsg(_reqBuf[:], nil)
	return err
}

// SetDestination : set the surface size for scaling
//
// Sets the destination size of the associated wl_surface. The surface
// content is scaled to this size, which lets a 1x1 buffer fill a whole
// output.
func (i *WpViewport) SetDestination(width, height int32) error {
	const opcode = 2
	const _reqBufLen = 8 + 4 + 4
	var _reqBuf [_reqBufLen]byte
	l := 0
	client.PutUint32(_reqBuf[l:4], i.ID())
	l += 4
	client.PutUint32(_reqBuf[l:l+4], uint32(_reqBufLen<<16|opcode&0x0000ffff))
	l += 4
	client.PutUint32(_reqBuf[l:l+4], uint32(width))
	l += 4
	client.PutUint32(_reqBuf[l:l+4], uint32(height))
	l += 4
	err := i.Context().WriteMsg(_reqBuf[:], nil)
	return err
}

func (i *WpViewport) Dispatch(opcode uint32, fd int, data []byte) {}
