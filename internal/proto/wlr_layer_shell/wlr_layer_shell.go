// Package wlr_layer_shell contains client bindings for the
// wlr-layer-shell-unstable-v1 protocol, written in the style of
// go-wayland-scanner output so they interoperate with
// github.com/rajveermalviya/go-wayland proxies.
//
// Only the requests and events doze needs are implemented: creating a
// layer surface on the overlay layer, anchoring, exclusive zone,
// configure acknowledgement and destruction.
package wlr_layer_shell

import "github.com/rajveermalviya/go-wayland/wayland/client"

// ZwlrLayerShellV1Layer : available layers for surfaces
const (
	ZwlrLayerShellV1LayerBackground = 0
	ZwlrLayerShellV1LayerBottom     = 1
	ZwlrLayerShellV1LayerTop        = 2
	ZwlrLayerShellV1LayerOverlay    = 3
)

// ZwlrLayerSurfaceV1Anchor : directions and corners
const (
	ZwlrLayerSurfaceV1AnchorTop    = 1
	ZwlrLayerSurfaceV1AnchorBottom = 2
	ZwlrLayerSurfaceV1AnchorLeft   = 4
	ZwlrLayerSurfaceV1AnchorRight  = 8
	// ZwlrLayerSurfaceV1AnchorAll : anchored to all four edges
	ZwlrLayerSurfaceV1AnchorAll = ZwlrLayerSurfaceV1AnchorTop |
		ZwlrLayerSurfaceV1AnchorBottom |
		ZwlrLayerSurfaceV1AnchorLeft |
		ZwlrLayerSurfaceV1AnchorRight
)

// ZwlrLayerShellV1 : create surfaces that are layers of the desktop
//
// Clients can use this interface to assign the surface_layer role to
// wl_surfaces. Such surfaces are assigned to a "layer" of the output and
// rendered with a defined z-depth respective to each other.
type ZwlrLayerShellV1 struct {
	client.BaseProxy
}

// NewZwlrLayerShellV1 : create surfaces that are layers of the desktop
func NewZwlrLayerShellV1(ctx *client.Context) *ZwlrLayerShellV1 {
	zwlrLayerShellV1 := &ZwlrLayerShellV1{}
	ctx.Register(zwlrLayerShellV1)
	return zwlrLayerShellV1
}

// GetLayerSurface : create a layer_surface from a surface
//
// Create a layer surface for an existing surface. This assigns the role of
// layer_surface, or raises a protocol error if another role is already
// assigned.
func (i *ZwlrLayerShellV1) GetLayerSurface(surface *client.Surface, output *client.Output, layer uint32, namespace string) (*ZwlrLayerSurfaceV1, error) {
	id := NewZwlrLayerSurfaceV1(i.Context())
	const opcode = 0
	namespaceLen := client.PaddedLen(len(namespace) + 1)
	_reqBufLen := 8 + 4 + 4 + 4 + 4 + (4 + namespaceLen)
	_reqBuf := make([]byte, _reqBufLen)
	l := 0
	client.PutUint32(_reqBuf[l:4], i.ID())
	l += 4
	client.PutUint32(_reqBuf[l:l+4], uint32(_reqBufLen<<16|opcode&0x0000ffff))
	l += 4
	client.PutUint32(_reqBuf[l:l+4], id.ID())
	l += 4
	client.PutUint32(_reqBuf[l:l+4], surface.ID())
	l += 4
	client.PutUint32(_reqBuf[l:l+4], output.ID())
	l += 4
	client.PutUint32(_reqBuf[l:l+4], layer)
	l += 4
	client.PutString(_reqBuf[l:l+(4+namespaceLen)], namespace, namespaceLen)
	l += 4 + namespaceLen
	err := i.Context().WriteMsg(_reqBuf, nil)
	return id, err
}

// Destroy : destroy the layer_shell object
//
// This request indicates that the client will not use the layer_shell
// object any more. Objects that have been created through this instance
// are not affected.
func (i *ZwlrLayerShellV1) Destroy() error {
	defer i.Context().Unregister(i)
	const opcode = 1
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

func (i *ZwlrLayerShellV1) Dispatch(opcode uint32, fd int, data []byte) {}

// ZwlrLayerSurfaceV1 : layer metadata interface
//
// An interface that may be implemented by a wl_surface, for surfaces that
// are designed to be rendered as a layer of a stacked desktop-like
// environment.
type ZwlrLayerSurfaceV1 struct {
	client.BaseProxy
	configureHandler ZwlrLayerSurfaceV1ConfigureHandlerFunc
	closedHandler    ZwlrLayerSurfaceV1ClosedHandlerFunc
}

// NewZwlrLayerSurfaceV1 : layer metadata interface
func NewZwlrLayerSurfaceV1(ctx *client.Context) *ZwlrLayerSurfaceV1 {
	zwlrLayerSurfaceV1 := &ZwlrLayerSurfaceV1{}
	ctx.Register(zwlrLayerSurfaceV1)
	return zwlrLayerSurfaceV1
}

// SetAnchor : configures the anchor point of the surface
//
// Requests that the compositor anchor the surface to the specified edges
// and corners.
func (i *ZwlrLayerSurfaceV1) SetAnchor(anchor uint32) error {
	const opcode = 1
	const _reqBufLen = 8 + 4
	var _reqBuf [_reqBufLen]byte
	l := 0
	client.PutUint32(_reqBuf[l:4], i.ID())
	l += 4
	client.PutUint32(_reqBuf[l:l+4], uint32(_reqBufLen<<16|opcode&0x0000ffff))
	l += 4
	client.PutUint32(_reqBuf[l:l+4], anchor)
	l += 4
	err := i.Context().WriteMsg(_reqBuf[:], nil)
	return err
}

// SetExclusiveZone : configures the exclusive geometry of this surface
//
// A value of -1 means the surface should not be moved to accommodate other
// surfaces' exclusive zones, which is what a full-screen overlay wants.
func (i *ZwlrLayerSurfaceV1) SetExclusiveZone(zone int32) error {
	const opcode = 2
	const _reqBufLen = 8 + 4
	var _reqBuf [_reqBufLen]byte
	l := 0
	client.PutUint32(_reqBuf[l:4], i.ID())
	l += 4
	client.PutUint32(_reqBuf[l:l+4], uint32(_reqBufLen<<16|opcode&0x0000ffff))
	l += 4
	client.PutUint32(_reqBuf[l:l+4], uint32(zone))
	l += 4
	err := i.Context().WriteMsg(_reqBuf[:], nil)
	return err
}

// AckConfigure : ack a configure event
//
// When a configure event is received, if a client commits the surface in
// response to the configure event, then the client must make an
// ack_configure request sometime before the commit request.
func (i *ZwlrLayerSurfaceV1) AckConfigure(serial uint32) error {
	const opcode = 6
	const _reqBufLen = 8 + 4
	var _reqBuf [_reqBufLen]byte
	l := 0
	client.PutUint32(_reqBuf[l:4], i.ID())
	l += 4
	client.PutUint32(_reqBuf[l:l+4], uint32(_reqBufLen<<16|opcode&0x0000ffff))
	l += 4
	client.PutUint32(_reqBuf[l:l+4], serial)
	l += 4
	err := i.Context().WriteMsg(_reqBuf[:], nil)
	return err
}

// Destroy : destroy the layer_surface
//
// This request destroys the layer surface.
func (i *ZwlrLayerSurfaceV1) Destroy() error {
	defer i.Context().Unregister(i)
	const opcode = 7
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

// ZwlrLayerSurfaceV1ConfigureEvent : suggest a surface change
//
// The configure event asks the client to resize its surface. The client
// must send an ack_configure in response.
type ZwlrLayerSurfaceV1ConfigureEvent struct {
	Serial uint32
	Width  uint32
	Height uint32
}
type ZwlrLayerSurfaceV1ConfigureHandlerFunc func(ZwlrLayerSurfaceV1ConfigureEvent)

// SetConfigureHandler : sets handler for ZwlrLayerSurfaceV1ConfigureEvent
func (i *ZwlrLayerSurfaceV1) SetConfigureHandler(f ZwlrLayerSurfaceV1ConfigureHandlerFunc) {
	i.configureHandler = f
}

// ZwlrLayerSurfaceV1ClosedEvent : surface should be closed
//
// The closed event is sent by the compositor when the surface will no
// longer be shown. The client should destroy the surface after receiving
// this event.
type ZwlrLayerSurfaceV1ClosedEvent struct{}
type ZwlrLayerSurfaceV1ClosedHandlerFunc func(ZwlrLayerSurfaceV1ClosedEvent)

// SetClosedHandler : sets handler for ZwlrLayerSurfaceV1ClosedEvent
func (i *ZwlrLayerSurfaceV1) SetClosedHandler(f ZwlrLayerSurfaceV1ClosedHandlerFunc) {
	i.closedHandler = f
}

func (i *ZwlrLayerSurfaceV1) Dispatch(opcode uint32, fd int, data []byte) {
	switch opcode {
	case 0:
		if i.configureHandler == nil {
			return
		}
		var e ZwlrLayerSurfaceV1ConfigureEvent
		l := 0
		e.Serial = client.Uint32(data[l : l+4])
		l += 4
		e.Width = client.Uint32(data[l : l+4])
		l += 4
		e.Height = client.Uint32(data[l : l+4])
		l += 4
		i.configureHandler(e)
	case 1:
		if i.closedHandler == nil {
			return
		}
		var e ZwlrLayerSurfaceV1ClosedEvent
		i.closedHandler(e)
	}
}
