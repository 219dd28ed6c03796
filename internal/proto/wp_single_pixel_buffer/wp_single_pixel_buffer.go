// Package wp_single_pixel_buffer contains client bindings for the
// single-pixel-buffer-v1 staging protocol, written in the style of
// go-wayland-scanner output so they interoperate with
// github.com/rajveermalviya/go-wayland proxies.
package wp_single_pixel_buffer

import "github.com/rajveermalviya/go-wayland/wayland/client"

// WpSinglePixelBufferManagerV1 : global factory for single-pixel buffers
//
// The wp_single_pixel_buffer_manager_v1 interface is a factory for
// single-pixel buffers.
type WpSinglePixelBufferManagerV1 struct {
	client.BaseProxy
}

// NewWpSinglePixelBufferManagerV1 : global factory for single-pixel buffers
func NewWpSinglePixelBufferManagerV1(ctx *client.Context) *WpSinglePixelBufferManagerV1 {
	wpSinglePixelBufferManagerV1 := &WpSinglePixelBufferManagerV1{}
	ctx.Register(wpSinglePixelBufferManagerV1)
	return wpSinglePixelBufferManagerV1
}

// Destroy : destroy the manager
//
// Destroy the wp_single_pixel_buffer_manager_v1 object. The child objects
// created via this interface are unaffected.
func (i *WpSinglePixelBufferManagerV1) Destroy() error {
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

// CreateU32RgbaBuffer : create a 1x1 buffer from 32-bit RGBA values
//
// Create a single-pixel buffer from four 32-bit RGBA values. Unless
// specified in another protocol extension, the RGBA values describe
// non-premultiplied colors.
func (i *WpSinglePixelBufferManagerV1) CreateU32RgbaBuffer(r, g, b, a uint32) (*client.Buffer, error) {
	id := client.NewBuffer(i.Context())
	const opcode = 1
	const _reqBufLen = 8 + 4 + 4 + 4 + 4 + 4
	var _reqBuf [_reqBufLen]byte
	l := 0
	client.PutUint32(_reqBuf[l:4], i.ID())
	l += 4
	client.PutUint32(_reqBuf[l:l+4], uint32(_reqBufLen<<16|opcode&0x0000ffff))
	l += 4
	client.PutUint32(_reqBuf[l:l+4], id.ID())
	l += 4
	client.PutUint32(_reqBuf[l:l+4], r)
	l += 4
	client.PutUint32(_reqBuf[l:l+4], g)
	l += 4
	client.PutUint32(_reqBuf[l:l+4], b)
	l += 4
	client.PutUint32(_reqBuf[l:l+4], a)
	l += 4
	err := i.Context().WriteMsg(_reqBuf[:], nil)
	return id, err
}

func (i *WpSinglePixelBufferManagerV1) Dispatch(opcode uint32, fd int, data []byte) {}
