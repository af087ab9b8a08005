// Package raster implements the Image container of spec §4.D: an
// owning-or-shared n-channel raster buffer with crop-as-view, typed
// arithmetic/logical operations, mask synthesis from interval sets,
// color-space conversion, split/merge, and bilinear sub-pixel sampling.
//
// Re-architected per spec §9: the C++ owning-vs-shared-view split
// becomes a reference-counted buffer (this file) plus an explicit view
// descriptor (image.go): offset, row stride, size, immutable typing.
// Mutation is only ever performed through the Image handle that holds
// the view; a logical Clone deep-copies, a logical SharedCopy bumps
// the refcount.
package raster

import (
	"sync/atomic"

	"github.com/fusionkit/imgfusion/internal/pixtype"
)

// buffer is the reference-counted backing store. Pixels are stored
// row-major, channel-interleaved, each sample occupying Base.ByteSize()
// bytes in the buffer's native byte order (always little-endian here,
// chosen internally — GeoTIFF byte order is normalized by the driver
// on read and restored on write).
type buffer struct {
	data     []byte
	width    int // full (uncropped) width in pixels
	height   int
	channels int
	base     pixtype.BaseType
	refs     int32
}

func newBuffer(w, h, channels int, base pixtype.BaseType) *buffer {
	b := &buffer{
		width:    w,
		height:   h,
		channels: channels,
		base:     base,
		refs:     1,
	}
	b.data = make([]byte, w*h*channels*base.ByteSize())
	return b
}

func (b *buffer) retain() { atomic.AddInt32(&b.refs, 1) }

// release decrements the refcount and reports whether this was the
// last reference (the caller should drop its pointer to data).
func (b *buffer) release() bool {
	return atomic.AddInt32(&b.refs, -1) == 0
}

func (b *buffer) pixelStride() int { return b.channels * b.base.ByteSize() }
func (b *buffer) rowStride() int   { return b.width * b.pixelStride() }
