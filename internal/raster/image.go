package raster

import (
	"github.com/fusionkit/imgfusion/internal/fuserr"
	"github.com/fusionkit/imgfusion/internal/pixtype"
)

// Ownership distinguishes an Image that owns the lifetime of its
// buffer from one that merely holds a view into another Image's
// buffer (spec §3 Image / §9 re-architecture note).
type Ownership uint8

const (
	Owning Ownership = iota
	Shared
)

// Image is a strongly typed n-channel raster. It wraps a crop window
// (the cropRect, in the coordinate space of the underlying buffer)
// that all coordinate-taking operations are relative to.
type Image struct {
	buf   *buffer
	own   Ownership
	crop  crop
	ftype pixtype.FullType
}

// crop is the sub-rectangle of the underlying buffer currently exposed
// as this view's logical extent, plus the information needed to
// recover the original size/offset and to Uncrop.
type crop struct {
	x, y, w, h int
}

// New allocates a new Owning image of the given size and full type.
func New(w, h int, ft pixtype.FullType) (*Image, error) {
	if w <= 0 || h <= 0 {
		return nil, fuserr.Sizef("image size must be positive, got %dx%d", w, h)
	}
	if !ft.Valid() {
		return nil, fuserr.Typef("invalid full type %v", ft)
	}
	buf := newBuffer(w, h, ft.Channels, ft.Base)
	return &Image{
		buf:   buf,
		own:   Owning,
		crop:  crop{0, 0, w, h},
		ftype: ft,
	}, nil
}

// Width, Height, Channels, BaseType, FullType report the current
// (cropped) logical extent and pixel type. These are immutable for a
// given view.
func (im *Image) Width() int               { return im.crop.w }
func (im *Image) Height() int              { return im.crop.h }
func (im *Image) Channels() int            { return im.ftype.Channels }
func (im *Image) BaseType() pixtype.BaseType { return im.ftype.Base }
func (im *Image) FullType() pixtype.FullType { return im.ftype }
func (im *Image) Ownership() Ownership     { return im.own }

// OriginalSize returns the full size of the underlying buffer (before
// any crop), and the current crop's offset within it.
func (im *Image) OriginalSize() (w, h int)  { return im.buf.width, im.buf.height }
func (im *Image) CropOffset() (x, y int)    { return im.crop.x, im.crop.y }

// Close releases this view's reference to the underlying buffer. The
// buffer's storage is freed once every Image view referencing it has
// been closed (spec §5 "shared lifetime = longest-living view").
func (im *Image) Close() error {
	if im.buf == nil {
		return nil
	}
	im.buf.release()
	im.buf = nil
	return nil
}

// Crop adjusts, in place, the crop window to r (expressed in current
// view coordinates). All subsequent coordinate-taking operations are
// relative to the new window.
func (im *Image) Crop(r Rect) error {
	if r.W <= 0 || r.H <= 0 {
		return fuserr.Sizef("crop rectangle must be non-empty, got %dx%d", r.W, r.H)
	}
	if r.X < 0 || r.Y < 0 || r.X+r.W > im.crop.w || r.Y+r.H > im.crop.h {
		return fuserr.Invalidf("crop rectangle %+v out of bounds of %dx%d view", r, im.crop.w, im.crop.h)
	}
	im.crop = crop{x: im.crop.x + r.X, y: im.crop.y + r.Y, w: r.W, h: r.H}
	return nil
}

// Uncrop restores the full original-sized view.
func (im *Image) Uncrop() {
	im.crop = crop{0, 0, im.buf.width, im.buf.height}
}

// AdjustCropBorders grows or shrinks the current crop window by the
// given amounts (positive shrinks, negative grows), clamped to the
// underlying buffer. Errors if the result would be empty.
func (im *Image) AdjustCropBorders(top, bottom, left, right int) error {
	x0 := im.crop.x + left
	y0 := im.crop.y + top
	x1 := im.crop.x + im.crop.w - right
	y1 := im.crop.y + im.crop.h - bottom

	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > im.buf.width {
		x1 = im.buf.width
	}
	if y1 > im.buf.height {
		y1 = im.buf.height
	}
	if x1 <= x0 || y1 <= y0 {
		return fuserr.Invalidf("adjustCropBorders(%d,%d,%d,%d) would produce an empty crop", top, bottom, left, right)
	}
	im.crop = crop{x: x0, y: y0, w: x1 - x0, h: y1 - y0}
	return nil
}

// Rect is a pixel-space axis-aligned rectangle relative to an image's
// current crop window.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether r names no area (the zero Rect, used as "no
// crop requested").
func (r Rect) Empty() bool { return r.W == 0 && r.H == 0 }

// SharedCopy returns a non-owning view onto the sub-rectangle r of the
// current crop window, sharing the same underlying buffer
// (reference-counted; spec: "shared lifetime = longest-living view").
func (im *Image) SharedCopy(r Rect) (*Image, error) {
	if r.W <= 0 || r.H <= 0 {
		return nil, fuserr.Sizef("sharedCopy rectangle must be non-empty, got %dx%d", r.W, r.H)
	}
	if r.X < 0 || r.Y < 0 || r.X+r.W > im.crop.w || r.Y+r.H > im.crop.h {
		return nil, fuserr.Invalidf("sharedCopy rectangle %+v out of bounds of %dx%d view", r, im.crop.w, im.crop.h)
	}
	im.buf.retain()
	return &Image{
		buf:   im.buf,
		own:   Shared,
		crop:  crop{x: im.crop.x + r.X, y: im.crop.y + r.Y, w: r.W, h: r.H},
		ftype: im.ftype,
	}, nil
}

// Clone returns an owning deep copy of the entire current view.
func (im *Image) Clone() (*Image, error) {
	return im.CloneRect(Rect{W: im.crop.w, H: im.crop.h})
}

// CloneRect returns an owning deep copy of sub-rectangle r of the
// current view.
func (im *Image) CloneRect(r Rect) (*Image, error) {
	if r.W <= 0 || r.H <= 0 {
		return nil, fuserr.Sizef("clone rectangle must be non-empty, got %dx%d", r.W, r.H)
	}
	out, err := New(r.W, r.H, im.ftype)
	if err != nil {
		return nil, err
	}
	for y := 0; y < r.H; y++ {
		for x := 0; x < r.W; x++ {
			for c := 0; c < im.ftype.Channels; c++ {
				v := im.getF64(r.X+x, r.Y+y, c)
				out.setF64(x, y, c, v)
			}
		}
	}
	return out, nil
}
