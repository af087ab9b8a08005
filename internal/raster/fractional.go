package raster

import (
	"math"

	"github.com/fusionkit/imgfusion/internal/fuserr"
)

// CloneFractional performs a bilinear-sampled clone of the view
// starting at the fractional top-left (fx, fy) with the given
// destination size. An integer topleft degenerates to a plain
// crop-copy (no interpolation). Grounded on the teacher's
// internal/tile/downsample.go child-compositing kernel, generalized
// from 2x2 tile children to four integer-shifted source crops.
//
// The kernel is the tensor product of linear weights
// w_tl=(1-dx)(1-dy), w_tr=dx(1-dy), w_bl=(1-dx)dy, w_br=dx*dy; when dx
// or dy is exactly zero the degenerate 1-D form is used so no spurious
// contribution from the "other" axis's neighbor leaks in.
func (im *Image) CloneFractional(fx, fy float64, w, h int) (*Image, error) {
	if w <= 0 || h <= 0 {
		return nil, fuserr.Sizef("cloneFractional size must be positive, got %dx%d", w, h)
	}
	x0 := math.Floor(fx)
	y0 := math.Floor(fy)
	dx := fx - x0
	dy := fy - y0

	if dx == 0 && dy == 0 {
		return im.CloneRect(Rect{X: int(x0), Y: int(y0), W: w, H: h})
	}

	ix0, iy0 := int(x0), int(y0)
	if ix0 < 0 || iy0 < 0 || ix0+w+1 > im.crop.w || iy0+h+1 > im.crop.h {
		return nil, fuserr.Invalidf("cloneFractional(%g,%g,%d,%d) out of bounds of %dx%d view", fx, fy, w, h, im.crop.w, im.crop.h)
	}

	out, err := New(w, h, im.ftype)
	if err != nil {
		return nil, err
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := 0; c < im.ftype.Channels; c++ {
				tl := im.getF64(ix0+x, iy0+y, c)
				tr := im.getF64(ix0+x+1, iy0+y, c)
				bl := im.getF64(ix0+x, iy0+y+1, c)
				br := im.getF64(ix0+x+1, iy0+y+1, c)

				var v float64
				switch {
				case dx == 0:
					v = tl*(1-dy) + bl*dy
				case dy == 0:
					v = tl*(1-dx) + tr*dx
				default:
					top := tl*(1-dx) + tr*dx
					bot := bl*(1-dx) + br*dx
					v = top*(1-dy) + bot*dy
				}
				// setF64 rounds (halves away from zero) and clamps only
				// for integer destination types; float destinations
				// are stored without rounding, per spec.
				out.setF64(x, y, c, v)
			}
		}
	}
	return out, nil
}
