package geo

import "github.com/fusionkit/imgfusion/internal/fuserr"

// Affine is the 2x2 linear part plus translation of a GeoInfo's
// geotrans: image-pixel -> projection-space coordinates.
//
//	px = A*col + B*row + Tx
//	py = C*col + D*row + Ty
//
// Warping requires the diagonal-only subset (B == C == 0); rotated or
// sheared transforms are rejected at entry (spec §1 Non-goals).
type Affine struct {
	A, B, C, D float64
	Tx, Ty     float64
}

// Identity returns the identity affine (unit pixel size, origin zero).
func Identity() Affine { return Affine{A: 1, D: 1} }

// IsDiagonal reports whether the off-diagonal entries are zero, the
// invariant warping requires.
func (a Affine) IsDiagonal() bool { return a.B == 0 && a.C == 0 }

// ImgToProj maps an image-pixel coordinate to projection space.
func (a Affine) ImgToProj(col, row float64) (x, y float64) {
	x = a.A*col + a.B*row + a.Tx
	y = a.C*col + a.D*row + a.Ty
	return
}

// ProjToImg maps a projection-space coordinate back to image-pixel
// space, requiring a.IsDiagonal() (and non-zero scale factors).
func (a Affine) ProjToImg(x, y float64) (col, row float64, err error) {
	if !a.IsDiagonal() {
		return 0, 0, fuserr.Invalidf("geotrans has non-zero off-diagonal entries; cannot invert for non-rotated access")
	}
	if a.A == 0 || a.D == 0 {
		return 0, 0, fuserr.Invalidf("geotrans has zero pixel scale")
	}
	col = (x - a.Tx) / a.A
	row = (y - a.Ty) / a.D
	return col, row, nil
}

// TranslateImage composes a pixel-space translation (dx, dy) into the
// affine, used when a crop window shifts the effective image origin.
func (a Affine) TranslateImage(dx, dy float64) Affine {
	px, py := a.ImgToProj(dx, dy)
	return Affine{A: a.A, B: a.B, C: a.C, D: a.D, Tx: px, Ty: py}
}

// ProjRect maps an image rectangle through the affine into projection
// space. Exact when the affine is diagonal (only scaling), since the
// four corners map to an axis-aligned box; for a general affine the
// result is the bounding box of the four mapped corners.
func (a Affine) ProjRect(r Rect) CoordRect {
	corners := [4][2]float64{
		{float64(r.X), float64(r.Y)},
		{float64(r.X + r.W), float64(r.Y)},
		{float64(r.X), float64(r.Y + r.H)},
		{float64(r.X + r.W), float64(r.Y + r.H)},
	}
	out := CoordRect{MinX: 1e308, MinY: 1e308, MaxX: -1e308, MaxY: -1e308}
	for _, c := range corners {
		px, py := a.ImgToProj(c[0], c[1])
		if px < out.MinX {
			out.MinX = px
		}
		if px > out.MaxX {
			out.MaxX = px
		}
		if py < out.MinY {
			out.MinY = py
		}
		if py > out.MaxY {
			out.MaxY = py
		}
	}
	return out
}
