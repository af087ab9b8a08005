package geo

import (
	"math"

	"github.com/fusionkit/imgfusion/internal/fuserr"
)

// IntersectionSamples is the number of boundary points sampled per
// rectangle side when intersecting rectangles across spatial reference
// systems. Spec §9 Open Question: made configurable rather than a
// hardcoded constant; the default (33) matches the documented
// heuristic and keeps the inclusion test conservative.
var IntersectionSamples = 33

// IntersectProjRects intersects rectangle rA (expressed in A's SRS)
// with rectangle rB (expressed in B's SRS), returning the result
// quantized onto the target's pixel grid. The target is, by
// convention, whichever of A/B has the finer pixel size; ties favor A.
//
// Algorithm (spec §4.E):
//  1. choose target GeoInfo (finer pixel size)
//  2. sample N boundary points of the non-target rectangle
//  3. map them into target SRS, take the bounding box
//  4. intersect in target space with the target's own rectangle
//  5. quantize onto the target pixel grid
func IntersectProjRects(a, b Info, rA, rB CoordRect) (Rect, error) {
	if a.GeotransSRS == 0 || b.GeotransSRS == 0 {
		return Rect{}, fuserr.Invalidf("cannot intersect rectangles: missing SRS")
	}

	target, other := a, b
	targetRect, otherRect := rA, rB
	targetIsA := true
	if pixelSize(b) < pixelSize(a) {
		target, other = b, a
		targetRect, otherRect = rB, rA
		targetIsA = false
	}
	_ = targetIsA

	mappedOtherBox, err := sampleBoundaryInto(other, otherRect, target)
	if err != nil {
		return Rect{}, err
	}

	inter := targetRect.Intersect(mappedOtherBox)
	if inter.Empty() {
		return Rect{}, fuserr.Invalidf("rectangle intersection is empty")
	}

	return quantize(inter, target.Geotrans), nil
}

func pixelSize(g Info) float64 {
	// Finer pixel size == larger |A| (projection units covered per
	// pixel) is coarser; we want the smaller value to mean "finer".
	if g.Geotrans.A == 0 {
		return math.Inf(1)
	}
	return math.Abs(g.Geotrans.A)
}

// sampleBoundaryInto samples N points per side of rect (expressed in
// src's SRS) and maps each through src -> long/lat -> dst's projection,
// returning the axis-aligned bounding box in dst's projection space.
func sampleBoundaryInto(src Info, rect CoordRect, dst Info) (CoordRect, error) {
	n := IntersectionSamples
	if n < 2 {
		n = 2
	}
	out := CoordRect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}

	sample := func(x, y float64) error {
		lon, lat, err := src.ProjToLongLat(x, y)
		if err != nil {
			return err
		}
		dx, dy, err := dst.LongLatToProj(lon, lat)
		if err != nil {
			return err
		}
		if dx < out.MinX {
			out.MinX = dx
		}
		if dx > out.MaxX {
			out.MaxX = dx
		}
		if dy < out.MinY {
			out.MinY = dy
		}
		if dy > out.MaxY {
			out.MaxY = dy
		}
		return nil
	}

	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		top := rect.MinY
		bot := rect.MaxY
		left := rect.MinX
		right := rect.MaxX
		x := left + t*(right-left)
		if err := sample(x, top); err != nil {
			return CoordRect{}, err
		}
		if err := sample(x, bot); err != nil {
			return CoordRect{}, err
		}
		y := top + t*(bot-top)
		if err := sample(left, y); err != nil {
			return CoordRect{}, err
		}
		if err := sample(right, y); err != nil {
			return CoordRect{}, err
		}
	}
	return out, nil
}

func quantize(r CoordRect, a Affine) Rect {
	col0, row0, _ := a.ProjToImg(r.MinX, r.MaxY) // top-left: max Y in image-down convention
	col1, row1, _ := a.ProjToImg(r.MaxX, r.MinY)
	x0, y0 := int(math.Floor(math.Min(col0, col1))), int(math.Floor(math.Min(row0, row1)))
	x1, y1 := int(math.Ceil(math.Max(col0, col1))), int(math.Ceil(math.Max(row0, row1)))
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// FitLongLatRectInProjRect implements the "fit long/lat rect inside
// proj rect" direction of spec §4.E: sample the long/lat rectangle's
// boundary, map each point to projection space via g, and take the
// bounding box.
func FitLongLatRectInProjRect(g Info, llRect CoordRect) (CoordRect, error) {
	n := IntersectionSamples
	if n < 2 {
		n = 2
	}
	out := CoordRect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	sample := func(lon, lat float64) error {
		x, y, err := g.LongLatToProj(lon, lat)
		if err != nil {
			return err
		}
		if x < out.MinX {
			out.MinX = x
		}
		if x > out.MaxX {
			out.MaxX = x
		}
		if y < out.MinY {
			out.MinY = y
		}
		if y > out.MaxY {
			out.MaxY = y
		}
		return nil
	}
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		lon := llRect.MinX + t*(llRect.MaxX-llRect.MinX)
		if err := sample(lon, llRect.MinY); err != nil {
			return CoordRect{}, err
		}
		if err := sample(lon, llRect.MaxY); err != nil {
			return CoordRect{}, err
		}
		lat := llRect.MinY + t*(llRect.MaxY-llRect.MinY)
		if err := sample(llRect.MinX, lat); err != nil {
			return CoordRect{}, err
		}
		if err := sample(llRect.MaxX, lat); err != nil {
			return CoordRect{}, err
		}
	}
	return out, nil
}

// FitProjRectInLongLat implements the inverse direction: sample in
// projection space, map to long/lat, take the bounding box, then
// (per spec) sample that bounding box in long/lat and map back to
// projection space, yielding a conservative inclusion test for
// --crop-longlat-full.
func FitProjRectInLongLat(g Info, projRect CoordRect) (llBox CoordRect, backProj CoordRect, err error) {
	n := IntersectionSamples
	if n < 2 {
		n = 2
	}
	llBox = CoordRect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	sampleToLL := func(x, y float64) error {
		lon, lat, e := g.ProjToLongLat(x, y)
		if e != nil {
			return e
		}
		if lon < llBox.MinX {
			llBox.MinX = lon
		}
		if lon > llBox.MaxX {
			llBox.MaxX = lon
		}
		if lat < llBox.MinY {
			llBox.MinY = lat
		}
		if lat > llBox.MaxY {
			llBox.MaxY = lat
		}
		return nil
	}
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		x := projRect.MinX + t*(projRect.MaxX-projRect.MinX)
		if e := sampleToLL(x, projRect.MinY); e != nil {
			return CoordRect{}, CoordRect{}, e
		}
		if e := sampleToLL(x, projRect.MaxY); e != nil {
			return CoordRect{}, CoordRect{}, e
		}
		y := projRect.MinY + t*(projRect.MaxY-projRect.MinY)
		if e := sampleToLL(projRect.MinX, y); e != nil {
			return CoordRect{}, CoordRect{}, e
		}
		if e := sampleToLL(projRect.MaxX, y); e != nil {
			return CoordRect{}, CoordRect{}, e
		}
	}
	backProj, err = FitLongLatRectInProjRect(g, llBox)
	return llBox, backProj, err
}
