package optparse

import (
	"fmt"
	"math"
	"strings"

	"github.com/fusionkit/imgfusion/internal/fuserr"
	"github.com/fusionkit/imgfusion/internal/geo"
	"github.com/fusionkit/imgfusion/internal/raster"
)

// ScalarOrPoint is either a bare number or a two-number point,
// distinguishing the "-x a" corner form from the "-x (a b)" diagonal
// form inside the nested rectangle grammar.
type ScalarOrPoint struct {
	IsPoint bool
	Scalar  float64
	Point   [2]float64
}

func scalarOrPointCheck(raw string) (any, ArgClass, error) {
	fields := strings.Fields(raw)
	if len(fields) == 2 {
		a, err1 := parseFloatToken(fields[0])
		b, err2 := parseFloatToken(fields[1])
		if err1 == nil && err2 == nil {
			return ScalarOrPoint{IsPoint: true, Point: [2]float64{a, b}}, ArgOK, nil
		}
	}
	v, err := parseFloatToken(raw)
	if err != nil {
		return nil, ArgIllegal, fmt.Errorf("expected a number or a two-number point, got %q", raw)
	}
	return ScalarOrPoint{Scalar: v}, ArgOK, nil
}

// PointChecker parses a "(x y)" or "x y" pair of numbers.
func PointChecker() Checker {
	return CheckerFunc(func(raw string) (any, ArgClass, error) {
		fields := strings.Fields(raw)
		if len(fields) != 2 {
			return nil, ArgIllegal, fmt.Errorf("point %q: expected two numbers", raw)
		}
		x, err1 := parseFloatToken(fields[0])
		y, err2 := parseFloatToken(fields[1])
		if err1 != nil || err2 != nil {
			return nil, ArgIllegal, fmt.Errorf("point %q: invalid number", raw)
		}
		return [2]float64{x, y}, ArgOK, nil
	})
}

// CoordinateChecker parses a projection-space (x, y) coordinate; it
// shares PointChecker's grammar.
func CoordinateChecker() Checker { return PointChecker() }

// Size is a pixel-space width/height pair.
type Size struct{ W, H int }

// Dimensions is a floating-point width/height pair.
type Dimensions struct{ W, H float64 }

func parseSizeLike(raw string) (w, h float64, err error) {
	t := strings.TrimSpace(raw)
	t = strings.TrimPrefix(t, "(")
	t = strings.TrimSuffix(t, ")")
	for _, sep := range []string{"x", "X", "*", ","} {
		t = strings.ReplaceAll(t, sep, " ")
	}
	fields := strings.Fields(t)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("size %q: expected two numbers", raw)
	}
	w, err = parseFloatToken(fields[0])
	if err != nil {
		return 0, 0, err
	}
	h, err = parseFloatToken(fields[1])
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

// SizeChecker parses the "WxH" / "(W H)" / "W*H" size grammar into
// integer pixel dimensions.
func SizeChecker() Checker {
	return CheckerFunc(func(raw string) (any, ArgClass, error) {
		w, h, err := parseSizeLike(raw)
		if err != nil {
			return nil, ArgIllegal, err
		}
		return Size{W: int(math.Round(w)), H: int(math.Round(h))}, ArgOK, nil
	})
}

// DimensionsChecker is SizeChecker's floating-point counterpart, for
// non-pixel extents (e.g. projection-space window sizes).
func DimensionsChecker() Checker {
	return CheckerFunc(func(raw string) (any, ArgClass, error) {
		w, h, err := parseSizeLike(raw)
		if err != nil {
			return nil, ArgIllegal, err
		}
		return Dimensions{W: w, H: h}, ArgOK, nil
	})
}

// resolveRectExtents re-enters the parser over the nested rectangle
// grammar's own tiny descriptor set (spec §6): -x/-y (scalar corner or
// diagonal point pair), -w/-h (extent), --center (point). Exactly one
// of the documented combinations must resolve both axes.
func resolveRectExtents(tokens []string) (x0, y0, x1, y1 float64, err error) {
	parser := New(Config{},
		&Descriptor{ID: "x", Short: 'x', Long: "x", TakesArg: true, Checker: CheckerFunc(scalarOrPointCheck)},
		&Descriptor{ID: "y", Short: 'y', Long: "y", TakesArg: true, Checker: CheckerFunc(scalarOrPointCheck)},
		&Descriptor{ID: "w", Short: 'w', Long: "w", TakesArg: true, Checker: FloatChecker()},
		&Descriptor{ID: "h", Short: 'h', Long: "h", TakesArg: true, Checker: FloatChecker()},
		&Descriptor{ID: "center", Long: "center", TakesArg: true, Checker: PointChecker()},
	)
	res, perr := parser.Parse(tokens)
	if perr != nil {
		return 0, 0, 0, 0, perr
	}

	xOpt, xSet := res.First("x")
	yOpt, ySet := res.First("y")
	wOpt, wSet := res.First("w")
	hOpt, hSet := res.First("h")
	centerOpt, centerSet := res.First("center")

	var cx, cy float64
	if centerSet {
		pt := centerOpt.Value.([2]float64)
		cx, cy = pt[0], pt[1]
	}

	resolveAxis := func(axisSet bool, axisOpt Option, extentSet bool, extentOpt Option, centerVal float64) (lo, hi float64, err error) {
		if axisSet {
			sp := axisOpt.Value.(ScalarOrPoint)
			if sp.IsPoint {
				return sp.Point[0], sp.Point[1], nil
			}
			lo = sp.Scalar
			switch {
			case extentSet:
				return lo, lo + extentOpt.Value.(float64), nil
			case centerSet:
				return lo, 2*centerVal - lo, nil
			default:
				return 0, 0, fuserr.Invalidf("rectangle: axis value given without -w/-h or --center to complete it")
			}
		}
		if centerSet && extentSet {
			ext := extentOpt.Value.(float64)
			return centerVal - ext/2, centerVal + ext/2, nil
		}
		return 0, 0, fuserr.Invalidf("rectangle: incomplete axis specification")
	}

	x0, x1, err = resolveAxis(xSet, xOpt, wSet, wOpt, cx)
	if err != nil {
		return
	}
	y0, y1, err = resolveAxis(ySet, yOpt, hSet, hOpt, cy)
	return
}

// RectangleChecker parses the nested pixel-rectangle grammar
// (spec §6) into a raster.Rect.
func RectangleChecker() Checker {
	return CheckerFunc(func(raw string) (any, ArgClass, error) {
		x0, y0, x1, y1, err := resolveRectExtents(TokenizeStrings(raw))
		if err != nil {
			return nil, ArgIllegal, err
		}
		if x1 < x0 {
			x0, x1 = x1, x0
		}
		if y1 < y0 {
			y0, y1 = y1, y0
		}
		r := raster.Rect{
			X: int(math.Round(x0)), Y: int(math.Round(y0)),
			W: int(math.Round(x1 - x0)), H: int(math.Round(y1 - y0)),
		}
		return r, ArgOK, nil
	})
}

// CoordRectangleChecker parses the same nested grammar into a
// floating-point geo.CoordRect, for projection-space rectangles
// (e.g. --pred-area).
func CoordRectangleChecker() Checker {
	return CheckerFunc(func(raw string) (any, ArgClass, error) {
		x0, y0, x1, y1, err := resolveRectExtents(TokenizeStrings(raw))
		if err != nil {
			return nil, ArgIllegal, err
		}
		if x1 < x0 {
			x0, x1 = x1, x0
		}
		if y1 < y0 {
			y0, y1 = y1, y0
		}
		return geo.CoordRect{MinX: x0, MinY: y0, MaxX: x1, MaxY: y1}, ArgOK, nil
	})
}

// LongLatRectangleChecker parses the cropper's long/lat rectangle
// grammar (spec §6): two --corner values, --corner + --center,
// --corner + -w + -h, or --center + -w + -h. -w/-h are degrees of
// longitude/latitude extent.
func LongLatRectangleChecker() Checker {
	return CheckerFunc(func(raw string) (any, ArgClass, error) {
		parser := New(Config{},
			&Descriptor{ID: "corner", Long: "corner", TakesArg: true, Checker: LongLatChecker()},
			&Descriptor{ID: "center", Long: "center", TakesArg: true, Checker: LongLatChecker()},
			&Descriptor{ID: "w", Short: 'w', Long: "w", TakesArg: true, Checker: FloatChecker()},
			&Descriptor{ID: "h", Short: 'h', Long: "h", TakesArg: true, Checker: FloatChecker()},
		)
		res, err := parser.Parse(TokenizeStrings(raw))
		if err != nil {
			return nil, ArgIllegal, err
		}
		corners := res.Get("corner")
		centerOpt, hasCenter := res.First("center")
		wOpt, hasW := res.First("w")
		hOpt, hasH := res.First("h")

		var minLon, minLat, maxLon, maxLat float64
		switch {
		case len(corners) == 2:
			a, b := corners[0].Value.(LongLat), corners[1].Value.(LongLat)
			minLon, maxLon = min(a.Lon, b.Lon), max(a.Lon, b.Lon)
			minLat, maxLat = min(a.Lat, b.Lat), max(a.Lat, b.Lat)
		case len(corners) == 1 && hasCenter:
			a, c := corners[0].Value.(LongLat), centerOpt.Value.(LongLat)
			lon2, lat2 := 2*c.Lon-a.Lon, 2*c.Lat-a.Lat
			minLon, maxLon = min(a.Lon, lon2), max(a.Lon, lon2)
			minLat, maxLat = min(a.Lat, lat2), max(a.Lat, lat2)
		case len(corners) == 1 && hasW && hasH:
			a := corners[0].Value.(LongLat)
			w, h := wOpt.Value.(float64), hOpt.Value.(float64)
			minLon, maxLon = min(a.Lon, a.Lon+w), max(a.Lon, a.Lon+w)
			minLat, maxLat = min(a.Lat, a.Lat+h), max(a.Lat, a.Lat+h)
		case hasCenter && hasW && hasH:
			c := centerOpt.Value.(LongLat)
			w, h := wOpt.Value.(float64), hOpt.Value.(float64)
			minLon, maxLon = c.Lon-w/2, c.Lon+w/2
			minLat, maxLat = c.Lat-h/2, c.Lat+h/2
		default:
			return nil, ArgIllegal, fuserr.Invalidf("long/lat rectangle: none of the accepted --corner/--center/-w/-h combinations matched")
		}
		return geo.CoordRect{MinX: minLon, MinY: minLat, MaxX: maxLon, MaxY: maxLat}, ArgOK, nil
	})
}
