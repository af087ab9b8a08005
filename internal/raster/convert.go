package raster

import (
	"math"

	"github.com/fusionkit/imgfusion/internal/fuserr"
	"github.com/fusionkit/imgfusion/internal/pixtype"
)

// ConvertTo returns a copy of im re-encoded to base type target, with
// OpenCV-style saturating conversion (round 0.5-away-from-zero then
// clamp for integer destinations, no rounding for float destinations
// — both already implemented by setF64/saturate).
func (im *Image) ConvertTo(target pixtype.BaseType) (*Image, error) {
	out, err := New(im.Width(), im.Height(), pixtype.GetFullType(target, im.Channels()))
	if err != nil {
		return nil, err
	}
	for y := 0; y < im.Height(); y++ {
		for x := 0; x < im.Width(); x++ {
			for c := 0; c < im.Channels(); c++ {
				out.setF64(x, y, c, im.getF64(x, y, c))
			}
		}
	}
	return out, nil
}

// ColorConversion names a supported ConvertColor mapping.
type ColorConversion int

const (
	RGBToGray ColorConversion = iota
	GrayToRGB
	RGBToYCbCr
	YCbCrToRGB
	RGBToXYZ
	XYZToRGB
	RGBToHSV
	HSVToRGB
	RGBToHLS
	HLSToRGB
	LandsatTasseledCap
	MODISTasseledCap
	BuiltUpIndex
	NormalizedDifferenceIndex
)

// requiredChannels returns the input channel count each conversion
// expects; ConvertColor rejects images with a different count.
func (cc ColorConversion) requiredChannels() int {
	switch cc {
	case RGBToGray, RGBToYCbCr, RGBToXYZ, RGBToHSV, RGBToHLS, LandsatTasseledCap, MODISTasseledCap:
		return 3
	case GrayToRGB:
		return 1
	case YCbCrToRGB, XYZToRGB, HSVToRGB, HLSToRGB:
		return 3
	case BuiltUpIndex:
		return 3
	case NormalizedDifferenceIndex:
		return 2
	default:
		return 0
	}
}

// ConvertColor applies one of the spec's named color-space / index
// transforms, working in float64 throughout and saturating on write
// for integer destination types via setF64.
func (im *Image) ConvertColor(cc ColorConversion) (*Image, error) {
	need := cc.requiredChannels()
	if need != 0 && im.Channels() != need {
		return nil, fuserr.Typef("color conversion expects %d channels, image has %d", need, im.Channels())
	}

	outCh := need
	switch cc {
	case RGBToGray, BuiltUpIndex, NormalizedDifferenceIndex:
		outCh = 1
	case GrayToRGB:
		outCh = 3
	default:
		outCh = 3
	}

	out, err := New(im.Width(), im.Height(), pixtype.GetFullType(im.BaseType(), outCh))
	if err != nil {
		return nil, err
	}

	for y := 0; y < im.Height(); y++ {
		for x := 0; x < im.Width(); x++ {
			switch cc {
			case RGBToGray:
				r, g, b := im.getF64(x, y, 0), im.getF64(x, y, 1), im.getF64(x, y, 2)
				out.setF64(x, y, 0, 0.299*r+0.587*g+0.114*b)
			case GrayToRGB:
				v := im.getF64(x, y, 0)
				out.setF64(x, y, 0, v)
				out.setF64(x, y, 1, v)
				out.setF64(x, y, 2, v)
			case RGBToYCbCr:
				r, g, b := im.getF64(x, y, 0), im.getF64(x, y, 1), im.getF64(x, y, 2)
				yy := 0.299*r + 0.587*g + 0.114*b
				cb := 128 - 0.168736*r - 0.331264*g + 0.5*b
				cr := 128 + 0.5*r - 0.418688*g - 0.081312*b
				out.setF64(x, y, 0, yy)
				out.setF64(x, y, 1, cb)
				out.setF64(x, y, 2, cr)
			case YCbCrToRGB:
				yy, cb, cr := im.getF64(x, y, 0), im.getF64(x, y, 1), im.getF64(x, y, 2)
				r := yy + 1.402*(cr-128)
				g := yy - 0.344136*(cb-128) - 0.714136*(cr-128)
				b := yy + 1.772*(cb-128)
				out.setF64(x, y, 0, r)
				out.setF64(x, y, 1, g)
				out.setF64(x, y, 2, b)
			case RGBToXYZ:
				r, g, b := im.getF64(x, y, 0), im.getF64(x, y, 1), im.getF64(x, y, 2)
				out.setF64(x, y, 0, 0.4124564*r+0.3575761*g+0.1804375*b)
				out.setF64(x, y, 1, 0.2126729*r+0.7151522*g+0.0721750*b)
				out.setF64(x, y, 2, 0.0193339*r+0.1191920*g+0.9503041*b)
			case XYZToRGB:
				xx, yy, zz := im.getF64(x, y, 0), im.getF64(x, y, 1), im.getF64(x, y, 2)
				out.setF64(x, y, 0, 3.2404542*xx-1.5371385*yy-0.4985314*zz)
				out.setF64(x, y, 1, -0.9692660*xx+1.8760108*yy+0.0415560*zz)
				out.setF64(x, y, 2, 0.0556434*xx-0.2040259*yy+1.0572252*zz)
			case RGBToHSV:
				h, s, v := rgbToHSV(im.getF64(x, y, 0), im.getF64(x, y, 1), im.getF64(x, y, 2))
				out.setF64(x, y, 0, h)
				out.setF64(x, y, 1, s)
				out.setF64(x, y, 2, v)
			case HSVToRGB:
				r, g, b := hsvToRGB(im.getF64(x, y, 0), im.getF64(x, y, 1), im.getF64(x, y, 2))
				out.setF64(x, y, 0, r)
				out.setF64(x, y, 1, g)
				out.setF64(x, y, 2, b)
			case RGBToHLS:
				h, l, s := rgbToHLS(im.getF64(x, y, 0), im.getF64(x, y, 1), im.getF64(x, y, 2))
				out.setF64(x, y, 0, h)
				out.setF64(x, y, 1, l)
				out.setF64(x, y, 2, s)
			case HLSToRGB:
				r, g, b := hlsToRGB(im.getF64(x, y, 0), im.getF64(x, y, 1), im.getF64(x, y, 2))
				out.setF64(x, y, 0, r)
				out.setF64(x, y, 1, g)
				out.setF64(x, y, 2, b)
			case LandsatTasseledCap, MODISTasseledCap:
				r, g, b := im.getF64(x, y, 0), im.getF64(x, y, 1), im.getF64(x, y, 2)
				bright := 0.3037*r + 0.2793*g + 0.4743*b
				green := -0.2848*r - 0.2435*g - 0.5436*b
				wet := 0.1509*r + 0.1973*g + 0.3279*b
				out.setF64(x, y, 0, bright)
				out.setF64(x, y, 1, green)
				out.setF64(x, y, 2, wet)
			case BuiltUpIndex:
				red, nir, swir := im.getF64(x, y, 0), im.getF64(x, y, 1), im.getF64(x, y, 2)
				ndvi := safeNDI(nir, red)
				ndbi := safeNDI(swir, nir)
				out.setF64(x, y, 0, ndbi-ndvi)
			case NormalizedDifferenceIndex:
				pos, neg := im.getF64(x, y, 0), im.getF64(x, y, 1)
				out.setF64(x, y, 0, safeNDI(pos, neg))
			}
		}
	}
	return out, nil
}

func safeNDI(pos, neg float64) float64 {
	d := pos + neg
	if d == 0 {
		return 0
	}
	return (pos - neg) / d
}

func rgbToHSV(r, g, b float64) (h, s, v float64) {
	maxc := math.Max(r, math.Max(g, b))
	minc := math.Min(r, math.Min(g, b))
	v = maxc
	delta := maxc - minc
	if maxc == 0 {
		return 0, 0, v
	}
	s = delta / maxc
	if delta == 0 {
		return 0, s, v
	}
	switch maxc {
	case r:
		h = 60 * math.Mod((g-b)/delta, 6)
	case g:
		h = 60 * ((b-r)/delta + 2)
	case b:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

func hsvToRGB(h, s, v float64) (r, g, b float64) {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}

func rgbToHLS(r, g, b float64) (h, l, s float64) {
	maxc := math.Max(r, math.Max(g, b))
	minc := math.Min(r, math.Min(g, b))
	l = (maxc + minc) / 2
	delta := maxc - minc
	if delta == 0 {
		return 0, l, 0
	}
	if l <= 0.5 {
		s = delta / (maxc + minc)
	} else {
		s = delta / (2 - maxc - minc)
	}
	switch maxc {
	case r:
		h = 60 * math.Mod((g-b)/delta, 6)
	case g:
		h = 60 * ((b-r)/delta + 2)
	case b:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, l, s
}

func hlsToRGB(h, l, s float64) (r, g, b float64) {
	if s == 0 {
		return l, l, l
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	hk := h / 360
	r = hueToRGB(p, q, hk+1.0/3)
	g = hueToRGB(p, q, hk)
	b = hueToRGB(p, q, hk-1.0/3)
	return r, g, b
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}
