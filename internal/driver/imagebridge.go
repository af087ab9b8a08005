package driver

// Conversions between raster.Image (arbitrary base type / channel
// count) and the stdlib image.Image interface, used by the PNG, JPEG,
// and WebP drivers, none of which carry georeferencing tags of their
// own — grounded on the teacher's internal/encode tile codecs
// (image.Image in, bytes out), generalized here to whole georeferenced
// files with a world-file sidecar standing in for embedded geotags.

import (
	"image"
	"image/color"

	"github.com/fusionkit/imgfusion/internal/geo"
	"github.com/fusionkit/imgfusion/internal/pixtype"
	"github.com/fusionkit/imgfusion/internal/raster"
)

// imageToStdlib renders img (any base type) as an 8-bit stdlib image,
// choosing Gray for 1 channel and NRGBA for everything else (2
// channels promoted to gray+alpha via NRGBA with R=G=B).
func imageToStdlib(img *raster.Image) image.Image {
	w, h := img.Width(), img.Height()
	c := img.Channels()
	switch c {
	case 1:
		out := image.NewGray(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.SetGray(x, y, color.Gray{Y: to8(img.GetPixel(x, y, 0), img.BaseType())})
			}
		}
		return out
	default:
		out := image.NewNRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r := to8(img.GetPixel(x, y, 0), img.BaseType())
				g, b, a := r, r, uint8(255)
				if c == 2 {
					a = to8(img.GetPixel(x, y, 1), img.BaseType())
				}
				if c >= 3 {
					g = to8(img.GetPixel(x, y, 1), img.BaseType())
					b = to8(img.GetPixel(x, y, 2), img.BaseType())
				}
				if c >= 4 {
					a = to8(img.GetPixel(x, y, 3), img.BaseType())
				}
				out.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: a})
			}
		}
		return out
	}
}

// to8 rescales a sample from base's representable range into [0,255].
func to8(v float64, base pixtype.BaseType) uint8 {
	if base == pixtype.Uint8 {
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		return uint8(v)
	}
	lo, hi := base.RangeMin(), base.RangeMax()
	if hi <= lo {
		return 0
	}
	scaled := (v - lo) / (hi - lo) * 255
	if scaled < 0 {
		scaled = 0
	}
	if scaled > 255 {
		scaled = 255
	}
	return uint8(scaled + 0.5)
}

// stdlibToImage builds a Uint8 raster.Image from a decoded stdlib
// image, choosing the channel count from the concrete color model:
// Gray/Gray16 -> 1; any other model -> 3 when every pixel is opaque,
// else 4.
func stdlibToImage(src image.Image) (*raster.Image, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	channels := channelsFor(src)
	img, err := raster.New(w, h, pixtype.GetFullType(pixtype.Uint8, channels))
	if err != nil {
		return nil, err
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, a := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			switch channels {
			case 1:
				img.SetPixel(x, y, 0, float64(r>>8))
			case 3:
				img.SetPixel(x, y, 0, float64(r>>8))
				img.SetPixel(x, y, 1, float64(g>>8))
				img.SetPixel(x, y, 2, float64(bl>>8))
			default:
				img.SetPixel(x, y, 0, float64(r>>8))
				img.SetPixel(x, y, 1, float64(g>>8))
				img.SetPixel(x, y, 2, float64(bl>>8))
				img.SetPixel(x, y, 3, float64(a>>8))
			}
		}
	}
	return img, nil
}

func channelsFor(src image.Image) int {
	switch src.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	}
	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := src.At(x, y).RGBA()
			if a>>8 != 255 {
				return 4
			}
		}
	}
	return 3
}

// selectChannels returns a new image containing only the named
// channel indices, in order — the §4.D read(..., channels={}, ...)
// sub-selection. An empty list is a no-op (selects every channel).
func selectChannels(img *raster.Image, channels []int) (*raster.Image, error) {
	if len(channels) == 0 {
		return img, nil
	}
	w, h := img.Width(), img.Height()
	out, err := raster.New(w, h, pixtype.GetFullType(img.BaseType(), len(channels)))
	if err != nil {
		return nil, err
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for i, ch := range channels {
				out.SetPixel(x, y, i, img.GetPixel(x, y, ch))
			}
		}
	}
	img.Close()
	return out, nil
}

// geoInfoFromWorldFile builds a geo.Info carrying only the
// georeferencing a world-file sidecar can express (no SRS, inferred
// afterward like the GeoTIFF path).
func geoInfoFromWorldFile(path string, w, h int, worldExts ...string) geo.Info {
	gi := geo.Info{Width: w, Height: h}
	if wf := findWorldFile(path, worldExts...); wf != "" {
		if tfw, err := parseTFW(wf); err == nil {
			gi.Geotrans = tfw.toAffine()
			gi.GeotransSRS = inferEPSG(gi)
		}
	}
	return gi
}

