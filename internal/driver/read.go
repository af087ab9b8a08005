package driver

// ReadImage is the read half of spec §4.D's image container contract:
// decode through the registry, then auto-promote an indexed-color
// result to Gray, Gray+Alpha, RGB, or RGBA, based on which color-table
// entries the image actually uses.

import (
	"github.com/fusionkit/imgfusion/internal/geo"
	"github.com/fusionkit/imgfusion/internal/pixtype"
	"github.com/fusionkit/imgfusion/internal/raster"
)

func ReadImage(reg *Registry, path string, opts DecodeOptions) (*raster.Image, geo.Info, error) {
	d := reg.FromFile(path)
	img, gi, err := d.Decode(path, opts)
	if err != nil {
		return nil, gi, err
	}
	if !opts.IgnoreColorTable && len(gi.ColorTable) > 0 {
		promoted, err := promoteColorTable(img, gi.ColorTable)
		if err != nil {
			return nil, gi, err
		}
		img.Close()
		img = promoted
		gi.ColorTable = nil
		gi.Channels = img.Channels()
		gi.Base = img.BaseType()
	}
	if len(opts.Channels) > 0 {
		selected, err := selectChannels(img, opts.Channels)
		if err != nil {
			return nil, gi, err
		}
		img = selected
		gi.Channels = img.Channels()
	}
	return img, gi, nil
}

// promoteColorTable expands an indexed (single-channel) image through
// its color table, detecting gray (every used entry has R==G==B) and
// alpha (any used entry has A!=255) and choosing the narrowest of
// Gray/Gray+Alpha/RGB/RGBA that the used entries require.
func promoteColorTable(img *raster.Image, ct []geo.ColorTableEntry) (*raster.Image, error) {
	w, h := img.Width(), img.Height()
	isGray, hasAlpha := true, false
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := int(img.GetPixel(x, y, 0))
			if idx < 0 || idx >= len(ct) {
				continue
			}
			e := ct[idx]
			if !(e.R == e.G && e.G == e.B) {
				isGray = false
			}
			if e.A != 255 {
				hasAlpha = true
			}
		}
	}
	channels := 3
	if isGray {
		channels = 1
	}
	if hasAlpha {
		channels++
	}

	out, err := raster.New(w, h, pixtype.GetFullType(pixtype.Uint8, channels))
	if err != nil {
		return nil, err
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := int(img.GetPixel(x, y, 0))
			var e geo.ColorTableEntry
			if idx >= 0 && idx < len(ct) {
				e = ct[idx]
			}
			switch {
			case isGray && hasAlpha:
				out.SetPixel(x, y, 0, float64(e.R))
				out.SetPixel(x, y, 1, float64(e.A))
			case isGray:
				out.SetPixel(x, y, 0, float64(e.R))
			case hasAlpha:
				out.SetPixel(x, y, 0, float64(e.R))
				out.SetPixel(x, y, 1, float64(e.G))
				out.SetPixel(x, y, 2, float64(e.B))
				out.SetPixel(x, y, 3, float64(e.A))
			default:
				out.SetPixel(x, y, 0, float64(e.R))
				out.SetPixel(x, y, 1, float64(e.G))
				out.SetPixel(x, y, 2, float64(e.B))
			}
		}
	}
	return out, nil
}
