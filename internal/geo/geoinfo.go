package geo

import (
	"github.com/fusionkit/imgfusion/internal/fuserr"
	"github.com/fusionkit/imgfusion/internal/pixtype"
)

// GCP is a ground-control point, an alternative to a geotrans for
// images that are georeferenced by tie points rather than a regular
// affine grid.
type GCP struct {
	PixelX, PixelY float64
	ProjX, ProjY   float64
}

// ColorTableEntry maps a palette index to RGBA.
type ColorTableEntry struct {
	R, G, B, A uint8
}

// Info is the GeoInfo record of spec §4.E / §3.
type Info struct {
	Width, Height int
	Base          pixtype.BaseType
	Channels      int

	Geotrans    Affine
	GeotransSRS int // EPSG code

	GCPs []GCP

	// NoData holds one optional no-data value per channel; len(NoData)
	// may be 0 (none set), 1 (single value applies to all channels, or
	// the channel-0 slot is meaningful and others absent) or Channels.
	NoData []*float64

	ColorTable []ColorTableEntry

	// Metadata is the free-form domain -> key -> value map.
	Metadata map[string]map[string]string

	Filename string // for error reporting only
}

// HasGeotrans reports whether a usable affine geotransform is present.
func (g Info) HasGeotrans() bool {
	return g.Geotrans.A != 0 || g.Geotrans.D != 0
}

// PixelRect returns the full image extent as a pixel Rect.
func (g Info) PixelRect() Rect { return Rect{W: g.Width, H: g.Height} }

// ProjRect maps the image rectangle into projection space.
func (g Info) ProjRect() CoordRect { return g.Geotrans.ProjRect(g.PixelRect()) }

// ProjToLongLat converts a projection-space coordinate to WGS84
// long/lat via g.GeotransSRS.
func (g Info) ProjToLongLat(x, y float64) (lon, lat float64, err error) {
	proj := ForEPSG(g.GeotransSRS)
	if proj == nil {
		return 0, 0, fuserr.Invalidf("unsupported SRS EPSG:%d", g.GeotransSRS)
	}
	lon, lat = proj.ToWGS84(x, y)
	return lon, lat, nil
}

// LongLatToProj converts a WGS84 long/lat coordinate to this GeoInfo's
// projection space.
func (g Info) LongLatToProj(lon, lat float64) (x, y float64, err error) {
	proj := ForEPSG(g.GeotransSRS)
	if proj == nil {
		return 0, 0, fuserr.Invalidf("unsupported SRS EPSG:%d", g.GeotransSRS)
	}
	x, y = proj.FromWGS84(lon, lat)
	return x, y, nil
}

// ProjToImg composes this GeoInfo's projection->long/lat with other's
// long/lat->projection->pixel, letting a coordinate expressed in g's
// projection be located within other's pixel grid.
func (g Info) ProjToImg(x, y float64, other Info) (col, row float64, err error) {
	lon, lat, err := g.ProjToLongLat(x, y)
	if err != nil {
		return 0, 0, err
	}
	ox, oy, err := other.LongLatToProj(lon, lat)
	if err != nil {
		return 0, 0, err
	}
	return other.Geotrans.ProjToImg(ox, oy)
}

// NoDataAt returns channel ch's configured no-data value, if any.
func (g Info) NoDataAt(ch int) (float64, bool) {
	if len(g.NoData) == 0 {
		return 0, false
	}
	idx := ch
	if idx >= len(g.NoData) {
		idx = 0
	}
	if idx >= len(g.NoData) || g.NoData[idx] == nil {
		return 0, false
	}
	return *g.NoData[idx], true
}
