package geo

import "math"

// SRS identifies a spatial reference system by EPSG code. The
// projections below are a hand-rolled subset (Web Mercator, Swiss
// LV95, WGS84 identity) following the teacher's own precedent of
// avoiding a cgo PROJ binding; ForEPSG is the toolkit's one extension
// point for adding further SRSs.
type SRS int

const (
	WGS84        SRS = 4326
	WebMercator  SRS = 3857
	SwissLV95    SRS = 2056
)

// Projection converts between a source CRS and WGS84 long/lat.
type Projection interface {
	ToWGS84(x, y float64) (lon, lat float64)
	FromWGS84(lon, lat float64) (x, y float64)
	EPSG() int
}

// ForEPSG returns the Projection for the given EPSG code, or nil if
// unsupported by this build.
func ForEPSG(epsg int) Projection {
	switch SRS(epsg) {
	case WGS84:
		return wgs84Identity{}
	case WebMercator:
		return webMercator{}
	case SwissLV95:
		return swissLV95{}
	default:
		return nil
	}
}

type wgs84Identity struct{}

func (wgs84Identity) ToWGS84(x, y float64) (float64, float64)   { return x, y }
func (wgs84Identity) FromWGS84(lon, lat float64) (float64, float64) { return lon, lat }
func (wgs84Identity) EPSG() int                                  { return int(WGS84) }

// earthCircumference is the equatorial circumference in meters, used
// by the Web Mercator forward/inverse formulas.
const earthCircumference = 40075016.685578488
const originShift = earthCircumference / 2.0

type webMercator struct{}

func (webMercator) EPSG() int { return int(WebMercator) }

func (webMercator) ToWGS84(x, y float64) (lon, lat float64) {
	lon = (x / originShift) * 180.0
	lat = (y / originShift) * 180.0
	lat = 180.0 / math.Pi * (2.0*math.Atan(math.Exp(lat*math.Pi/180.0)) - math.Pi/2.0)
	return
}

func (webMercator) FromWGS84(lon, lat float64) (x, y float64) {
	x = lon * originShift / 180.0
	y = math.Log(math.Tan((90.0+lat)*math.Pi/360.0)) / (math.Pi / 180.0)
	y = y * originShift / 180.0
	return
}

// swissLV95 implements the swisstopo approximate LV95 <-> WGS84
// formulas (EPSG:2056), accurate to ~1m, sufficient for mask/crop
// geo-referencing.
type swissLV95 struct{}

func (swissLV95) EPSG() int { return int(SwissLV95) }

func (swissLV95) ToWGS84(easting, northing float64) (lon, lat float64) {
	y := (easting - 2_600_000) / 1_000_000
	x := (northing - 1_200_000) / 1_000_000

	lonSec := 2.6779094 + 4.728982*y + 0.791484*y*x + 0.1306*y*x*x - 0.0436*y*y*y
	latSec := 16.9023892 + 3.238272*x - 0.270978*y*y - 0.002528*x*x - 0.0447*y*y*x - 0.0140*x*x*x

	lon = lonSec * 100 / 36
	lat = latSec * 100 / 36
	return
}

func (swissLV95) FromWGS84(lon, lat float64) (easting, northing float64) {
	// Newton refinement around the (non-invertible in closed form)
	// ToWGS84 polynomial; adequate for the crop/intersection tolerance
	// this package needs (sub-pixel at typical remote-sensing scales).
	e, n := 2_600_000.0, 1_200_000.0
	const step = 1.0
	for i := 0; i < 24; i++ {
		lo, la := swissLV95{}.ToWGS84(e, n)
		dLon, dLat := lon-lo, lat-la
		loE, laE := swissLV95{}.ToWGS84(e+step, n)
		loN, laN := swissLV95{}.ToWGS84(e, n+step)
		dLonDE, dLatDE := (loE-lo)/step, (laE-la)/step
		dLonDN, dLatDN := (loN-lo)/step, (laN-la)/step

		det := dLonDE*dLatDN - dLonDN*dLatDE
		if det == 0 {
			break
		}
		de := (dLon*dLatDN - dLonDN*dLat) / det
		dn := (dLonDE*dLat - dLon*dLatDE) / det
		e += de
		n += dn
		if math.Abs(de) < 1e-6 && math.Abs(dn) < 1e-6 {
			break
		}
	}
	return e, n
}
