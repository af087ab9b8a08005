package driver

// GeoTIFF GeoKey parsing and construction, plus the TFW sidecar
// fallback, grounded on the teacher's internal/cog/geotags.go and
// internal/cog/tfw.go, generalized from the teacher's Swiss/WebMercator
// read-only path to the spec's geo.Info (arbitrary EPSG, read+write).

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fusionkit/imgfusion/internal/geo"
)

const (
	gkModelType       = 1024
	gkGeographicType  = 2048
	gkProjectedCSType = 3072
)

// parseEPSG extracts an EPSG code from a parsed GeoKey directory.
func parseEPSG(keys []uint16) int {
	if len(keys) < 4 {
		return 0
	}
	numKeys := int(keys[3])
	for i := 0; i < numKeys; i++ {
		base := 4 + i*4
		if base+3 >= len(keys) {
			break
		}
		keyID := keys[base]
		valueOffset := keys[base+3]
		switch keyID {
		case gkProjectedCSType, gkGeographicType:
			if valueOffset > 0 && valueOffset != 32767 {
				return int(valueOffset)
			}
		}
	}
	return 0
}

// buildGeoKeys constructs a minimal GeoKey directory carrying just the
// EPSG code, projected or geographic depending on epsg.
func buildGeoKeys(epsg int) []uint16 {
	modelType := uint16(1) // projected
	csKey := uint16(gkProjectedCSType)
	if epsg == 4326 {
		modelType = 2 // geographic
		csKey = gkGeographicType
	}
	return []uint16{
		1, 1, 0, 2, // header: version 1.1.0, 2 keys
		gkModelType, 0, 1, modelType,
		csKey, 0, 1, uint16(epsg),
	}
}

// geoInfoFromIFD fills in the georeferencing half of a geo.Info from a
// parsed ifd, falling back to a TFW sidecar when no GeoTIFF tags are
// present.
func geoInfoFromIFD(path string, f ifd) geo.Info {
	var gi geo.Info
	gi.Width, gi.Height = int(f.Width), int(f.Height)
	if len(f.ModelPixelScale) >= 2 && len(f.ModelTiepoint) >= 6 {
		sx, sy := f.ModelPixelScale[0], f.ModelPixelScale[1]
		originX := f.ModelTiepoint[3] - f.ModelTiepoint[0]*sx
		originY := f.ModelTiepoint[4] + f.ModelTiepoint[1]*sy
		gi.Geotrans = geo.Affine{A: sx, D: -sy, Tx: originX, Ty: originY}
	}
	gi.GeotransSRS = parseEPSG(f.GeoKeys)

	if !gi.HasGeotrans() {
		if tfwPath := findTFW(path); tfwPath != "" {
			if tfw, err := parseTFW(tfwPath); err == nil {
				gi.Geotrans = tfw.toAffine()
			}
		}
	}
	if gi.GeotransSRS == 0 && gi.HasGeotrans() {
		gi.GeotransSRS = inferEPSG(gi)
	}
	return gi
}

// tfwParams holds the six TFW lines (spec-equivalent of cog.TFW).
type tfwParams struct {
	PixelSizeX, RotationY, RotationX, PixelSizeY, OriginX, OriginY float64
}

func parseTFW(path string) (*tfwParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading TFW %s: %w", path, err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) < 6 {
		return nil, fmt.Errorf("TFW %s: expected 6 lines, got %d", path, len(lines))
	}
	vals := make([]float64, 6)
	for i := 0; i < 6; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(lines[i]), 64)
		if err != nil {
			return nil, fmt.Errorf("TFW %s line %d: %w", path, i+1, err)
		}
		vals[i] = v
	}
	t := &tfwParams{PixelSizeX: vals[0], RotationY: vals[1], RotationX: vals[2], PixelSizeY: vals[3], OriginX: vals[4], OriginY: vals[5]}
	if t.RotationX != 0 || t.RotationY != 0 {
		return nil, fmt.Errorf("TFW %s: rotated world files are not supported", path)
	}
	return t, nil
}

func findTFW(tiffPath string) string { return findWorldFile(tiffPath, ".tfw", ".tifw") }

// findWorldFile looks for a world-file sidecar next to path, trying
// each of exts (and their uppercase form) plus the format-agnostic
// ".wld" that GDAL and most GIS tools also recognize.
func findWorldFile(path string, exts ...string) string {
	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]
	all := append(append([]string{}, exts...), ".wld")
	for _, c := range all {
		for _, p := range []string{base + c, base + strings.ToUpper(c)} {
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

// toAffine converts TFW's pixel-center origin to the corner-origin
// convention geo.Affine uses.
func (t *tfwParams) toAffine() geo.Affine {
	sx, sy := math.Abs(t.PixelSizeX), math.Abs(t.PixelSizeY)
	return geo.Affine{
		A: sx, D: -sy,
		Tx: t.OriginX - sx/2,
		Ty: t.OriginY + sy/2,
	}
}

// writeTFW writes a TFW sidecar for gi next to path.
func writeTFW(path string, gi geo.Info) error { return writeWorldFile(path, ".tfw", gi) }

// writeWorldFile writes a six-line world-file sidecar (PNG/JPEG/WebP's
// equivalent of a TIFF's ModelTiepoint/ModelPixelScale tags) with the
// given extension next to path.
func writeWorldFile(path, ext string, gi geo.Info) error {
	a := gi.Geotrans
	lines := []string{
		formatG(a.A),
		"0",
		"0",
		formatG(-a.D),
		formatG(a.Tx + a.A/2),
		formatG(a.Ty + a.D/2),
	}
	origExt := filepath.Ext(path)
	base := path[:len(path)-len(origExt)]
	return os.WriteFile(base+ext, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
}

func formatG(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// inferEPSG guesses an EPSG code from the coordinate ranges, grounded
// on the teacher's inferEPSG heuristic (WGS84 / Swiss LV95 / Web
// Mercator range checks).
func inferEPSG(gi geo.Info) int {
	r := gi.ProjRect()
	if r.MinX >= -180 && r.MaxX <= 360 && r.MinY >= -90 && r.MaxY <= 90 {
		return 4326
	}
	if r.MinX >= 2400000 && r.MaxX <= 2900000 && r.MinY >= 1000000 && r.MaxY <= 1400000 {
		return 2056
	}
	if math.Abs(r.MinX) <= 20037508.34 && math.Abs(r.MaxX) <= 20037508.34 {
		return 3857
	}
	return 4326
}
