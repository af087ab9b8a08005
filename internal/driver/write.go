package driver

// WriteImage is the write half of spec §4.D's image container
// contract, implementing three of the §7 recovery specifics:
//   - a non-GeoTIFF write failure retries once as GeoTIFF;
//   - a non-default-prefix write failure retries once with prefix
//     "save_" and GeoTIFF;
//   - a color table that fails to round-trip gets its metadata
//     rewritten without the table.
// The fourth, a sidecar mask file for a no-data value that can't be
// assigned (every representable value of the channel's base type is
// already in use), is provided by AssignNoData and
// WriteNoDataMaskSidecar below; WriteImage does not call either of them.

import (
	"path/filepath"
	"strings"

	"github.com/fusionkit/imgfusion/internal/fuserr"
	"github.com/fusionkit/imgfusion/internal/geo"
	"github.com/fusionkit/imgfusion/internal/logctx"
	"github.com/fusionkit/imgfusion/internal/pixtype"
	"github.com/fusionkit/imgfusion/internal/raster"
)

var log = logctx.Default(false)

// WriteOptions carries the CLI-level naming policy WriteImage needs to
// reproduce the prefix-retry recovery: prefix is the out-prefix this
// write actually used, defaultPrefix is the toolkit's default (an
// empty out-prefix, normally).
type WriteOptions struct {
	Format        string // driver name or "" for auto (by path extension)
	Prefix        string
	DefaultPrefix string
}

func WriteImage(reg *Registry, path string, img *raster.Image, gi geo.Info, opts WriteOptions) error {
	d := chooseDriver(reg, path, opts.Format)

	err := d.Encode(path, img, gi)
	if err == nil {
		return verifyColorTableRoundTrip(reg, path, img, gi, d)
	}

	gtiff := reg.FromExtension("tif")
	if d.Name() != gtiff.Name() {
		retryPath := withExtension(path, "tif")
		if err2 := gtiff.Encode(retryPath, img, gi); err2 == nil {
			log.Warn("write failed, retried as GeoTIFF", "path", path, "retry_path", retryPath, "original_error", err)
			return verifyColorTableRoundTrip(reg, retryPath, img, gi, gtiff)
		}
	}

	if opts.Prefix != opts.DefaultPrefix {
		savePath := withPrefix(path, "save_")
		if err3 := gtiff.Encode(withExtension(savePath, "tif"), img, gi); err3 == nil {
			log.Warn("write failed, retried with save_ prefix and GeoTIFF", "path", path, "retry_path", savePath, "original_error", err)
			return nil
		}
	}

	return fuserr.Wrap(fuserr.Runtime, path, err)
}

func chooseDriver(reg *Registry, path, format string) Driver {
	if format != "" {
		return reg.FromExtension(format)
	}
	if d := reg.FromFile(path); d != Unsupported {
		return d
	}
	return reg.FromExtension("tif")
}

func withExtension(path, ext string) string {
	base := path[:len(path)-len(filepath.Ext(path))]
	return base + "." + ext
}

func withPrefix(path, prefix string) string {
	dir, file := filepath.Split(path)
	return dir + prefix + file
}

// verifyColorTableRoundTrip re-reads the file just written and, if it
// carried a color table that the driver couldn't preserve, rewrites
// the file's metadata without one.
func verifyColorTableRoundTrip(reg *Registry, path string, img *raster.Image, gi geo.Info, d Driver) error {
	if len(gi.ColorTable) == 0 {
		return nil
	}
	_, reread, err := d.Decode(path, DecodeOptions{})
	if err != nil {
		return nil // can't verify; the write itself already succeeded
	}
	if colorTablesEqual(gi.ColorTable, reread.ColorTable) {
		return nil
	}
	log.Warn("color table did not survive the write, rewriting without it", "path", path)
	stripped := gi
	stripped.ColorTable = nil
	return d.Encode(path, img, stripped)
}

func colorTablesEqual(a, b []geo.ColorTableEntry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// AssignNoData picks a no-data sentinel for channel ch of img from the
// base type's boundary values (min, then max), returning ok=false if
// every candidate value is already present somewhere in the channel —
// the §7 "no no-data value is assignable" case.
func AssignNoData(img *raster.Image, ch int) (value float64, ok bool) {
	base := img.BaseType()
	candidates := []float64{base.RangeMin(), base.RangeMax()}
	if base == pixtype.Float32 || base == pixtype.Float64 {
		candidates = append(candidates, -1)
	}
	used := make(map[float64]bool, 2)
	w, h := img.Width(), img.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			used[img.GetPixel(x, y, ch)] = true
		}
	}
	for _, c := range candidates {
		if !used[c] {
			return c, true
		}
	}
	return 0, false
}

// WriteNoDataMaskSidecar writes validMask (255 = valid, 0 = no-data)
// next to path as path's stem + "_mask" + its extension, the §7
// fallback when AssignNoData fails.
func WriteNoDataMaskSidecar(reg *Registry, path string, validMask *raster.Image, d Driver) (string, error) {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	maskPath := base + "_mask" + ext
	if err := d.Encode(maskPath, validMask, geo.Info{}); err != nil {
		return "", err
	}
	log.Warn("no no-data value assignable, wrote validity mask sidecar", "path", path, "mask_path", maskPath)
	return maskPath, nil
}
