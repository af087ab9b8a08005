// Package driver implements the raster driver registry of spec §4.K:
// an enumerable set of named codecs, each knowing its extensions, that
// can decode a file into a raster.Image + geo.Info pair and encode the
// reverse.
//
// Grounded on the teacher's internal/cog (GeoTIFF IFD/tile/TFW/LZW
// machinery, generalized here from read-only COG tile access to a
// full read+write, whole-image codec across the pixel-type lattice)
// and internal/encode (the per-format Encoder/decode split, generalized
// from tile bytes to whole georeferenced images).
package driver

import (
	"strings"

	"github.com/fusionkit/imgfusion/internal/fuserr"
	"github.com/fusionkit/imgfusion/internal/geo"
	"github.com/fusionkit/imgfusion/internal/raster"
)

// DecodeOptions narrows what Decode reads, mirroring spec §4.D's
// read(path, channels, crop, flipH, flipV, ignoreColorTable, ...).
type DecodeOptions struct {
	Channels          []int
	Crop              raster.Rect
	FlipH, FlipV      bool
	IgnoreColorTable  bool
}

// Driver is one registered raster codec.
type Driver interface {
	Name() string
	LongName() string
	DefaultExtension() string
	Extensions() []string

	// Probe reports whether the file at path looks like this driver's
	// format (magic-byte sniff), without fully decoding it.
	Probe(path string) bool

	Decode(path string, opts DecodeOptions) (*raster.Image, geo.Info, error)
	Encode(path string, img *raster.Image, gi geo.Info) error
}

// unsupportedDriver is the singleton sentinel spec §4.K names.
type unsupportedDriver struct{}

func (unsupportedDriver) Name() string              { return "unsupported" }
func (unsupportedDriver) LongName() string          { return "Unsupported format" }
func (unsupportedDriver) DefaultExtension() string  { return "" }
func (unsupportedDriver) Extensions() []string      { return nil }
func (unsupportedDriver) Probe(string) bool         { return false }
func (unsupportedDriver) Decode(path string, _ DecodeOptions) (*raster.Image, geo.Info, error) {
	return nil, geo.Info{}, fuserr.FormatErrorf("no driver can decode %q", path)
}
func (unsupportedDriver) Encode(path string, _ *raster.Image, _ geo.Info) error {
	return fuserr.FormatErrorf("no driver can encode %q", path)
}

// Unsupported is the singleton returned when no registered driver
// claims a file or extension.
var Unsupported Driver = unsupportedDriver{}

// Registry is the enumerable set of raster drivers, spec §4.K.
type Registry struct {
	drivers []Driver
}

// NewRegistry builds a registry with the given drivers registered in
// order; FromFile probes them in this order.
func NewRegistry(drivers ...Driver) *Registry {
	return &Registry{drivers: drivers}
}

// Default builds the registry with every built-in driver: GTiff, PNG,
// JPEG, WebP — per spec §4.K, in that probing priority.
func Default() *Registry {
	return NewRegistry(NewGTiffDriver(), NewPNGDriver(), NewJPEGDriver(), NewWebPDriver())
}

// All returns the registered drivers in registration order.
func (r *Registry) All() []Driver { return r.drivers }

// FromExtension maps a textual suffix (case-insensitive, dot optional)
// to a driver, or Unsupported if none claims it.
func (r *Registry) FromExtension(ext string) Driver {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, d := range r.drivers {
		for _, e := range d.Extensions() {
			if strings.ToLower(strings.TrimPrefix(e, ".")) == ext {
				return d
			}
		}
	}
	return Unsupported
}

// FromFile probes path, preferring an extension match and falling back
// to content sniffing when the extension is missing or unrecognized.
func (r *Registry) FromFile(path string) Driver {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		if d := r.FromExtension(path[i+1:]); d != Unsupported {
			return d
		}
	}
	for _, d := range r.drivers {
		if d.Probe(path) {
			return d
		}
	}
	return Unsupported
}
