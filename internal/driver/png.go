package driver

// PNGDriver, grounded on the teacher's internal/encode/png.go
// (image/png), generalized from tile bytes to whole files with an
// optional .pgw/.wld world-file sidecar for georeferencing. Encodes at
// png.BestCompression.

import (
	"bytes"
	"image/png"
	"os"

	"github.com/fusionkit/imgfusion/internal/fuserr"
	"github.com/fusionkit/imgfusion/internal/geo"
	"github.com/fusionkit/imgfusion/internal/raster"
)

type PNGDriver struct{}

func NewPNGDriver() *PNGDriver { return &PNGDriver{} }

func (PNGDriver) Name() string             { return "PNG" }
func (PNGDriver) LongName() string         { return "Portable Network Graphics" }
func (PNGDriver) DefaultExtension() string { return "png" }
func (PNGDriver) Extensions() []string     { return []string{"png"} }

func (PNGDriver) Probe(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	var sig [8]byte
	if _, err := f.Read(sig[:]); err != nil {
		return false
	}
	return bytes.Equal(sig[:], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})
}

func (PNGDriver) Decode(path string, opts DecodeOptions) (*raster.Image, geo.Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, geo.Info{}, fuserr.Wrap(fuserr.Runtime, path, err)
	}
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, geo.Info{}, fuserr.Wrap(fuserr.FileFormat, path, err)
	}
	img, err := stdlibToImage(src)
	if err != nil {
		return nil, geo.Info{}, err
	}
	if !opts.Crop.Empty() {
		if err := img.Crop(opts.Crop); err != nil {
			return nil, geo.Info{}, err
		}
	}
	if opts.FlipH || opts.FlipV {
		flipInPlace(img, opts.FlipH, opts.FlipV)
	}
	gi := geoInfoFromWorldFile(path, img.Width(), img.Height(), ".pgw")
	gi.Filename = path
	return img, gi, nil
}

func (PNGDriver) Encode(path string, img *raster.Image, gi geo.Info) error {
	f, err := os.Create(path)
	if err != nil {
		return fuserr.Wrap(fuserr.Runtime, path, err)
	}
	defer f.Close()
	enc := &png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(f, imageToStdlib(img)); err != nil {
		return fuserr.Wrap(fuserr.FileFormat, path, err)
	}
	if gi.HasGeotrans() {
		return writeWorldFile(path, ".pgw", gi)
	}
	return nil
}
