package driver

// JPEGDriver, grounded on the teacher's internal/encode/jpeg.go
// (image/jpeg, quality knob defaulting to 85), generalized the same
// way as PNGDriver.

import (
	"bytes"
	"image/jpeg"
	"os"

	"github.com/fusionkit/imgfusion/internal/fuserr"
	"github.com/fusionkit/imgfusion/internal/geo"
	"github.com/fusionkit/imgfusion/internal/raster"
)

type JPEGDriver struct {
	Quality int // 1-100, default 85
}

func NewJPEGDriver() *JPEGDriver { return &JPEGDriver{Quality: 85} }

func (JPEGDriver) Name() string             { return "JPEG" }
func (JPEGDriver) LongName() string         { return "JPEG (JFIF)" }
func (JPEGDriver) DefaultExtension() string { return "jpg" }
func (JPEGDriver) Extensions() []string     { return []string{"jpg", "jpeg"} }

func (JPEGDriver) Probe(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	var sig [3]byte
	if _, err := f.Read(sig[:]); err != nil {
		return false
	}
	return sig[0] == 0xFF && sig[1] == 0xD8 && sig[2] == 0xFF
}

func (JPEGDriver) Decode(path string, opts DecodeOptions) (*raster.Image, geo.Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, geo.Info{}, fuserr.Wrap(fuserr.Runtime, path, err)
	}
	src, err := jpeg.Decode(bytes.NewReader(data))
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
	gi := geoInfoFromWorldFile(path, img.Width(), img.Height(), ".jgw")
	gi.Filename = path
	return img, gi, nil
}

func (d JPEGDriver) Encode(path string, img *raster.Image, gi geo.Info) error {
	quality := d.Quality
	if quality <= 0 {
		quality = 85
	}
	f, err := os.Create(path)
	if err != nil {
		return fuserr.Wrap(fuserr.Runtime, path, err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, imageToStdlib(img), &jpeg.Options{Quality: quality}); err != nil {
		return fuserr.Wrap(fuserr.FileFormat, path, err)
	}
	if gi.HasGeotrans() {
		return writeWorldFile(path, ".jgw", gi)
	}
	return nil
}
