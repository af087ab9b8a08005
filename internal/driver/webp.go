package driver

// WebPDriver, grounded on the teacher's internal/encode/webp.go and
// webp_stub.go (a CGo-native-libwebp encoder behind a build tag, with
// a decode path in decode.go already using the pure-Go
// github.com/gen2brain/webp). This driver standardizes on
// gen2brain/webp for both directions so the module needs no CGo build
// tag split at all.

import (
	"bytes"
	"os"

	"github.com/gen2brain/webp"

	"github.com/fusionkit/imgfusion/internal/fuserr"
	"github.com/fusionkit/imgfusion/internal/geo"
	"github.com/fusionkit/imgfusion/internal/raster"
)

type WebPDriver struct {
	Quality float32 // 0-100, default 85
}

func NewWebPDriver() *WebPDriver { return &WebPDriver{Quality: 85} }

func (WebPDriver) Name() string             { return "WEBP" }
func (WebPDriver) LongName() string         { return "WebP" }
func (WebPDriver) DefaultExtension() string { return "webp" }
func (WebPDriver) Extensions() []string     { return []string{"webp"} }

func (WebPDriver) Probe(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	var hdr [12]byte
	if _, err := f.Read(hdr[:]); err != nil {
		return false
	}
	return bytes.Equal(hdr[0:4], []byte("RIFF")) && bytes.Equal(hdr[8:12], []byte("WEBP"))
}

func (WebPDriver) Decode(path string, opts DecodeOptions) (*raster.Image, geo.Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, geo.Info{}, fuserr.Wrap(fuserr.Runtime, path, err)
	}
	src, err := webp.Decode(bytes.NewReader(data))
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
	gi := geoInfoFromWorldFile(path, img.Width(), img.Height(), ".wpw")
	gi.Filename = path
	return img, gi, nil
}

func (d WebPDriver) Encode(path string, img *raster.Image, gi geo.Info) error {
	quality := d.Quality
	if quality <= 0 {
		quality = 85
	}
	var buf bytes.Buffer
	if err := webp.Encode(&buf, imageToStdlib(img), &webp.Options{Quality: quality}); err != nil {
		return fuserr.Wrap(fuserr.FileFormat, path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fuserr.Wrap(fuserr.Runtime, path, err)
	}
	if gi.HasGeotrans() {
		return writeWorldFile(path, ".wpw", gi)
	}
	return nil
}
