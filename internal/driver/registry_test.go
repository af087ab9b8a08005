package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fusionkit/imgfusion/internal/geo"
)

func TestRegistry_FromExtension(t *testing.T) {
	reg := Default()
	assert.Equal(t, "GTiff", reg.FromExtension("tif").Name())
	assert.Equal(t, "GTiff", reg.FromExtension(".TIFF").Name())
	assert.Equal(t, "PNG", reg.FromExtension("png").Name())
	assert.Equal(t, "JPEG", reg.FromExtension("jpeg").Name())
	assert.Equal(t, "JPEG", reg.FromExtension("jpg").Name())
	assert.Equal(t, "WEBP", reg.FromExtension("webp").Name())
	assert.Equal(t, Unsupported, reg.FromExtension("bmp"))
}

func TestRegistry_FromFile_UnknownExtensionFallsBackToUnsupported(t *testing.T) {
	reg := Default()
	assert.Equal(t, Unsupported, reg.FromFile("/nonexistent/path/file.bmp"))
}

func TestUnsupportedDriver_DecodeAndEncodeError(t *testing.T) {
	_, _, err := Unsupported.Decode("x.bmp", DecodeOptions{})
	assert.Error(t, err)
	assert.Error(t, Unsupported.Encode("x.bmp", nil, geo.Info{}))
}
