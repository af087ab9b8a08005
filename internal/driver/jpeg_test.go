package driver

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusionkit/imgfusion/internal/geo"
	"github.com/fusionkit/imgfusion/internal/pixtype"
	"github.com/fusionkit/imgfusion/internal/raster"
)

func TestJPEGDriver_RoundTripsShapeAndProbe(t *testing.T) {
	d := NewJPEGDriver()
	img, err := raster.New(4, 4, pixtype.GetFullType(pixtype.Uint8, 3))
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetPixel(x, y, 0, 128)
			img.SetPixel(x, y, 1, 128)
			img.SetPixel(x, y, 2, 128)
		}
	}

	path := filepath.Join(t.TempDir(), "test.jpg")
	require.NoError(t, d.Encode(path, img, geo.Info{}))
	assert.True(t, d.Probe(path))

	got, _, err := d.Decode(path, DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, got.Width())
	assert.Equal(t, 4, got.Height())
	assert.Equal(t, 3, got.Channels())
	// JPEG is lossy, but a flat solid-color block should survive
	// close enough to its original value.
	assert.InDelta(t, 128, got.GetPixel(1, 1, 0), 5)
}

func TestJPEGDriver_DefaultsQualityWhenUnset(t *testing.T) {
	d := &JPEGDriver{}
	img, err := raster.New(2, 2, pixtype.GetFullType(pixtype.Uint8, 1))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "test.jpg")
	assert.NoError(t, d.Encode(path, img, geo.Info{}))
}
