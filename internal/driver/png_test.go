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

func TestPNGDriver_RoundTripsRGBLossless(t *testing.T) {
	d := NewPNGDriver()
	img, err := raster.New(2, 2, pixtype.GetFullType(pixtype.Uint8, 3))
	require.NoError(t, err)
	img.SetPixel(0, 0, 0, 10)
	img.SetPixel(0, 0, 1, 20)
	img.SetPixel(0, 0, 2, 30)
	img.SetPixel(1, 1, 0, 250)
	img.SetPixel(1, 1, 1, 251)
	img.SetPixel(1, 1, 2, 252)

	path := filepath.Join(t.TempDir(), "test.png")
	require.NoError(t, d.Encode(path, img, geo.Info{}))
	assert.True(t, d.Probe(path))

	got, _, err := d.Decode(path, DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Channels())
	assert.Equal(t, 10.0, got.GetPixel(0, 0, 0))
	assert.Equal(t, 252.0, got.GetPixel(1, 1, 2))
}

func TestPNGDriver_RoundTripsWithWorldFileSidecar(t *testing.T) {
	d := NewPNGDriver()
	img, err := raster.New(2, 2, pixtype.GetFullType(pixtype.Uint8, 1))
	require.NoError(t, err)

	gi := geo.Info{Geotrans: geo.Affine{A: 5, D: -5, Tx: 100, Ty: 200}}
	path := filepath.Join(t.TempDir(), "test.png")
	require.NoError(t, d.Encode(path, img, gi))

	_, gotGi, err := d.Decode(path, DecodeOptions{})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, gotGi.Geotrans.A, 1e-9)
	assert.InDelta(t, -5.0, gotGi.Geotrans.D, 1e-9)
}
