package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusionkit/imgfusion/internal/geo"
	"github.com/fusionkit/imgfusion/internal/pixtype"
	"github.com/fusionkit/imgfusion/internal/raster"
)

func TestGTiffDriver_RoundTripsAcrossPixelTypeLattice(t *testing.T) {
	d := NewGTiffDriver()
	lattice := []struct {
		base     pixtype.BaseType
		channels int
	}{
		{pixtype.Uint8, 1},
		{pixtype.Uint8, 3},
		{pixtype.Uint8, 4},
		{pixtype.Int8, 1},
		{pixtype.Uint16, 2},
		{pixtype.Int16, 1},
		{pixtype.Int32, 1},
		{pixtype.Float32, 1},
		{pixtype.Float64, 2},
	}

	for _, lt := range lattice {
		img, err := raster.New(3, 2, pixtype.GetFullType(lt.base, lt.channels))
		require.NoError(t, err)
		val := 1.0
		for y := 0; y < 2; y++ {
			for x := 0; x < 3; x++ {
				for c := 0; c < lt.channels; c++ {
					img.SetPixel(x, y, c, val)
					val++
				}
			}
		}

		gi := geo.Info{
			Width: 3, Height: 2, Base: lt.base, Channels: lt.channels,
			Geotrans:    geo.Affine{A: 10, D: -10, Tx: 500000, Ty: 4000000},
			GeotransSRS: 32633,
		}

		path := filepath.Join(t.TempDir(), "test.tif")
		require.NoError(t, d.Encode(path, img, gi), "encoding %s x%d", lt.base, lt.channels)

		got, gotGi, err := d.Decode(path, DecodeOptions{})
		require.NoError(t, err, "decoding %s x%d", lt.base, lt.channels)
		assert.Equal(t, lt.base, got.BaseType())
		assert.Equal(t, lt.channels, got.Channels())

		for y := 0; y < 2; y++ {
			for x := 0; x < 3; x++ {
				for c := 0; c < lt.channels; c++ {
					assert.Equal(t, img.GetPixel(x, y, c), got.GetPixel(x, y, c),
						"%s x%d pixel (%d,%d,%d)", lt.base, lt.channels, x, y, c)
				}
			}
		}

		assert.InDelta(t, gi.Geotrans.A, gotGi.Geotrans.A, 1e-9)
		assert.InDelta(t, gi.Geotrans.D, gotGi.Geotrans.D, 1e-9)
		assert.InDelta(t, gi.Geotrans.Tx, gotGi.Geotrans.Tx, 1e-9)
		assert.InDelta(t, gi.Geotrans.Ty, gotGi.Geotrans.Ty, 1e-9)
		assert.Equal(t, 32633, gotGi.GeotransSRS)
	}
}

func TestGTiffDriver_RoundTripsColorTableAndNoData(t *testing.T) {
	d := NewGTiffDriver()
	img, err := raster.New(2, 2, pixtype.GetFullType(pixtype.Uint8, 1))
	require.NoError(t, err)
	img.SetPixel(0, 0, 0, 0)
	img.SetPixel(1, 0, 0, 1)
	img.SetPixel(0, 1, 0, 2)
	img.SetPixel(1, 1, 0, 0)

	nd := 9.0
	gi := geo.Info{
		Width: 2, Height: 2, Base: pixtype.Uint8, Channels: 1,
		NoData: []*float64{&nd},
		ColorTable: []geo.ColorTableEntry{
			{R: 10, G: 10, B: 10, A: 255},
			{R: 20, G: 20, B: 20, A: 255},
			{R: 30, G: 30, B: 30, A: 255},
		},
	}

	path := filepath.Join(t.TempDir(), "indexed.tif")
	require.NoError(t, d.Encode(path, img, gi))

	got, gotGi, err := d.Decode(path, DecodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, gi.ColorTable, gotGi.ColorTable)
	v, ok := gotGi.NoDataAt(0)
	require.True(t, ok)
	assert.Equal(t, 9.0, v)
	assert.Equal(t, 0.0, got.GetPixel(0, 0, 0))
}

func TestGTiffDriver_Probe(t *testing.T) {
	d := NewGTiffDriver()
	img, err := raster.New(1, 1, pixtype.GetFullType(pixtype.Uint8, 1))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "probe.tif")
	require.NoError(t, d.Encode(path, img, geo.Info{}))
	assert.True(t, d.Probe(path))

	other := filepath.Join(t.TempDir(), "notreally.tif")
	require.NoError(t, os.WriteFile(other, []byte("not a tiff"), 0o644))
	assert.False(t, d.Probe(other))
}
