package warp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusionkit/imgfusion/internal/geo"
	"github.com/fusionkit/imgfusion/internal/pixtype"
	"github.com/fusionkit/imgfusion/internal/raster"
)

func wgs84Info(w, h int, originLon, originLat, pixelDeg float64) geo.Info {
	return geo.Info{
		Width:    w,
		Height:   h,
		Base:     pixtype.Uint8,
		Channels: 1,
		Geotrans: geo.Affine{A: pixelDeg, D: -pixelDeg, Tx: originLon, Ty: originLat},
		GeotransSRS: int(geo.WGS84),
	}
}

func TestWarp_IdentityExact(t *testing.T) {
	ft := pixtype.GetFullType(pixtype.Uint8, 1)
	src, err := raster.New(4, 4, ft)
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.SetPixel(x, y, 0, float64(x*10+y))
		}
	}
	g := wgs84Info(4, 4, 0, 0, 0.01)

	out, outGeo, err := Warp(src, g, g, Nearest)
	require.NoError(t, err)
	assert.Equal(t, 4, outGeo.Width)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, src.GetPixel(x, y, 0), out.GetPixel(x, y, 0))
		}
	}
}

func TestWarp_RejectsMissingGeotrans(t *testing.T) {
	ft := pixtype.GetFullType(pixtype.Uint8, 1)
	src, err := raster.New(2, 2, ft)
	require.NoError(t, err)
	g := wgs84Info(2, 2, 0, 0, 0.01)
	bad := geo.Info{Width: 2, Height: 2}

	_, _, err = Warp(src, bad, g, Nearest)
	require.Error(t, err)
}

func TestKernelSamples_WeightsSumToOne(t *testing.T) {
	for _, m := range []Method{Nearest, Bilinear, Cubic, CubicSpline} {
		samples := kernelSamples(m, 1.3, 2.7)
		var sum float64
		for _, s := range samples {
			sum += s.weight
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "method %d", m)
	}
}
