package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusionkit/imgfusion/internal/geo"
	"github.com/fusionkit/imgfusion/internal/pixtype"
	"github.com/fusionkit/imgfusion/internal/raster"
)

func indexedImage(t *testing.T, indices [4]int) *raster.Image {
	t.Helper()
	img, err := raster.New(2, 2, pixtype.GetFullType(pixtype.Uint8, 1))
	require.NoError(t, err)
	img.SetPixel(0, 0, 0, float64(indices[0]))
	img.SetPixel(1, 0, 0, float64(indices[1]))
	img.SetPixel(0, 1, 0, float64(indices[2]))
	img.SetPixel(1, 1, 0, float64(indices[3]))
	return img
}

func TestPromoteColorTable_GrayDetection(t *testing.T) {
	img := indexedImage(t, [4]int{0, 1, 0, 1})
	ct := []geo.ColorTableEntry{
		{R: 10, G: 10, B: 10, A: 255},
		{R: 200, G: 200, B: 200, A: 255},
	}
	out, err := promoteColorTable(img, ct)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Channels())
	assert.Equal(t, 10.0, out.GetPixel(0, 0, 0))
	assert.Equal(t, 200.0, out.GetPixel(1, 0, 0))
}

func TestPromoteColorTable_RGBDetectionWhenAnyUsedEntryIsColored(t *testing.T) {
	img := indexedImage(t, [4]int{0, 1, 0, 1})
	ct := []geo.ColorTableEntry{
		{R: 10, G: 20, B: 30, A: 255},
		{R: 200, G: 200, B: 200, A: 255},
	}
	out, err := promoteColorTable(img, ct)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Channels())
	assert.Equal(t, 10.0, out.GetPixel(0, 0, 0))
	assert.Equal(t, 20.0, out.GetPixel(0, 0, 1))
	assert.Equal(t, 30.0, out.GetPixel(0, 0, 2))
}

func TestPromoteColorTable_AlphaDetectionIgnoresUnusedEntries(t *testing.T) {
	// Entry 2 (alpha=0) exists in the table but is never referenced by
	// the image, so it must not affect the detected channel count.
	img := indexedImage(t, [4]int{0, 1, 0, 1})
	ct := []geo.ColorTableEntry{
		{R: 10, G: 10, B: 10, A: 255},
		{R: 200, G: 200, B: 200, A: 255},
		{R: 5, G: 5, B: 5, A: 0},
	}
	out, err := promoteColorTable(img, ct)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Channels(), "unused transparent entry must not force an alpha channel")
}

func TestPromoteColorTable_AlphaDetectionWhenUsedEntryIsTransparent(t *testing.T) {
	img := indexedImage(t, [4]int{0, 1, 0, 1})
	ct := []geo.ColorTableEntry{
		{R: 10, G: 10, B: 10, A: 0},
		{R: 200, G: 200, B: 200, A: 255},
	}
	out, err := promoteColorTable(img, ct)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Channels())
	assert.Equal(t, 10.0, out.GetPixel(0, 0, 0))
	assert.Equal(t, 0.0, out.GetPixel(0, 0, 1))
}

func TestSelectChannels_PicksNamedChannelsInOrder(t *testing.T) {
	img, err := raster.New(1, 1, pixtype.GetFullType(pixtype.Uint8, 4))
	require.NoError(t, err)
	for c := 0; c < 4; c++ {
		img.SetPixel(0, 0, c, float64(c*10))
	}
	out, err := selectChannels(img, []int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Channels())
	assert.Equal(t, 20.0, out.GetPixel(0, 0, 0))
	assert.Equal(t, 0.0, out.GetPixel(0, 0, 1))
}
