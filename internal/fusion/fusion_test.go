package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusionkit/imgfusion/internal/collection"
	"github.com/fusionkit/imgfusion/internal/pixtype"
	"github.com/fusionkit/imgfusion/internal/raster"
)

func TestNullEngine_PredictsNearestDate(t *testing.T) {
	ft := pixtype.GetFullType(pixtype.Uint8, 1)
	mri := collection.New[*raster.Image]()

	mk := func(v float64) *raster.Image {
		im, err := raster.New(1, 1, ft)
		require.NoError(t, err)
		im.SetPixel(0, 0, 0, v)
		return im
	}
	mri.Set("high", 10, mk(10))
	mri.Set("high", 20, mk(20))

	var e Engine = NewNullEngine()
	e.SrcImages(mri)
	require.NoError(t, e.ProcessOptions(Options{HighResTag: "high"}))
	require.NoError(t, e.Predict(12, nil))

	out, err := e.OutputImage()
	require.NoError(t, err)
	assert.Equal(t, float64(10), out.GetPixel(0, 0, 0))
}

func TestNullEngine_RequiresSrcImagesBeforePredict(t *testing.T) {
	e := NewNullEngine()
	require.NoError(t, e.ProcessOptions(Options{HighResTag: "high"}))
	err := e.Predict(1, nil)
	require.Error(t, err)
}
