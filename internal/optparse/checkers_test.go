package optparse

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusionkit/imgfusion/internal/geo"
	"github.com/fusionkit/imgfusion/internal/interval"
	"github.com/fusionkit/imgfusion/internal/pixtype"
	"github.com/fusionkit/imgfusion/internal/raster"
)

func TestIntChecker_ParsesAndRejects(t *testing.T) {
	v, class, err := IntChecker().Check("42")
	require.NoError(t, err)
	assert.Equal(t, ArgOK, class)
	assert.Equal(t, int64(42), v)

	_, class, err = IntChecker().Check("abc")
	assert.Error(t, err)
	assert.Equal(t, ArgIllegal, class)
}

func TestFloatChecker_AcceptsInfinity(t *testing.T) {
	v, _, err := FloatChecker().Check("infinity")
	require.NoError(t, err)
	assert.True(t, math.IsInf(v.(float64), 1))

	v, _, err = FloatChecker().Check("-inf")
	require.NoError(t, err)
	assert.True(t, math.IsInf(v.(float64), -1))
}

func TestAngleChecker_DefaultsToDegrees(t *testing.T) {
	v, _, err := AngleChecker().Check("180")
	require.NoError(t, err)
	assert.InDelta(t, math.Pi, v.(float64), 1e-9)
}

func TestAngleChecker_AcceptsRadianSuffix(t *testing.T) {
	v, _, err := AngleChecker().Check("1.5rad")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, v.(float64), 1e-9)
}

func TestLongLatChecker_ParsesHemisphereSuffixes(t *testing.T) {
	v, class, err := LongLatChecker().Check("93.2W 45.0N")
	require.NoError(t, err)
	assert.Equal(t, ArgOK, class)
	ll := v.(LongLat)
	assert.InDelta(t, -93.2, ll.Lon, 1e-9)
	assert.InDelta(t, 45.0, ll.Lat, 1e-9)
}

func TestLongLatChecker_RejectsOutOfRange(t *testing.T) {
	_, class, _ := LongLatChecker().Check("200 45")
	assert.Equal(t, ArgIllegal, class)
}

func TestPixelTypeChecker_ParsesAliasesAndChannels(t *testing.T) {
	v, _, err := PixelTypeChecker().Check("Byte")
	require.NoError(t, err)
	assert.Equal(t, pixtype.Uint8, v.(pixtype.FullType).Base)

	v, _, err = PixelTypeChecker().Check("float32x3")
	require.NoError(t, err)
	ft := v.(pixtype.FullType)
	assert.Equal(t, pixtype.Float32, ft.Base)
	assert.Equal(t, 3, ft.Channels)

	v, _, err = PixelTypeChecker().Check("Double")
	require.NoError(t, err)
	assert.Equal(t, pixtype.Float64, v.(pixtype.FullType).Base)
}

func TestIntervalSetChecker_ParsesUnion(t *testing.T) {
	v, _, err := IntervalSetChecker().Check("[0,10] [20,30)")
	require.NoError(t, err)
	s := v.(interval.Set)
	assert.True(t, s.Contains(5))
	assert.True(t, s.Contains(25))
	assert.False(t, s.Contains(15))
}

func TestVectorOfChecker_ParsesCommaAndSpaceSeparated(t *testing.T) {
	v, class, err := VectorOfChecker(IntChecker()).Check("1,2,3")
	require.NoError(t, err)
	assert.Equal(t, ArgOK, class)
	vals := v.([]any)
	require.Len(t, vals, 3)
	assert.Equal(t, int64(2), vals[1])
}

func TestVectorOfChecker_EmptyYieldsIgnore(t *testing.T) {
	v, class, err := VectorOfChecker(IntChecker()).Check("  ")
	require.NoError(t, err)
	assert.Equal(t, ArgIgnore, class)
	assert.Empty(t, v)
}

func TestSizeChecker_ParsesAllGrammarForms(t *testing.T) {
	for _, raw := range []string{"640x480", "(640 480)", "640 * 480", "640,480"} {
		v, class, err := SizeChecker().Check(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, ArgOK, class)
		assert.Equal(t, Size{W: 640, H: 480}, v, raw)
	}
}

func TestRectangleChecker_CornerAndExtent(t *testing.T) {
	v, class, err := RectangleChecker().Check("-x 1 -y 2 -w 3 -h 4")
	require.NoError(t, err)
	assert.Equal(t, ArgOK, class)
	assert.Equal(t, raster.Rect{X: 1, Y: 2, W: 3, H: 4}, v)
}

func TestRectangleChecker_DiagonalCorners(t *testing.T) {
	v, _, err := RectangleChecker().Check("-x (1 4) -y (2 6)")
	require.NoError(t, err)
	assert.Equal(t, raster.Rect{X: 1, Y: 2, W: 3, H: 4}, v)
}

func TestRectangleChecker_CenterAndExtent(t *testing.T) {
	v, _, err := RectangleChecker().Check("--center (5 5) -w 4 -h 4")
	require.NoError(t, err)
	assert.Equal(t, raster.Rect{X: 3, Y: 3, W: 4, H: 4}, v)
}

func TestRectangleChecker_CornerPlusCenter(t *testing.T) {
	v, _, err := RectangleChecker().Check("-x 1 -y 2 --center (3 4)")
	require.NoError(t, err)
	assert.Equal(t, raster.Rect{X: 1, Y: 2, W: 4, H: 4}, v)
}

func TestRectangleChecker_IncompleteSpecFails(t *testing.T) {
	_, class, err := RectangleChecker().Check("-x 1 -y 2")
	assert.Error(t, err)
	assert.Equal(t, ArgIllegal, class)
}

func TestLongLatRectangleChecker_TwoCorners(t *testing.T) {
	v, _, err := LongLatRectangleChecker().Check("--corner (-90 30) --corner (-80 40)")
	require.NoError(t, err)
	r := v.(geo.CoordRect)
	assert.Equal(t, geo.CoordRect{MinX: -90, MinY: 30, MaxX: -80, MaxY: 40}, r)
}

func TestLongLatRectangleChecker_CenterAndExtent(t *testing.T) {
	v, _, err := LongLatRectangleChecker().Check("--center (-85 35) -w 10 -h 10")
	require.NoError(t, err)
	r := v.(geo.CoordRect)
	assert.InDelta(t, -90.0, r.MinX, 1e-9)
	assert.InDelta(t, -80.0, r.MaxX, 1e-9)
	assert.InDelta(t, 30.0, r.MinY, 1e-9)
	assert.InDelta(t, 40.0, r.MaxY, 1e-9)
}

func TestFilenameChecker_RejectsMissingFile(t *testing.T) {
	_, class, err := FilenameChecker(true).Check("/nonexistent/path/does/not/exist.tif")
	assert.Error(t, err)
	assert.Equal(t, ArgIllegal, class)
}
