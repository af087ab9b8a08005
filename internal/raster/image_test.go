package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusionkit/imgfusion/internal/interval"
	"github.com/fusionkit/imgfusion/internal/pixtype"
)

func newFilled(t *testing.T, w, h int, ft pixtype.FullType, fill func(x, y, c int) float64) *Image {
	t.Helper()
	im, err := New(w, h, ft)
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := 0; c < ft.Channels; c++ {
				im.SetPixel(x, y, c, fill(x, y, c))
			}
		}
	}
	return im
}

func TestClone_EqualsSharedCopyThenClone(t *testing.T) {
	ft := pixtype.GetFullType(pixtype.Uint8, 1)
	im := newFilled(t, 4, 4, ft, func(x, y, c int) float64 { return float64(x + y) })

	direct, err := im.Clone()
	require.NoError(t, err)

	shared, err := im.SharedCopy(Rect{W: 4, H: 4})
	require.NoError(t, err)
	viaShared, err := shared.Clone()
	require.NoError(t, err)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, direct.GetPixel(x, y, 0), viaShared.GetPixel(x, y, 0))
		}
	}
}

func TestCrop_UncropRoundTrip(t *testing.T) {
	ft := pixtype.GetFullType(pixtype.Uint16, 1)
	im := newFilled(t, 8, 8, ft, func(x, y, c int) float64 { return float64(x*10 + y) })

	require.NoError(t, im.Crop(Rect{X: 2, Y: 2, W: 3, H: 3}))
	assert.Equal(t, 3, im.Width())
	assert.Equal(t, float64(22), im.GetPixel(0, 0, 0))

	im.Uncrop()
	assert.Equal(t, 8, im.Width())
	assert.Equal(t, float64(0), im.GetPixel(0, 0, 0))
}

func TestAddSubtract_Identity(t *testing.T) {
	ft := pixtype.GetFullType(pixtype.Float32, 1)
	a := newFilled(t, 4, 4, ft, func(x, y, c int) float64 { return float64(x + 2*y) })
	b := newFilled(t, 4, 4, ft, func(x, y, c int) float64 { return float64(3*x - y) })

	sum, err := a.Add(b)
	require.NoError(t, err)
	back, err := sum.Subtract(b)
	require.NoError(t, err)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.InDelta(t, a.GetPixel(x, y, 0), back.GetPixel(x, y, 0), 1e-5)
		}
	}
}

func TestAbsDiff_Symmetric(t *testing.T) {
	ft := pixtype.GetFullType(pixtype.Int16, 1)
	a := newFilled(t, 3, 3, ft, func(x, y, c int) float64 { return float64(x - y) })
	b := newFilled(t, 3, 3, ft, func(x, y, c int) float64 { return float64(y*2 - x) })

	ab, err := a.AbsDiff(b)
	require.NoError(t, err)
	ba, err := b.AbsDiff(a)
	require.NoError(t, err)

	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			assert.Equal(t, ab.GetPixel(x, y, 0), ba.GetPixel(x, y, 0))
		}
	}
}

func TestDivideScalar_ZeroRejected(t *testing.T) {
	ft := pixtype.GetFullType(pixtype.Float64, 1)
	a := newFilled(t, 2, 2, ft, func(x, y, c int) float64 { return 1 })
	_, err := a.DivideScalar([]float64{0})
	require.Error(t, err)
}

// TestMaskFromFullAndEmptyInterval exercises Scenario S4's building
// block: a mask synthesized from interval.Full() selects every pixel,
// one from interval.Empty() selects none.
func TestMaskFromFullAndEmptyInterval(t *testing.T) {
	ft := pixtype.GetFullType(pixtype.Uint8, 1)
	im := newFilled(t, 4, 4, ft, func(x, y, c int) float64 { return float64(x + y) })

	full, err := im.CreateSingleChannelMaskFromRange([]interval.Set{interval.Full()}, false, nil)
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, float64(255), full.GetPixel(x, y, 0))
		}
	}

	empty, err := im.CreateSingleChannelMaskFromRange([]interval.Set{interval.Empty()}, false, nil)
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, float64(0), empty.GetPixel(x, y, 0))
		}
	}
}

// TestMaskSynthesisFromParsedRange mirrors the discretization scenario:
// a mask built from the interval set "(0.1, 2.9) [5, 5.5)" marks
// values 1 and 2 valid (inside the open interval's discretized bound)
// and value 5 valid, but 3 and 6 invalid.
func TestMaskSynthesisFromParsedRange(t *testing.T) {
	set, err := interval.ParseSet("(0.1, 2.9) [5, 5.5)")
	require.NoError(t, err)

	ft := pixtype.GetFullType(pixtype.Int32, 1)
	im := newFilled(t, 6, 1, ft, func(x, y, c int) float64 { return float64(x + 1) })

	mask, err := im.CreateSingleChannelMaskFromRange([]interval.Set{set}, false, nil)
	require.NoError(t, err)

	want := map[int]bool{0: true, 1: true, 2: false, 3: false, 4: true, 5: false}
	for x := 0; x < 6; x++ {
		got := mask.GetPixel(x, 0, 0) != 0
		assert.Equal(t, want[x], got, "pixel value %d", x+1)
	}
}

// TestScenarioS4_MaskSynthesis is the literal spec scenario: a
// single-channel uint8 image [[0,1,2],[3,255,127]] masked against the
// valid range [1,127] yields [[0,255,255],[255,0,255]].
func TestScenarioS4_MaskSynthesis(t *testing.T) {
	ft := pixtype.GetFullType(pixtype.Uint8, 1)
	vals := [2][3]float64{{0, 1, 2}, {3, 255, 127}}
	im := newFilled(t, 3, 2, ft, func(x, y, c int) float64 { return vals[y][x] })

	set := interval.NewSet(interval.Closed(1, 127))
	mask, err := im.CreateSingleChannelMaskFromRange([]interval.Set{set}, false, nil)
	require.NoError(t, err)

	want := [2][3]float64{{0, 255, 255}, {255, 0, 255}}
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			assert.Equal(t, want[y][x], mask.GetPixel(x, y, 0))
		}
	}
}

// TestScenarioS5_BilinearFractionalCrop exercises CloneFractional with
// a known 2x2 patch and a half-pixel offset: the bilinear result at
// offset (0.5, 0.5) should equal the unweighted average of the four
// source corners.
func TestScenarioS5_BilinearFractionalCrop(t *testing.T) {
	ft := pixtype.GetFullType(pixtype.Float64, 1)
	im := newFilled(t, 3, 3, ft, func(x, y, c int) float64 {
		vals := [3][3]float64{{0, 10, 20}, {10, 20, 30}, {20, 30, 40}}
		return vals[y][x]
	})

	out, err := im.CloneFractional(0.5, 0.5, 1, 1)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, out.GetPixel(0, 0, 0), 1e-9)
}

func TestCloneFractional_IntegerOffsetDegenerates(t *testing.T) {
	ft := pixtype.GetFullType(pixtype.Uint8, 1)
	im := newFilled(t, 4, 4, ft, func(x, y, c int) float64 { return float64(x + y*4) })

	direct, err := im.CloneRect(Rect{X: 1, Y: 1, W: 2, H: 2})
	require.NoError(t, err)
	frac, err := im.CloneFractional(1, 1, 2, 2)
	require.NoError(t, err)

	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			assert.Equal(t, direct.GetPixel(x, y, 0), frac.GetPixel(x, y, 0))
		}
	}
}

func TestSplitMerge_RoundTrip(t *testing.T) {
	ft := pixtype.GetFullType(pixtype.Uint8, 3)
	im := newFilled(t, 2, 2, ft, func(x, y, c int) float64 { return float64((x+1)*10 + c) })

	parts, err := im.Split()
	require.NoError(t, err)
	require.Len(t, parts, 3)

	merged, err := Merge(parts)
	require.NoError(t, err)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			for c := 0; c < 3; c++ {
				assert.Equal(t, im.GetPixel(x, y, c), merged.GetPixel(x, y, c))
			}
		}
	}
}

func TestConvertTo_Saturates(t *testing.T) {
	ft := pixtype.GetFullType(pixtype.Float32, 1)
	im := newFilled(t, 1, 1, ft, func(x, y, c int) float64 { return 500 })

	out, err := im.ConvertTo(pixtype.Uint8)
	require.NoError(t, err)
	assert.Equal(t, float64(255), out.GetPixel(0, 0, 0))
}

func TestMinimumMaximum_Bounds(t *testing.T) {
	ft := pixtype.GetFullType(pixtype.Int32, 1)
	a := newFilled(t, 2, 2, ft, func(x, y, c int) float64 { return float64(x) })
	b := newFilled(t, 2, 2, ft, func(x, y, c int) float64 { return float64(1 - x) })

	mn, err := a.Minimum(b)
	require.NoError(t, err)
	mx, err := a.Maximum(b)
	require.NoError(t, err)

	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			lo := a.GetPixel(x, y, 0)
			hi := b.GetPixel(x, y, 0)
			if hi < lo {
				lo, hi = hi, lo
			}
			assert.Equal(t, lo, mn.GetPixel(x, y, 0))
			assert.Equal(t, hi, mx.GetPixel(x, y, 0))
		}
	}
}
