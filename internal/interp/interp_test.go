package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusionkit/imgfusion/internal/pixtype"
	"github.com/fusionkit/imgfusion/internal/raster"
)

func filled(t *testing.T, v float64) *raster.Image {
	t.Helper()
	im, err := raster.New(2, 2, pixtype.GetFullType(pixtype.Uint8, 1))
	require.NoError(t, err)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			im.SetPixel(x, y, 0, v)
		}
	}
	return im
}

func maskFilled(t *testing.T, v float64) *raster.Image {
	t.Helper()
	im, err := raster.New(2, 2, pixtype.GetFullType(pixtype.Uint8, 1))
	require.NoError(t, err)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			im.SetPixel(x, y, 0, v)
		}
	}
	return im
}

// TestInterpolate_ClearInputInvariance checks that a clear (unflagged,
// valid) pixel at the target date passes through unchanged with state
// StateClearAllAlong, regardless of what other dates hold.
func TestInterpolate_ClearInputInvariance(t *testing.T) {
	series := Series{
		Dates:  []int{1, 5, 10},
		Images: []*raster.Image{filled(t, 1), filled(t, 50), filled(t, 99)},
	}
	value, state, err := Interpolate(series, 5, Options{DateLimit: 100, Concurrency: 2})
	require.NoError(t, err)
	assert.Equal(t, float64(50), value.GetPixel(0, 0, 0))
	assert.Equal(t, float64(StateClearAllAlong), state.GetPixel(0, 0, 0))
}

// TestInterpolate_MonotoneTimeConsistency checks that interpolating
// halfway between two donors yields the midpoint value, and that the
// result is monotone in target date between the two donor values.
func TestInterpolate_MonotoneTimeConsistency(t *testing.T) {
	series := Series{
		Dates:      []int{0, 10},
		Images:     []*raster.Image{filled(t, 0), filled(t, 100)},
		InterpMask: []*raster.Image{maskFilled(t, 0), maskFilled(t, 0)},
	}
	prev := -1.0
	for _, target := range []int{0, 2, 5, 8, 10} {
		value, state, err := Interpolate(series, target, Options{DateLimit: 100, InterpolateInvalid: true, Concurrency: 2})
		require.NoError(t, err)
		wantState := float64(StateSuccessful)
		if target == 0 || target == 10 {
			wantState = float64(StateClearAllAlong)
		}
		assert.Equal(t, wantState, state.GetPixel(0, 0, 0))
		got := value.GetPixel(0, 0, 0)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
	value, _, err := Interpolate(series, 5, Options{DateLimit: 100, InterpolateInvalid: true, Concurrency: 2})
	require.NoError(t, err)
	assert.InDelta(t, 50, value.GetPixel(0, 0, 0), 1e-9)
}

// TestInterpolate_StateEncodingExactlyFourValues ensures the emitted
// state bitfield only ever takes the four documented values.
func TestInterpolate_StateEncodingExactlyFourValues(t *testing.T) {
	allowed := map[float64]bool{0: true, 64: true, 128: true, 192: true}

	series := Series{
		Dates:      []int{1, 2, 3, 10},
		Images:     []*raster.Image{filled(t, 1), filled(t, 2), filled(t, 3), filled(t, 10)},
		InterpMask: []*raster.Image{maskFilled(t, 0), maskFilled(t, 255), maskFilled(t, 0), maskFilled(t, 0)},
	}
	for _, target := range []int{1, 2, 3, 5, 10, 50} {
		_, state, err := Interpolate(series, target, Options{DateLimit: 3, Concurrency: 1})
		require.NoError(t, err)
		for y := 0; y < 2; y++ {
			for x := 0; x < 2; x++ {
				assert.True(t, allowed[state.GetPixel(x, y, 0)])
			}
		}
	}
}

func TestInterpolate_NoDonorWithinLimitFails(t *testing.T) {
	series := Series{
		Dates:      []int{1, 100},
		Images:     []*raster.Image{filled(t, 1), filled(t, 100)},
		InterpMask: []*raster.Image{maskFilled(t, 255), maskFilled(t, 0)},
	}
	_, state, err := Interpolate(series, 1, Options{DateLimit: 5, Concurrency: 1})
	require.NoError(t, err)
	assert.Equal(t, float64(StateNeededFailed), state.GetPixel(0, 0, 0))
}

func TestInterpolate_SingleSidedDonorSucceeds(t *testing.T) {
	series := Series{
		Dates:      []int{1, 5},
		Images:     []*raster.Image{filled(t, 1), filled(t, 77)},
		InterpMask: []*raster.Image{maskFilled(t, 255), maskFilled(t, 0)},
	}
	value, state, err := Interpolate(series, 1, Options{DateLimit: 10, Concurrency: 1})
	require.NoError(t, err)
	assert.Equal(t, float64(StateSuccessful), state.GetPixel(0, 0, 0))
	assert.Equal(t, float64(77), value.GetPixel(0, 0, 0))
}

func TestInterpolate_OnlyDonorInvalidWithoutInterpolateInvalidStaysNoData(t *testing.T) {
	series := Series{
		Dates:     []int{1, 5},
		Images:    []*raster.Image{filled(t, 0), filled(t, 77)},
		ValidMask: []*raster.Image{maskFilled(t, 0), maskFilled(t, 255)},
	}
	// InterpolateInvalid is false, so an invalid-but-unflagged pixel is
	// not even attempted: it keeps its own value and stays no-data.
	value, state, err := Interpolate(series, 1, Options{DateLimit: 10, Concurrency: 1})
	require.NoError(t, err)
	assert.Equal(t, float64(StateNoData), state.GetPixel(0, 0, 0))
	assert.Equal(t, float64(0), value.GetPixel(0, 0, 0))
}

func TestInterpolate_RejectsNegativeDateLimit(t *testing.T) {
	series := Series{Dates: []int{1}, Images: []*raster.Image{filled(t, 1)}}
	_, _, err := Interpolate(series, 1, Options{DateLimit: -1})
	require.Error(t, err)
}

func TestInterpolate_RejectsSizeMismatch(t *testing.T) {
	a := filled(t, 1)
	b, err := raster.New(3, 3, pixtype.GetFullType(pixtype.Uint8, 1))
	require.NoError(t, err)
	series := Series{Dates: []int{1, 2}, Images: []*raster.Image{a, b}}
	_, _, err = Interpolate(series, 1, Options{})
	require.Error(t, err)
}
