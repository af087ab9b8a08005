package interval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_UnionDifferenceInvariants(t *testing.T) {
	a := NewSet(Closed(0, 5))
	b := NewSet(Closed(3, 8))

	union := a.Union(b)
	diff1 := union.Difference(b)
	diff2 := a.Difference(b)
	assert.Equal(t, diff2.String(), diff1.String(), "(A ∪ B) \\ B = A \\ B")

	inter := diff1.Intersection(b)
	assert.True(t, inter.IsEmpty(), "(A \\ B) ∩ B = ∅")
}

func TestSet_FullAndEmptyMaskSeeding(t *testing.T) {
	assert.True(t, Full().Contains(0))
	assert.True(t, Full().Contains(-1e300))
	assert.False(t, Empty().Contains(0))
}

func TestSet_DiscretizeBoundsIdempotent(t *testing.T) {
	s, err := ParseSet("(0.1, 2.9) [5, 5.5)")
	require.NoError(t, err)

	d1 := s.DiscretizeBounds()
	d2 := d1.DiscretizeBounds()
	assert.Equal(t, d1.String(), d2.String())
}

// Scenario S3 (spec §8): IntervalSet.fromLiteral("(0.1, 2.9) [5, 5.5)")
// discretized over int domain yields [1,2] ∪ [5,5].
func TestScenarioS3_IntervalDiscretization(t *testing.T) {
	s, err := ParseSet("(0.1, 2.9) [5, 5.5)")
	require.NoError(t, err)

	d := s.DiscretizeBounds()
	ivs := d.Intervals()
	require.Len(t, ivs, 2)
	assert.Equal(t, Interval{Lo: 1, Hi: 2}, ivs[0])
	assert.Equal(t, Interval{Lo: 5, Hi: 5}, ivs[1])
}

func TestParseInterval_Infinity(t *testing.T) {
	iv, err := ParseInterval("[-inf,5]")
	require.NoError(t, err)
	assert.True(t, iv.Contains(-1e300))
	assert.False(t, iv.Contains(6))

	iv2, err := ParseInterval("(0,infinity)")
	require.NoError(t, err)
	assert.True(t, iv2.Contains(1e300))
	assert.False(t, iv2.Contains(0))
}

func TestParseSet_MultipleIntervals(t *testing.T) {
	s, err := ParseSet("[1,2] (3,4)")
	require.NoError(t, err)
	ivs := s.Intervals()
	require.Len(t, ivs, 2)
	assert.True(t, s.Contains(1.5))
	assert.True(t, s.Contains(3.5))
	assert.False(t, s.Contains(3))
}

func TestInterval_AdjacentMerge(t *testing.T) {
	// Touching closed/open boundary of compatible type merges into one.
	s := NewSet(Closed(0, 1), Interval{Lo: 1, Hi: 2, LoOpen: true})
	assert.Len(t, s.Intervals(), 1)
}
