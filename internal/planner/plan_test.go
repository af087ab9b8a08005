package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobMap(jobs []Job) map[string][]int {
	out := map[string][]int{}
	for _, j := range jobs {
		out[keyString(j.Key.Dates)] = j.PredictDates
	}
	return out
}

// TestScenarioS1_DoublePairJob is the literal spec scenario: high
// dates {1,7}, low dates {1,3,4,7,10,15}, minPairs=1, no orphan
// removal, double-pair mode. Expected jobs: {7}->[10,15],
// {1,7}->[3,4].
func TestScenarioS1_DoublePairJob(t *testing.T) {
	high := []int{1, 7}
	low := []int{1, 3, 4, 7, 10, 15}

	jobs, err := Plan(high, low, Options{MinPairs: 1})
	require.NoError(t, err)

	got := jobMap(jobs)
	assert.Equal(t, []int{10, 15}, got["7"])
	assert.Equal(t, []int{3, 4}, got["1,7"])
	assert.Len(t, jobs, 2)
}

// TestScenarioS2_SinglePairJob is the same inputs with
// singlePairMode=true. Expected jobs: {1}->[3,4], {7}->[3,4,10,15].
func TestScenarioS2_SinglePairJob(t *testing.T) {
	high := []int{1, 7}
	low := []int{1, 3, 4, 7, 10, 15}

	jobs, err := Plan(high, low, Options{MinPairs: 1, SinglePairMode: true})
	require.NoError(t, err)

	got := jobMap(jobs)
	assert.Equal(t, []int{3, 4}, got["1"])
	assert.Equal(t, []int{3, 4, 10, 15}, got["7"])
	assert.Len(t, jobs, 2)
}

func TestPlan_OrphanRemoval(t *testing.T) {
	high := []int{5, 10}
	low := []int{1, 5, 8, 10, 20}

	// Without orphan removal, 1 and 20 form single-pair jobs; with it,
	// they are dropped and only the between-pair date 8 remains.
	jobs, err := Plan(high, low, Options{MinPairs: 1, RemoveOrphanPredictionDates: true})
	require.NoError(t, err)
	got := jobMap(jobs)
	assert.Equal(t, []int{8}, got["5,10"])
	assert.Len(t, jobs, 1)
}

func TestPlan_OrphanRemovalCanEmptyPredictions(t *testing.T) {
	high := []int{5, 10}
	low := []int{1, 5, 10, 20}

	_, err := Plan(high, low, Options{MinPairs: 1, RemoveOrphanPredictionDates: true})
	require.Error(t, err)
}

func TestPlan_InsufficientPairsFails(t *testing.T) {
	high := []int{5}
	low := []int{1, 5, 10}

	_, err := Plan(high, low, Options{MinPairs: 2})
	require.Error(t, err)
}

func TestPlan_JobsOrderedByKey(t *testing.T) {
	high := []int{1, 7}
	low := []int{1, 3, 4, 7, 10, 15}

	jobs, err := Plan(high, low, Options{MinPairs: 1})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, []int{1, 7}, jobs[0].Key.Dates)
	assert.Equal(t, []int{7}, jobs[1].Key.Dates)
}
