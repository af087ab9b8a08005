// Package planner implements the fusion job planner of spec §4.H: pair/
// predict date derivation and job-map construction, plus the mask
// composition the planner performs alongside it.
//
// Grounded on the teacher's internal/tile/generator.go job-fan-out and
// release-as-soon-as-consumed discipline (the teacher schedules
// independent tile jobs and frees child tile buffers once every
// consumer has read them; the planner generalizes "release a pair
// image as soon as its last job completes" from that same resource-
// lifetime pattern).
package planner

import (
	"sort"
	"strconv"

	"github.com/fusionkit/imgfusion/internal/fuserr"
)

// JobKey identifies the one or two pair dates a job predicts from, in
// ascending order.
type JobKey struct {
	Dates []int
}

// Job is one unit of fusion work: predict PredictDates from the pair
// image(s) named by Key.
type Job struct {
	Key          JobKey
	PredictDates []int
}

// Options carries the planner's policy flags (spec §4.H).
type Options struct {
	MinPairs                    int
	RemoveOrphanPredictionDates bool
	SinglePairMode              bool
}

// Plan derives the pair-date/predict-date job map from the declared
// high- and low-resolution dates, per the spec §4.H algorithm exactly.
// The returned jobs are ordered by their key tuple ascending.
func Plan(highDates, lowDates []int, opts Options) ([]Job, error) {
	highSet := make(map[int]bool, len(highDates))
	for _, d := range highDates {
		highSet[d] = true
	}

	var pairDates []int
	for _, d := range lowDates {
		if highSet[d] {
			pairDates = append(pairDates, d)
		}
	}
	sort.Ints(pairDates)

	allDates := append([]int(nil), lowDates...)
	sort.Ints(allDates)

	if len(pairDates) < opts.MinPairs {
		return nil, fuserr.Invalidf("need at least %d resolution pairs, found %d", opts.MinPairs, len(pairDates))
	}
	missing := missingFrom(pairDates, allDates)
	if len(missing) > 0 {
		return nil, fuserr.Invalidf("low-resolution dates missing from the declared set: %v", missing)
	}

	predDates := difference(allDates, pairDates)
	if opts.RemoveOrphanPredictionDates && len(pairDates) > 0 {
		lo, hi := pairDates[0], pairDates[len(pairDates)-1]
		filtered := predDates[:0:0]
		for _, d := range predDates {
			if d >= lo && d <= hi {
				filtered = append(filtered, d)
			}
		}
		predDates = filtered
	}
	if len(predDates) == 0 {
		return nil, fuserr.Invalidf("no prediction dates remain after orphan filtering")
	}

	jobs := map[string]*Job{}
	order := []string{}
	getOrCreate := func(dates []int) *Job {
		k := keyString(dates)
		j, ok := jobs[k]
		if !ok {
			j = &Job{Key: JobKey{Dates: append([]int(nil), dates...)}}
			jobs[k] = j
			order = append(order, k)
		}
		return j
	}

	firstPair, lastPair := pairDates[0], pairDates[len(pairDates)-1]
	for _, d := range predDates {
		switch {
		case d < firstPair:
			j := getOrCreate([]int{firstPair})
			j.PredictDates = append(j.PredictDates, d)
		case d > lastPair:
			j := getOrCreate([]int{lastPair})
			j.PredictDates = append(j.PredictDates, d)
		default:
			pi, pj := bracketingPair(pairDates, d)
			if opts.SinglePairMode {
				getOrCreate([]int{pi}).PredictDates = append(getOrCreate([]int{pi}).PredictDates, d)
				getOrCreate([]int{pj}).PredictDates = append(getOrCreate([]int{pj}).PredictDates, d)
			} else {
				j := getOrCreate([]int{pi, pj})
				j.PredictDates = append(j.PredictDates, d)
			}
		}
	}

	out := make([]Job, 0, len(order))
	for _, k := range order {
		j := jobs[k]
		sort.Ints(j.PredictDates)
		out = append(out, *j)
	}
	sort.Slice(out, func(i, j int) bool { return lessKey(out[i].Key.Dates, out[j].Key.Dates) })
	return out, nil
}

// bracketingPair returns the two consecutive pair dates p_i <= d <=
// p_{i+1} that bracket d; d is guaranteed (by the caller) to lie
// strictly between the first and last pair date.
func bracketingPair(pairDates []int, d int) (int, int) {
	for i := 0; i < len(pairDates)-1; i++ {
		if d >= pairDates[i] && d <= pairDates[i+1] {
			return pairDates[i], pairDates[i+1]
		}
	}
	return pairDates[0], pairDates[len(pairDates)-1]
}

func difference(all, sub []int) []int {
	subSet := make(map[int]bool, len(sub))
	for _, d := range sub {
		subSet[d] = true
	}
	var out []int
	for _, d := range all {
		if !subSet[d] {
			out = append(out, d)
		}
	}
	return out
}

func missingFrom(sub, all []int) []int {
	allSet := make(map[int]bool, len(all))
	for _, d := range all {
		allSet[d] = true
	}
	var out []int
	for _, d := range sub {
		if !allSet[d] {
			out = append(out, d)
		}
	}
	return out
}

func keyString(dates []int) string {
	s := ""
	for i, d := range dates {
		if i > 0 {
			s += ","
		}
		s += strconv.Itoa(d)
	}
	return s
}

func lessKey(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
