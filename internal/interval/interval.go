// Package interval implements closed/half-open real intervals and
// their union algebra (spec §4.B), used by internal/raster to
// synthesize validity masks from user-supplied ranges.
package interval

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Interval is a single real interval with explicit boundary types.
type Interval struct {
	Lo, Hi       float64
	LoOpen       bool
	HiOpen       bool
}

// Closed returns the closed interval [lo, hi].
func Closed(lo, hi float64) Interval { return Interval{Lo: lo, Hi: hi} }

// Open returns the open interval (lo, hi).
func Open(lo, hi float64) Interval { return Interval{Lo: lo, Hi: hi, LoOpen: true, HiOpen: true} }

// Empty reports whether the interval contains no points.
func (iv Interval) Empty() bool {
	if iv.Lo > iv.Hi {
		return true
	}
	if iv.Lo == iv.Hi && (iv.LoOpen || iv.HiOpen) {
		return true
	}
	return false
}

// Contains reports whether x lies within the interval.
func (iv Interval) Contains(x float64) bool {
	if x < iv.Lo || x > iv.Hi {
		return false
	}
	if x == iv.Lo && iv.LoOpen {
		return false
	}
	if x == iv.Hi && iv.HiOpen {
		return false
	}
	return true
}

func (iv Interval) String() string {
	l, r := "[", "]"
	if iv.LoOpen {
		l = "("
	}
	if iv.HiOpen {
		r = ")"
	}
	return fmt.Sprintf("%s%s,%s%s", l, formatBound(iv.Lo), formatBound(iv.Hi), r)
}

func formatBound(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	if math.IsInf(v, -1) {
		return "-inf"
	}
	return fmt.Sprintf("%g", v)
}

// adjacent reports whether a and b touch or overlap such that their
// union is a single contiguous interval (the "no two adjacent
// elements overlap or touch across a shared boundary of compatible
// type" canonical-form invariant).
func adjacent(a, b Interval) bool {
	if a.Lo > b.Lo {
		a, b = b, a
	}
	if a.Hi > b.Lo {
		return true // overlap
	}
	if a.Hi == b.Lo {
		// Touching: mergeable unless both boundaries at the shared
		// point are open (a genuine gap of measure zero excluded by
		// both sides).
		return !(a.HiOpen && b.LoOpen)
	}
	return false
}

func union2(a, b Interval) Interval {
	if a.Lo > b.Lo {
		a, b = b, a
	}
	lo, loOpen := a.Lo, a.LoOpen
	var hi float64
	var hiOpen bool
	switch {
	case a.Hi > b.Hi:
		hi, hiOpen = a.Hi, a.HiOpen
	case a.Hi < b.Hi:
		hi, hiOpen = b.Hi, b.HiOpen
	default:
		hi, hiOpen = a.Hi, a.HiOpen && b.HiOpen
	}
	return Interval{Lo: lo, Hi: hi, LoOpen: loOpen, HiOpen: hiOpen}
}

// Set is a well-ordered union of pairwise-disjoint, non-adjacent
// intervals, kept in canonical form after every operation.
type Set struct {
	ivs []Interval
}

// Empty returns the empty set.
func Empty() Set { return Set{} }

// Full returns the set containing all of ℝ.
func Full() Set {
	return Set{ivs: []Interval{{Lo: math.Inf(-1), Hi: math.Inf(1)}}}
}

// NewSet builds a canonical Set from an arbitrary list of intervals.
func NewSet(ivs ...Interval) Set {
	var s Set
	for _, iv := range ivs {
		s = s.Union(Set{ivs: []Interval{iv}})
	}
	return s
}

// IsEmpty reports whether the set is canonically empty.
func (s Set) IsEmpty() bool { return len(s.ivs) == 0 }

// Intervals returns the canonical intervals in ascending order. The
// caller must not mutate the returned slice.
func (s Set) Intervals() []Interval { return s.ivs }

// Contains reports whether x lies in any interval of the set.
func (s Set) Contains(x float64) bool {
	for _, iv := range s.ivs {
		if iv.Contains(x) {
			return true
		}
		if x < iv.Lo {
			break
		}
	}
	return false
}

// Union returns s ∪ other in canonical form.
func (s Set) Union(other Set) Set {
	all := append(append([]Interval{}, s.ivs...), other.ivs...)
	if len(all) == 0 {
		return Set{}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Lo != all[j].Lo {
			return all[i].Lo < all[j].Lo
		}
		return !all[i].LoOpen && all[j].LoOpen
	})
	out := []Interval{all[0]}
	for _, iv := range all[1:] {
		if iv.Empty() {
			continue
		}
		last := out[len(out)-1]
		if adjacent(last, iv) {
			out[len(out)-1] = union2(last, iv)
		} else {
			out = append(out, iv)
		}
	}
	// Drop any degenerate empty entries left over (e.g. Full() merged
	// with something, or a caller passing in Empty intervals).
	var filtered []Interval
	for _, iv := range out {
		if !iv.Empty() {
			filtered = append(filtered, iv)
		}
	}
	return Set{ivs: filtered}
}

// complementOf the whole real line, used by Intersection/Difference.
func (s Set) complement() Set {
	if s.IsEmpty() {
		return Full()
	}
	var out []Interval
	prevHi := math.Inf(-1)
	prevHiOpen := true // ℝ's "open" left end at -inf is moot; treat as open
	for _, iv := range s.ivs {
		if iv.Lo > prevHi || (iv.Lo == prevHi && iv.LoOpen && prevHiOpen) || prevHi == math.Inf(-1) {
			gapLo := prevHi
			gapLoOpen := !prevHiOpen
			gapHi := iv.Lo
			gapHiOpen := !iv.LoOpen
			if gapLo == math.Inf(-1) {
				gapLoOpen = true
			}
			g := Interval{Lo: gapLo, Hi: gapHi, LoOpen: gapLoOpen, HiOpen: gapHiOpen}
			if !g.Empty() {
				out = append(out, g)
			}
		}
		prevHi = iv.Hi
		prevHiOpen = iv.HiOpen
	}
	if prevHi != math.Inf(1) {
		out = append(out, Interval{Lo: prevHi, Hi: math.Inf(1), LoOpen: !prevHiOpen, HiOpen: true})
	}
	return Set{ivs: out}
}

// Intersection returns s ∩ other.
func (s Set) Intersection(other Set) Set {
	// De Morgan via complement keeps this short and keeps the union
	// logic as the single source of merge truth.
	return s.complement().Union(other.complement()).complement()
}

// Difference returns s \ other.
func (s Set) Difference(other Set) Set {
	return s.Intersection(other.complement())
}

// DiscretizeBounds replaces each interval's bounds by the outermost
// integers it contains (a closed bound rounds toward the interior, an
// open bound moves to the next integer strictly inside it, so (0.1, 2.9)
// becomes [1, 2]) and clamps to the int32 range, for use against
// integer pixel domains. Idempotent.
func (s Set) DiscretizeBounds() Set {
	const int32Min, int32Max = -2147483648, 2147483647
	var out []Interval
	for _, iv := range s.ivs {
		lo := iv.Lo
		if iv.LoOpen {
			lo = math.Floor(lo) + 1
		} else {
			lo = math.Ceil(lo)
		}
		hi := iv.Hi
		if iv.HiOpen {
			hi = math.Ceil(hi) - 1
		} else {
			hi = math.Floor(hi)
		}
		if lo < int32Min {
			lo = int32Min
		}
		if hi > int32Max {
			hi = int32Max
		}
		if lo > hi {
			continue
		}
		out = append(out, Interval{Lo: lo, Hi: hi})
	}
	return Set{ivs: out}
}

// String renders the set using the literal grammar of spec §6.
func (s Set) String() string {
	parts := make([]string, len(s.ivs))
	for i, iv := range s.ivs {
		parts[i] = iv.String()
	}
	return strings.Join(parts, " ")
}
