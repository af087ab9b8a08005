package raster

import (
	"math"
	"sort"

	"github.com/fusionkit/imgfusion/internal/fuserr"
)

// MinMaxLocations reports, per channel, the minimum and maximum
// sample value and the pixel coordinate of their first occurrence,
// restricted to pixels where mask is nonzero (nil mask = whole
// image).
type MinMaxResult struct {
	Min, Max     float64
	MinX, MinY   int
	MaxX, MaxY   int
}

func (im *Image) MinMaxLocations(c int, mask *Image) (MinMaxResult, error) {
	if c < 0 || c >= im.Channels() {
		return MinMaxResult{}, fuserr.Invalidf("channel %d out of range [0,%d)", c, im.Channels())
	}
	if err := checkMask(mask); err != nil {
		return MinMaxResult{}, err
	}
	res := MinMaxResult{Min: math.Inf(1), Max: math.Inf(-1)}
	found := false
	for y := 0; y < im.Height(); y++ {
		for x := 0; x < im.Width(); x++ {
			if !maskValueAt(mask, x, y, c) {
				continue
			}
			v := im.getF64(x, y, c)
			found = true
			if v < res.Min {
				res.Min, res.MinX, res.MinY = v, x, y
			}
			if v > res.Max {
				res.Max, res.MaxX, res.MaxY = v, x, y
			}
		}
	}
	if !found {
		return MinMaxResult{}, fuserr.Invalidf("minMaxLocations: mask selects no pixels")
	}
	return res, nil
}

// Mean returns the per-channel arithmetic mean over pixels where mask
// is nonzero.
func (im *Image) Mean(mask *Image) ([]float64, error) {
	if err := checkMask(mask); err != nil {
		return nil, err
	}
	sums := make([]float64, im.Channels())
	count := 0
	for y := 0; y < im.Height(); y++ {
		for x := 0; x < im.Width(); x++ {
			if !maskValueAt(mask, x, y, 0) {
				continue
			}
			count++
			for c := 0; c < im.Channels(); c++ {
				sums[c] += im.getF64(x, y, c)
			}
		}
	}
	if count == 0 {
		return nil, fuserr.Invalidf("mean: mask selects no pixels")
	}
	for c := range sums {
		sums[c] /= float64(count)
	}
	return sums, nil
}

// MeanStdDev returns the per-channel mean and sample standard
// deviation (Bessel-corrected, divisor n-1) over pixels where mask is
// nonzero.
func (im *Image) MeanStdDev(mask *Image) (mean, stddev []float64, err error) {
	mean, err = im.Mean(mask)
	if err != nil {
		return nil, nil, err
	}
	sq := make([]float64, im.Channels())
	count := 0
	for y := 0; y < im.Height(); y++ {
		for x := 0; x < im.Width(); x++ {
			if !maskValueAt(mask, x, y, 0) {
				continue
			}
			count++
			for c := 0; c < im.Channels(); c++ {
				d := im.getF64(x, y, c) - mean[c]
				sq[c] += d * d
			}
		}
	}
	stddev = make([]float64, im.Channels())
	if count > 1 {
		for c := range sq {
			stddev[c] = math.Sqrt(sq[c] / float64(count-1))
		}
	}
	return mean, stddev, nil
}

// Unique returns the sorted distinct values present in the (single)
// channel 0 of im. Unique/UniqueWithCount are single-channel-only per
// spec.
func (im *Image) Unique() ([]float64, error) {
	if im.Channels() != 1 {
		return nil, fuserr.Typef("unique is single-channel only, image has %d channels", im.Channels())
	}
	seen := map[float64]bool{}
	var out []float64
	for y := 0; y < im.Height(); y++ {
		for x := 0; x < im.Width(); x++ {
			v := im.getF64(x, y, 0)
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	sort.Float64s(out)
	return out, nil
}

// UniqueCount pairs each distinct value (sorted ascending) with its
// occurrence count.
type UniqueCount struct {
	Value float64
	Count int
}

func (im *Image) UniqueWithCount() ([]UniqueCount, error) {
	if im.Channels() != 1 {
		return nil, fuserr.Typef("uniqueWithCount is single-channel only, image has %d channels", im.Channels())
	}
	counts := map[float64]int{}
	for y := 0; y < im.Height(); y++ {
		for x := 0; x < im.Width(); x++ {
			counts[im.getF64(x, y, 0)]++
		}
	}
	out := make([]UniqueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, UniqueCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out, nil
}
