// Package interp implements the temporal interpolator of spec §4.J:
// per-pixel linear-in-time interpolation across a resolution tag's
// time series, emitting a pixel-state bitfield alongside the
// interpolated values.
//
// Grounded on the teacher's internal/tile/generator.go worker-pool
// pattern (bounded runtime.NumCPU()-sized pool via
// internal/workerpool) and internal/tile/downsample.go's per-pixel
// compositing loop, generalized from 2x2 tile children to an
// arbitrary-length ordered donor time series.
package interp

import (
	"github.com/fusionkit/imgfusion/internal/fuserr"
	"github.com/fusionkit/imgfusion/internal/pixtype"
	"github.com/fusionkit/imgfusion/internal/raster"
	"github.com/fusionkit/imgfusion/internal/workerpool"
)

// Series is the per-resolution-tag input: an ordered time series of
// same-shaped images plus optional per-date interpolate/validity
// masks. A nil mask entry means "no restriction" (interp mask: no
// pixel flagged; validity mask: every pixel valid).
type Series struct {
	Dates      []int
	Images     []*raster.Image
	InterpMask []*raster.Image
	ValidMask  []*raster.Image
}

// Pixel-state bitfield values (spec §4.J).
const (
	StateNoData        = 0   // was nodata, still nodata
	StateNeededFailed  = 64  // needed interpolation but failed
	StateClearAllAlong = 128 // clear all along, no interpolation needed
	StateSuccessful    = 192 // successfully interpolated
)

// Options carries the interpolator's tunables.
type Options struct {
	DateLimit                  int
	InterpolateInvalid         bool
	PrioritizeCloudsOverNodata bool
	Concurrency                int
}

func (s Series) validate() error {
	if len(s.Dates) != len(s.Images) {
		return fuserr.Invalidf("interp: %d dates but %d images", len(s.Dates), len(s.Images))
	}
	if len(s.Images) == 0 {
		return fuserr.Invalidf("interp: empty series")
	}
	w, h, ft := s.Images[0].Width(), s.Images[0].Height(), s.Images[0].FullType()
	for i, im := range s.Images {
		if im.Width() != w || im.Height() != h {
			return fuserr.Sizef("interp: donor %d has size %dx%d, expected %dx%d", i, im.Width(), im.Height(), w, h)
		}
		if im.FullType() != ft {
			return fuserr.Typef("interp: donor %d has type %v, expected %v", i, im.FullType(), ft)
		}
	}
	return nil
}

// Interpolate predicts targetDate for the given series per the spec
// §4.J algorithm, returning the value image and the pixel-state
// bitfield image (same channel count as the series, base type uint8).
//
// targetDate need not be one of series.Dates: predicting a date absent
// from the donor series is a normal use of the interpolator, since the
// caller's target date is independent of which dates were supplied as
// donors. When targetDate has no matching donor, every pixel is treated
// as having no own data and always goes through interpolation.
func Interpolate(series Series, targetDate int, opts Options) (*raster.Image, *raster.Image, error) {
	if err := series.validate(); err != nil {
		return nil, nil, err
	}
	if opts.DateLimit < 0 {
		return nil, nil, fuserr.Invalidf("interp: dateLimit must be non-negative, got %d", opts.DateLimit)
	}

	ft := series.Images[0].FullType()
	w, h := series.Images[0].Width(), series.Images[0].Height()

	value, err := raster.New(w, h, ft)
	if err != nil {
		return nil, nil, err
	}
	state, err := raster.New(w, h, pixtype.GetFullType(pixtype.Uint8, ft.Channels))
	if err != nil {
		return nil, nil, err
	}

	targetIdx := -1
	for i, d := range series.Dates {
		if d == targetDate {
			targetIdx = i
			break
		}
	}

	donorOf := func(idx, x, y int) (invalid, flagged bool) {
		if series.ValidMask != nil && idx < len(series.ValidMask) && series.ValidMask[idx] != nil {
			invalid = series.ValidMask[idx].GetPixel(x, y, 0) == 0
		}
		if series.InterpMask != nil && idx < len(series.InterpMask) && series.InterpMask[idx] != nil {
			flagged = series.InterpMask[idx].GetPixel(x, y, 0) == 255
		}
		return invalid, flagged
	}

	err = workerpool.Run(h, opts.Concurrency, func(y int) error {
		for x := 0; x < w; x++ {
			var ownInvalid, ownFlagged bool
			if targetIdx >= 0 {
				ownInvalid, ownFlagged = donorOf(targetIdx, x, y)
			} else {
				ownInvalid = true
			}

			// A target date absent from the donor series (targetIdx<0)
			// has no own pixel to fall back on, so it always needs
			// interpolation regardless of InterpolateInvalid.
			needsInterp := targetIdx < 0 || ownFlagged || (opts.InterpolateInvalid && ownInvalid)

			if !needsInterp {
				for c := 0; c < ft.Channels; c++ {
					value.SetPixel(x, y, c, series.Images[targetIdx].GetPixel(x, y, c))
					st := StateClearAllAlong
					if ownInvalid {
						st = StateNoData
					}
					state.SetPixel(x, y, c, float64(st))
				}
				continue
			}

			leftDate, leftIdx := nearestValidDonor(series, targetDate, opts.DateLimit, x, y, donorOf, targetIdx, false)
			rightDate, rightIdx := nearestValidDonor(series, targetDate, opts.DateLimit, x, y, donorOf, targetIdx, true)

			switch {
			case leftIdx >= 0 && rightIdx >= 0 && leftDate != rightDate:
				t := float64(targetDate-leftDate) / float64(rightDate-leftDate)
				for c := 0; c < ft.Channels; c++ {
					lv := series.Images[leftIdx].GetPixel(x, y, c)
					rv := series.Images[rightIdx].GetPixel(x, y, c)
					value.SetPixel(x, y, c, lv+(rv-lv)*t)
					state.SetPixel(x, y, c, StateSuccessful)
				}
			case leftIdx >= 0:
				for c := 0; c < ft.Channels; c++ {
					value.SetPixel(x, y, c, series.Images[leftIdx].GetPixel(x, y, c))
					state.SetPixel(x, y, c, StateSuccessful)
				}
			case rightIdx >= 0:
				for c := 0; c < ft.Channels; c++ {
					value.SetPixel(x, y, c, series.Images[rightIdx].GetPixel(x, y, c))
					state.SetPixel(x, y, c, StateSuccessful)
				}
			default:
				for c := 0; c < ft.Channels; c++ {
					st := StateNeededFailed
					if !ownFlagged && ownInvalid {
						st = StateNoData
					}
					state.SetPixel(x, y, c, float64(st))
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return value, state, nil
}

// nearestValidDonor finds the nearest donor date on the requested side
// (right=true for d>=target, false for d<=target) that is itself
// neither flagged invalid nor flagged interpolate, bounded by
// dateLimit. Returns (-1, -1) equivalent via idx<0 when none found.
func nearestValidDonor(series Series, target, dateLimit, x, y int, donorOf func(idx, x, y int) (bool, bool), excludeIdx int, right bool) (int, int) {
	bestDate := 0
	bestIdx := -1
	bestDist := dateLimit + 1
	for i, d := range series.Dates {
		if i == excludeIdx {
			continue
		}
		if right && d < target {
			continue
		}
		if !right && d > target {
			continue
		}
		dist := d - target
		if dist < 0 {
			dist = -dist
		}
		if dist > dateLimit {
			continue
		}
		invalid, flagged := donorOf(i, x, y)
		if invalid || flagged {
			continue
		}
		if bestIdx < 0 || dist < bestDist {
			bestDate, bestIdx, bestDist = d, i, dist
		}
	}
	return bestDate, bestIdx
}
