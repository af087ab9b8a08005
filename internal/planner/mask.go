package planner

import (
	"github.com/fusionkit/imgfusion/internal/fuserr"
	"github.com/fusionkit/imgfusion/internal/interval"
	"github.com/fusionkit/imgfusion/internal/raster"
)

// ComposeUserMasks ANDs together an arbitrary number of user-supplied
// mask images, replicating a single-channel mask up to a wider one's
// channel count where needed (spec: "resizing by replication when
// channel counts differ").
func ComposeUserMasks(masks []*raster.Image) (*raster.Image, error) {
	if len(masks) == 0 {
		return nil, nil
	}
	acc := masks[0]
	for _, m := range masks[1:] {
		combined, err := acc.BitwiseAnd(m)
		if err != nil {
			return nil, err
		}
		acc = combined
	}
	return acc, nil
}

// RemoveNoData strips each channel's no-data value (if set) from its
// valid interval set, as spec §4.H requires before mask synthesis when
// no-data usage is enabled.
func RemoveNoData(validSets []interval.Set, noData []*float64) []interval.Set {
	out := make([]interval.Set, len(validSets))
	for c, s := range validSets {
		if c < len(noData) && noData[c] != nil {
			s = s.Difference(interval.NewSet(interval.Closed(*noData[c], *noData[c])))
		}
		out[c] = s
	}
	return out
}

// PairMask composes the final per-pair mask: base (AND of user masks)
// AND the high-image's own valid-range mask AND the low-image's
// valid-range mask, each synthesized from validSets via
// CreateMultiChannelMaskFromRange.
func PairMask(base *raster.Image, highImg *raster.Image, highValid []interval.Set, lowImg *raster.Image, lowValid []interval.Set) (*raster.Image, error) {
	highMask, err := highImg.CreateMultiChannelMaskFromRange(highValid, nil)
	if err != nil {
		return nil, err
	}
	lowMask, err := lowImg.CreateMultiChannelMaskFromRange(lowValid, nil)
	if err != nil {
		return nil, err
	}
	combined, err := highMask.BitwiseAnd(lowMask)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return combined, nil
	}
	final, err := base.BitwiseAnd(combined)
	if err != nil {
		return nil, fuserr.Wrap(fuserr.Size, "composing pair mask with base mask", err)
	}
	return final, nil
}
