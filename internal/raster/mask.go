package raster

import (
	"log/slog"

	"github.com/fusionkit/imgfusion/internal/fuserr"
	"github.com/fusionkit/imgfusion/internal/interval"
	"github.com/fusionkit/imgfusion/internal/pixtype"
)

// maskFullType is the full type used for every synthesized mask: a single
// 8-bit channel, 255 = valid, 0 = invalid, regardless of the source
// image's own base type.
var maskFullType = pixtype.GetFullType(pixtype.Uint8, 1)

// setInSet reports whether v should be considered "in" set for the
// purposes of mask synthesis. Integer images snap the set's bounds to
// the pixel domain first (DiscretizeBounds); floating images test the
// real-valued set directly, and an open endpoint on a floating image
// degrades to a closed test with a logged warning, since there is no
// well-defined "next representable float" to snap to (spec Open
// Question, decided: loud warning, not silent coercion).
func setInSet(v float64, set interval.Set, isInteger bool) bool {
	if isInteger {
		return set.DiscretizeBounds().Contains(v)
	}
	for _, iv := range set.Intervals() {
		if v >= iv.Lo && v <= iv.Hi {
			return true
		}
	}
	return false
}

// warnOpenFloatBounds logs once per mask-synthesis call if any of the
// supplied sets have an open endpoint and the source image is
// floating point.
func warnOpenFloatBounds(logger *slog.Logger, sets []interval.Set) {
	if logger == nil {
		return
	}
	for _, s := range sets {
		for _, iv := range s.Intervals() {
			if iv.LoOpen || iv.HiOpen {
				logger.Warn("open interval endpoint on floating-point mask range treated as closed")
				return
			}
		}
	}
}

// CreateSingleChannelMaskFromRange synthesizes a single-channel uint8
// mask from im: rangeList supplies one interval.Set per channel (or a
// single entry broadcast to every channel), and each channel's
// membership test is combined into the one output channel by AND (all
// channels must satisfy their set) or OR (any channel satisfying its
// set marks the pixel valid), per useAnd (spec §4.D).
func (im *Image) CreateSingleChannelMaskFromRange(rangeList []interval.Set, useAnd bool, logger *slog.Logger) (*Image, error) {
	if len(rangeList) != 1 && len(rangeList) != im.Channels() {
		return nil, fuserr.Invalidf("range list must have 1 or %d entries, got %d", im.Channels(), len(rangeList))
	}
	isInt := im.BaseType().IsIntegerType()
	if !isInt {
		warnOpenFloatBounds(logger, rangeList)
	}
	out, err := New(im.Width(), im.Height(), maskFullType)
	if err != nil {
		return nil, err
	}
	for y := 0; y < im.Height(); y++ {
		for x := 0; x < im.Width(); x++ {
			valid := useAnd
			for c := 0; c < im.Channels(); c++ {
				set := rangeList[0]
				if len(rangeList) > 1 {
					set = rangeList[c]
				}
				in := setInSet(im.getF64(x, y, c), set, isInt)
				if useAnd {
					valid = valid && in
				} else {
					valid = valid || in
				}
			}
			if valid {
				out.setF64(x, y, 0, 255)
			}
		}
	}
	return out, nil
}

// CreateSingleChannelMaskFromSet broadcasts a single interval.Set to
// every channel and combines the per-channel tests per useAnd, via
// CreateSingleChannelMaskFromRange.
func (im *Image) CreateSingleChannelMaskFromSet(set interval.Set, useAnd bool, logger *slog.Logger) (*Image, error) {
	return im.CreateSingleChannelMaskFromRange([]interval.Set{set}, useAnd, logger)
}

// CreateMultiChannelMaskFromRange synthesizes a mask with the same
// channel count as im: channel c of the output is 255 wherever channel
// c of im lies within sets[c], independently per channel. len(sets)
// must be 1 (broadcast to all channels) or im.Channels().
func (im *Image) CreateMultiChannelMaskFromRange(sets []interval.Set, logger *slog.Logger) (*Image, error) {
	if len(sets) != 1 && len(sets) != im.Channels() {
		return nil, fuserr.Invalidf("range list must have 1 or %d entries, got %d", im.Channels(), len(sets))
	}
	isInt := im.BaseType().IsIntegerType()
	if !isInt {
		warnOpenFloatBounds(logger, sets)
	}
	out, err := New(im.Width(), im.Height(), pixtype.GetFullType(pixtype.Uint8, im.Channels()))
	if err != nil {
		return nil, err
	}
	for y := 0; y < im.Height(); y++ {
		for x := 0; x < im.Width(); x++ {
			for c := 0; c < im.Channels(); c++ {
				set := sets[0]
				if len(sets) > 1 {
					set = sets[c]
				}
				if setInSet(im.getF64(x, y, c), set, isInt) {
					out.setF64(x, y, c, 255)
				}
			}
		}
	}
	return out, nil
}

// CreateMultiChannelMaskFromSet synthesizes a per-channel mask where
// every channel independently tests against the same set.
func (im *Image) CreateMultiChannelMaskFromSet(set interval.Set, logger *slog.Logger) (*Image, error) {
	sets := make([]interval.Set, im.Channels())
	for i := range sets {
		sets[i] = set
	}
	return im.CreateMultiChannelMaskFromRange(sets, logger)
}

// SetValue assigns a single scalar to every channel of every pixel
// where mask is nonzero. mask may be single-channel (applies to all
// channels of im) or match im's channel count.
func (im *Image) SetValue(val float64, mask *Image) error {
	if err := checkMask(mask); err != nil {
		return err
	}
	for y := 0; y < im.Height(); y++ {
		for x := 0; x < im.Width(); x++ {
			for c := 0; c < im.Channels(); c++ {
				if maskValueAt(mask, x, y, c) {
					im.setF64(x, y, c, val)
				}
			}
		}
	}
	return nil
}

// SetValues assigns a per-channel scalar vector to every pixel where
// mask is nonzero. len(vals) must be 1 or im.Channels().
func (im *Image) SetValues(vals []float64, mask *Image) error {
	if len(vals) != 1 && len(vals) != im.Channels() {
		return fuserr.Invalidf("value list must have 1 or %d entries, got %d", im.Channels(), len(vals))
	}
	if err := checkMask(mask); err != nil {
		return err
	}
	for y := 0; y < im.Height(); y++ {
		for x := 0; x < im.Width(); x++ {
			for c := 0; c < im.Channels(); c++ {
				if !maskValueAt(mask, x, y, c) {
					continue
				}
				v := vals[0]
				if len(vals) > 1 {
					v = vals[c]
				}
				im.setF64(x, y, c, v)
			}
		}
	}
	return nil
}
