package optparse

import (
	"github.com/fusionkit/imgfusion/internal/fuserr"
	"github.com/fusionkit/imgfusion/internal/interval"
	"github.com/fusionkit/imgfusion/internal/raster"
)

// ImageSpec is the parsed result of the `-i`/`--img=<img>` nested
// image specification (spec §6).
type ImageSpec struct {
	File                 string
	Date                 int64
	HasDate              bool
	Tag                  string
	HasTag               bool
	Layers               []int64
	Crop                 raster.Rect
	HasCrop              bool
	DisableUseColorTable bool
}

// MaskSpec extends ImageSpec with the mask-only sub-options of
// `-m`/`--mask-img=<msk>`.
type MaskSpec struct {
	ImageSpec
	ExtractBits      []int64
	ValidRanges      interval.Set
	HasValidRanges   bool
	InvalidRanges    interval.Set
	HasInvalidRanges bool
}

func toInt64Slice(v any) []int64 {
	raw, _ := v.([]any)
	out := make([]int64, 0, len(raw))
	for _, x := range raw {
		out = append(out, x.(int64))
	}
	return out
}

func imageSpecDescriptors() []*Descriptor {
	return []*Descriptor{
		{ID: "file", Short: 'f', Long: "file", TakesArg: true, Checker: FilenameChecker(false)},
		{ID: "date", Short: 'd', Long: "date", TakesArg: true, Checker: IntChecker()},
		{ID: "tag", Short: 't', Long: "tag", TakesArg: true},
		{ID: "layers", Short: 'l', Long: "layers", TakesArg: true, Checker: VectorOfChecker(IntChecker())},
		{ID: "crop", Short: 'c', Long: "crop", TakesArg: true, Checker: RectangleChecker()},
		{ID: "disable-use-color-table", Long: "disable-use-color-table", TakesArg: false},
	}
}

func parseImageSpecTokens(tokens []string, extra ...*Descriptor) (*Result, error) {
	descs := append(imageSpecDescriptors(), extra...)
	parser := New(Config{}, descs...)
	return parser.Parse(tokens)
}

func fillImageSpec(res *Result) (ImageSpec, error) {
	var spec ImageSpec
	fileOpt, ok := res.First("file")
	if !ok || fileOpt.Value.(string) == "" {
		return spec, fuserr.Invalidf("image spec: -f/--file is required")
	}
	spec.File = fileOpt.Value.(string)
	if d, ok := res.First("date"); ok {
		spec.Date, spec.HasDate = d.Value.(int64), true
	}
	if t, ok := res.First("tag"); ok {
		spec.Tag, spec.HasTag = t.Raw, true
	}
	if l, ok := res.First("layers"); ok {
		spec.Layers = toInt64Slice(l.Value)
	}
	if c, ok := res.First("crop"); ok {
		spec.Crop, spec.HasCrop = c.Value.(raster.Rect), true
	}
	if _, ok := res.First("disable-use-color-table"); ok {
		spec.DisableUseColorTable = true
	}
	return spec, nil
}

// ImageSpecChecker parses the `-i`/`--img=<img>` nested image
// specification, re-entering the parser over the option group's own
// tokens (spec §4.C "Nested image specification").
func ImageSpecChecker() Checker {
	return CheckerFunc(func(raw string) (any, ArgClass, error) {
		res, err := parseImageSpecTokens(TokenizeStrings(raw))
		if err != nil {
			return nil, ArgIllegal, err
		}
		spec, err := fillImageSpec(res)
		if err != nil {
			return nil, ArgIllegal, err
		}
		return spec, ArgOK, nil
	})
}

// MaskSpecChecker parses the `-m`/`--mask-img=<msk>` nested mask
// specification: the image sub-grammar plus bit extraction and
// valid/invalid interval sets.
func MaskSpecChecker() Checker {
	extra := []*Descriptor{
		{ID: "extract-bits", Short: 'b', Long: "extract-bits", TakesArg: true, Checker: VectorOfChecker(IntChecker())},
		{ID: "valid-ranges", Long: "valid-ranges", TakesArg: true, Checker: IntervalSetChecker()},
		{ID: "invalid-ranges", Long: "invalid-ranges", TakesArg: true, Checker: IntervalSetChecker()},
	}
	return CheckerFunc(func(raw string) (any, ArgClass, error) {
		res, err := parseImageSpecTokens(TokenizeStrings(raw), extra...)
		if err != nil {
			return nil, ArgIllegal, err
		}
		base, err := fillImageSpec(res)
		if err != nil {
			return nil, ArgIllegal, err
		}
		spec := MaskSpec{ImageSpec: base}
		if b, ok := res.First("extract-bits"); ok {
			spec.ExtractBits = toInt64Slice(b.Value)
		}
		if v, ok := res.First("valid-ranges"); ok {
			spec.ValidRanges, spec.HasValidRanges = v.Value.(interval.Set), true
		}
		if v, ok := res.First("invalid-ranges"); ok {
			spec.InvalidRanges, spec.HasInvalidRanges = v.Value.(interval.Set), true
		}
		return spec, ArgOK, nil
	})
}

// MultiResImageSpecChecker parses a multi-resolution-image reference:
// the image sub-grammar with date mandatory and tag optional.
func MultiResImageSpecChecker() Checker {
	return CheckerFunc(func(raw string) (any, ArgClass, error) {
		res, err := parseImageSpecTokens(TokenizeStrings(raw))
		if err != nil {
			return nil, ArgIllegal, err
		}
		spec, err := fillImageSpec(res)
		if err != nil {
			return nil, ArgIllegal, err
		}
		if !spec.HasDate {
			return nil, ArgIllegal, fuserr.Invalidf("multi-res image spec: -d/--date is required")
		}
		return spec, ArgOK, nil
	})
}
