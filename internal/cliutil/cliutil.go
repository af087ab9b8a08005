// Package cliutil holds the CLI-driver scaffolding shared by every
// cmd/ utility: the common option descriptors spec §6 requires on
// every driver, image-spec loading through the driver registry, mask
// composition, and the fusion output-file naming convention.
//
// Grounded on the teacher's cmd/geotiff2pmtiles/main.go helper
// functions (collectTIFFs, parseColor, buildDescription) generalized
// from a single-binary helper set to a package shared across seven
// CLI drivers, and on original_source/utils/helpers/utils_common.h's
// parseImgsArgsAndGeoInfo/combineMaskImages/parseAndCombineRanges
// (the same responsibilities, re-expressed against optparse/driver/
// raster instead of the option parser and imagefusion::Image).
package cliutil

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fusionkit/imgfusion/internal/collection"
	"github.com/fusionkit/imgfusion/internal/driver"
	"github.com/fusionkit/imgfusion/internal/fuserr"
	"github.com/fusionkit/imgfusion/internal/geo"
	"github.com/fusionkit/imgfusion/internal/interval"
	"github.com/fusionkit/imgfusion/internal/optparse"
	"github.com/fusionkit/imgfusion/internal/raster"
)

// CommonDescriptors returns the option descriptors spec §6 declares
// identical across every utility: image/mask specs, global mask-range
// flags, nodata policy, output naming, and option-file expansion
// (handled transparently by the parser itself, so no descriptor is
// needed for it).
func CommonDescriptors() []*optparse.Descriptor {
	return []*optparse.Descriptor{
		{ID: "img", Short: 'i', Long: "img", TakesArg: true, Checker: optparse.ImageSpecChecker()},
		{ID: "mask-img", Short: 'm', Long: "mask-img", TakesArg: true, Checker: optparse.MaskSpecChecker()},
		{ID: "mask-valid-ranges", Long: "mask-valid-ranges", TakesArg: true, Checker: optparse.IntervalSetChecker()},
		{ID: "mask-invalid-ranges", Long: "mask-invalid-ranges", TakesArg: true, Checker: optparse.IntervalSetChecker()},
		{ID: "mask-high-res-valid-ranges", Long: "mask-high-res-valid-ranges", TakesArg: true, Checker: optparse.IntervalSetChecker()},
		{ID: "mask-high-res-invalid-ranges", Long: "mask-high-res-invalid-ranges", TakesArg: true, Checker: optparse.IntervalSetChecker()},
		{ID: "mask-low-res-valid-ranges", Long: "mask-low-res-valid-ranges", TakesArg: true, Checker: optparse.IntervalSetChecker()},
		{ID: "mask-low-res-invalid-ranges", Long: "mask-low-res-invalid-ranges", TakesArg: true, Checker: optparse.IntervalSetChecker()},
		{ID: "enable-use-nodata", Long: "enable-use-nodata", TakesArg: false},
		{ID: "disable-use-nodata", Long: "disable-use-nodata", TakesArg: false},
		{ID: "out-prefix", Long: "out-prefix", TakesArg: true},
		{ID: "out-postfix", Long: "out-postfix", TakesArg: true},
		{ID: "out-format", Long: "out-format", TakesArg: true},
		{ID: "pred-area", Long: "pred-area", TakesArg: true, Checker: optparse.RectangleChecker()},
		{ID: "verbose", Short: 'v', Long: "verbose", TakesArg: false},
		{ID: "help", Short: 'h', Long: "help", TakesArg: false},
		{ID: "help-formats", Long: "help-formats", TakesArg: false},
	}
}

// PrintHelpFormats answers --help-formats (spec §6) by listing every
// driver's name, long name, and recognized extensions, the same
// information the teacher's standalone coginfo binary dumped for a
// single hardcoded format.
func PrintHelpFormats(reg *driver.Registry) {
	fmt.Println("Supported formats:")
	for _, d := range reg.All() {
		fmt.Printf("  %-8s %-28s extensions: %s (default .%s)\n",
			d.Name(), d.LongName(), strings.Join(d.Extensions(), ", "), d.DefaultExtension())
	}
}

// UseNodata resolves the last-wins enable/disable-use-nodata pair,
// default enabled per spec §6.
func UseNodata(res *optparse.Result) bool {
	enabled := true
	for _, o := range res.Options {
		switch o.ID {
		case "enable-use-nodata":
			enabled = true
		case "disable-use-nodata":
			enabled = false
		}
	}
	return enabled
}

// LoadImage decodes spec through reg, applying its own crop window.
func LoadImage(reg *driver.Registry, spec optparse.ImageSpec) (*raster.Image, geo.Info, error) {
	channels := make([]int, len(spec.Layers))
	for i, l := range spec.Layers {
		channels[i] = int(l)
	}
	opts := driver.DecodeOptions{
		Channels:         channels,
		IgnoreColorTable: spec.DisableUseColorTable,
	}
	if spec.HasCrop {
		opts.Crop = spec.Crop
	}
	return driver.ReadImage(reg, spec.File, opts)
}

// CombineMasks loads and ANDs every mask spec's image, replicating a
// single-channel mask up to imgChannels where needed — spec §4.H "A
// base mask is formed by AND of user mask images (resizing by
// replication when channel counts differ)". imgChannels <= 0 means the
// caller does not yet know the final data image's channel count (e.g.
// a fusion driver composing a base mask ahead of per-job images);
// every mask is then accepted and left to broadcast against the data
// image later via raster.Image.BitwiseAnd.
func CombineMasks(reg *driver.Registry, specs []optparse.MaskSpec, imgChannels int) (*raster.Image, error) {
	var masks []*raster.Image
	for _, spec := range specs {
		img, _, err := LoadImage(reg, spec.ImageSpec)
		if err != nil {
			return nil, err
		}
		if img.BaseType().String() != "uint8" {
			return nil, fuserr.Typef("mask image %q must be uint8, has type %v", spec.File, img.BaseType())
		}
		if imgChannels > 0 && img.Channels() != 1 && img.Channels() != imgChannels {
			return nil, fuserr.Sizef("mask image %q has %d channels, expected 1 or %d", spec.File, img.Channels(), imgChannels)
		}
		masks = append(masks, img)
	}
	return replicateAndAnd(masks)
}

func replicateAndAnd(masks []*raster.Image) (*raster.Image, error) {
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

// RangePolarity accumulates a high/low pair of IntervalSets from the
// six global --mask-*-ranges flags, applying spec's order-sensitive
// polarity rule verbatim: the first range of a given resolution
// implicitly seeds ℝ when it has INVALID polarity (so subtracting it
// yields "everything except this").
type RangePolarity struct {
	HasHigh bool
	High    interval.Set
	HasLow  bool
	Low     interval.Set
}

var fullReal = interval.Full()

// CombineRanges walks the common range options in parse order and
// builds the high/low valid sets per spec §4.H / original_source's
// parseAndCombineRanges.
func CombineRanges(res *optparse.Result) RangePolarity {
	var rp RangePolarity
	apply := func(o optparse.Option, valid, high, low bool) {
		set := o.Value.(interval.Set)
		touchHigh, touchLow := high, low
		if !high && !low {
			touchHigh, touchLow = true, true
		}
		if touchHigh {
			if !valid && !rp.HasHigh {
				rp.High = fullReal
			}
			if valid {
				rp.High = rp.High.Union(set)
			} else {
				rp.High = rp.High.Difference(set)
			}
			rp.HasHigh = true
		}
		if touchLow {
			if !valid && !rp.HasLow {
				rp.Low = fullReal
			}
			if valid {
				rp.Low = rp.Low.Union(set)
			} else {
				rp.Low = rp.Low.Difference(set)
			}
			rp.HasLow = true
		}
	}
	// res.Options preserves overall parse order, so valid and invalid
	// flags are applied in the order the user gave them.
	for _, o := range res.Options {
		switch o.ID {
		case "mask-valid-ranges":
			apply(o, true, false, false)
		case "mask-invalid-ranges":
			apply(o, false, false, false)
		case "mask-high-res-valid-ranges":
			apply(o, true, true, false)
		case "mask-high-res-invalid-ranges":
			apply(o, false, true, false)
		case "mask-low-res-valid-ranges":
			apply(o, true, false, true)
		case "mask-low-res-invalid-ranges":
			apply(o, false, false, true)
		}
	}
	return rp
}

// GetTags resolves the (high, low) resolution-tag pair from a
// collection per spec §4.H: the tag with fewer unique dates is high;
// equal counts is an error.
func GetTags[T any](mri *collection.MultiRes[T]) (high, low string, err error) {
	tags := mri.GetResolutionTags()
	if len(tags) != 2 {
		return "", "", fuserr.Invalidf("please specify exactly two resolution tags, got %d", len(tags))
	}
	high, low = tags[0], tags[1]
	ch, cl := mri.Count(high), mri.Count(low)
	switch {
	case ch > cl:
		high, low = low, high
	case ch == cl:
		return "", "", fuserr.Invalidf("tags %q and %q both have %d dates; cannot determine which is high resolution", high, low, ch)
	}
	return high, low, nil
}

// PrefixPostfix resolves out-prefix/out-postfix, falling back to
// fallbackPrefix when both are empty (to avoid filename clashes with
// the source images), matching original_source's getPrefixAndPostfix.
func PrefixPostfix(res *optparse.Result, fallbackPrefix string) (prefix, postfix string) {
	if o, ok := res.First("out-prefix"); ok {
		prefix = o.Raw
	}
	if o, ok := res.First("out-postfix"); ok {
		postfix = o.Raw
	}
	if prefix == "" && postfix == "" {
		prefix = fallbackPrefix
	}
	return prefix, postfix
}

// OutputFileName builds "<prefix><date2>_from_<date1>[_and_<date3>]<postfix>.<ext>"
// per spec §6, collapsing to the original stem when date1==date2==date3.
func OutputFileName(origPath, prefix, postfix, ext string, date1, date2, date3 int) string {
	if date1 == date2 && date2 == date3 {
		stem := strings.TrimSuffix(filepath.Base(origPath), filepath.Ext(origPath))
		return fmt.Sprintf("%s%s%s.%s", prefix, stem, postfix, ext)
	}
	name := fmt.Sprintf("%d_from_%d", date2, date1)
	if date3 != 0 && date3 != date1 {
		name = fmt.Sprintf("%s_and_%d", name, date3)
	}
	return fmt.Sprintf("%s%s%s.%s", prefix, name, postfix, ext)
}

// CollectImageSpecs pulls every "img" option out of res as its checked
// value type; CollectMaskSpecs does the same for "mask-img".
func CollectImageSpecs(res *optparse.Result) []optparse.ImageSpec {
	var out []optparse.ImageSpec
	for _, o := range res.ByID["img"] {
		out = append(out, o.Value.(optparse.ImageSpec))
	}
	return out
}

func CollectMaskSpecs(res *optparse.Result) []optparse.MaskSpec {
	var out []optparse.MaskSpec
	for _, o := range res.ByID["mask-img"] {
		out = append(out, o.Value.(optparse.MaskSpec))
	}
	return out
}

// BuildCollection loads every image spec into a MultiRes collection
// keyed by (tag, date) and returns the parallel geo.Info collection
// and a (tag, date) -> source-path collection used for output naming.
// Every spec must carry a date (requireDate) when building fusion
// inputs; with requireDate=false a spec without a date is keyed by its
// index in specs.
func BuildCollection(reg *driver.Registry, specs []optparse.ImageSpec, requireDate bool) (*collection.MultiRes[*raster.Image], *collection.MultiRes[geo.Info], *collection.MultiRes[string], error) {
	images := collection.New[*raster.Image]()
	infos := collection.New[geo.Info]()
	paths := collection.New[string]()
	for i, spec := range specs {
		if requireDate && !spec.HasDate {
			return nil, nil, nil, fuserr.Invalidf("image %q requires -d/--date", spec.File)
		}
		date := int(spec.Date)
		if !spec.HasDate {
			date = i
		}
		img, gi, err := LoadImage(reg, spec)
		if err != nil {
			return nil, nil, nil, err
		}
		images.Set(spec.Tag, date, img)
		infos.Set(spec.Tag, date, gi)
		paths.Set(spec.Tag, date, spec.File)
	}
	return images, infos, paths, nil
}
