// Command imgcompare reports per-channel statistics for one image, or
// the absolute-difference statistics between two images, optionally
// restricted by a composed mask.
//
// Grounded on original_source/utils/imgcompare/main.cpp: single-image
// mode (stats + mask export) vs. two-image comparison mode (absdiff +
// stats), re-expressed against optparse/driver/raster. The original's
// gnuplot-backed histogram and scatter plots are dropped — see
// DESIGN.md (no charting library exists in the teacher's or the
// pack's stack, so there is nothing to ground a Go port of that
// feature on).
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/fusionkit/imgfusion/internal/cliutil"
	"github.com/fusionkit/imgfusion/internal/driver"
	"github.com/fusionkit/imgfusion/internal/geo"
	"github.com/fusionkit/imgfusion/internal/interval"
	"github.com/fusionkit/imgfusion/internal/logctx"
	"github.com/fusionkit/imgfusion/internal/optparse"
	"github.com/fusionkit/imgfusion/internal/raster"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		logctx.Default(false).Error("imgcompare", "error", err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	descs := append(cliutil.CommonDescriptors(),
		&optparse.Descriptor{ID: "at", Long: "at", TakesArg: true, Checker: optparse.PointChecker()},
		&optparse.Descriptor{ID: "out-mask", Long: "out-mask", TakesArg: true},
		&optparse.Descriptor{ID: "out-diff", Long: "out-diff", TakesArg: true},
		&optparse.Descriptor{ID: "out-diff-bin", Long: "out-diff-bin", TakesArg: true},
	)
	parser := optparse.New(optparse.Config{OptionsMayFollowNonOptions: true, AbbrevMinLen: 3}, descs...)
	res, err := parser.Parse(argv)
	if err != nil {
		return err
	}
	reg := driver.Default()
	if _, ok := res.First("help-formats"); ok {
		cliutil.PrintHelpFormats(reg)
		return nil
	}
	if _, ok := res.First("help"); ok || len(argv) == 0 {
		fmt.Println("Usage: imgcompare -i <img> [-i <img>] [options]")
		return nil
	}

	specs := cliutil.CollectImageSpecs(res)
	for _, a := range res.Args {
		specs = append(specs, optparse.ImageSpec{File: a})
	}
	if len(specs) != 1 && len(specs) != 2 {
		return fmt.Errorf("please specify 1 or 2 images, got %d", len(specs))
	}

	images := make([]*raster.Image, len(specs))
	infos := make([]geo.Info, len(specs))
	for i, s := range specs {
		img, gi, err := cliutil.LoadImage(reg, s)
		if err != nil {
			return fmt.Errorf("loading image %q: %w", s.File, err)
		}
		images[i], infos[i] = img, gi
	}

	single := len(images) == 1
	if !single {
		if images[0].Channels() != images[1].Channels() {
			return fmt.Errorf("images have different channel counts: %d and %d", images[0].Channels(), images[1].Channels())
		}
		if images[0].BaseType() != images[1].BaseType() {
			return fmt.Errorf("images have different types: %v and %v", images[0].BaseType(), images[1].BaseType())
		}
		if images[0].Width() != images[1].Width() || images[0].Height() != images[1].Height() {
			return fmt.Errorf("images have different sizes")
		}
	}

	maskSpecs := cliutil.CollectMaskSpecs(res)
	mask, err := cliutil.CombineMasks(reg, maskSpecs, images[0].Channels())
	if err != nil {
		return err
	}

	rp := cliutil.CombineRanges(res)
	if rp.HasHigh {
		sets := make([]interval.Set, images[0].Channels())
		for c := range sets {
			sets[c] = rp.High
		}
		rangeMask, err := images[0].CreateMultiChannelMaskFromRange(sets, nil)
		if err != nil {
			return err
		}
		mask, err = andMasks(mask, rangeMask)
		if err != nil {
			return err
		}
	}

	if o, ok := res.First("out-mask"); ok && mask != nil {
		if err := driver.WriteImage(reg, o.Raw, mask, infos[0], driver.WriteOptions{}); err != nil {
			return err
		}
	}

	if single {
		return printStats(images[0], mask)
	}

	diff, err := images[0].AbsDiff(images[1])
	if err != nil {
		return err
	}
	if mask != nil {
		inv, err := mask.BitwiseNot()
		if err != nil {
			return err
		}
		if err := diff.SetValue(0, inv); err != nil {
			return err
		}
	}

	if o, ok := res.First("out-diff"); ok {
		if err := driver.WriteImage(reg, o.Raw, diff, infos[0], driver.WriteOptions{}); err != nil {
			return err
		}
	}
	if o, ok := res.First("out-diff-bin"); ok {
		sets := make([]interval.Set, diff.Channels())
		for c := range sets {
			sets[c] = interval.NewSet(interval.Open(0, math.Inf(1)))
		}
		bin, err := diff.CreateMultiChannelMaskFromRange(sets, nil)
		if err != nil {
			return err
		}
		if err := driver.WriteImage(reg, o.Raw, bin, infos[0], driver.WriteOptions{}); err != nil {
			return err
		}
	}

	if err := printStats(diff, mask); err != nil {
		return err
	}

	for _, o := range res.Get("at") {
		pt := o.Value.([2]float64)
		x, y := int(pt[0]), int(pt[1])
		if x < 0 || y < 0 || x >= images[0].Width() || y >= images[0].Height() {
			fmt.Printf("cannot print pixel at (%d, %d): out of bounds\n", x, y)
			continue
		}
		printPixel("i0", images[0], x, y)
		if !single {
			printPixel("i1", images[1], x, y)
			printPixel("diff", diff, x, y)
		}
	}
	return nil
}

func andMasks(a, b *raster.Image) (*raster.Image, error) {
	switch {
	case a == nil:
		return b, nil
	case b == nil:
		return a, nil
	default:
		return a.BitwiseAnd(b)
	}
}

func printPixel(label string, img *raster.Image, x, y int) {
	fmt.Printf("%s(%d,%d):", label, x, y)
	for c := 0; c < img.Channels(); c++ {
		fmt.Printf(" %g", img.GetPixel(x, y, c))
	}
	fmt.Println()
}

func printStats(img *raster.Image, mask *raster.Image) error {
	for c := 0; c < img.Channels(); c++ {
		mm, err := img.MinMaxLocations(c, mask)
		if err != nil {
			return err
		}
		mean, err := img.Mean(mask)
		if err != nil {
			return err
		}
		_, stddev, err := img.MeanStdDev(mask)
		if err != nil {
			return err
		}
		if img.Channels() > 1 {
			fmt.Printf("Channel %d:\n", c)
		}
		fmt.Printf("  Min: %g at (%d,%d)\n  Max: %g at (%d,%d)\n  Mean: %g\n  Std. dev.: %g\n",
			mm.Min, mm.MinX, mm.MinY, mm.Max, mm.MaxX, mm.MaxY, mean[c], stddev[c])
	}
	return nil
}
