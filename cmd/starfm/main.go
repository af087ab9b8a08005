// Command starfm fuses a high- and low-resolution image time series
// using the STARFM facade contract (spec §4.I). The specific STARFM
// prediction math is an explicit non-goal (spec §1); this driver
// wires the full CLI/planner/facade plumbing around
// fusion.NewNullEngine, the reference engine, so an implementer can
// drop in a real STARFM engine behind the same fusion.Engine
// interface without touching this file.
//
// Grounded on original_source/src/utils/starfm/main.cpp's option
// grammar (the six global mask-range flags, --win-size,
// --num-classes, --log-scale-factor, --pred-area) and on the
// teacher's cmd/geotiff2pmtiles/main.go settings-summary-then-run
// structure.
package main

import (
	"fmt"
	"os"

	"github.com/fusionkit/imgfusion/internal/cliutil"
	"github.com/fusionkit/imgfusion/internal/driver"
	"github.com/fusionkit/imgfusion/internal/fusion"
	"github.com/fusionkit/imgfusion/internal/geo"
	"github.com/fusionkit/imgfusion/internal/logctx"
	"github.com/fusionkit/imgfusion/internal/optparse"
	"github.com/fusionkit/imgfusion/internal/planner"
	"github.com/fusionkit/imgfusion/internal/raster"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		logctx.Default(false).Error("starfm", "error", err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	descs := append(cliutil.CommonDescriptors(),
		&optparse.Descriptor{ID: "win-size", Long: "win-size", TakesArg: true, Checker: optparse.IntChecker()},
		&optparse.Descriptor{ID: "num-classes", Long: "num-classes", TakesArg: true, Checker: optparse.IntChecker()},
		&optparse.Descriptor{ID: "log-scale-factor", Long: "log-scale-factor", TakesArg: true, Checker: optparse.FloatChecker()},
		&optparse.Descriptor{ID: "temp-uncertainty", Long: "temp-uncertainty", TakesArg: true, Checker: optparse.FloatChecker()},
		&optparse.Descriptor{ID: "spec-uncertainty", Long: "spec-uncertainty", TakesArg: true, Checker: optparse.FloatChecker()},
		&optparse.Descriptor{ID: "single-pair", Long: "single-pair", TakesArg: false},
		&optparse.Descriptor{ID: "min-pairs", Long: "min-pairs", TakesArg: true, Checker: optparse.IntChecker()},
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
		fmt.Println("Usage: starfm -i <img> -i <img> ... [options]")
		return nil
	}

	specs := cliutil.CollectImageSpecs(res)
	images, infos, paths, err := cliutil.BuildCollection(reg, specs, true)
	if err != nil {
		return err
	}

	highTag, lowTag, err := cliutil.GetTags(images)
	if err != nil {
		return err
	}

	maskSpecs := cliutil.CollectMaskSpecs(res)
	baseMask, err := cliutil.CombineMasks(reg, maskSpecs, 0)
	if err != nil {
		return err
	}

	planOpts := planner.Options{MinPairs: 1, RemoveOrphanPredictionDates: true}
	if mp, ok := res.First("min-pairs"); ok {
		planOpts.MinPairs = int(mp.Value.(int64))
	}
	if _, ok := res.First("single-pair"); ok {
		planOpts.SinglePairMode = true
	}

	fusionOpts := fusion.Options{
		WindowSize:     51,
		NumClasses:     40,
		LogScaleFactor: 0.1,
	}
	if v, ok := res.First("win-size"); ok {
		fusionOpts.WindowSize = int(v.Value.(int64))
	}
	if v, ok := res.First("num-classes"); ok {
		fusionOpts.NumClasses = int(v.Value.(int64))
	}
	if v, ok := res.First("log-scale-factor"); ok {
		fusionOpts.LogScaleFactor = v.Value.(float64)
	}
	if v, ok := res.First("temp-uncertainty"); ok {
		fusionOpts.TemporalUncertainty = v.Value.(float64)
	}
	if v, ok := res.First("spec-uncertainty"); ok {
		fusionOpts.SpectralUncertainty = v.Value.(float64)
	}
	if v, ok := res.First("pred-area"); ok {
		r := v.Value.(raster.Rect)
		fusionOpts.PredictionArea = geo.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H}
	}

	prefix, postfix := cliutil.PrefixPostfix(res, "starfm_")
	ext := "tif"
	if f, ok := res.First("out-format"); ok {
		ext = f.Raw
	}

	written, err := cliutil.RunFusionJobs(cliutil.FusionRunParams{
		Reg:        reg,
		Engine:     fusion.NewNullEngine(),
		Images:     images,
		Infos:      infos,
		Paths:      paths,
		HighTag:    highTag,
		LowTag:     lowTag,
		BaseMask:   baseMask,
		Ranges:     cliutil.CombineRanges(res),
		PlanOpts:   planOpts,
		FusionOpts: fusionOpts,
		Prefix:     prefix,
		Postfix:    postfix,
		Ext:        ext,
	})
	if err != nil {
		return err
	}
	for _, w := range written {
		fmt.Println(w)
	}
	return nil
}
