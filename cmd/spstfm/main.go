// Command spstfm fuses a high- and low-resolution image time series
// using the SPSTFM facade contract (spec §4.I), which additionally
// requires a dictionary-training step ahead of prediction. The
// specific SPSTFM sparse-coding math is an explicit non-goal (spec
// §1); this driver wires the CLI/planner/facade/train plumbing around
// fusion.NewNullDictionaryEngine, the reference engine.
//
// Grounded on original_source/src/utils/spstfm/main.cpp's option
// grammar (--dict-size, --patch-size, --patch-overlap, --sampling)
// layered over the same planner/mask machinery starfm uses.
package main

import (
	"fmt"
	"os"
	"strings"

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
		logctx.Default(false).Error("spstfm", "error", err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	descs := append(cliutil.CommonDescriptors(),
		&optparse.Descriptor{ID: "dict-size", Long: "dict-size", TakesArg: true, Checker: optparse.IntChecker()},
		&optparse.Descriptor{ID: "patch-size", Long: "patch-size", TakesArg: true, Checker: optparse.IntChecker()},
		&optparse.Descriptor{ID: "patch-overlap", Long: "patch-overlap", TakesArg: true, Checker: optparse.IntChecker()},
		&optparse.Descriptor{ID: "num-training-samples", Long: "num-training-samples", TakesArg: true, Checker: optparse.IntChecker()},
		&optparse.Descriptor{ID: "sampling", Long: "sampling", TakesArg: true},
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
		fmt.Println("Usage: spstfm -i <img> -i <img> ... [options]")
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

	fusionOpts := fusion.Options{
		DictionarySize: 256,
		PatchSize:      7,
		PatchOverlap:   4,
		Sampling:       fusion.SamplingRandom,
	}
	if v, ok := res.First("dict-size"); ok {
		fusionOpts.DictionarySize = int(v.Value.(int64))
	}
	if v, ok := res.First("patch-size"); ok {
		fusionOpts.PatchSize = int(v.Value.(int64))
	}
	if v, ok := res.First("patch-overlap"); ok {
		fusionOpts.PatchOverlap = int(v.Value.(int64))
	}
	if v, ok := res.First("num-training-samples"); ok {
		fusionOpts.NumTrainingSamples = int(v.Value.(int64))
	}
	if v, ok := res.First("sampling"); ok {
		switch strings.ToLower(v.Raw) {
		case "grid":
			fusionOpts.Sampling = fusion.SamplingGrid
		case "strided":
			fusionOpts.Sampling = fusion.SamplingStrided
		default:
			fusionOpts.Sampling = fusion.SamplingRandom
		}
	}
	if v, ok := res.First("pred-area"); ok {
		r := v.Value.(raster.Rect)
		fusionOpts.PredictionArea = geo.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H}
	}

	engine := fusion.NewNullDictionaryEngine()
	engine.SrcImages(images)
	if err := engine.ProcessOptions(fusion.Options{HighResTag: highTag, LowResTag: lowTag}); err != nil {
		return err
	}
	if err := engine.Train(baseMask); err != nil {
		return err
	}

	prefix, postfix := cliutil.PrefixPostfix(res, "spstfm_")
	ext := "tif"
	if f, ok := res.First("out-format"); ok {
		ext = f.Raw
	}

	written, err := cliutil.RunFusionJobs(cliutil.FusionRunParams{
		Reg:        reg,
		Engine:     engine,
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
