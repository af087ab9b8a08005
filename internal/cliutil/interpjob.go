package cliutil

import (
	"fmt"

	"github.com/fusionkit/imgfusion/internal/driver"
	"github.com/fusionkit/imgfusion/internal/geo"
	"github.com/fusionkit/imgfusion/internal/interp"
	"github.com/fusionkit/imgfusion/internal/optparse"
)

// InterpJobDescriptors returns imginterp's own option descriptors
// layered on top of CommonDescriptors, shared between the standalone
// imginterp binary and imginterpjob's per-line batch runner.
func InterpJobDescriptors() []*optparse.Descriptor {
	return append(CommonDescriptors(),
		&optparse.Descriptor{ID: "target-date", Long: "target-date", TakesArg: true, Checker: optparse.IntChecker()},
		&optparse.Descriptor{ID: "date-limit", Long: "date-limit", TakesArg: true, Checker: optparse.IntChecker()},
		&optparse.Descriptor{ID: "enable-interp-invalid", Long: "enable-interp-invalid", TakesArg: false},
		&optparse.Descriptor{ID: "disable-interp-invalid", Long: "disable-interp-invalid", TakesArg: false},
		&optparse.Descriptor{ID: "out-img", Long: "out-img", TakesArg: true},
		&optparse.Descriptor{ID: "out-mask-img", Long: "out-mask-img", TakesArg: true},
	)
}

// RunInterpJob parses one imginterp-style argument line against reg
// and writes its predicted image (and optional pixel-state mask).
// Shared by cmd/imginterp (one line, from os.Args) and
// cmd/imginterpjob (one line per job-file entry).
func RunInterpJob(reg *driver.Registry, argv []string) (string, error) {
	parser := optparse.New(optparse.Config{OptionsMayFollowNonOptions: true, AbbrevMinLen: 3}, InterpJobDescriptors()...)
	res, err := parser.Parse(argv)
	if err != nil {
		return "", err
	}
	if _, ok := res.First("help-formats"); ok {
		PrintHelpFormats(reg)
		return "", nil
	}

	specs := CollectImageSpecs(res)
	if len(specs) == 0 {
		return "", fmt.Errorf("imginterp: at least one -i/--img donor is required")
	}
	td, ok := res.First("target-date")
	if !ok {
		return "", fmt.Errorf("imginterp: --target-date is required")
	}
	targetDate := int(td.Value.(int64))

	series := interp.Series{}
	var origPath string
	var firstInfo geo.Info
	for _, s := range specs {
		if !s.HasDate {
			return "", fmt.Errorf("imginterp: donor %q requires -d/--date", s.File)
		}
		img, gi, err := LoadImage(reg, s)
		if err != nil {
			return "", fmt.Errorf("loading donor %q: %w", s.File, err)
		}
		series.Dates = append(series.Dates, int(s.Date))
		series.Images = append(series.Images, img)
		if len(series.Images) == 1 {
			firstInfo = gi
		}
		if int(s.Date) == targetDate || origPath == "" {
			origPath = s.File
		}
	}

	maskSpecs := CollectMaskSpecs(res)
	if len(maskSpecs) > 0 {
		mask, err := CombineMasks(reg, maskSpecs, series.Images[0].Channels())
		if err != nil {
			return "", err
		}
		for range series.Images {
			series.ValidMask = append(series.ValidMask, mask)
		}
	}

	opts := interp.Options{}
	if dl, ok := res.First("date-limit"); ok {
		opts.DateLimit = int(dl.Value.(int64))
	}
	for _, o := range res.Options {
		switch o.ID {
		case "enable-interp-invalid":
			opts.InterpolateInvalid = true
		case "disable-interp-invalid":
			opts.InterpolateInvalid = false
		}
	}

	value, state, err := interp.Interpolate(series, targetDate, opts)
	if err != nil {
		return "", err
	}

	prefix, postfix := PrefixPostfix(res, "interp_")
	ext := "tif"
	if f, ok := res.First("out-format"); ok {
		ext = f.Raw
	}
	outPath := OutputFileName(origPath, prefix, postfix, ext, targetDate, targetDate, 0)
	if o, ok := res.First("out-img"); ok {
		outPath = o.Raw
	}
	if err := driver.WriteImage(reg, outPath, value, firstInfo, driver.WriteOptions{Prefix: prefix}); err != nil {
		return "", err
	}

	if o, ok := res.First("out-mask-img"); ok {
		if err := driver.WriteImage(reg, o.Raw, state, firstInfo, driver.WriteOptions{}); err != nil {
			return "", err
		}
	}
	return outPath, nil
}
