package cliutil

import (
	"github.com/fusionkit/imgfusion/internal/collection"
	"github.com/fusionkit/imgfusion/internal/driver"
	"github.com/fusionkit/imgfusion/internal/fusion"
	"github.com/fusionkit/imgfusion/internal/geo"
	"github.com/fusionkit/imgfusion/internal/interval"
	"github.com/fusionkit/imgfusion/internal/planner"
	"github.com/fusionkit/imgfusion/internal/raster"
)

// FusionRunParams bundles the inputs a starfm/spstfm/fitfc driver
// needs to turn a loaded image collection into written predictions.
type FusionRunParams struct {
	Reg        *driver.Registry
	Engine     fusion.Engine
	Images     *collection.MultiRes[*raster.Image]
	Infos      *collection.MultiRes[geo.Info]
	Paths      *collection.MultiRes[string]
	HighTag    string
	LowTag     string
	BaseMask   *raster.Image // AND of user-supplied mask images, or nil
	Ranges     RangePolarity
	PlanOpts   planner.Options
	FusionOpts fusion.Options
	Prefix     string
	Postfix    string
	Ext        string
}

// RunFusionJobs plans the pair/predict job map for HighTag/LowTag, and
// for every job runs Engine.Predict once per prediction date,
// composing the pair's mask via planner.PairMask and writing the
// result under cliutil's output-naming convention (spec §4.H/§6).
func RunFusionJobs(p FusionRunParams) ([]string, error) {
	highDates := p.Images.GetDates(p.HighTag)
	lowDates := p.Images.GetDates(p.LowTag)

	jobs, err := planner.Plan(highDates, lowDates, p.PlanOpts)
	if err != nil {
		return nil, err
	}

	p.Engine.SrcImages(p.Images)

	var written []string
	for _, job := range jobs {
		mask, err := p.pairMask(job)
		if err != nil {
			return nil, err
		}

		opts := p.FusionOpts
		opts.HighResTag, opts.LowResTag = p.HighTag, p.LowTag
		if len(job.Key.Dates) == 1 {
			opts.SinglePairDate = job.Key.Dates[0]
		} else {
			opts.SinglePairDate = 0
		}
		if err := p.Engine.ProcessOptions(opts); err != nil {
			return nil, err
		}

		for _, predictDate := range job.PredictDates {
			if err := p.Engine.Predict(predictDate, mask); err != nil {
				return nil, err
			}
			out, err := p.Engine.OutputImage()
			if err != nil {
				return nil, err
			}

			date1 := job.Key.Dates[0]
			date3 := 0
			if len(job.Key.Dates) == 2 {
				date3 = job.Key.Dates[1]
			}
			origin, _ := p.Paths.Get(p.HighTag, date1)
			outInfo, infoErr := p.Infos.Get(p.HighTag, date1)
			if infoErr != nil {
				outInfo, _ = p.Infos.Get(p.LowTag, date1)
			}

			outPath := OutputFileName(origin, p.Prefix, p.Postfix, p.Ext, date1, predictDate, date3)
			if err := driver.WriteImage(p.Reg, outPath, out, outInfo, driver.WriteOptions{Prefix: p.Prefix}); err != nil {
				return nil, err
			}
			written = append(written, outPath)
		}
	}
	return written, nil
}

func (p FusionRunParams) pairMask(job planner.Job) (*raster.Image, error) {
	date1 := job.Key.Dates[0]
	date2 := date1
	if len(job.Key.Dates) == 2 {
		date2 = job.Key.Dates[1]
	}
	highImg, err := p.Images.Get(p.HighTag, date1)
	if err != nil {
		return nil, err
	}
	lowImg, err := p.Images.Get(p.LowTag, date2)
	if err != nil {
		return nil, err
	}

	highValid := fullSets(highImg.Channels())
	lowValid := fullSets(lowImg.Channels())
	if p.Ranges.HasHigh {
		highValid = replicateSet(p.Ranges.High, highImg.Channels())
	}
	if p.Ranges.HasLow {
		lowValid = replicateSet(p.Ranges.Low, lowImg.Channels())
	}
	return planner.PairMask(p.BaseMask, highImg, highValid, lowImg, lowValid)
}

func fullSets(n int) []interval.Set {
	out := make([]interval.Set, n)
	for i := range out {
		out[i] = interval.Full()
	}
	return out
}

func replicateSet(s interval.Set, n int) []interval.Set {
	out := make([]interval.Set, n)
	for i := range out {
		out[i] = s
	}
	return out
}
