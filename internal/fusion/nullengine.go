package fusion

import (
	"github.com/fusionkit/imgfusion/internal/collection"
	"github.com/fusionkit/imgfusion/internal/fuserr"
	"github.com/fusionkit/imgfusion/internal/raster"
)

// NullEngine is the facade's reference implementation: it predicts a
// target date by cloning the nearest available high-resolution-tag
// image, with no learning step. Used by the CLI drivers as their
// prediction engine and by facade-contract tests.
type NullEngine struct {
	mri    *collection.MultiRes[*raster.Image]
	opts   Options
	output *raster.Image
}

func NewNullEngine() *NullEngine { return &NullEngine{} }

func (e *NullEngine) SrcImages(mri *collection.MultiRes[*raster.Image]) { e.mri = mri }

func (e *NullEngine) ProcessOptions(opts Options) error {
	if opts.HighResTag == "" {
		return fuserr.Invalidf("nullEngine requires a HighResTag")
	}
	e.opts = opts
	return nil
}

// Predict clones the nearest-by-date high-resolution image as the
// output for every pixel; mask is accepted for the interface but not
// used.
func (e *NullEngine) Predict(targetDate int, mask *raster.Image) error {
	if e.mri == nil {
		return fuserr.Logicf("nullEngine.Predict called before SrcImages")
	}
	dates := e.mri.GetDates(e.opts.HighResTag)
	if len(dates) == 0 {
		return fuserr.Invalidf("no images available under tag %q", e.opts.HighResTag)
	}
	nearest := dates[0]
	for _, d := range dates {
		if abs(d-targetDate) < abs(nearest-targetDate) {
			nearest = d
		}
	}
	src, err := e.mri.Get(e.opts.HighResTag, nearest)
	if err != nil {
		return err
	}
	out, err := src.Clone()
	if err != nil {
		return err
	}
	e.output = out
	_ = mask // mask composition is the caller's (planner's) responsibility for NullEngine
	return nil
}

func (e *NullEngine) OutputImage() (*raster.Image, error) {
	if e.output == nil {
		return nil, fuserr.Logicf("nullEngine.OutputImage called before Predict")
	}
	return e.output, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
