// Package fusion defines the image-fusion engine facade of spec §4.I:
// a uniform contract CLI drivers compose against, regardless of which
// concrete algorithm (STARFM, SPSTFM, FitFC) backs it. The algorithms
// themselves are out of scope (spec §1 Non-goals); this package ships
// the facade, its options, and a reference NullEngine.
//
// Grounded on the teacher's internal/encode.Encoder interface: a small
// capability contract several concrete backends implement uniformly,
// here applied to fusion algorithms instead of tile encoders.
package fusion

import (
	"github.com/fusionkit/imgfusion/internal/collection"
	"github.com/fusionkit/imgfusion/internal/geo"
	"github.com/fusionkit/imgfusion/internal/raster"
)

// SamplingStrategy names how a dictionary-based engine selects
// training patches.
type SamplingStrategy int

const (
	SamplingRandom SamplingStrategy = iota
	SamplingGrid
	SamplingStrided
)

// Options configures an Engine ahead of a predict call. Every field
// documented in spec §4.I is represented; engines that don't use a
// given hyperparameter simply ignore it.
type Options struct {
	HighResTag string
	LowResTag  string

	PredictionArea geo.Rect

	WindowSize          int
	NumClasses          int
	LogScaleFactor      float64
	DictionarySize      int
	PatchSize           int
	PatchOverlap        int
	Sampling            SamplingStrategy
	NumTrainingSamples  int
	TemporalUncertainty float64
	SpectralUncertainty float64
	CopyOnZeroDiff      bool
	StrictFiltering     bool
	SinglePairDate      int // 0 means "double-pair mode"
}

// Engine is the uniform fusion-algorithm contract. SrcImages binds the
// shared multi-resolution image collection; ProcessOptions configures
// the run; Predict writes the fused result for targetDate (restricted
// to mask) into the engine's internal output, retrievable via
// OutputImage.
type Engine interface {
	SrcImages(mri *collection.MultiRes[*raster.Image])
	ProcessOptions(opts Options) error
	Predict(targetDate int, mask *raster.Image) error
	OutputImage() (*raster.Image, error)
}

// DictionaryEngine is the sub-interface dictionary-based algorithms
// (SPSTFM-style) additionally implement.
type DictionaryEngine interface {
	Engine
	Train(mask *raster.Image) error
	GetDictionary(channel int) ([]float64, error)
	SetDictionary(dict []float64, channel int) error
}
