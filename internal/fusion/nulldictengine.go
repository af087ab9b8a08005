package fusion

import (
	"github.com/fusionkit/imgfusion/internal/fuserr"
	"github.com/fusionkit/imgfusion/internal/raster"
)

// NullDictionaryEngine extends NullEngine with a no-op dictionary,
// satisfying DictionaryEngine for drivers (spstfm) whose facade
// requires a train/dictionary step the algorithm itself is out of
// scope for (spec §1 Non-goals).
type NullDictionaryEngine struct {
	NullEngine
	dicts map[int][]float64
}

func NewNullDictionaryEngine() *NullDictionaryEngine {
	return &NullDictionaryEngine{dicts: map[int][]float64{}}
}

// Train is a no-op: the reference engine has no learned state.
func (e *NullDictionaryEngine) Train(mask *raster.Image) error { return nil }

func (e *NullDictionaryEngine) GetDictionary(channel int) ([]float64, error) {
	d, ok := e.dicts[channel]
	if !ok {
		return nil, fuserr.Logicf("nullDictionaryEngine: no dictionary set for channel %d", channel)
	}
	return d, nil
}

func (e *NullDictionaryEngine) SetDictionary(dict []float64, channel int) error {
	e.dicts[channel] = dict
	return nil
}
