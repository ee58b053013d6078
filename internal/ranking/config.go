// Package ranking recomputes the final composite score for fused
// candidates as a weighted blend of normalized per-signal contributions.
package ranking

// Weights for the four composite score signals. These are operational
// tuning parameters, not fixed constants; they load from configuration so
// ranking can be adjusted without code changes.
type Weights struct {
	Vector  float64 `yaml:"vector"`
	Lexical float64 `yaml:"lexical"`
	Title   float64 `yaml:"title"`
	Label   float64 `yaml:"label"`
}

// DefaultWeights returns the documented default blend.
func DefaultWeights() Weights {
	return Weights{
		Vector:  0.40,
		Lexical: 0.35,
		Title:   0.15,
		Label:   0.10,
	}
}

// ApplyDefaults fills zero values with defaults.
func (w *Weights) ApplyDefaults() {
	def := DefaultWeights()
	if w.Vector == 0 {
		w.Vector = def.Vector
	}
	if w.Lexical == 0 {
		w.Lexical = def.Lexical
	}
	if w.Title == 0 {
		w.Title = def.Title
	}
	if w.Label == 0 {
		w.Label = def.Label
	}
}

// normalized returns the weights scaled to sum to 1, so the composite
// score stays in [0,1] no matter how the tunables are set.
func (w Weights) normalized() Weights {
	sum := w.Vector + w.Lexical + w.Title + w.Label
	if sum <= 0 {
		return DefaultWeights()
	}
	return Weights{
		Vector:  w.Vector / sum,
		Lexical: w.Lexical / sum,
		Title:   w.Title / sum,
		Label:   w.Label / sum,
	}
}
