package model

type Clip struct {
	Lower float64
	Upper float64
}

type Density struct {
	X     float64 `json:"x"`
	Value float64 `json:"y"`
}

type Cdf struct {
	X     float64
	Value float64
}

type QuantileValue struct {
	Value    float64 `json:"v,omitempty"`
	Quantile float64 `json:"q,omitempty"`
}

type ConfidenceInterval struct {
	Lower *QuantileValue `json:"l,omitempty"`
	Upper *QuantileValue `json:"u,omitempty"`
}

// DensityField is a ghost plot: one kernel density per query point, scaled so
// the highest density over all points equals Peak.
// Points without enough samples have nil Densities and NaN summaries.
type DensityField struct {
	QueryPoints []float64   `json:"points"`
	Densities   [][]Density `json:"densities"`
	Lower       []float64   `json:"lower"`
	Upper       []float64   `json:"upper"`
	Mean        []float64   `json:"mean"`
	SampleCount []int       `json:"n"`
	Prob        float64     `json:"prob"`
	Peak        float64     `json:"peak"`
	// MaxDensity is the unscaled maximum used for the rescaling.
	MaxDensity float64 `json:"max_density"`
}

func (f *DensityField) Len() int {
	if f == nil {
		return 0
	}
	return len(f.QueryPoints)
}

func (f *DensityField) Defined(i int) bool {
	return f != nil && i >= 0 && i < len(f.Densities) && len(f.Densities[i]) > 0
}
