package calib

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/uyouii/agedepth-algorithms/model"
)

func Mean(d *model.CalibratedDistribution) float64 {
	if d.Len() == 0 {
		return math.NaN()
	}
	return stat.Mean(d.Ages, d.Probs)
}

func StdDev(d *model.CalibratedDistribution) float64 {
	if d.Len() == 0 {
		return math.NaN()
	}
	return math.Sqrt(stat.PopVariance(d.Ages, d.Probs))
}

// Mode returns the most probable age.
func Mode(d *model.CalibratedDistribution) float64 {
	if d.Len() == 0 {
		return math.NaN()
	}
	return d.Ages[floats.MaxIdx(d.Probs)]
}

// Quantile returns the first age whose cumulative probability reaches p.
func Quantile(d *model.CalibratedDistribution, p float64) float64 {
	if d.Len() == 0 {
		return math.NaN()
	}
	cum := 0.0
	for i, prob := range d.Probs {
		cum += prob
		if cum >= p {
			return d.Ages[i]
		}
	}
	return d.Ages[len(d.Ages)-1]
}

type Range struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
	Prob float64 `json:"prob"`
}

// HPD returns the highest posterior density ranges holding at least prob of
// the distribution, in order of increasing age.
func HPD(d *model.CalibratedDistribution, prob float64) []Range {
	n := d.Len()
	if n == 0 {
		return nil
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return d.Probs[order[a]] > d.Probs[order[b]] })

	selected := make([]bool, n)
	cum := 0.0
	for _, i := range order {
		selected[i] = true
		cum += d.Probs[i]
		if cum >= prob {
			break
		}
	}

	ranges := []Range{}
	for i := 0; i < n; i++ {
		if !selected[i] {
			continue
		}
		r := Range{From: d.Ages[i], To: d.Ages[i]}
		for ; i < n && selected[i]; i++ {
			r.To = d.Ages[i]
			r.Prob += d.Probs[i]
		}
		ranges = append(ranges, r)
	}
	return ranges
}
