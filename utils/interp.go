package utils

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// Approx linearly interpolates the points (xs, ys) at each of at. xs may be
// in any order; duplicated xs keep their first y. With clamp set, queries
// outside the range of xs get the nearest end value, otherwise NaN.
func Approx(xs, ys, at []float64, clamp bool) []float64 {
	res := make([]float64, len(at))
	sx, sy := sortedUnique(xs, ys)

	switch len(sx) {
	case 0:
		for i := range res {
			res[i] = math.NaN()
		}
		return res
	case 1:
		for i, x := range at {
			if clamp || x == sx[0] {
				res[i] = sy[0]
			} else {
				res[i] = math.NaN()
			}
		}
		return res
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(sx, sy); err != nil {
		for i := range res {
			res[i] = math.NaN()
		}
		return res
	}

	lo, hi := sx[0], sx[len(sx)-1]
	for i, x := range at {
		if math.IsNaN(x) || (!clamp && (x < lo || x > hi)) {
			res[i] = math.NaN()
			continue
		}
		res[i] = pl.Predict(x)
	}
	return res
}

func sortedUnique(xs, ys []float64) ([]float64, []float64) {
	n := IntMin(len(xs), len(ys))
	idx := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		idx = append(idx, i)
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })

	sx, sy := make([]float64, 0, len(idx)), make([]float64, 0, len(idx))
	for _, i := range idx {
		if len(sx) > 0 && xs[i] == sx[len(sx)-1] {
			continue
		}
		sx = append(sx, xs[i])
		sy = append(sy, ys[i])
	}
	return sx, sy
}
