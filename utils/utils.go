package utils

import "math"

func FormatFloat(f float64, round int32) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	scale := math.Pow(10, float64(round))
	return math.Round(f*scale) / scale
}

func Linspace(start, stop float64, num int) []float64 {
	if num < 2 {
		return []float64{start}
	}
	step := (stop - start) / float64(num-1)
	grid := make([]float64, num)
	for i := 0; i < num; i++ {
		grid[i] = start + float64(i)*step
	}
	grid[num-1] = stop
	return grid
}

// Seq returns from, from+by, ... up to and including to (within half a step).
// by must point from `from` towards `to`.
func Seq(from, to, by float64) []float64 {
	if by == 0 || (to-from)/by < 0 {
		return []float64{from}
	}
	n := int(math.Floor((to-from)/by+1e-9)) + 1
	res := make([]float64, n)
	for i := 0; i < n; i++ {
		res[i] = from + float64(i)*by
	}
	return res
}

func IntMin(a, b int) int {
	if a < b {
		return a
	}
	return b
}
