package calib

import "math"

func LogSumExp(data []float64) float64 {
	max := math.Inf(-1)
	for _, v := range data {
		max = math.Max(max, v)
	}
	if math.IsInf(max, 0) {
		return max
	}
	res := 0.0
	for i := range data {
		res += math.Exp(data[i] - max)
	}
	return math.Log(res) + max
}

// NormalizeData shifts log weights so their exponentials sum to one.
func NormalizeData(data []float64) []float64 {
	logSum := LogSumExp(data)
	res := make([]float64, len(data))
	for i := range data {
		res[i] = data[i] - logSum
	}
	return res
}

func ListExp(data []float64) []float64 {
	res := make([]float64, len(data))
	for i, v := range data {
		res[i] = math.Exp(v)
	}
	return res
}
