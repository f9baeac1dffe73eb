package kde

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

type BandWidth interface {
	BandWidth([]float64) float64
}

type NormalReferenceBandWidth struct {
	kernel Kernel
}

func NewNormalReferenceBandWidth(kernel Kernel) *NormalReferenceBandWidth {
	if kernel == nil {
		kernel = NewGaussianKernel()
	}
	return &NormalReferenceBandWidth{
		kernel: kernel,
	}
}

// BandWidth expects x sorted.
func (bw *NormalReferenceBandWidth) BandWidth(x []float64) float64 {
	C := bw.kernel.NormalReferenceConstant()
	A := selectSigma(x)
	n := len(x)
	return C * A * math.Pow(float64(n), -0.2)
}

func selectSigma(x []float64) float64 {
	normalize := 1.349

	q75 := stat.Quantile(0.75, stat.Empirical, x, nil)
	q25 := stat.Quantile(0.25, stat.Empirical, x, nil)
	iqr := (q75 - q25) / normalize

	stdDev := 0.0
	if len(x) > 1 {
		stdDev = stat.StdDev(x, nil)
	}

	sigma := stdDev
	if iqr > 0 && iqr < stdDev {
		sigma = iqr
	}
	if sigma > 0 {
		return sigma
	}

	// identical samples, fall back on their magnitude like bw.nrd0
	if x0 := math.Abs(x[0]); x0 > 0 {
		return x0
	}
	return 1
}
