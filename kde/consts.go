package kde

const (
	// grid points of a density estimate, as in R's density()
	DefaultGridSize = 512

	// the grid extends DefaultCut bandwidths past the data, never below zero
	DefaultCut = 3.0

	DefaultBwAdjust = 1.0

	// fewer samples than this give no density
	MinSampleCnt = 2

	// Gauss-Legendre nodes per grid interval when integrating the CDF
	CdfQuadNodes = 50
)
