package calib

const (
	// points at or below this probability are dropped from a calibrated date
	DefaultCutoff = 0.001
	// a date keeps its sparse support only with more than MinSupport points
	MinSupport = 5
	// otherwise it is resampled onto this many evenly spaced ages
	ResampleSize = 100

	DefaultTA = 3.0
	DefaultTB = 4.0

	// LibbyMeanLife is the conventional radiocarbon mean life in years.
	LibbyMeanLife = 8033.0
)
