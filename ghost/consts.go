package ghost

const (
	DefaultProb = 0.95
	DefaultPeak = 1.0
	// densities below DefaultCutoff*Peak are not drawn
	DefaultCutoff = 0.001
)

// values read as missing in flux files
var missingValues = map[string]bool{
	"":    true,
	"NA":  true,
	"NaN": true,
	"nan": true,
}
