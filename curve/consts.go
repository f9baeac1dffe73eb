package curve

const (
	// postbomb curves are resampled to this calendar step before splicing
	PostbombStep = 0.1

	IdentitySpan    = 5.0 // identity curves cover mean +- IdentitySpan * error
	IdentityStep    = 5.0
	IdentityMinRows = 5
	IdentityMaxRows = 100

	// published csv curves start with this many header lines
	CsvHeaderLines = 11
)

var standardCurveFiles = map[string]string{
	"IntCal20": "3Col_intcal20.14C",
	"Marine20": "3Col_marine20.14C",
	"SHCal20":  "3Col_shcal20.14C",
	"mixed":    "mixed.14C",
}
