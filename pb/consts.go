package pb

// Lambda is the Pb-210 decay constant per year.
const Lambda = 0.03114

type Unit int

const (
	// BqPerKg activities are in Bq/kg.
	BqPerKg Unit = iota
	// DpmPerGram activities are in dpm/g.
	DpmPerGram
)

func (u Unit) factor() float64 {
	if u == DpmPerGram {
		return 500
	}
	return 10
}

func (u Unit) String() string {
	if u == DpmPerGram {
		return "dpm/g"
	}
	return "Bq/kg"
}
