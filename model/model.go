package model

import (
	"fmt"
	"math"
)

// CalBPReference is the calendar year of 0 cal BP.
const CalBPReference = 1950

// CurvePoint is one row of a calibration curve.
type CurvePoint struct {
	CalAge float64 `json:"cal_bp"`
	Mean   float64 `json:"mean"`
	Error  float64 `json:"error"`
}

type CurveID int

const (
	// CurveDefault defers to the batch-wide default curve.
	CurveDefault CurveID = iota
	CurveIntCal20
	CurveMarine20
	CurveSHCal20
	CurveMixed
	// CurveNone marks calendar-scale dates, calibrated against an identity curve.
	CurveNone
)

func (id CurveID) String() string {
	switch id {
	case CurveDefault:
		return "default"
	case CurveIntCal20:
		return "IntCal20"
	case CurveMarine20:
		return "Marine20"
	case CurveSHCal20:
		return "SHCal20"
	case CurveMixed:
		return "mixed"
	case CurveNone:
		return "none"
	}
	return fmt.Sprintf("CurveID(%d)", int(id))
}

// Offset is a reservoir age offset (delta.R, delta.STD) for radiocarbon dates.
type Offset struct {
	Mean  float64 `json:"delta_r"`
	Error float64 `json:"delta_std"`
}

// NoiseModel selects the date likelihood: Gaussian, or the Student-t
// parameterisation with shape parameters TA and TB.
type NoiseModel struct {
	Normal bool    `json:"normal"`
	TA     float64 `json:"t_a"`
	TB     float64 `json:"t_b"`
}

// Symmetric reports whether TB - TA == 1, required for the Student-t model.
func (n NoiseModel) Symmetric() bool {
	return math.Abs(n.TB-n.TA-1) < 1e-9
}

type DateCore struct {
	ID    string  `json:"id"`
	Depth float64 `json:"depth"`
	Mean  float64 `json:"mean"`
	Error float64 `json:"error"`
	// Noise overrides the batch noise model when set.
	Noise *NoiseModel `json:"noise,omitempty"`
}

func (c DateCore) Core() DateCore { return c }

// DateRecord is one of RadiocarbonDate, CalendarDate or PbActivityDate.
type DateRecord interface {
	Core() DateCore
	isDateRecord()
}

type RadiocarbonDate struct {
	DateCore
	Curve CurveID `json:"cc"`
	// Offset overrides the batch reservoir offset when set. A NaN field keeps
	// the batch value.
	Offset *Offset `json:"offset,omitempty"`
}

// CalendarDate is already on the cal BP scale.
type CalendarDate struct {
	DateCore
}

// PbActivityDate is a Pb-210 activity measurement, never curve-calibrated.
type PbActivityDate struct {
	DateCore
}

func (RadiocarbonDate) isDateRecord() {}
func (CalendarDate) isDateRecord()    {}
func (PbActivityDate) isDateRecord()  {}

// CalibratedDistribution is a discrete probability mass function over cal BP
// ages, sorted by increasing age and summing to one.
type CalibratedDistribution struct {
	ID    string    `json:"id,omitempty"`
	Depth float64   `json:"depth"`
	Ages  []float64 `json:"ages"`
	Probs []float64 `json:"probs"`
}

func (d *CalibratedDistribution) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Ages)
}
