package curve

import (
	"fmt"
	"math"

	"github.com/uyouii/agedepth-algorithms/common"
	"github.com/uyouii/agedepth-algorithms/model"
	"github.com/uyouii/agedepth-algorithms/utils"
)

// Identity builds the 1:1 curve used for calendar-scale and activity dates:
// calendar age equals the measurement and the curve error is zero. It spans
// mean +- IdentitySpan*error in IdentityStep steps, resampled evenly when
// that gives fewer than IdentityMinRows or more than IdentityMaxRows rows.
func Identity(mean, sdev float64) (*Curve, error) {
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return nil, common.InvalidValuef("identity curve mean %v", mean)
	}
	if !(sdev > 0) || math.IsInf(sdev, 0) {
		return nil, common.InvalidValuef("identity curve error must be positive, got %v", sdev)
	}

	hi, lo := mean+IdentitySpan*sdev, mean-IdentitySpan*sdev
	n := int(math.Floor((hi-lo)/IdentityStep)) + 1

	var ages []float64
	switch {
	case n < IdentityMinRows:
		ages = utils.Linspace(hi, lo, IdentityMinRows)
	case n > IdentityMaxRows:
		ages = utils.Linspace(hi, lo, IdentityMaxRows)
	default:
		ages = utils.Seq(hi, lo, -IdentityStep)
	}

	points := make([]model.CurvePoint, len(ages))
	for i, age := range ages {
		points[i] = model.CurvePoint{CalAge: age, Mean: age}
	}
	return New(fmt.Sprintf("identity(%v,%v)", mean, sdev), points)
}
