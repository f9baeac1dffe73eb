package calib

import (
	"math"

	"github.com/uyouii/agedepth-algorithms/common"
	"github.com/uyouii/agedepth-algorithms/model"
)

// PMCToAge converts percent modern carbon into a radiocarbon age (BP).
// Values above 100 give negative, post-1950 ages. The error is propagated to
// first order, so AgeToPMC inverts it exactly.
func PMCToAge(pmc, sdev float64) (age, ageSdev float64, err error) {
	if !(pmc > 0) {
		return 0, 0, common.InvalidValuef("pMC must be positive, got %v", pmc)
	}
	age = -LibbyMeanLife * math.Log(pmc/100)
	ageSdev = LibbyMeanLife * sdev / pmc
	return age, ageSdev, nil
}

func AgeToPMC(age, sdev float64) (pmc, pmcSdev float64) {
	pmc = 100 * math.Exp(-age/LibbyMeanLife)
	pmcSdev = pmc * sdev / LibbyMeanLife
	return pmc, pmcSdev
}

func F14CToAge(f14c, sdev float64) (age, ageSdev float64, err error) {
	return PMCToAge(100*f14c, 100*sdev)
}

func AgeToF14C(age, sdev float64) (f14c, f14cSdev float64) {
	pmc, pmcSdev := AgeToPMC(age, sdev)
	return pmc / 100, pmcSdev / 100
}

func CalBPToBCAD(calBP float64) float64 {
	return model.CalBPReference - calBP
}

func BCADToCalBP(bcad float64) float64 {
	return model.CalBPReference - bcad
}
