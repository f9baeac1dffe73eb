package curve

import (
	"math"

	"github.com/uyouii/agedepth-algorithms/common"
	"github.com/uyouii/agedepth-algorithms/model"
	"github.com/uyouii/agedepth-algorithms/utils"
)

// SplicePostbomb resamples bomb onto a PostbombStep grid and puts it in place
// of base over the calendar range bomb covers. The result is ordered by
// descending calendar age.
func SplicePostbomb(base, bomb *Curve) (*Curve, error) {
	if base == nil || bomb == nil {
		return nil, common.InvalidValuef("splice needs a base and a postbomb curve")
	}

	hi, lo := bomb.MaxAge(), bomb.MinAge()
	n := int(math.Floor((hi-lo)/PostbombStep+1e-9)) + 1
	grid := make([]float64, n)
	for i := range grid {
		grid[i] = hi - float64(i)*PostbombStep
	}
	means := utils.Approx(bomb.ages, bomb.means, grid, true)
	errors := utils.Approx(bomb.ages, bomb.errors, grid, true)

	points := make([]model.CurvePoint, 0, n+base.Len())
	for i := range grid {
		points = append(points, model.CurvePoint{CalAge: grid[i], Mean: means[i], Error: errors[i]})
	}
	for i, age := range base.ages {
		if age >= lo && age <= hi {
			continue
		}
		points = append(points, base.Point(i))
	}
	return New(base.name+"+"+bomb.name, points)
}
