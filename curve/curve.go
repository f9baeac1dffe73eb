package curve

import (
	"math"
	"sort"

	"github.com/uyouii/agedepth-algorithms/common"
	"github.com/uyouii/agedepth-algorithms/model"
	"github.com/uyouii/agedepth-algorithms/utils"
)

// Curve is an immutable calibration curve, rows sorted by descending
// calendar age.
type Curve struct {
	name   string
	ages   []float64
	means  []float64
	errors []float64
}

// New builds a curve from points in any order. Rows sharing a calendar age
// keep the first one given.
func New(name string, points []model.CurvePoint) (*Curve, error) {
	if len(points) == 0 {
		return nil, common.InvalidValuef("curve %s has no rows", name)
	}

	sorted := make([]model.CurvePoint, 0, len(points))
	for i, p := range points {
		if math.IsNaN(p.CalAge) || math.IsNaN(p.Mean) || math.IsNaN(p.Error) {
			return nil, common.InvalidValuef("curve %s row %d has a missing value", name, i)
		}
		if p.Error < 0 {
			return nil, common.InvalidValuef("curve %s row %d has negative error %v", name, i, p.Error)
		}
		sorted = append(sorted, p)
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CalAge > sorted[j].CalAge })

	c := &Curve{name: name}
	for _, p := range sorted {
		if n := len(c.ages); n > 0 && c.ages[n-1] == p.CalAge {
			continue
		}
		c.ages = append(c.ages, p.CalAge)
		c.means = append(c.means, p.Mean)
		c.errors = append(c.errors, p.Error)
	}
	return c, nil
}

func (c *Curve) Name() string { return c.name }

func (c *Curve) Len() int { return len(c.ages) }

func (c *Curve) Point(i int) model.CurvePoint {
	return model.CurvePoint{CalAge: c.ages[i], Mean: c.means[i], Error: c.errors[i]}
}

func (c *Curve) Points() []model.CurvePoint {
	res := make([]model.CurvePoint, c.Len())
	for i := range res {
		res[i] = c.Point(i)
	}
	return res
}

func (c *Curve) Ages() []float64   { return append([]float64(nil), c.ages...) }
func (c *Curve) Means() []float64  { return append([]float64(nil), c.means...) }
func (c *Curve) Errors() []float64 { return append([]float64(nil), c.errors...) }

func (c *Curve) MaxAge() float64 { return c.ages[0] }
func (c *Curve) MinAge() float64 { return c.ages[len(c.ages)-1] }

// Covers reports whether age lies inside the tabulated range.
func (c *Curve) Covers(age float64) bool {
	return age >= c.MinAge() && age <= c.MaxAge()
}

// Resample interpolates mean and error at ages, clamping outside the curve.
func (c *Curve) Resample(ages []float64) (means, errors []float64) {
	return utils.Approx(c.ages, c.means, ages, true), utils.Approx(c.ages, c.errors, ages, true)
}

func (c *Curve) withName(name string) *Curve {
	cp := *c
	cp.name = name
	return &cp
}
