package curve

import (
	"strconv"
	"strings"

	"github.com/uyouii/agedepth-algorithms/common"
	"github.com/uyouii/agedepth-algorithms/model"
)

// CurveIDFromCode maps the numeric cc codes of date tables: 0 calendar scale,
// 1 IntCal20, 2 Marine20, 3 SHCal20, 4 the user mixed curve.
func CurveIDFromCode(code int) (model.CurveID, error) {
	switch code {
	case 0:
		return model.CurveNone, nil
	case 1:
		return model.CurveIntCal20, nil
	case 2:
		return model.CurveMarine20, nil
	case 3:
		return model.CurveSHCal20, nil
	case 4:
		return model.CurveMixed, nil
	}
	return 0, &common.CurveNotFoundError{ID: strconv.Itoa(code)}
}

// ParseCurveID accepts a numeric code or a case-insensitive curve name.
func ParseCurveID(s string) (model.CurveID, error) {
	s = strings.Trim(strings.TrimSpace(s), `"`)
	if code, err := strconv.Atoi(s); err == nil {
		return CurveIDFromCode(code)
	}
	switch strings.ToLower(s) {
	case "intcal20", "intcal", "nh":
		return model.CurveIntCal20, nil
	case "marine20", "marine":
		return model.CurveMarine20, nil
	case "shcal20", "shcal", "sh":
		return model.CurveSHCal20, nil
	case "mixed":
		return model.CurveMixed, nil
	case "none", "cal", "calbp":
		return model.CurveNone, nil
	}
	return 0, &common.CurveNotFoundError{ID: s}
}

func fileName(id model.CurveID) (string, error) {
	switch id {
	case model.CurveIntCal20, model.CurveMarine20, model.CurveSHCal20, model.CurveMixed:
		return standardCurveFiles[id.String()], nil
	case model.CurveNone:
		return "", common.ConfigurationErrorf("curve %s has no table, calendar-scale dates use Identity", id)
	}
	return "", &common.CurveNotFoundError{ID: id.String()}
}

type PostbombID int

const (
	PostbombNone PostbombID = iota
	PostbombNH1
	PostbombNH2
	PostbombNH3
	PostbombSH12
	PostbombSH3
)

var postbombFiles = map[PostbombID]string{
	PostbombNH1:  "postbomb_NH1.14C",
	PostbombNH2:  "postbomb_NH2.14C",
	PostbombNH3:  "postbomb_NH3.14C",
	PostbombSH12: "postbomb_SH1-2.14C",
	PostbombSH3:  "postbomb_SH3.14C",
}

// PostbombIDFromCode accepts 0 (no postbomb curve) and 1..5.
func PostbombIDFromCode(code int) (PostbombID, error) {
	id := PostbombID(code)
	if id == PostbombNone {
		return id, nil
	}
	if err := id.validate(); err != nil {
		return 0, err
	}
	return id, nil
}

func (id PostbombID) validate() error {
	if _, ok := postbombFiles[id]; !ok {
		return common.ConfigurationErrorf("cannot find postbomb curve #%d (use values of 1 to 5 only)", int(id))
	}
	return nil
}

func (id PostbombID) String() string {
	if name, ok := postbombFiles[id]; ok {
		return strings.TrimSuffix(strings.TrimPrefix(name, "postbomb_"), ".14C")
	}
	return "none"
}

// Southern reports whether the postbomb curve belongs with SHCal20.
func (id PostbombID) Southern() bool {
	return id == PostbombSH12 || id == PostbombSH3
}

// SplicesInto reports whether this postbomb curve extends curve id.
func (id PostbombID) SplicesInto(curve model.CurveID) bool {
	if id == PostbombNone {
		return false
	}
	if id.Southern() {
		return curve == model.CurveSHCal20
	}
	return curve == model.CurveIntCal20
}
