// Package datefile maps date tables onto typed date records.
//
// Three table shapes are understood, each with a header row:
//
//	single:   id, age, error, depth
//	mixed:    id, age, error, depth, cc[, delta.R, delta.STD[, t.a, t.b]]
//	combined: id, type, measurement, error, depth[, cc, delta.R, delta.STD, t.a, t.b]
//
// In combined tables type is one of pb, c14 or cal. A cc of 0 marks a
// calendar-scale date.
package datefile

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/uyouii/agedepth-algorithms/common"
	"github.com/uyouii/agedepth-algorithms/curve"
	"github.com/uyouii/agedepth-algorithms/model"
)

type Shape int

const (
	// ShapeAuto picks the shape from the header.
	ShapeAuto Shape = iota
	ShapeSingle
	ShapeMixed
	ShapeCombined
)

func (s Shape) String() string {
	switch s {
	case ShapeSingle:
		return "single"
	case ShapeMixed:
		return "mixed"
	case ShapeCombined:
		return "combined"
	}
	return "auto"
}

// Detect guesses the shape of a table from its header.
func Detect(header []string) Shape {
	if len(header) > 1 && strings.EqualFold(clean(header[1]), "type") {
		return ShapeCombined
	}
	if len(header) >= 5 {
		return ShapeMixed
	}
	return ShapeSingle
}

// Read parses a comma separated date table. Lines starting with # are skipped.
func Read(r io.Reader, shape Shape) ([]model.DateRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "date table header")
	}
	if shape == ShapeAuto {
		shape = Detect(header)
	}

	records := []model.DateRecord{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, pkgerrors.Wrap(err, "date table")
		}
		if isEmptyRow(row) {
			continue
		}
		line, _ := cr.FieldPos(0)

		var record model.DateRecord
		switch shape {
		case ShapeSingle:
			record, err = singleRow(row)
		case ShapeMixed:
			record, err = mixedRow(row)
		case ShapeCombined:
			record, err = combinedRow(row)
		default:
			return nil, common.InvalidValuef("unknown table shape %d", int(shape))
		}
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "date table line %d", line)
		}
		records = append(records, record)
	}
	return records, nil
}

func singleRow(row []string) (model.DateRecord, error) {
	core, err := dateCore(row, 0, 1, 2, 3)
	if err != nil {
		return nil, err
	}
	return model.RadiocarbonDate{DateCore: core, Curve: model.CurveDefault}, nil
}

func mixedRow(row []string) (model.DateRecord, error) {
	core, err := dateCore(row, 0, 1, 2, 3)
	if err != nil {
		return nil, err
	}
	return curveRecord(core, row, 4)
}

func combinedRow(row []string) (model.DateRecord, error) {
	core, err := dateCore(row, 0, 2, 3, 4)
	if err != nil {
		return nil, err
	}
	if len(row) < 2 {
		return nil, common.InvalidValuef("missing date type")
	}
	switch strings.ToLower(clean(row[1])) {
	case "pb", "pb210", "210pb":
		return model.PbActivityDate{DateCore: core}, nil
	case "cal", "calbp":
		if core.Noise, err = noiseModel(row, 8); err != nil {
			return nil, err
		}
		return model.CalendarDate{DateCore: core}, nil
	case "c14", "14c", "radiocarbon":
		return curveRecord(core, row, 5)
	}
	return nil, common.InvalidValuef("unknown date type %q, use pb, c14 or cal", clean(row[1]))
}

// curveRecord reads cc, delta.R, delta.STD, t.a and t.b starting at column cc.
func curveRecord(core model.DateCore, row []string, cc int) (model.DateRecord, error) {
	id := model.CurveDefault
	if s := field(row, cc); s != "" {
		code, err := strconv.Atoi(s)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "cc")
		}
		if id, err = curve.CurveIDFromCode(code); err != nil {
			return nil, err
		}
	}

	var err error
	if core.Noise, err = noiseModel(row, cc+3); err != nil {
		return nil, err
	}
	if id == model.CurveNone {
		return model.CalendarDate{DateCore: core}, nil
	}

	date := model.RadiocarbonDate{DateCore: core, Curve: id}
	mean, hasMean, err := optional(row, cc+1)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "delta.R")
	}
	sdev, hasSdev, err := optional(row, cc+2)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "delta.STD")
	}
	if hasMean || hasSdev {
		// a missing half keeps the batch default
		date.Offset = &model.Offset{Mean: math.NaN(), Error: math.NaN()}
		if hasMean {
			date.Offset.Mean = mean
		}
		if hasSdev {
			date.Offset.Error = sdev
		}
	}
	return date, nil
}

// noiseModel reads a per-date Student-t model from columns at, at+1.
func noiseModel(row []string, at int) (*model.NoiseModel, error) {
	ta, hasA, err := optional(row, at)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "t.a")
	}
	tb, hasB, err := optional(row, at+1)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "t.b")
	}
	if !hasA && !hasB {
		return nil, nil
	}
	if hasA != hasB {
		return nil, common.ConfigurationErrorf("t.a and t.b must be given together")
	}
	return &model.NoiseModel{TA: ta, TB: tb}, nil
}

func dateCore(row []string, id, mean, sdev, depth int) (model.DateCore, error) {
	core := model.DateCore{ID: field(row, id)}
	columns := []struct {
		name string
		at   int
		dst  *float64
	}{
		{"age", mean, &core.Mean},
		{"error", sdev, &core.Error},
		{"depth", depth, &core.Depth},
	}
	for _, c := range columns {
		v, ok, err := optional(row, c.at)
		if err != nil {
			return core, pkgerrors.Wrap(err, c.name)
		}
		if !ok {
			return core, common.InvalidValuef("missing %s", c.name)
		}
		*c.dst = v
	}
	return core, nil
}

func optional(row []string, at int) (float64, bool, error) {
	s := field(row, at)
	if s == "" || s == "NA" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	if math.IsNaN(v) {
		return 0, false, nil
	}
	return v, true, nil
}

func field(row []string, at int) string {
	if at >= len(row) {
		return ""
	}
	return clean(row[at])
}

func clean(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
