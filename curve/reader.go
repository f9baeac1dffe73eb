package curve

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/uyouii/agedepth-algorithms/common"
	"github.com/uyouii/agedepth-algorithms/model"
)

type Format int

const (
	// FormatColumns is three whitespace separated columns: cal BP, mean, error.
	FormatColumns Format = iota
	// FormatCSV skips CsvHeaderLines lines and reads the first three
	// comma separated columns.
	FormatCSV
)

func FormatOf(name string) Format {
	if strings.HasSuffix(strings.ToLower(name), ".csv") {
		return FormatCSV
	}
	return FormatColumns
}

func Read(r io.Reader, name string, format Format) (*Curve, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	points := []model.CurvePoint{}
	line := 0
	for scanner.Scan() {
		line++
		if format == FormatCSV && line <= CsvHeaderLines {
			continue
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var fields []string
		if format == FormatCSV {
			fields = strings.Split(text, ",")
		} else {
			fields = strings.Fields(text)
		}
		if len(fields) < 3 {
			return nil, pkgerrors.Wrapf(common.ErrorInvalidValue, "%s:%d: expected 3 columns, got %d", name, line, len(fields))
		}

		var row [3]float64
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseFloat(strings.Trim(strings.TrimSpace(fields[i]), `"`), 64)
			if err != nil {
				return nil, pkgerrors.Wrapf(err, "%s:%d: column %d", name, line, i+1)
			}
			row[i] = v
		}
		points = append(points, model.CurvePoint{CalAge: row[0], Mean: row[1], Error: row[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, pkgerrors.Wrapf(err, "read curve %s", name)
	}
	return New(name, points)
}

// Write emits the curve as three whitespace separated columns.
func Write(w io.Writer, c *Curve) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < c.Len(); i++ {
		p := c.Point(i)
		if _, err := bw.WriteString(strconv.FormatFloat(p.CalAge, 'g', -1, 64) + "\t" +
			strconv.FormatFloat(p.Mean, 'g', -1, 64) + "\t" +
			strconv.FormatFloat(p.Error, 'g', -1, 64) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
