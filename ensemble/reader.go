package ensemble

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/uyouii/agedepth-algorithms/common"
)

// ReadOut parses whitespace separated sampler output with one iteration per
// line. The first k+1 columns (start age and k rates) are kept; sampler
// bookkeeping columns after them are ignored. k <= 0 keeps every column.
func ReadOut(r io.Reader, k int) (*mat.Dense, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	data := []float64{}
	cols, rows, line := 0, 0, 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		want := k + 1
		if k <= 0 {
			want = len(fields)
		}
		if len(fields) < want {
			return nil, pkgerrors.Wrapf(common.ErrorInvalidValue, "line %d: %d columns, need %d", line, len(fields), want)
		}
		if cols == 0 {
			cols = want
		} else if want != cols {
			return nil, pkgerrors.Wrapf(common.ErrorInvalidValue, "line %d: %d columns, want %d", line, want, cols)
		}
		for i := 0; i < want; i++ {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, pkgerrors.Wrapf(err, "line %d column %d", line, i+1)
			}
			data = append(data, v)
		}
		rows++
	}
	if err := scanner.Err(); err != nil {
		return nil, pkgerrors.Wrap(err, "read ensemble")
	}
	if rows == 0 {
		return nil, pkgerrors.Wrap(common.ErrorInvalidValue, "ensemble has no iterations")
	}
	return mat.NewDense(rows, cols, data), nil
}
