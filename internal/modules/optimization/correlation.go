package optimization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix returns the Pearson correlation between the columns of rows
// (observations x series). Undefined entries, such as those of a constant
// series, are reported as 0 so the result stays JSON-encodable.
func CorrelationMatrix(rows [][]float64) ([][]float64, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 observations, got %d", ErrInsufficientData, len(rows))
	}
	k := len(rows[0])
	if k == 0 {
		return nil, fmt.Errorf("%w: no series", ErrInsufficientData)
	}

	data := mat.NewDense(len(rows), k, nil)
	for i, row := range rows {
		if len(row) != k {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", ErrMalformedReturns, i, len(row), k)
		}
		data.SetRow(i, row)
	}

	corr := mat.NewSymDense(k, nil)
	stat.CorrelationMatrix(corr, data, nil)

	out := make([][]float64, k)
	for i := range out {
		out[i] = make([]float64, k)
		for j := range out[i] {
			v := corr.At(i, j)
			if math.IsNaN(v) {
				v = 0
			}
			out[i][j] = v
		}
	}
	return out, nil
}
