package optimization

import (
	"fmt"
	"time"

	"github.com/aristath/stockintel/pkg/formulas"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ReturnMatrix holds periodic returns for a fixed set of assets.
// Rows[i][j] is the return of Assets[j] over the period ending at Dates[i].
// Dates may be nil when the caller has no calendar (tests, CSV without dates).
type ReturnMatrix struct {
	Dates  []time.Time `json:"dates,omitempty"`
	Assets []string    `json:"assets"`
	Rows   [][]float64 `json:"rows"`
}

// NewReturnMatrixFromColumns builds a matrix from per-asset return columns.
// The asset order of the result follows assets.
func NewReturnMatrixFromColumns(assets []string, columns map[string][]float64) (ReturnMatrix, error) {
	if len(assets) == 0 {
		return ReturnMatrix{}, fmt.Errorf("%w: no assets", ErrInsufficientData)
	}

	n := len(columns[assets[0]])
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, len(assets))
	}

	for j, asset := range assets {
		col, ok := columns[asset]
		if !ok {
			return ReturnMatrix{}, fmt.Errorf("%w: missing column %s", ErrMalformedReturns, asset)
		}
		if len(col) != n {
			return ReturnMatrix{}, fmt.Errorf("%w: column %s has %d rows, expected %d", ErrMalformedReturns, asset, len(col), n)
		}
		for i, v := range col {
			rows[i][j] = v
		}
	}

	return ReturnMatrix{Assets: assets, Rows: rows}, nil
}

// NumAssets returns the number of asset columns.
func (m ReturnMatrix) NumAssets() int {
	return len(m.Assets)
}

// NumObservations returns the number of rows.
func (m ReturnMatrix) NumObservations() int {
	return len(m.Rows)
}

// Validate checks the shape and contents the sampler relies on.
func (m ReturnMatrix) Validate() error {
	if m.NumAssets() < 2 {
		return fmt.Errorf("%w: need at least 2 assets, got %d", ErrInsufficientData, m.NumAssets())
	}
	if m.NumObservations() < 2 {
		return fmt.Errorf("%w: need at least 2 observations, got %d", ErrInsufficientData, m.NumObservations())
	}
	if m.Dates != nil && len(m.Dates) != len(m.Rows) {
		return fmt.Errorf("%w: %d dates for %d rows", ErrMalformedReturns, len(m.Dates), len(m.Rows))
	}

	for i, row := range m.Rows {
		if len(row) != m.NumAssets() {
			return fmt.Errorf("%w: row %d has %d values, expected %d", ErrMalformedReturns, i, len(row), m.NumAssets())
		}
		for j, v := range row {
			if !formulas.IsFinite(v) {
				return fmt.Errorf("%w: row %d asset %s is not finite", ErrMalformedReturns, i, m.Assets[j])
			}
		}
	}
	return nil
}

// Dense copies the rows into a gonum matrix (observations x assets).
func (m ReturnMatrix) Dense() *mat.Dense {
	d := mat.NewDense(m.NumObservations(), m.NumAssets(), nil)
	for i, row := range m.Rows {
		d.SetRow(i, row)
	}
	return d
}

// AnnualizedStats returns the annualized mean return vector and the annualized
// sample covariance matrix of the return matrix. The matrix must be valid.
func AnnualizedStats(m ReturnMatrix, periodsPerYear int) (*mat.VecDense, *mat.SymDense) {
	k := m.NumAssets()
	data := m.Dense()
	scale := float64(periodsPerYear)

	mu := mat.NewVecDense(k, nil)
	col := make([]float64, m.NumObservations())
	for j := 0; j < k; j++ {
		mat.Col(col, j, data)
		mu.SetVec(j, stat.Mean(col, nil)*scale)
	}

	cov := mat.NewSymDense(k, nil)
	stat.CovarianceMatrix(cov, data, nil)
	cov.ScaleSym(scale, cov)

	return mu, cov
}

// AssetStat is the standalone annualized return and volatility of one asset.
type AssetStat struct {
	Symbol           string  `json:"symbol"`
	AnnualReturn     float64 `json:"annual_return"`
	AnnualVolatility float64 `json:"annual_volatility"`
}

// PerAssetStats annualizes every column of the return matrix on its own.
func PerAssetStats(m ReturnMatrix, periodsPerYear int) []AssetStat {
	stats := make([]AssetStat, m.NumAssets())
	col := make([]float64, m.NumObservations())
	for j, symbol := range m.Assets {
		for i, row := range m.Rows {
			col[i] = row[j]
		}
		stats[j] = AssetStat{
			Symbol:           symbol,
			AnnualReturn:     formulas.Mean(col) * float64(periodsPerYear),
			AnnualVolatility: formulas.AnnualizedVolatility(col, periodsPerYear),
		}
	}
	return stats
}
