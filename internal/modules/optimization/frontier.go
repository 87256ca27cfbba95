package optimization

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Defaults for the Monte-Carlo frontier search.
const (
	DefaultTrials         = 3000
	DefaultPeriodsPerYear = 252 // trading days
)

// pcgStream decorrelates the second PCG word from the seed.
const pcgStream = 0x9e3779b97f4a7c15

// FrontierOptions configures SampleFrontier. Zero values select the defaults.
type FrontierOptions struct {
	Trials         int
	PeriodsPerYear int
	RiskFreeRate   float64 // annualized, subtracted before dividing by volatility
	Seed           *uint64 // nil draws a fresh seed per call
}

// FrontierSample is one randomly weighted portfolio.
type FrontierSample struct {
	ExpectedReturn float64   `json:"expected_return"`
	Volatility     float64   `json:"volatility"`
	SharpeRatio    float64   `json:"sharpe_ratio"`
	Weights        []float64 `json:"weights"`
}

// Frontier is the full sample set of one SampleFrontier call.
type Frontier struct {
	Assets  []string         `json:"assets"`
	Samples []FrontierSample `json:"samples"`
	Skipped int              `json:"skipped"` // trials dropped for zero volatility
	Seed    uint64           `json:"seed"`    // seed actually used, for reproduction
}

func (o FrontierOptions) withDefaults() (FrontierOptions, error) {
	if o.Trials < 0 {
		return o, fmt.Errorf("%w: trials must be positive, got %d", ErrInvalidOptions, o.Trials)
	}
	if o.PeriodsPerYear < 0 {
		return o, fmt.Errorf("%w: periods per year must be positive, got %d", ErrInvalidOptions, o.PeriodsPerYear)
	}
	if o.Trials == 0 {
		o.Trials = DefaultTrials
	}
	if o.PeriodsPerYear == 0 {
		o.PeriodsPerYear = DefaultPeriodsPerYear
	}
	return o, nil
}

// SampleFrontier draws opts.Trials random long-only weight vectors and scores
// each one against the annualized mean returns and covariance of returns.
//
// Weights are uniform(0,1) draws normalized by their sum. Trials whose
// portfolio volatility is zero are skipped and counted in Frontier.Skipped;
// ErrDegenerateVolatility is returned only when every trial was skipped.
// The input matrix is never modified.
func SampleFrontier(returns ReturnMatrix, opts FrontierOptions) (*Frontier, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	if err := returns.Validate(); err != nil {
		return nil, err
	}

	seed := rand.Uint64()
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	uniform := distuv.Uniform{Min: 0, Max: 1, Src: rand.NewPCG(seed, seed^pcgStream)}

	k := returns.NumAssets()
	mu, cov := AnnualizedStats(returns, opts.PeriodsPerYear)

	frontier := &Frontier{
		Assets:  append([]string(nil), returns.Assets...),
		Samples: make([]FrontierSample, 0, opts.Trials),
		Seed:    seed,
	}

	w := mat.NewVecDense(k, nil)
	for trial := 0; trial < opts.Trials; trial++ {
		weights := drawWeights(uniform, k)
		for j, v := range weights {
			w.SetVec(j, v)
		}

		expected := mat.Dot(w, mu)
		variance := mat.Inner(w, cov, w)
		if variance < 0 {
			// Rounding on a PSD matrix can leave a tiny negative.
			variance = 0
		}
		volatility := math.Sqrt(variance)
		if volatility <= 0 {
			frontier.Skipped++
			continue
		}

		frontier.Samples = append(frontier.Samples, FrontierSample{
			ExpectedReturn: expected,
			Volatility:     volatility,
			SharpeRatio:    (expected - opts.RiskFreeRate) / volatility,
			Weights:        weights,
		})
	}

	if len(frontier.Samples) == 0 {
		return frontier, fmt.Errorf("%w: all %d trials had zero volatility", ErrDegenerateVolatility, opts.Trials)
	}
	return frontier, nil
}

// drawWeights returns k non-negative weights summing to 1.
func drawWeights(uniform distuv.Uniform, k int) []float64 {
	weights := make([]float64, k)
	for {
		sum := 0.0
		for j := range weights {
			weights[j] = uniform.Rand()
			sum += weights[j]
		}
		if sum == 0 {
			continue
		}
		for j := range weights {
			weights[j] /= sum
		}
		return weights
	}
}
