package market_regime

import (
	"fmt"
	"sort"
	"time"
)

// Label is the human-readable regime assigned to an observation.
type Label string

// Regime labels, in ascending volatility order.
const (
	LabelLowVolatility  Label = "Low Volatility (Bull)"
	LabelMedium         Label = "Medium Regime"
	LabelHighVolatility Label = "High Volatility (Bear)"
)

// Defaults for ClassifyRegimes.
const (
	DefaultClusters = 3
	DefaultSeed     = uint64(42)
)

// ClassifierOptions configures ClassifyRegimes. Zero values select the defaults.
type ClassifierOptions struct {
	Clusters         int
	VolatilityWindow int
	Seed             *uint64   // nil uses DefaultSeed
	Clusterer        Clusterer // nil uses NewKMeans()
}

// RegimeRow is one classified observation.
type RegimeRow struct {
	Date       time.Time `json:"date"`
	Close      float64   `json:"close"`
	Return     float64   `json:"return"`
	Volatility float64   `json:"volatility"`
	Cluster    int       `json:"cluster"`
	Regime     Label     `json:"regime"`
}

// LabelsForClusterCount returns the label of each volatility rank.
// Two clusters map to low/high, three to low/medium/high, and larger counts
// number the middle ranks ("Medium Regime 1", "Medium Regime 2", ...).
func LabelsForClusterCount(n int) ([]Label, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 clusters to order regimes, got %d", ErrUnsupportedClusterCount, n)
	}

	labels := make([]Label, n)
	labels[0] = LabelLowVolatility
	labels[n-1] = LabelHighVolatility
	if n == 3 {
		labels[1] = LabelMedium
		return labels, nil
	}
	for i := 1; i < n-1; i++ {
		labels[i] = Label(fmt.Sprintf("%s %d", LabelMedium, i))
	}
	return labels, nil
}

// ClassifyRegimes clusters the (return, volatility) features of prices and
// labels each cluster by its rank in mean volatility. The clusters are fit
// afresh on every call. Rows come back in input order.
func ClassifyRegimes(prices []PricePoint, opts ClassifierOptions) ([]RegimeRow, error) {
	if opts.Clusters == 0 {
		opts.Clusters = DefaultClusters
	}
	if opts.VolatilityWindow == 0 {
		opts.VolatilityWindow = DefaultVolatilityWindow
	}
	seed := DefaultSeed
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	clusterer := opts.Clusterer
	if clusterer == nil {
		clusterer = NewKMeans()
	}

	labels, err := LabelsForClusterCount(opts.Clusters)
	if err != nil {
		return nil, err
	}

	features, err := DeriveFeatures(prices, opts.VolatilityWindow)
	if err != nil {
		return nil, err
	}
	if len(features) < opts.Clusters {
		return nil, fmt.Errorf("%w: %d rows after windowing for %d clusters", ErrInsufficientData, len(features), opts.Clusters)
	}

	points := make([][]float64, len(features))
	for i, f := range features {
		points[i] = []float64{f.Return, f.Volatility}
	}

	clustering, err := clusterer.Fit(points, opts.Clusters, seed)
	if err != nil {
		return nil, err
	}
	if len(clustering.Assignments) != len(points) {
		return nil, fmt.Errorf("%w: %d assignments for %d points", ErrClustering, len(clustering.Assignments), len(points))
	}

	ranks, err := rankByVolatility(features, clustering.Assignments, opts.Clusters)
	if err != nil {
		return nil, err
	}

	rows := make([]RegimeRow, len(features))
	for i, f := range features {
		cluster := clustering.Assignments[i]
		rows[i] = RegimeRow{
			Date:       f.Date,
			Close:      f.Close,
			Return:     f.Return,
			Volatility: f.Volatility,
			Cluster:    cluster,
			Regime:     labels[ranks[cluster]],
		}
	}
	return rows, nil
}

// rankByVolatility maps each cluster index to its rank by ascending mean
// volatility. Ties keep cluster index order.
func rankByVolatility(features []FeatureRow, assignments []int, k int) ([]int, error) {
	sums := make([]float64, k)
	counts := make([]int, k)
	for i, c := range assignments {
		if c < 0 || c >= k {
			return nil, fmt.Errorf("%w: cluster index %d out of range [0,%d)", ErrClustering, c, k)
		}
		sums[c] += features[i].Volatility
		counts[c]++
	}

	order := make([]int, k)
	for c := range order {
		if counts[c] == 0 {
			return nil, fmt.Errorf("%w: cluster %d is empty", ErrClustering, c)
		}
		order[c] = c
	}
	sort.SliceStable(order, func(a, b int) bool {
		return sums[order[a]]/float64(counts[order[a]]) < sums[order[b]]/float64(counts[order[b]])
	})

	ranks := make([]int, k)
	for rank, c := range order {
		ranks[c] = rank
	}
	return ranks, nil
}
