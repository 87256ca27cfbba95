package market_regime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func meanVolatilityByLabel(rows []RegimeRow) map[Label]float64 {
	sums := map[Label]float64{}
	counts := map[Label]int{}
	for _, r := range rows {
		sums[r.Regime] += r.Volatility
		counts[r.Regime]++
	}
	means := map[Label]float64{}
	for label, sum := range sums {
		means[label] = sum / float64(counts[label])
	}
	return means
}

func TestClassifyRegimes_LabelsOrderedByVolatility(t *testing.T) {
	prices := regimePrices(11, 120, 0.004, 0.015, 0.04)
	rows, err := ClassifyRegimes(prices, ClassifierOptions{})
	require.NoError(t, err)
	require.Len(t, rows, len(prices)-DefaultVolatilityWindow)

	means := meanVolatilityByLabel(rows)
	require.Len(t, means, 3)
	assert.Less(t, means[LabelLowVolatility], means[LabelMedium])
	assert.Less(t, means[LabelMedium], means[LabelHighVolatility])
}

func TestClassifyRegimes_PreservesChronology(t *testing.T) {
	prices := regimePrices(5, 80, 0.01, 0.03)
	rows, err := ClassifyRegimes(prices, ClassifierOptions{})
	require.NoError(t, err)

	for i, r := range rows {
		assert.Equal(t, prices[i+DefaultVolatilityWindow].Date, r.Date)
		assert.Equal(t, prices[i+DefaultVolatilityWindow].Close, r.Close)
	}
}

func TestClassifyRegimes_Deterministic(t *testing.T) {
	prices := regimePrices(8, 100, 0.005, 0.02, 0.01)

	first, err := ClassifyRegimes(prices, ClassifierOptions{Seed: ptr(99)})
	require.NoError(t, err)
	second, err := ClassifyRegimes(prices, ClassifierOptions{Seed: ptr(99)})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// fixedClusterer assigns clusters by descending volatility, the reverse of
// the label order, to prove labels do not depend on cluster indices.
type fixedClusterer struct{}

func (fixedClusterer) Fit(points [][]float64, k int, seed uint64) (*Clustering, error) {
	assignments := make([]int, len(points))
	for i, p := range points {
		switch {
		case p[1] > 0.02:
			assignments[i] = 0
		case p[1] > 0.008:
			assignments[i] = 1
		default:
			assignments[i] = 2
		}
	}
	return &Clustering{Assignments: assignments}, nil
}

func TestClassifyRegimes_LabelIndependentOfClusterIndex(t *testing.T) {
	prices := regimePrices(3, 120, 0.002, 0.012, 0.05)
	rows, err := ClassifyRegimes(prices, ClassifierOptions{Clusterer: fixedClusterer{}})
	require.NoError(t, err)

	for _, r := range rows {
		switch r.Cluster {
		case 0:
			assert.Equal(t, LabelHighVolatility, r.Regime)
		case 1:
			assert.Equal(t, LabelMedium, r.Regime)
		case 2:
			assert.Equal(t, LabelLowVolatility, r.Regime)
		}
	}
}

func TestClassifyRegimes_ConstantPriceFailsClustering(t *testing.T) {
	_, err := ClassifyRegimes(constantPrices(60, 250), ClassifierOptions{})
	assert.ErrorIs(t, err, ErrClustering)
}

func TestClassifyRegimes_InsufficientData(t *testing.T) {
	t.Run("shorter than window", func(t *testing.T) {
		_, err := ClassifyRegimes(regimePrices(1, 10, 0.01), ClassifierOptions{})
		assert.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("fewer rows than clusters", func(t *testing.T) {
		// 22 prices leave 2 rows after a 20-period window.
		_, err := ClassifyRegimes(regimePrices(1, 21, 0.01), ClassifierOptions{})
		assert.ErrorIs(t, err, ErrInsufficientData)
	})
}

func TestClassifyRegimes_ClusterCounts(t *testing.T) {
	prices := regimePrices(21, 100, 0.003, 0.01, 0.02, 0.05)

	t.Run("two clusters", func(t *testing.T) {
		rows, err := ClassifyRegimes(prices, ClassifierOptions{Clusters: 2})
		require.NoError(t, err)
		means := meanVolatilityByLabel(rows)
		require.Len(t, means, 2)
		assert.Less(t, means[LabelLowVolatility], means[LabelHighVolatility])
	})

	t.Run("four clusters", func(t *testing.T) {
		rows, err := ClassifyRegimes(prices, ClassifierOptions{Clusters: 4})
		require.NoError(t, err)
		means := meanVolatilityByLabel(rows)
		require.Len(t, means, 4)
		assert.Less(t, means[LabelLowVolatility], means["Medium Regime 1"])
		assert.Less(t, means["Medium Regime 1"], means["Medium Regime 2"])
		assert.Less(t, means["Medium Regime 2"], means[LabelHighVolatility])
	})

	t.Run("one cluster is unsupported", func(t *testing.T) {
		_, err := ClassifyRegimes(prices, ClassifierOptions{Clusters: 1})
		assert.ErrorIs(t, err, ErrUnsupportedClusterCount)
	})
}

func TestLabelsForClusterCount(t *testing.T) {
	labels, err := LabelsForClusterCount(3)
	require.NoError(t, err)
	assert.Equal(t, []Label{LabelLowVolatility, LabelMedium, LabelHighVolatility}, labels)

	labels, err = LabelsForClusterCount(5)
	require.NoError(t, err)
	assert.Equal(t, []Label{
		LabelLowVolatility,
		"Medium Regime 1",
		"Medium Regime 2",
		"Medium Regime 3",
		LabelHighVolatility,
	}, labels)

	_, err = LabelsForClusterCount(0)
	assert.ErrorIs(t, err, ErrUnsupportedClusterCount)
}

func TestSummarize(t *testing.T) {
	rows := []RegimeRow{
		{Return: 0.01, Volatility: 0.03, Regime: LabelHighVolatility},
		{Return: 0.001, Volatility: 0.005, Regime: LabelLowVolatility},
		{Return: -0.01, Volatility: 0.05, Regime: LabelHighVolatility},
		{Return: 0.003, Volatility: 0.007, Regime: LabelLowVolatility},
	}

	summary := Summarize(rows)
	require.Len(t, summary, 2)

	assert.Equal(t, LabelLowVolatility, summary[0].Regime)
	assert.Equal(t, 2, summary[0].Count)
	assert.InDelta(t, 0.5, summary[0].Share, 1e-12)
	assert.InDelta(t, 0.002, summary[0].MeanReturn, 1e-12)

	assert.Equal(t, LabelHighVolatility, summary[1].Regime)
	assert.InDelta(t, 0.04, summary[1].MeanVolatility, 1e-12)

	assert.Nil(t, Summarize(nil))
}
