package market_regime

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Clustering is the partition produced by a Clusterer.
type Clustering struct {
	Assignments []int       // cluster index per input point, in input order
	Centroids   [][]float64 // one centroid per cluster
	Inertia     float64     // sum of squared distances to the assigned centroid
}

// Clusterer partitions points into k groups. Implementations must be
// deterministic for a given seed.
type Clusterer interface {
	Fit(points [][]float64, k int, seed uint64) (*Clustering, error)
}

// KMeans is Lloyd's algorithm with k-means++ seeding and seeded restarts.
type KMeans struct {
	MaxIterations int     // per restart
	Tolerance     float64 // relative to the mean per-dimension variance of the data
	Restarts      int     // independent initialisations; lowest inertia wins
}

// NewKMeans returns a KMeans with the usual defaults (300 iterations,
// tolerance 1e-4, 10 restarts).
func NewKMeans() *KMeans {
	return &KMeans{MaxIterations: 300, Tolerance: 1e-4, Restarts: 10}
}

// Fit implements Clusterer.
func (km *KMeans) Fit(points [][]float64, k int, seed uint64) (*Clustering, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrClustering, k)
	}
	if len(points) < k {
		return nil, fmt.Errorf("%w: %d points for %d clusters", ErrClustering, len(points), k)
	}
	dim := len(points[0])
	for i, p := range points {
		if len(p) != dim {
			return nil, fmt.Errorf("%w: point %d has %d dimensions, expected %d", ErrClustering, i, len(p), dim)
		}
	}
	if distinct := countDistinct(points, k); distinct < k {
		return nil, fmt.Errorf("%w: %d distinct points for %d clusters", ErrClustering, distinct, k)
	}

	maxIter := km.MaxIterations
	if maxIter <= 0 {
		maxIter = 300
	}
	restarts := km.Restarts
	if restarts <= 0 {
		restarts = 1
	}
	threshold := km.Tolerance * meanVariance(points, dim)

	rng := rand.New(rand.NewPCG(seed, seed^0xda3e39cb94b95bdb))

	var best *Clustering
	for r := 0; r < restarts; r++ {
		centroids := initPlusPlus(points, k, rng)
		result := lloyd(points, centroids, maxIter, threshold)
		if best == nil || result.Inertia < best.Inertia {
			best = result
		}
	}
	return best, nil
}

// initPlusPlus picks k starting centroids with D^2 weighting. Points already
// chosen have zero weight, so the centroids are distinct whenever at least k
// distinct points exist.
func initPlusPlus(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(points[rng.IntN(len(points))]))

	dist := make([]float64, len(points))
	for i, p := range points {
		dist[i] = sqDist(p, centroids[0])
	}

	for len(centroids) < k {
		total := floats.Sum(dist)
		target := rng.Float64() * total
		chosen := -1
		cumulative := 0.0
		for i, d := range dist {
			if d == 0 {
				continue
			}
			cumulative += d
			chosen = i
			if cumulative >= target {
				break
			}
		}

		c := clone(points[chosen])
		centroids = append(centroids, c)
		for i, p := range points {
			if d := sqDist(p, c); d < dist[i] {
				dist[i] = d
			}
		}
	}
	return centroids
}

func lloyd(points [][]float64, centroids [][]float64, maxIter int, threshold float64) *Clustering {
	k := len(centroids)
	dim := len(points[0])
	assignments := make([]int, len(points))
	counts := make([]int, k)
	sums := make([][]float64, k)
	for c := range sums {
		sums[c] = make([]float64, dim)
	}

	for iter := 0; iter < maxIter; iter++ {
		assign(points, centroids, assignments)

		for c := range sums {
			counts[c] = 0
			for d := range sums[c] {
				sums[c][d] = 0
			}
		}
		for i, p := range points {
			c := assignments[i]
			counts[c]++
			floats.Add(sums[c], p)
		}

		// An empty cluster takes over the point furthest from its centroid.
		for c := 0; c < k; c++ {
			if counts[c] > 0 {
				continue
			}
			far := furthestPoint(points, centroids, assignments, counts)
			old := assignments[far]
			counts[old]--
			floats.Sub(sums[old], points[far])
			assignments[far] = c
			counts[c] = 1
			copy(sums[c], points[far])
		}

		shift := 0.0
		for c := 0; c < k; c++ {
			next := clone(sums[c])
			floats.Scale(1/float64(counts[c]), next)
			shift += sqDist(next, centroids[c])
			centroids[c] = next
		}
		if shift <= threshold {
			break
		}
	}

	inertia := assign(points, centroids, assignments)
	return &Clustering{
		Assignments: assignments,
		Centroids:   centroids,
		Inertia:     inertia,
	}
}

// assign labels every point with its nearest centroid and returns the inertia.
func assign(points [][]float64, centroids [][]float64, assignments []int) float64 {
	inertia := 0.0
	for i, p := range points {
		bestC, bestD := 0, math.Inf(1)
		for c, centroid := range centroids {
			if d := sqDist(p, centroid); d < bestD {
				bestC, bestD = c, d
			}
		}
		assignments[i] = bestC
		inertia += bestD
	}
	return inertia
}

// furthestPoint returns the point with the largest distance to its centroid
// among clusters that can spare a member.
func furthestPoint(points [][]float64, centroids [][]float64, assignments []int, counts []int) int {
	far, farD := -1, -1.0
	for i, p := range points {
		if counts[assignments[i]] < 2 {
			continue
		}
		if d := sqDist(p, centroids[assignments[i]]); d > farD {
			far, farD = i, d
		}
	}
	return far
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clone(p []float64) []float64 {
	return append([]float64(nil), p...)
}

func meanVariance(points [][]float64, dim int) float64 {
	if len(points) < 2 {
		return 0
	}
	col := make([]float64, len(points))
	total := 0.0
	for d := 0; d < dim; d++ {
		for i, p := range points {
			col[i] = p[d]
		}
		total += stat.Variance(col, nil)
	}
	return total / float64(dim)
}

// countDistinct counts distinct points, stopping early once limit is reached.
func countDistinct(points [][]float64, limit int) int {
	seen := make([][]float64, 0, limit)
	for _, p := range points {
		dup := false
		for _, s := range seen {
			if floats.Equal(p, s) {
				dup = true
				break
			}
		}
		if !dup {
			seen = append(seen, p)
			if len(seen) >= limit {
				return len(seen)
			}
		}
	}
	return len(seen)
}
