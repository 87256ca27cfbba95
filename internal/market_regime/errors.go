package market_regime

import "errors"

var (
	// ErrInsufficientData is returned when fewer rows survive windowing than
	// the requested number of clusters, or when the series is not longer than
	// the volatility window.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrClustering is returned when the points cannot be partitioned into
	// the requested number of clusters (for example, too few distinct points).
	ErrClustering = errors.New("clustering failed")
	// ErrUnsupportedClusterCount is returned for cluster counts that cannot be
	// mapped onto an ordered low/high label set.
	ErrUnsupportedClusterCount = errors.New("unsupported cluster count")
	// ErrInvalidPrices is returned for unordered dates or non-finite closes.
	ErrInvalidPrices = errors.New("invalid price series")
)
