package optimization

import "errors"

var (
	// ErrInsufficientData is returned when the return matrix has fewer than two
	// assets or fewer than two observations.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrMalformedReturns is returned when a row has the wrong width or holds a
	// non-finite value.
	ErrMalformedReturns = errors.New("malformed return matrix")
	// ErrDegenerateVolatility marks a portfolio with zero variance. Single
	// trials are skipped; the error only surfaces when no trial survives.
	ErrDegenerateVolatility = errors.New("degenerate portfolio volatility")
	// ErrInvalidOptions is returned for negative trial counts or annualization factors.
	ErrInvalidOptions = errors.New("invalid frontier options")
)
