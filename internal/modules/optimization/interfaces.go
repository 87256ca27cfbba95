package optimization

import (
	"context"
	"time"
)

// PriceSeriesProvider supplies aligned inputs for the optimizer service.
// Implemented by the historical price store.
type PriceSeriesProvider interface {
	// ReturnMatrix returns periodic returns for symbols between from and to,
	// with incomplete rows already dropped.
	ReturnMatrix(ctx context.Context, symbols []string, from, to time.Time) (ReturnMatrix, error)
	// AlignedCloses returns close prices for symbols on the dates where all of
	// them traded, one row per date.
	AlignedCloses(ctx context.Context, symbols []string, from, to time.Time) ([]time.Time, [][]float64, error)
}
