package historical

import "time"

// DailyPrice represents a daily OHLCV bar
type DailyPrice struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjusted_close,omitempty"` // 0 when the source has no adjustment
	Volume   int64     `json:"volume"`
}

// Value returns the adjusted close when known and the raw close otherwise.
func (p DailyPrice) Value() float64 {
	if p.AdjClose > 0 {
		return p.AdjClose
	}
	return p.Close
}

// SyncRun records one market data sync pass
type SyncRun struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Symbols     int       `json:"symbols"`
	Succeeded   int       `json:"succeeded"`
	Failed      int       `json:"failed"`
	RowsWritten int       `json:"rows_written"`
	Error       string    `json:"error,omitempty"`
}

// truncateDay normalises t to midnight UTC, the storage granularity.
func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
