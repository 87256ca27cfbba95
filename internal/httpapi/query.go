package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// DateLayout is the wire format of dates in requests.
const DateLayout = "2006-01-02"

// ParseDateRange reads the optional start and end query parameters. Missing
// bounds are returned as zero times.
func ParseDateRange(r *http.Request) (from, to time.Time, err error) {
	q := r.URL.Query()
	return ParseDates(q.Get("start"), q.Get("end"))
}

// ParseDates parses an optional start and end date. Empty bounds stay zero;
// an end before the start is an error.
func ParseDates(start, end string) (from, to time.Time, err error) {
	if start != "" {
		if from, err = time.Parse(DateLayout, start); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start date %q: expected %s", start, DateLayout)
		}
	}
	if end != "" {
		if to, err = time.Parse(DateLayout, end); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end date %q: expected %s", end, DateLayout)
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %s precedes start date %s", to.Format(DateLayout), from.Format(DateLayout))
	}
	return from, to, nil
}

// QueryInt reads a positive integer query parameter, falling back to def.
func QueryInt(r *http.Request, name string, def int) int {
	if s := r.URL.Query().Get(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}
