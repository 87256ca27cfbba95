package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/stockintel/internal/market_regime"
	"github.com/aristath/stockintel/internal/modules/optimization"
)

const csvDateLayout = "2006-01-02"

// readReturnsCSV parses a header row of asset names, optionally led by a
// date column, followed by one row of periodic returns per observation.
func readReturnsCSV(r io.Reader) (optimization.ReturnMatrix, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return optimization.ReturnMatrix{}, fmt.Errorf("%w: failed to read header: %v", optimization.ErrMalformedReturns, err)
	}

	hasDate := len(header) > 0 && strings.EqualFold(strings.TrimSpace(header[0]), "date")
	assets := header
	if hasDate {
		assets = header[1:]
	}
	for i := range assets {
		assets[i] = strings.TrimSpace(assets[i])
	}

	var dates []time.Time
	columns := make(map[string][]float64, len(assets))
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return optimization.ReturnMatrix{}, fmt.Errorf("%w: line %d: %v", optimization.ErrMalformedReturns, line, err)
		}

		if hasDate {
			date, err := time.Parse(csvDateLayout, strings.TrimSpace(record[0]))
			if err != nil {
				return optimization.ReturnMatrix{}, fmt.Errorf("%w: line %d: bad date %q", optimization.ErrMalformedReturns, line, record[0])
			}
			dates = append(dates, date)
			record = record[1:]
		}

		for j, asset := range assets {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[j]), 64)
			if err != nil {
				return optimization.ReturnMatrix{}, fmt.Errorf("%w: line %d: bad return %q for %s", optimization.ErrMalformedReturns, line, record[j], asset)
			}
			columns[asset] = append(columns[asset], v)
		}
	}

	m, err := optimization.NewReturnMatrixFromColumns(assets, columns)
	if err != nil {
		return optimization.ReturnMatrix{}, err
	}
	m.Dates = dates
	return m, nil
}

// readPricesCSV parses a date,close file into chronological price points
func readPricesCSV(r io.Reader) ([]market_regime.PricePoint, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = 2

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", market_regime.ErrInvalidPrices, err)
	}
	if len(records) > 0 && strings.EqualFold(strings.TrimSpace(records[0][0]), "date") {
		records = records[1:]
	}

	prices := make([]market_regime.PricePoint, 0, len(records))
	for i, record := range records {
		date, err := time.Parse(csvDateLayout, strings.TrimSpace(record[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: bad date %q", market_regime.ErrInvalidPrices, i+1, record[0])
		}
		closePrice, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: bad close %q", market_regime.ErrInvalidPrices, i+1, record[1])
		}
		prices = append(prices, market_regime.PricePoint{Date: date, Close: closePrice})
	}
	return prices, nil
}
