package backtest

import (
	"testing"
	"time"

	"github.com/quantfold/stratsim/frame"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

// ohlcSeries builds a wide daily table for one label with High/Low one
// unit either side of Close, so the intraday mid equals Close.
func ohlcSeries(t *testing.T, label string, closes []float64) *frame.Frame {
	t.Helper()

	n := len(closes)
	dates := make([]time.Time, n)
	high := make([]float64, n)
	low := make([]float64, n)
	open := make([]float64, n)
	vol := make([]float64, n)
	for i, c := range closes {
		dates[i] = day(i)
		high[i] = c + 1
		low[i] = c - 1
		open[i] = c
		vol[i] = 1000
	}

	f, err := frame.New(dates, []frame.Column{
		{Key: frame.K(label, "High"), Vals: high},
		{Key: frame.K(label, "Low"), Vals: low},
		{Key: frame.K(label, "Open"), Vals: open},
		{Key: frame.K(label, "Close"), Vals: append([]float64(nil), closes...)},
		{Key: frame.K(label, "Volume"), Vals: vol},
	})
	if err != nil {
		t.Fatalf("build series: %v", err)
	}
	return f
}

func ohlcDay(t *testing.T, label string, high, low, close float64) *frame.Frame {
	t.Helper()

	f, err := frame.New([]time.Time{day(0)}, []frame.Column{
		{Key: frame.K(label, "High"), Vals: []float64{high}},
		{Key: frame.K(label, "Low"), Vals: []float64{low}},
		{Key: frame.K(label, "Close"), Vals: []float64{close}},
	})
	if err != nil {
		t.Fatalf("build day: %v", err)
	}
	return f
}
