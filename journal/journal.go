// Package journal persists backtest results so runs can be compared
// and re-examined later. Two backends: SQLite for querying, CSV for
// quick spreadsheet work.
package journal

import (
	"encoding/json"
	"time"

	"github.com/quantfold/stratsim/backtest"
	"github.com/quantfold/stratsim/frame"
)

// RunRecord summarizes one completed run.
type RunRecord struct {
	RunID       string
	RecordedAt  time.Time
	Params      string // JSON object
	Processed   int
	Unprocessed int
}

// OrderRecord is one processed order. Size fields are only populated
// for simple orders; user-defined order kinds record their core state.
type OrderRecord struct {
	RunID    string
	Key      string
	Label    string
	Book     string
	Asset    string
	Size     float64
	SizeType string
	Status   string
}

// HistoryRecord is one book's valuation for one simulated day.
type HistoryRecord struct {
	RunID string
	Book  string
	TS    time.Time
	Cash  float64
	MTM   float64
	Total float64
}

// Journal records completed runs.
type Journal interface {
	RecordResult(res *backtest.Result) error
	Close() error
}

func runRecord(res *backtest.Result) (RunRecord, error) {
	params, err := json.Marshal(res.Params)
	if err != nil {
		return RunRecord{}, err
	}
	return RunRecord{
		RunID:       res.RunID,
		RecordedAt:  time.Now().UTC(),
		Params:      string(params),
		Processed:   len(res.Processed),
		Unprocessed: len(res.Unprocessed),
	}, nil
}

func orderRecords(res *backtest.Result) []OrderRecord {
	out := make([]OrderRecord, 0, len(res.Processed))
	for _, o := range res.Processed {
		core := o.Core()
		rec := OrderRecord{
			RunID:  res.RunID,
			Key:    core.Key,
			Label:  core.Label,
			Status: core.Status.String(),
		}
		if core.Book != nil {
			rec.Book = core.Book.Name
		}
		if so, ok := o.(*backtest.SimpleOrder); ok {
			rec.Asset = so.AssetName
			rec.Size = so.Size
			rec.SizeType = so.SizeType.String()
		}
		out = append(out, rec)
	}
	return out
}

func historyRecords(res *backtest.Result) []HistoryRecord {
	var out []HistoryRecord
	for _, b := range res.Books {
		h := b.History()
		for i := 0; i < h.NumRows(); i++ {
			cash, _ := h.Value(frame.F("cash"), i)
			mtm, _ := h.Value(frame.F("mtm"), i)
			total, _ := h.Value(frame.F("total"), i)
			out = append(out, HistoryRecord{
				RunID: res.RunID,
				Book:  b.Name,
				TS:    h.Date(i),
				Cash:  cash,
				MTM:   mtm,
				Total: total,
			})
		}
	}
	return out
}
