package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/quantfold/stratsim/backtest"
)

// CSV writes orders and book history to two CSV files.
type CSV struct {
	orders  *csv.Writer
	history *csv.Writer
	of, hf  *os.File
}

func NewCSV(ordersPath, historyPath string) (*CSV, error) {
	of, err := os.Create(ordersPath)
	if err != nil {
		return nil, err
	}
	hf, err := os.Create(historyPath)
	if err != nil {
		of.Close()
		return nil, err
	}

	ow := csv.NewWriter(of)
	hw := csv.NewWriter(hf)

	if err := ow.Write([]string{"run_id", "key", "label", "book", "asset", "size", "size_type", "status"}); err != nil {
		return nil, err
	}
	if err := hw.Write([]string{"run_id", "book", "ts", "cash", "mtm", "total"}); err != nil {
		return nil, err
	}

	ow.Flush()
	if err := ow.Error(); err != nil {
		return nil, err
	}
	hw.Flush()
	if err := hw.Error(); err != nil {
		return nil, err
	}

	return &CSV{orders: ow, history: hw, of: of, hf: hf}, nil
}

func (j *CSV) RecordResult(res *backtest.Result) error {
	for _, rec := range orderRecords(res) {
		j.orders.Write([]string{
			rec.RunID,
			rec.Key,
			rec.Label,
			rec.Book,
			rec.Asset,
			f(rec.Size),
			rec.SizeType,
			rec.Status,
		})
	}
	for _, rec := range historyRecords(res) {
		j.history.Write([]string{
			rec.RunID,
			rec.Book,
			rec.TS.UTC().Format(time.RFC3339),
			f(rec.Cash),
			f(rec.MTM),
			f(rec.Total),
		})
	}

	j.orders.Flush()
	if err := j.orders.Error(); err != nil {
		return err
	}
	j.history.Flush()
	return j.history.Error()
}

func (j *CSV) Close() error {
	j.orders.Flush()
	j.history.Flush()
	if err := j.of.Close(); err != nil {
		j.hf.Close()
		return err
	}
	return j.hf.Close()
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
