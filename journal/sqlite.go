package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/quantfold/stratsim/backtest"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// RecordResult writes the run summary, every processed order and every
// book's daily history in one transaction.
func (j *SQLite) RecordResult(res *backtest.Result) error {
	run, err := runRecord(res)
	if err != nil {
		return err
	}

	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO runs (run_id, recorded_at, params, processed, unprocessed)
		VALUES (?, ?, ?, ?, ?)`,
		run.RunID, run.RecordedAt, run.Params, run.Processed, run.Unprocessed,
	); err != nil {
		return err
	}

	for _, rec := range orderRecords(res) {
		if _, err := tx.Exec(`
			INSERT INTO orders (run_id, key, label, book, asset, size, size_type, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.RunID, rec.Key, rec.Label, rec.Book,
			rec.Asset, rec.Size, rec.SizeType, rec.Status,
		); err != nil {
			return err
		}
	}

	for _, rec := range historyRecords(res) {
		if _, err := tx.Exec(`
			INSERT INTO book_history (run_id, book, ts, cash, mtm, total)
			VALUES (?, ?, ?, ?, ?, ?)`,
			rec.RunID, rec.Book, rec.TS, rec.Cash, rec.MTM, rec.Total,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
