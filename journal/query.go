package journal

import (
	"database/sql"
	"fmt"
)

// GetRun returns a single run summary by ID.
func (j *SQLite) GetRun(runID string) (RunRecord, error) {
	var rec RunRecord

	row := j.db.QueryRow(`
		SELECT run_id, recorded_at, params, processed, unprocessed
		FROM runs
		WHERE run_id = ?`, runID)

	err := row.Scan(&rec.RunID, &rec.RecordedAt, &rec.Params, &rec.Processed, &rec.Unprocessed)
	if err != nil {
		if err == sql.ErrNoRows {
			return RunRecord{}, fmt.Errorf("run %q not found", runID)
		}
		return RunRecord{}, err
	}
	return rec, nil
}

// ListRuns returns every recorded run, oldest first (ULIDs sort by
// creation time).
func (j *SQLite) ListRuns() ([]RunRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, recorded_at, params, processed, unprocessed
		FROM runs
		ORDER BY run_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.RunID, &rec.RecordedAt, &rec.Params, &rec.Processed, &rec.Unprocessed); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListOrders returns the processed orders for a run in processing
// order.
func (j *SQLite) ListOrders(runID string) ([]OrderRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, key, label, book, asset, size, size_type, status
		FROM orders
		WHERE run_id = ?
		ORDER BY key ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderRecord
	for rows.Next() {
		var rec OrderRecord
		if err := rows.Scan(&rec.RunID, &rec.Key, &rec.Label, &rec.Book,
			&rec.Asset, &rec.Size, &rec.SizeType, &rec.Status); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListBookHistory returns one book's daily valuations for a run.
func (j *SQLite) ListBookHistory(runID, book string) ([]HistoryRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, book, ts, cash, mtm, total
		FROM book_history
		WHERE run_id = ? AND book = ?
		ORDER BY ts ASC`, runID, book)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryRecord
	for rows.Next() {
		var rec HistoryRecord
		if err := rows.Scan(&rec.RunID, &rec.Book, &rec.TS, &rec.Cash, &rec.MTM, &rec.Total); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
