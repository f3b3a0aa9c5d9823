package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// HistoryRow is the accuracy and latency of one task of one run.
type HistoryRow struct {
	RunID       string
	TaskID      string
	Model       string
	StartedAt   time.Time
	Trials      int
	Valid       int
	Correct     int
	MeanSeconds float64
}

// Accuracy returns correct over valid predictions as a percentage.
func (r HistoryRow) Accuracy() float64 {
	if r.Valid == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Valid) * 100
}

// History lists every ingested task, oldest run first. A non-empty taskID
// restricts the rows to that task.
func History(ctx context.Context, db *sql.DB, taskID string) ([]HistoryRow, error) {
	if db == nil {
		return nil, errors.New("warehouse: db is nil")
	}
	query := `SELECT run_id, task_id, model, started_at, trials, valid, correct, mean_seconds FROM v_task_accuracy`
	var args []any
	if taskID != "" {
		query += ` WHERE task_id = ?`
		args = append(args, taskID)
	}
	query += ` ORDER BY started_at NULLS FIRST, run_id, task_id`
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []HistoryRow
	for rows.Next() {
		var (
			row     HistoryRow
			started sql.NullTime
		)
		if err := rows.Scan(&row.RunID, &row.TaskID, &row.Model, &started, &row.Trials, &row.Valid, &row.Correct, &row.MeanSeconds); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if started.Valid {
			row.StartedAt = started.Time
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return out, nil
}
