package warehouse

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"emoeval/internal/parse"
	"emoeval/internal/record"
	"emoeval/internal/runner"
)

// IngestStats counts the rows written for one run.
type IngestStats struct {
	Tasks  int
	Trials int
	Calls  int
	Fields int
}

// Ingest writes a run into the warehouse. Ingesting the same run again
// replaces its rows.
func Ingest(ctx context.Context, db *sql.DB, results runner.Results, now time.Time) (IngestStats, error) {
	if db == nil {
		return IngestStats{}, errors.New("warehouse: db is nil")
	}
	if results.RunID == "" {
		return IngestStats{}, errors.New("warehouse: run id is required")
	}
	if err := deleteRun(ctx, db, results.RunID); err != nil {
		return IngestStats{}, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return IngestStats{}, fmt.Errorf("begin ingest: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, dataset, endpoint_kind, endpoint_url, started_at, finished_at, cancelled, ingested_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		results.RunID, results.Dataset, results.Endpoint.Kind, results.Endpoint.URL,
		nullableTime(results.StartedAt), nullableTime(results.FinishedAt), results.Cancelled, now.UTC(),
	); err != nil {
		return IngestStats{}, fmt.Errorf("insert run: %w", err)
	}

	var stats IngestStats
	for _, task := range results.Tasks {
		if err := insertTask(ctx, tx, results.RunID, task, &stats); err != nil {
			return IngestStats{}, fmt.Errorf("task %q: %w", task.TaskID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return IngestStats{}, fmt.Errorf("commit ingest: %w", err)
	}
	return stats, nil
}

// deleteRun clears a previous ingest of the run. It commits on its own so the
// re-insert does not trip DuckDB's unique checks within one transaction.
func deleteRun(ctx context.Context, db *sql.DB, runID string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	statements := []string{
		`DELETE FROM field_values WHERE record_id IN (SELECT record_id FROM trials WHERE run_id = ?)`,
		`DELETE FROM calls WHERE record_id IN (SELECT record_id FROM trials WHERE run_id = ?)`,
		`DELETE FROM trials WHERE run_id = ?`,
		`DELETE FROM tasks WHERE run_id = ?`,
		`DELETE FROM runs WHERE run_id = ?`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, runID); err != nil {
			return fmt.Errorf("clear run %s: %w", runID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}
	return nil
}

func insertTask(ctx context.Context, tx *sql.Tx, runID string, task runner.TaskResult, stats *IngestStats) error {
	key, err := FieldSetKey(task.Fields)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO tasks (run_id, task_id, model, temperature, accuracy_field, field_set_key, planned)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, task.TaskID, task.Model, task.Temperature, nullableString(task.AccuracyField), key, task.Planned,
	); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	stats.Tasks++

	trialStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO trials (record_id, run_id, task_id, trial_index, character_info, true_label, sentence, total_seconds)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare trials: %w", err)
	}
	defer trialStmt.Close()
	callStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO calls (record_id, call_id, outcome, status_code, elapsed_seconds, raw_text, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare calls: %w", err)
	}
	defer callStmt.Close()
	fieldStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO field_values (record_id, field_name, kind, status, text_value, number_value, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare field values: %w", err)
	}
	defer fieldStmt.Close()

	for _, rec := range task.Records {
		recordID := rec.ID
		if recordID == "" {
			recordID = fmt.Sprintf("%s/%s/%d", runID, task.TaskID, rec.Index)
		}
		if _, err := trialStmt.ExecContext(ctx,
			recordID, runID, task.TaskID, rec.Index, rec.Character, rec.TrueLabel, rec.Sentence, rec.TotalSeconds,
		); err != nil {
			return fmt.Errorf("insert trial %d: %w", rec.Index, err)
		}
		stats.Trials++
		for _, call := range rec.Calls {
			if err := insertCall(ctx, callStmt, recordID, call); err != nil {
				return err
			}
			stats.Calls++
		}
		for _, value := range rec.Fields {
			if err := insertField(ctx, fieldStmt, recordID, value); err != nil {
				return err
			}
			stats.Fields++
		}
	}
	return nil
}

func insertCall(ctx context.Context, stmt *sql.Stmt, recordID string, call record.Call) error {
	resp := call.Response
	var status any
	if resp.StatusCode != 0 {
		status = int64(resp.StatusCode)
	}
	if _, err := stmt.ExecContext(ctx,
		recordID, call.ID, string(resp.Outcome), status, resp.ElapsedSeconds,
		nullableString(resp.RawText()), nullableString(resp.Error),
	); err != nil {
		return fmt.Errorf("insert call %s: %w", call.ID, err)
	}
	return nil
}

func insertField(ctx context.Context, stmt *sql.Stmt, recordID string, value parse.Value) error {
	var number any
	if n, ok := value.Float(); ok {
		number = n
	}
	var text any
	if label, ok := value.Label(); ok {
		text = label
	}
	if _, err := stmt.ExecContext(ctx,
		recordID, value.Field, string(value.Kind), string(value.Status), text, number, nullableString(value.Reason),
	); err != nil {
		return fmt.Errorf("insert field %s: %w", value.Field, err)
	}
	return nil
}

// FieldSetKey fingerprints a field set so runs parsed with the same
// definitions can be grouped.
func FieldSetKey(fields []parse.FieldSpec) (string, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("marshal field set: %w", err)
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value.UTC()
}
