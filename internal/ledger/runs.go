package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a run ID is unknown.
var ErrNotFound = errors.New("run not found")

// RecordRun stores run and its items in one transaction.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("record run: id is required")
	}
	return s.withBusyRetry(ctx, func() error {
		return s.recordRunTx(ctx, run)
	})
}

func (s *Store) recordRunTx(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (
            id, status, video_dir, audio_dir, output_dir, final_path,
            segments, error_message, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		string(run.Status),
		run.VideoDir,
		run.AudioDir,
		run.OutputDir,
		nullableString(run.FinalPath),
		run.Segments,
		nullableString(run.ErrorMessage),
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, item := range run.Items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_items (run_id, position, stage, name, status, output_path, detail)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, item.Stage, item.Name, item.Status,
			nullableString(item.OutputPath), nullableString(item.Detail),
		); err != nil {
			return fmt.Errorf("insert run item %q: %w", item.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

const runColumns = `id, status, video_dir, audio_dir, output_dir, final_path,
    segments, error_message, started_at, finished_at`

// ListRuns returns the most recent runs first, without items. limit <= 0
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, id"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var runs []Run
	err := s.withBusyRetry(ctx, func() error {
		runs = runs[:0]
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			run, err := scanRun(rows)
			if err != nil {
				return err
			}
			runs = append(runs, run)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run with its items in recorded order.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	var run Run
	err := s.withBusyRetry(ctx, func() error {
		row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
		var err error
		run, err = scanRun(row)
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}

	err = s.withBusyRetry(ctx, func() error {
		run.Items = run.Items[:0]
		rows, err := s.db.QueryContext(ctx,
			`SELECT stage, name, status, output_path, detail
             FROM run_items WHERE run_id = ? ORDER BY position`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var item Item
			var output, detail sql.NullString
			if err := rows.Scan(&item.Stage, &item.Name, &item.Status, &output, &detail); err != nil {
				return err
			}
			item.OutputPath = output.String
			item.Detail = detail.String
			run.Items = append(run.Items, item)
		}
		return rows.Err()
	})
	if err != nil {
		return Run{}, fmt.Errorf("get run items: %w", err)
	}
	return run, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run                 Run
		status              string
		finalPath, errorMsg sql.NullString
		started, finished   string
	)
	if err := row.Scan(
		&run.ID, &status, &run.VideoDir, &run.AudioDir, &run.OutputDir, &finalPath,
		&run.Segments, &errorMsg, &started, &finished,
	); err != nil {
		return Run{}, err
	}
	run.Status = Status(status)
	run.FinalPath = finalPath.String
	run.ErrorMessage = errorMsg.String
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	return run, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
