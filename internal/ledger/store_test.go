package ledger_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"storyreel/internal/ledger"
	"storyreel/internal/testsupport"
)

func TestRecordAndGetRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	run := ledger.Run{
		ID:         "run-1",
		Status:     ledger.StatusSucceeded,
		VideoDir:   "/in/video",
		AudioDir:   "/in/audio",
		OutputDir:  "/out",
		FinalPath:  "/out/final_merged.mp4",
		Segments:   2,
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Items: []ledger.Item{
			{Stage: "trim", Name: "page_001.mp4", Status: "ok", OutputPath: "/out/trimmed/page_001.mp4"},
			{Stage: "align", Name: "page_002.wav", Status: "failed", Detail: "alignment failed"},
		},
	}
	if err := store.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	got, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Status != ledger.StatusSucceeded || got.FinalPath != run.FinalPath || got.Segments != 2 {
		t.Fatalf("unexpected run %#v", got)
	}
	if !got.StartedAt.Equal(started) || got.Elapsed() != 90*time.Second {
		t.Fatalf("unexpected timing %v %v", got.StartedAt, got.Elapsed())
	}
	if len(got.Items) != 2 || got.Items[0].Name != "page_001.mp4" || got.Items[1].Detail != "alignment failed" {
		t.Fatalf("unexpected items %#v", got.Items)
	}
	if got.Items[1].OutputPath != "" {
		t.Fatalf("expected empty output path, got %q", got.Items[1].OutputPath)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		err := store.RecordRun(ctx, ledger.Run{
			ID:         id,
			Status:     ledger.StatusFailed,
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
		})
		if err != nil {
			t.Fatalf("RecordRun %s: %v", id, err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("unexpected order: %#v", runs)
	}
	all, err := store.ListRuns(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected all runs, got %d (%v)", len(all), err)
	}
}

func TestGetRunNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	if _, err := store.GetRun(context.Background(), "missing"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordRunRejectsDuplicateAndEmptyID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenLedger(t, cfg)
	ctx := context.Background()
	if err := store.RecordRun(ctx, ledger.Run{}); err == nil {
		t.Fatal("expected error for empty id")
	}
	run := ledger.Run{ID: "dup", Status: ledger.StatusSucceeded}
	if err := store.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := store.RecordRun(ctx, run); err == nil {
		t.Fatal("expected primary key violation")
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "ledger.db")
	store, err := ledger.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.RecordRun(context.Background(), ledger.Run{ID: "persist", Status: ledger.StatusCanceled}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := ledger.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	run, err := reopened.GetRun(context.Background(), "persist")
	if err != nil || run.Status != ledger.StatusCanceled {
		t.Fatalf("unexpected run after reopen: %#v %v", run, err)
	}
	if reopened.Path() != path {
		t.Fatalf("Path = %q", reopened.Path())
	}
}

func TestOpenRejectsOtherSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("set user_version: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err = ledger.Open(path)
	if !errors.Is(err, ledger.ErrSchemaMismatch) {
		t.Fatalf("Open error = %v, want ErrSchemaMismatch", err)
	}
}
