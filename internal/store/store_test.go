package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var tick int
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s
}

func TestRecordFinishRecent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	first, err := s.Record(ctx, "/videos/a.mp4")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	second, err := s.Record(ctx, "/videos/b.mp4")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if first == second || len(first) != 36 {
		t.Fatalf("expected distinct uuid ids, got %q and %q", first, second)
	}

	if err := s.Finish(ctx, first, Outcome{
		Output:           "/out/a/edited.mp4",
		PlanPath:         "/out/a/plan.json",
		OriginalDuration: 10,
		EditedDuration:   7.5,
		RemovedDuration:  2.5,
	}); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if err := s.Finish(ctx, second, Outcome{Err: errors.New("render: plan has no segments to keep")}); err != nil {
		t.Fatalf("finish: %v", err)
	}

	runs, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != second || runs[0].Status != StatusFailed || runs[0].Error == "" {
		t.Fatalf("unexpected newest run: %+v", runs[0])
	}
	got := runs[1]
	if got.Status != StatusSucceeded || got.EditedDuration != 7.5 || got.PlanPath != "/out/a/plan.json" {
		t.Fatalf("unexpected finished run: %+v", got)
	}
	if got.CreatedAt.IsZero() || !got.FinishedAt.After(got.CreatedAt) {
		t.Fatalf("unexpected timestamps: created=%v finished=%v", got.CreatedAt, got.FinishedAt)
	}
}

func TestRecentLimit(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	for i := 0; i < 3; i++ {
		if _, err := s.Record(ctx, "in.mp4"); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	runs, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(runs) != 2 || runs[0].Status != StatusRunning {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}

func TestFinishUnknownRun(t *testing.T) {
	s := openTestStore(t)
	err := s.Finish(context.Background(), "nope", Outcome{})
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}
