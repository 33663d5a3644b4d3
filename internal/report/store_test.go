package report

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRun(id string, exitCode *int) *Run {
	return &Run{
		ID:        id,
		Tool:      "ql_scan",
		Argv:      []string{"/opt/codeql-n1ght/codeql-n1ght", "-scan"},
		ExitCode:  exitCode,
		Stdout:    "scan output",
		Stderr:    "",
		StartedAt: time.Now().Truncate(time.Millisecond),
		Duration:  1500 * time.Millisecond,
	}
}

func TestSQLiteStore_SaveLoad(t *testing.T) {
	s := newTestStore(t)
	zero := 0

	run := sampleRun("run-1", &zero)
	if err := s.Save(run); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load("run-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Tool != "ql_scan" {
		t.Errorf("Tool = %q, want ql_scan", got.Tool)
	}
	if len(got.Argv) != 2 || got.Argv[1] != "-scan" {
		t.Errorf("Argv = %v, want the original vector", got.Argv)
	}
	if got.ExitCode == nil || *got.ExitCode != 0 {
		t.Errorf("ExitCode = %v, want 0", got.ExitCode)
	}
	if got.Stdout != "scan output" {
		t.Errorf("Stdout = %q", got.Stdout)
	}
	if !got.StartedAt.Equal(run.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, run.StartedAt)
	}
	if got.Duration != run.Duration {
		t.Errorf("Duration = %v, want %v", got.Duration, run.Duration)
	}
}

func TestSQLiteStore_NilExitCode(t *testing.T) {
	s := newTestStore(t)

	run := sampleRun("run-timeout", nil)
	run.TimedOut = true
	if err := s.Save(run); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load("run-timeout")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ExitCode != nil {
		t.Errorf("ExitCode = %d, want nil", *got.ExitCode)
	}
	if !got.TimedOut {
		t.Error("TimedOut = false, want true")
	}
}

func TestSQLiteStore_UnknownRun(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Load("no-such-run"); err == nil {
		t.Fatal("expected error for unknown run ID")
	}
}

func TestSQLiteStore_Recent(t *testing.T) {
	s := newTestStore(t)
	zero := 0

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		run := sampleRun(fmt.Sprintf("run-%d", i), &zero)
		run.StartedAt = base.Add(time.Duration(i) * time.Minute)
		if err := s.Save(run); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	sums, err := s.Recent(3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(sums) != 3 {
		t.Fatalf("len(Recent) = %d, want 3", len(sums))
	}
	if sums[0].ID != "run-4" {
		t.Errorf("Recent[0].ID = %s, want run-4 (newest first)", sums[0].ID)
	}
}

func TestLRUStore_DelegatesAndCaches(t *testing.T) {
	back := newTestStore(t)
	s := NewLRUStore(2, back)
	zero := 0

	for _, id := range []string{"a", "b", "c"} {
		if err := s.Save(sampleRun(id, &zero)); err != nil {
			t.Fatalf("Save(%s): %v", id, err)
		}
	}

	// "a" was evicted from the cache but survives in the backing store.
	got, err := s.Load("a")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ID != "a" {
		t.Errorf("ID = %s, want a", got.ID)
	}

	sums, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(sums) != 3 {
		t.Errorf("len(Recent) = %d, want 3", len(sums))
	}
}
