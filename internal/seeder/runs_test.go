package seeder_test

import (
	"context"
	"errors"
	"testing"

	"github.com/p-n-ai/pai-curriculum/internal/seeder"
)

func TestMemoryRunRecorder_RecordRun(t *testing.T) {
	recorder := seeder.NewMemoryRunRecorder()

	err := recorder.RecordRun(context.Background(), seeder.Run{
		Operation:   seeder.RunSync,
		SubjectSlug: "mathematics",
		Data:        map[string]any{"lessonsCreated": 2},
	})
	if err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	runs := recorder.Runs()
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, want 1", len(runs))
	}
	if runs[0].Operation != seeder.RunSync {
		t.Errorf("Operation = %q, want sync", runs[0].Operation)
	}
	if runs[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestMemoryRunRecorder_RequiresOperation(t *testing.T) {
	if err := seeder.NewMemoryRunRecorder().RecordRun(context.Background(), seeder.Run{}); err == nil {
		t.Fatal("expected error for empty operation")
	}
}

func TestPostgresRunRecorder_RecordRun_NilPool(t *testing.T) {
	recorder := seeder.NewPostgresRunRecorder(nil)

	err := recorder.RecordRun(context.Background(), seeder.Run{Operation: seeder.RunTeardown})
	if err == nil {
		t.Fatal("expected error for nil pool")
	}
}

type failingRecorder struct{}

func (failingRecorder) RecordRun(context.Context, seeder.Run) error {
	return errors.New("audit table missing")
}

func TestEngine_RecorderFailureKeepsRun(t *testing.T) {
	store := seeder.NewMemoryStore()
	engine := seeder.NewEngine(seeder.EngineConfig{Store: store, Recorder: failingRecorder{}})

	if _, err := engine.Synchronize(context.Background(), mathematicsDocument()); err != nil {
		t.Fatalf("Synchronize() error = %v", err)
	}
	if n := store.Count(seeder.KindSubject); n != 1 {
		t.Errorf("subjects = %d, want 1", n)
	}
}
