package seeder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Run operations.
const (
	RunSync     = "sync"
	RunTeardown = "teardown"
)

// Run is an audit entry for a committed synchronization or teardown.
type Run struct {
	Operation   string
	SubjectSlug string
	Data        map[string]any
	CreatedAt   time.Time
}

// RunRecorder receives one Run after each committed synchronization or
// teardown. Rolled-back runs are never recorded.
type RunRecorder interface {
	RecordRun(ctx context.Context, run Run) error
}

// NopRunRecorder is the engine default when no seed_runs table is available.
type NopRunRecorder struct{}

func (NopRunRecorder) RecordRun(context.Context, Run) error {
	return nil
}

// MemoryRunRecorder keeps runs in order of commit so engine tests can assert
// which operations were audited.
type MemoryRunRecorder struct {
	mu   sync.Mutex
	runs []Run
}

func NewMemoryRunRecorder() *MemoryRunRecorder {
	return &MemoryRunRecorder{runs: []Run{}}
}

func (r *MemoryRunRecorder) RecordRun(_ context.Context, run Run) error {
	if run.Operation == "" {
		return fmt.Errorf("operation is required")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	r.mu.Lock()
	r.runs = append(r.runs, run)
	r.mu.Unlock()

	return nil
}

func (r *MemoryRunRecorder) Runs() []Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Run{}, r.runs...)
}

// PostgresRunRecorder writes one seed_runs row per committed run, with the
// subject slug and the run counts stored as JSONB.
type PostgresRunRecorder struct {
	pool *pgxpool.Pool
}

func NewPostgresRunRecorder(pool *pgxpool.Pool) *PostgresRunRecorder {
	return &PostgresRunRecorder{pool: pool}
}

func (r *PostgresRunRecorder) RecordRun(ctx context.Context, run Run) error {
	if r == nil || r.pool == nil {
		return fmt.Errorf("run recorder pool is nil")
	}
	if run.Operation == "" {
		return fmt.Errorf("operation is required")
	}

	payload := run.Data
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal run data: %w", err)
	}

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err = r.pool.Exec(ctx,
		`INSERT INTO seed_runs (operation, subject_slug, data, created_at)
		 VALUES ($1, $2, $3::jsonb, $4)`,
		run.Operation,
		nullIfEmpty(run.SubjectSlug),
		string(data),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert seed run: %w", err)
	}

	slog.Debug("seed run recorded", "operation", run.Operation, "subject", run.SubjectSlug)
	return nil
}

func syncRunData(res *SeedResult) map[string]any {
	return map[string]any{
		"subjectId":              res.SubjectID,
		"subjectCreated":         res.SubjectCreated,
		"chaptersCreated":        res.ChaptersCreated,
		"sectionsCreated":        res.SectionsCreated,
		"lessonsCreated":         res.LessonsCreated,
		"testsCreated":           res.TestsCreated,
		"questionsCreated":       res.QuestionsCreated,
		"questionOptionsCreated": res.QuestionOptionsCreated,
		"warnings":               len(res.Warnings),
	}
}

func teardownRunData(res *TeardownResult) map[string]any {
	data := make(map[string]any, len(res.Deleted))
	for k, n := range res.Deleted {
		data[string(k)] = n
	}
	return data
}
