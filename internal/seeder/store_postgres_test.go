package seeder_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/p-n-ai/pai-curriculum/internal/seeder"
)

func newPostgresPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("curriculum"),
		postgres.WithUsername("curriculum"),
		postgres.WithPassword("curriculum"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pgxpool.New() error = %v", err)
	}
	t.Cleanup(pool.Close)

	if err := seeder.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	return pool
}

func TestPostgresStore_SynchronizeAndTeardown(t *testing.T) {
	pool := newPostgresPool(t)
	ctx := context.Background()

	store, err := seeder.NewPostgresStore(pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	engine := seeder.NewEngine(seeder.EngineConfig{
		Store:    store,
		Recorder: seeder.NewPostgresRunRecorder(pool),
	})

	first, err := engine.Synchronize(ctx, mathematicsDocument())
	if err != nil {
		t.Fatalf("Synchronize() error = %v", err)
	}
	if first.LessonsCreated != 2 || first.QuestionOptionsCreated != 3 {
		t.Errorf("first run = %+v", first)
	}

	var lessonLinked bool
	err = pool.QueryRow(ctx,
		`SELECT q.lesson_id = l.id FROM questions q, lessons l WHERE l.slug = 'advanced'`,
	).Scan(&lessonLinked)
	if err != nil {
		t.Fatalf("query question lesson: %v", err)
	}
	if !lessonLinked {
		t.Error("question should reference the advanced lesson")
	}

	second, err := engine.Synchronize(ctx, mathematicsDocument())
	if err != nil {
		t.Fatalf("second Synchronize() error = %v", err)
	}
	if second.SubjectID != first.SubjectID || second.LessonsCreated != 0 || second.LessonsUpdated != 2 {
		t.Errorf("second run = %+v", second)
	}

	res, err := engine.Teardown(ctx)
	if err != nil {
		t.Fatalf("Teardown() error = %v", err)
	}
	if res.Deleted[seeder.KindQuestion] != 2 || res.Deleted[seeder.KindQuestionOption] != 6 || res.Deleted[seeder.KindLesson] != 2 {
		t.Errorf("Deleted = %v", res.Deleted)
	}

	var runs int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM seed_runs`).Scan(&runs); err != nil {
		t.Fatalf("count seed_runs: %v", err)
	}
	if runs != 3 {
		t.Errorf("seed_runs = %d, want 3", runs)
	}
}

func TestPostgresStore_SlugConflictRollsBack(t *testing.T) {
	pool := newPostgresPool(t)
	ctx := context.Background()

	store, err := seeder.NewPostgresStore(pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	engine := seeder.NewEngine(seeder.EngineConfig{Store: store, Now: func() time.Time { return time.Now().UTC() }})

	if _, err := engine.Synchronize(ctx, mathematicsDocument()); err != nil {
		t.Fatalf("Synchronize() error = %v", err)
	}

	other := mathematicsDocument()
	other.Slug = "further-mathematics"
	other.Chapters[0].Sections = nil
	_, err = engine.Synchronize(ctx, other)
	if !errors.Is(err, seeder.ErrSlugConflict) {
		t.Fatalf("Synchronize() error = %v, want ErrSlugConflict", err)
	}

	var subjects int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM subjects`).Scan(&subjects); err != nil {
		t.Fatalf("count subjects: %v", err)
	}
	if subjects != 1 {
		t.Errorf("subjects = %d, want 1", subjects)
	}
}
