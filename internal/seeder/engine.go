// Package seeder materializes subject documents into the curriculum store and
// tears the curriculum down again.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/p-n-ai/pai-curriculum/internal/curriculum"
)

const (
	lockKey        = "curriculum:seed"
	defaultLockTTL = 5 * time.Minute
)

// ErrRunInProgress is returned when another synchronization or teardown holds the run lock.
var ErrRunInProgress = errors.New("a curriculum run is already in progress")

// StorageError wraps a failure reported by the store. The unit of work it
// happened in was rolled back.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: storage: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Locker serializes runs across processes.
type Locker interface {
	// Acquire takes key for ttl. ok is false when someone else holds it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// SeedResult summarizes a successful synchronization.
type SeedResult struct {
	SubjectID              string `json:"subjectId"`
	SubjectName            string `json:"subjectName"`
	SubjectCreated         bool   `json:"subjectCreated"`
	ChaptersCreated        int    `json:"chaptersCreated"`
	SectionsCreated        int    `json:"sectionsCreated"`
	LessonsCreated         int    `json:"lessonsCreated"`
	TestsCreated           int    `json:"testsCreated"`
	QuestionsCreated       int    `json:"questionsCreated"`
	QuestionOptionsCreated int    `json:"questionOptionsCreated"`

	ChaptersUpdated          int `json:"chaptersUpdated"`
	SectionsUpdated          int `json:"sectionsUpdated"`
	LessonsUpdated           int `json:"lessonsUpdated"`
	TestsUpdated             int `json:"testsUpdated"`
	TestQuestionLinksCreated int `json:"testQuestionLinksCreated"`
	TestQuestionLinksUpdated int `json:"testQuestionLinksUpdated"`

	Warnings []UnresolvedReference `json:"warnings,omitempty"`
}

// UnresolvedReference is a question whose lessonSlug matched no lesson of the
// subject. The question is still created, without a lesson link.
type UnresolvedReference struct {
	Path          string `json:"path"`
	TestSlug      string `json:"testSlug"`
	QuestionIndex int    `json:"questionIndex"`
	LessonSlug    string `json:"lessonSlug"`
}

func (w UnresolvedReference) String() string {
	return fmt.Sprintf("%s: lesson %q not found in subject", w.Path, w.LessonSlug)
}

// TeardownResult lists how many rows were deleted per kind.
type TeardownResult struct {
	Deleted map[Kind]int64 `json:"deleted"`
}

// EngineConfig holds dependencies for the engine.
type EngineConfig struct {
	Store    Store
	Locker   Locker        // optional
	Recorder RunRecorder   // optional
	LockTTL  time.Duration // default 5m
	Now      func() time.Time
}

// Engine runs synchronizations and teardowns. Each run is one sequential
// sweep inside a single store transaction.
type Engine struct {
	store    Store
	locker   Locker
	recorder RunRecorder
	lockTTL  time.Duration
	now      func() time.Time
}

// NewEngine creates a new engine.
func NewEngine(cfg EngineConfig) *Engine {
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = NopRunRecorder{}
	}
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		store:    store,
		locker:   cfg.Locker,
		recorder: recorder,
		lockTTL:  ttl,
		now:      now,
	}
}

// Validate checks a document without touching the store.
func (e *Engine) Validate(doc *curriculum.SubjectDocument) error {
	return curriculum.Validate(doc)
}

// Synchronize validates doc and materializes it into the store. Invalid
// documents fail with *curriculum.ValidationError before any write; store
// failures fail with *StorageError and leave nothing behind.
func (e *Engine) Synchronize(ctx context.Context, doc *curriculum.SubjectDocument) (*SeedResult, error) {
	if err := curriculum.Validate(doc); err != nil {
		return nil, err
	}

	var res *SeedResult
	err := e.withLock(ctx, func() error {
		start := e.now()
		slog.Info("curriculum sync started", "subject", doc.Slug, "chapters", len(doc.Chapters))

		var attempt SeedResult
		err := e.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
			attempt = SeedResult{}
			return e.synchronize(ctx, tx, doc, start, &attempt)
		})
		if err != nil {
			return &StorageError{Op: "synchronize " + doc.Slug, Err: err}
		}
		res = &attempt
		return nil
	})
	if err != nil {
		slog.Error("curriculum sync failed", "subject", doc.Slug, "error", err)
		return nil, err
	}

	slog.Info("curriculum sync completed",
		"subject", doc.Slug,
		"subject_id", res.SubjectID,
		"chapters_created", res.ChaptersCreated,
		"sections_created", res.SectionsCreated,
		"lessons_created", res.LessonsCreated,
		"tests_created", res.TestsCreated,
		"questions_created", res.QuestionsCreated,
		"options_created", res.QuestionOptionsCreated,
		"warnings", len(res.Warnings),
	)
	e.record(ctx, Run{Operation: RunSync, SubjectSlug: doc.Slug, Data: syncRunData(res)})
	return res, nil
}

// synchronize is the whole run inside one transaction: structure first, then
// the subject-wide lesson map, then questions for every test in document order.
func (e *Engine) synchronize(ctx context.Context, tx Tx, doc *curriculum.SubjectDocument, now time.Time, res *SeedResult) error {
	tree, err := materializeTree(ctx, tx, doc, now, res)
	if err != nil {
		return err
	}

	lessons, err := buildLessonSlugMap(ctx, tx, tree.subjectID)
	if err != nil {
		return fmt.Errorf("build lesson map: %w", err)
	}
	slog.Debug("lesson map built", "subject_id", tree.subjectID, "lessons", len(lessons))

	for _, t := range tree.tests {
		if err := materializeQuestions(ctx, tx, t, lessons, now, res); err != nil {
			return err
		}
	}
	return nil
}

// Teardown deletes every curriculum row of every subject in dependency order.
func (e *Engine) Teardown(ctx context.Context) (*TeardownResult, error) {
	var res *TeardownResult
	err := e.withLock(ctx, func() error {
		var deleted map[Kind]int64
		err := e.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
			var err error
			deleted, err = teardown(ctx, tx)
			return err
		})
		if err != nil {
			return &StorageError{Op: "teardown", Err: err}
		}
		res = &TeardownResult{Deleted: deleted}
		return nil
	})
	if err != nil {
		slog.Error("curriculum teardown failed", "error", err)
		return nil, err
	}

	slog.Info("curriculum teardown completed", "deleted", res.Deleted)
	e.record(ctx, Run{Operation: RunTeardown, Data: teardownRunData(res)})
	return res, nil
}

func (e *Engine) withLock(ctx context.Context, fn func() error) error {
	if e.locker == nil {
		return fn()
	}
	release, ok, err := e.locker.Acquire(ctx, lockKey, e.lockTTL)
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return ErrRunInProgress
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("failed to release run lock", "key", lockKey, "error", err)
		}
	}()
	return fn()
}

// record stores a run entry. The run is already committed, so failures are only logged.
func (e *Engine) record(ctx context.Context, run Run) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = e.now()
	}
	if err := e.recorder.RecordRun(ctx, run); err != nil {
		slog.Warn("failed to record run", "operation", run.Operation, "error", err)
	}
}
