package seeder

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind names a curriculum table. The values double as keys of teardown counts.
type Kind string

const (
	KindSubject          Kind = "subjects"
	KindChapter          Kind = "chapters"
	KindSection          Kind = "sections"
	KindLesson           Kind = "lessons"
	KindTest             Kind = "tests"
	KindQuestion         Kind = "questions"
	KindQuestionOption   Kind = "questionOptions"
	KindTestQuestionLink Kind = "testQuestionLinks"
)

// parentKinds maps each structural kind to the kind its parent key refers to.
var parentKinds = map[Kind]Kind{
	KindChapter: KindSubject,
	KindSection: KindChapter,
	KindLesson:  KindSection,
	KindTest:    KindSection,
}

var (
	ErrSlugConflict = errors.New("slug already exists")
	ErrForeignKey   = errors.New("foreign key violation")
	ErrNotFound     = errors.New("record not found")
)

// Fields holds the data columns of a structural record keyed by column name.
type Fields map[string]any

// Node is a structural record: subject, chapter, section, lesson or test.
type Node struct {
	ID        string
	Kind      Kind
	Slug      string
	ParentID  string // empty for subjects
	Fields    Fields
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Order returns the node's sibling position.
func (n Node) Order() int {
	switch v := n.Fields[fieldOrder].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	}
	return 0
}

// Question is a stored question row. LessonID is empty when no lesson is linked.
type Question struct {
	ID                 string
	Text               string
	Type               string
	Explanation        string
	Difficulty         string
	Points             int
	AllowPartialCredit bool
	LessonID           string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// QuestionOption is a stored answer option.
type QuestionOption struct {
	ID         string
	QuestionID string
	Text       string
	IsCorrect  bool
	Order      int
	CreatedAt  time.Time
}

// TestQuestionLink orders a question inside a test. (TestID, QuestionID) is its key.
type TestQuestionLink struct {
	TestID     string
	QuestionID string
	Order      int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Tx is the set of store operations available inside one atomic unit of work.
type Tx interface {
	// FindBySlug returns the record of kind holding slug, or nil.
	FindBySlug(ctx context.Context, kind Kind, slug string) (*Node, error)
	InsertNode(ctx context.Context, n Node) (string, error)
	UpdateNode(ctx context.Context, kind Kind, id string, fields Fields, updatedAt time.Time) error
	// ListChildren returns the records of kind whose parent is parentID, by order.
	ListChildren(ctx context.Context, kind Kind, parentID string) ([]Node, error)
	CountNodes(ctx context.Context, kind Kind) (int, error)

	InsertQuestion(ctx context.Context, q Question) (string, error)
	InsertOption(ctx context.Context, o QuestionOption) (string, error)
	FindTestQuestionLink(ctx context.Context, testID, questionID string) (*TestQuestionLink, error)
	InsertTestQuestionLink(ctx context.Context, l TestQuestionLink) error
	UpdateTestQuestionLinkOrder(ctx context.Context, testID, questionID string, order int, updatedAt time.Time) error

	// DeleteAll removes every row of kind and reports how many were removed.
	DeleteAll(ctx context.Context, kind Kind) (int64, error)
}

// Store runs fn atomically: either every write made through tx is kept or none is.
type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// MemoryStore is an in-memory Store. It enforces unique slugs per kind and
// referential integrity like the PostgreSQL schema does, and rolls back a
// failed unit of work by discarding its working copy.
type MemoryStore struct {
	mu   sync.Mutex
	data memoryData

	// Fault, when set, is consulted before every write. A non-nil error
	// aborts the operation; used to exercise rollback.
	Fault func(op string) error
}

type memoryData struct {
	nodes     map[Kind][]Node
	questions []Question
	options   []QuestionOption
	links     []TestQuestionLink
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: memoryData{nodes: make(map[Kind][]Node)}}
}

func (s *MemoryStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{data: s.data.clone(), fault: s.Fault}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

// Nodes returns a copy of every record of kind in insertion order.
func (s *MemoryStore) Nodes(kind Kind) []Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Node, 0, len(s.data.nodes[kind]))
	for _, n := range s.data.nodes[kind] {
		out = append(out, n.clone())
	}
	return out
}

// Questions returns a copy of every question in insertion order.
func (s *MemoryStore) Questions() []Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.questions)
}

// Options returns a copy of every question option in insertion order.
func (s *MemoryStore) Options() []QuestionOption {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.options)
}

// Links returns a copy of every test-question link in insertion order.
func (s *MemoryStore) Links() []TestQuestionLink {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.links)
}

// Count returns the number of rows of kind.
func (s *MemoryStore) Count(kind Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.count(kind)
}

func (d memoryData) clone() memoryData {
	c := memoryData{
		nodes:     make(map[Kind][]Node, len(d.nodes)),
		questions: slices.Clone(d.questions),
		options:   slices.Clone(d.options),
		links:     slices.Clone(d.links),
	}
	for k, nodes := range d.nodes {
		cp := make([]Node, len(nodes))
		for i, n := range nodes {
			cp[i] = n.clone()
		}
		c.nodes[k] = cp
	}
	return c
}

func (d memoryData) count(kind Kind) int {
	switch kind {
	case KindQuestion:
		return len(d.questions)
	case KindQuestionOption:
		return len(d.options)
	case KindTestQuestionLink:
		return len(d.links)
	}
	return len(d.nodes[kind])
}

func (n Node) clone() Node {
	n.Fields = maps.Clone(n.Fields)
	return n
}

type memoryTx struct {
	data  memoryData
	fault func(op string) error
}

func (t *memoryTx) check(op string) error {
	if t.fault == nil {
		return nil
	}
	return t.fault(op)
}

func (t *memoryTx) nodeIndex(kind Kind, id string) int {
	return slices.IndexFunc(t.data.nodes[kind], func(n Node) bool { return n.ID == id })
}

func (t *memoryTx) FindBySlug(_ context.Context, kind Kind, slug string) (*Node, error) {
	for _, n := range t.data.nodes[kind] {
		if n.Slug == slug {
			found := n.clone()
			return &found, nil
		}
	}
	return nil, nil
}

func (t *memoryTx) InsertNode(_ context.Context, n Node) (string, error) {
	if err := t.check("insert " + string(n.Kind)); err != nil {
		return "", err
	}
	if parent, ok := parentKinds[n.Kind]; ok && t.nodeIndex(parent, n.ParentID) < 0 {
		return "", fmt.Errorf("%w: %s parent %q does not exist", ErrForeignKey, n.Kind, n.ParentID)
	}
	for _, existing := range t.data.nodes[n.Kind] {
		if existing.Slug == n.Slug {
			return "", fmt.Errorf("%w: %s %q", ErrSlugConflict, n.Kind, n.Slug)
		}
	}
	n = n.clone()
	n.ID = uuid.NewString()
	t.data.nodes[n.Kind] = append(t.data.nodes[n.Kind], n)
	return n.ID, nil
}

func (t *memoryTx) UpdateNode(_ context.Context, kind Kind, id string, fields Fields, updatedAt time.Time) error {
	if err := t.check("update " + string(kind)); err != nil {
		return err
	}
	i := t.nodeIndex(kind, id)
	if i < 0 {
		return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	n := &t.data.nodes[kind][i]
	if n.Fields == nil {
		n.Fields = Fields{}
	}
	maps.Copy(n.Fields, fields)
	n.UpdatedAt = updatedAt
	return nil
}

func (t *memoryTx) ListChildren(_ context.Context, kind Kind, parentID string) ([]Node, error) {
	var out []Node
	for _, n := range t.data.nodes[kind] {
		if n.ParentID == parentID {
			out = append(out, n.clone())
		}
	}
	slices.SortStableFunc(out, func(a, b Node) int { return a.Order() - b.Order() })
	return out, nil
}

func (t *memoryTx) CountNodes(_ context.Context, kind Kind) (int, error) {
	return t.data.count(kind), nil
}

func (t *memoryTx) InsertQuestion(_ context.Context, q Question) (string, error) {
	if err := t.check("insert " + string(KindQuestion)); err != nil {
		return "", err
	}
	if q.LessonID != "" && t.nodeIndex(KindLesson, q.LessonID) < 0 {
		return "", fmt.Errorf("%w: lesson %q does not exist", ErrForeignKey, q.LessonID)
	}
	q.ID = uuid.NewString()
	t.data.questions = append(t.data.questions, q)
	return q.ID, nil
}

func (t *memoryTx) hasQuestion(id string) bool {
	return slices.ContainsFunc(t.data.questions, func(q Question) bool { return q.ID == id })
}

func (t *memoryTx) InsertOption(_ context.Context, o QuestionOption) (string, error) {
	if err := t.check("insert " + string(KindQuestionOption)); err != nil {
		return "", err
	}
	if !t.hasQuestion(o.QuestionID) {
		return "", fmt.Errorf("%w: question %q does not exist", ErrForeignKey, o.QuestionID)
	}
	o.ID = uuid.NewString()
	t.data.options = append(t.data.options, o)
	return o.ID, nil
}

func (t *memoryTx) linkIndex(testID, questionID string) int {
	return slices.IndexFunc(t.data.links, func(l TestQuestionLink) bool {
		return l.TestID == testID && l.QuestionID == questionID
	})
}

func (t *memoryTx) FindTestQuestionLink(_ context.Context, testID, questionID string) (*TestQuestionLink, error) {
	if i := t.linkIndex(testID, questionID); i >= 0 {
		l := t.data.links[i]
		return &l, nil
	}
	return nil, nil
}

func (t *memoryTx) InsertTestQuestionLink(_ context.Context, l TestQuestionLink) error {
	if err := t.check("insert " + string(KindTestQuestionLink)); err != nil {
		return err
	}
	if t.nodeIndex(KindTest, l.TestID) < 0 || !t.hasQuestion(l.QuestionID) {
		return fmt.Errorf("%w: link %s/%s", ErrForeignKey, l.TestID, l.QuestionID)
	}
	if t.linkIndex(l.TestID, l.QuestionID) >= 0 {
		return fmt.Errorf("duplicate link %s/%s", l.TestID, l.QuestionID)
	}
	t.data.links = append(t.data.links, l)
	return nil
}

func (t *memoryTx) UpdateTestQuestionLinkOrder(_ context.Context, testID, questionID string, order int, updatedAt time.Time) error {
	if err := t.check("update " + string(KindTestQuestionLink)); err != nil {
		return err
	}
	i := t.linkIndex(testID, questionID)
	if i < 0 {
		return fmt.Errorf("%w: link %s/%s", ErrNotFound, testID, questionID)
	}
	t.data.links[i].Order = order
	t.data.links[i].UpdatedAt = updatedAt
	return nil
}

func (t *memoryTx) DeleteAll(_ context.Context, kind Kind) (int64, error) {
	if err := t.check("delete " + string(kind)); err != nil {
		return 0, err
	}
	if t.referenced(kind) {
		return 0, fmt.Errorf("%w: %s still referenced", ErrForeignKey, kind)
	}

	n := int64(t.data.count(kind))
	switch kind {
	case KindQuestion:
		t.data.questions = nil
	case KindQuestionOption:
		t.data.options = nil
	case KindTestQuestionLink:
		t.data.links = nil
	default:
		delete(t.data.nodes, kind)
	}
	return n, nil
}

// referenced reports whether any row of another kind points at a row of kind.
func (t *memoryTx) referenced(kind Kind) bool {
	for child, parent := range parentKinds {
		if parent == kind && len(t.data.nodes[child]) > 0 {
			return true
		}
	}
	switch kind {
	case KindQuestion:
		return len(t.data.options) > 0 || len(t.data.links) > 0
	case KindTest:
		return len(t.data.links) > 0
	case KindLesson:
		return slices.ContainsFunc(t.data.questions, func(q Question) bool { return q.LessonID != "" })
	}
	return false
}
