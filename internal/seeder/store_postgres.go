package seeder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// table maps a structural kind onto its PostgreSQL table.
type table struct {
	name         string
	parentColumn string
	columns      []string
}

var structuralTables = map[Kind]table{
	KindSubject: {"subjects", "", []string{fieldName, fieldDescription, fieldIcon, fieldOrder}},
	KindChapter: {"chapters", "subject_id", []string{fieldName, fieldDescription, fieldOrder}},
	KindSection: {"sections", "chapter_id", []string{fieldName, fieldDescription, fieldOrder}},
	KindLesson:  {"lessons", "section_id", []string{fieldTitle, fieldContent, fieldContentType, fieldEstimatedMinutes, fieldOrder}},
	KindTest: {"tests", "section_id", []string{
		fieldTitle, fieldDescription, fieldTimeLimit, fieldPassingScore, fieldMaxAttempts,
		fieldShuffleQuestions, fieldShowCorrectAnswers, fieldOrder,
	}},
}

var tableNames = map[Kind]string{
	KindSubject:          "subjects",
	KindChapter:          "chapters",
	KindSection:          "sections",
	KindLesson:           "lessons",
	KindTest:             "tests",
	KindQuestion:         "questions",
	KindQuestionOption:   "question_options",
	KindTestQuestionLink: "test_question_links",
}

// PostgresStore is a PostgreSQL-backed Store. Each InTx call is one database transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed curriculum store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if err := fn(ctx, &pgTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", mapPgError(err))
	}
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

func structuralTable(kind Kind) (table, error) {
	t, ok := structuralTables[kind]
	if !ok {
		return table{}, fmt.Errorf("unknown structural kind %q", kind)
	}
	return t, nil
}

func (t table) selectList() string {
	parent := "''::text"
	if t.parentColumn != "" {
		parent = t.parentColumn + "::text"
	}
	cols := append([]string{
		"id::text AS id",
		parent + " AS parent_id",
		"slug", "is_active", "created_at", "updated_at",
	}, t.columns...)
	return strings.Join(cols, ", ")
}

func (t *pgTx) FindBySlug(ctx context.Context, kind Kind, slug string) (*Node, error) {
	tbl, err := structuralTable(kind)
	if err != nil {
		return nil, err
	}

	rows, err := t.tx.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE slug = $1 LIMIT 1`, tbl.selectList(), tbl.name),
		slug,
	)
	if err != nil {
		return nil, fmt.Errorf("find %s by slug: %w", kind, mapPgError(err))
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find %s by slug: %w", kind, mapPgError(err))
	}

	n := nodeFromRow(kind, tbl, row)
	return &n, nil
}

func (t *pgTx) InsertNode(ctx context.Context, n Node) (string, error) {
	tbl, err := structuralTable(n.Kind)
	if err != nil {
		return "", err
	}

	cols := []string{"slug", "is_active", "created_at", "updated_at"}
	args := []any{n.Slug, n.IsActive, n.CreatedAt, n.UpdatedAt}
	placeholders := []string{"$1", "$2", "$3", "$4"}
	if tbl.parentColumn != "" {
		cols = append(cols, tbl.parentColumn)
		args = append(args, n.ParentID)
		placeholders = append(placeholders, fmt.Sprintf("$%d::uuid", len(args)))
	}
	for _, c := range tbl.columns {
		v, ok := n.Fields[c]
		if !ok {
			continue
		}
		cols = append(cols, c)
		args = append(args, v)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	var id string
	err = t.tx.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING id::text`,
			tbl.name, strings.Join(cols, ", "), strings.Join(placeholders, ", ")),
		args...,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", n.Kind, mapPgError(err))
	}
	return id, nil
}

func (t *pgTx) UpdateNode(ctx context.Context, kind Kind, id string, fields Fields, updatedAt time.Time) error {
	tbl, err := structuralTable(kind)
	if err != nil {
		return err
	}

	args := []any{id, updatedAt}
	sets := []string{"updated_at = $2"}
	for _, c := range tbl.columns {
		v, ok := fields[c]
		if !ok {
			continue
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", c, len(args)))
	}

	cmd, err := t.tx.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET %s WHERE id = $1::uuid`, tbl.name, strings.Join(sets, ", ")),
		args...,
	)
	if err != nil {
		return fmt.Errorf("update %s: %w", kind, mapPgError(err))
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	return nil
}

func (t *pgTx) ListChildren(ctx context.Context, kind Kind, parentID string) ([]Node, error) {
	tbl, err := structuralTable(kind)
	if err != nil {
		return nil, err
	}
	if tbl.parentColumn == "" {
		return nil, fmt.Errorf("%s has no parent", kind)
	}

	rows, err := t.tx.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1::uuid ORDER BY sort_order ASC, created_at ASC`,
			tbl.selectList(), tbl.name, tbl.parentColumn),
		parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, mapPgError(err))
	}
	rowMaps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, mapPgError(err))
	}

	nodes := make([]Node, 0, len(rowMaps))
	for _, row := range rowMaps {
		nodes = append(nodes, nodeFromRow(kind, tbl, row))
	}
	return nodes, nil
}

func (t *pgTx) CountNodes(ctx context.Context, kind Kind) (int, error) {
	name, ok := tableNames[kind]
	if !ok {
		return 0, fmt.Errorf("unknown kind %q", kind)
	}
	var n int
	if err := t.tx.QueryRow(ctx, fmt.Sprintf(`SELECT count(*) FROM %s`, name)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", kind, mapPgError(err))
	}
	return n, nil
}

func (t *pgTx) InsertQuestion(ctx context.Context, q Question) (string, error) {
	var id string
	err := t.tx.QueryRow(ctx,
		`INSERT INTO questions (text, type, explanation, difficulty, points, allow_partial_credit, lesson_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::uuid, $8, $9)
		 RETURNING id::text`,
		q.Text,
		q.Type,
		q.Explanation,
		q.Difficulty,
		q.Points,
		q.AllowPartialCredit,
		nullIfEmpty(q.LessonID),
		q.CreatedAt,
		q.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert question: %w", mapPgError(err))
	}
	return id, nil
}

func (t *pgTx) InsertOption(ctx context.Context, o QuestionOption) (string, error) {
	var id string
	err := t.tx.QueryRow(ctx,
		`INSERT INTO question_options (question_id, text, is_correct, sort_order, created_at)
		 VALUES ($1::uuid, $2, $3, $4, $5)
		 RETURNING id::text`,
		o.QuestionID,
		o.Text,
		o.IsCorrect,
		o.Order,
		o.CreatedAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert question option: %w", mapPgError(err))
	}
	return id, nil
}

func (t *pgTx) FindTestQuestionLink(ctx context.Context, testID, questionID string) (*TestQuestionLink, error) {
	l := TestQuestionLink{TestID: testID, QuestionID: questionID}
	err := t.tx.QueryRow(ctx,
		`SELECT sort_order, created_at, updated_at
		 FROM test_question_links
		 WHERE test_id = $1::uuid AND question_id = $2::uuid`,
		testID,
		questionID,
	).Scan(&l.Order, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find test question link: %w", mapPgError(err))
	}
	return &l, nil
}

func (t *pgTx) InsertTestQuestionLink(ctx context.Context, l TestQuestionLink) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO test_question_links (test_id, question_id, sort_order, created_at, updated_at)
		 VALUES ($1::uuid, $2::uuid, $3, $4, $5)`,
		l.TestID,
		l.QuestionID,
		l.Order,
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert test question link: %w", mapPgError(err))
	}
	return nil
}

func (t *pgTx) UpdateTestQuestionLinkOrder(ctx context.Context, testID, questionID string, order int, updatedAt time.Time) error {
	cmd, err := t.tx.Exec(ctx,
		`UPDATE test_question_links
		 SET sort_order = $3, updated_at = $4
		 WHERE test_id = $1::uuid AND question_id = $2::uuid`,
		testID,
		questionID,
		order,
		updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update test question link: %w", mapPgError(err))
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: link %s/%s", ErrNotFound, testID, questionID)
	}
	return nil
}

func (t *pgTx) DeleteAll(ctx context.Context, kind Kind) (int64, error) {
	name, ok := tableNames[kind]
	if !ok {
		return 0, fmt.Errorf("unknown kind %q", kind)
	}
	cmd, err := t.tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, name))
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", kind, mapPgError(err))
	}
	return cmd.RowsAffected(), nil
}

func nodeFromRow(kind Kind, tbl table, row map[string]any) Node {
	n := Node{Kind: kind, Fields: make(Fields, len(tbl.columns))}
	n.ID, _ = row["id"].(string)
	n.ParentID, _ = row["parent_id"].(string)
	n.Slug, _ = row["slug"].(string)
	n.IsActive, _ = row["is_active"].(bool)
	n.CreatedAt, _ = row["created_at"].(time.Time)
	n.UpdatedAt, _ = row["updated_at"].(time.Time)
	for _, c := range tbl.columns {
		v := row[c]
		if i, ok := v.(int32); ok {
			v = int(i)
		}
		n.Fields[c] = v
	}
	return n
}

// mapPgError translates constraint violations into the store's sentinel errors.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		return fmt.Errorf("%w: %s", ErrSlugConflict, pgErr.Detail)
	case "23503":
		return fmt.Errorf("%w: %s", ErrForeignKey, pgErr.Detail)
	}
	return err
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
