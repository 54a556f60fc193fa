package seeder

import (
	"context"
	"log/slog"
	"time"
)

// Column names shared by the stores.
const (
	fieldName               = "name"
	fieldTitle              = "title"
	fieldDescription        = "description"
	fieldIcon               = "icon"
	fieldOrder              = "sort_order"
	fieldContent            = "content"
	fieldContentType        = "content_type"
	fieldEstimatedMinutes   = "estimated_minutes"
	fieldTimeLimit          = "time_limit"
	fieldPassingScore       = "passing_score"
	fieldMaxAttempts        = "max_attempts"
	fieldShuffleQuestions   = "shuffle_questions"
	fieldShowCorrectAnswers = "show_correct_answers"
)

// nodeSpec describes how one structural kind is upserted. The slug is the
// identity key and is never patched; only patchable fields are written on update.
type nodeSpec struct {
	kind      Kind
	patchable []string
}

var (
	subjectSpec = nodeSpec{KindSubject, []string{fieldName, fieldDescription, fieldIcon}}
	chapterSpec = nodeSpec{KindChapter, []string{fieldName, fieldDescription, fieldOrder}}
	sectionSpec = nodeSpec{KindSection, []string{fieldName, fieldDescription, fieldOrder}}
	lessonSpec  = nodeSpec{KindLesson, []string{fieldTitle, fieldContent, fieldContentType, fieldEstimatedMinutes, fieldOrder}}
	testSpec    = nodeSpec{KindTest, []string{
		fieldTitle, fieldDescription, fieldTimeLimit, fieldPassingScore, fieldMaxAttempts,
		fieldShuffleQuestions, fieldShowCorrectAnswers, fieldOrder,
	}}
)

func (s nodeSpec) patch(fields Fields) Fields {
	out := make(Fields, len(s.patchable))
	for _, f := range s.patchable {
		if v, ok := fields[f]; ok {
			out[f] = v
		}
	}
	return out
}

// resolveIdentity looks a record up by slug and accepts it only when its
// parent key equals parentID. Slugs are unique per table, not per parent, so
// a slug held under another parent resolves to "not found" and the following
// insert is rejected by the store's unique index.
func resolveIdentity(ctx context.Context, tx Tx, kind Kind, slug, parentID string) (string, error) {
	n, err := tx.FindBySlug(ctx, kind, slug)
	if err != nil {
		return "", err
	}
	if n == nil {
		return "", nil
	}
	if n.ParentID != parentID {
		slog.Warn("slug belongs to another parent",
			"kind", kind,
			"slug", slug,
			"existing_parent_id", n.ParentID,
			"expected_parent_id", parentID,
		)
		return "", nil
	}
	return n.ID, nil
}

// upsert creates or patches one structural record and reports whether it was created.
func upsert(ctx context.Context, tx Tx, spec nodeSpec, slug, parentID string, fields Fields, now time.Time) (string, bool, error) {
	id, err := resolveIdentity(ctx, tx, spec.kind, slug, parentID)
	if err != nil {
		return "", false, err
	}

	if id != "" {
		if err := tx.UpdateNode(ctx, spec.kind, id, spec.patch(fields), now); err != nil {
			return "", false, err
		}
		return id, false, nil
	}

	id, err = tx.InsertNode(ctx, Node{
		Kind:      spec.kind,
		Slug:      slug,
		ParentID:  parentID,
		Fields:    fields,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}
