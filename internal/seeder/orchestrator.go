package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/p-n-ai/pai-curriculum/internal/curriculum"
)

// pendingTest is a materialized test whose questions are written after the
// whole subject tree exists.
type pendingTest struct {
	id   string
	slug string
	path string
	doc  *curriculum.TestDocument
}

type materializedTree struct {
	subjectID string
	tests     []pendingTest
}

// materializeTree upserts Subject, Chapters, Sections, Lessons and Tests
// depth-first, parent before children. Array positions become dense 1..N
// orders. Any failed upsert aborts the walk.
func materializeTree(ctx context.Context, tx Tx, doc *curriculum.SubjectDocument, now time.Time, res *SeedResult) (*materializedTree, error) {
	subjects, err := tx.CountNodes(ctx, KindSubject)
	if err != nil {
		return nil, fmt.Errorf("count subjects: %w", err)
	}

	subjectID, created, err := upsert(ctx, tx, subjectSpec, doc.Slug, "", Fields{
		fieldName:        doc.Name,
		fieldDescription: doc.Description,
		fieldIcon:        doc.Icon,
		fieldOrder:       subjects + 1,
	}, now)
	if err != nil {
		return nil, fmt.Errorf("upsert subject %q: %w", doc.Slug, err)
	}
	res.SubjectID = subjectID
	res.SubjectName = doc.Name
	res.SubjectCreated = created

	tree := &materializedTree{subjectID: subjectID}
	for ci := range doc.Chapters {
		ch := &doc.Chapters[ci]
		chPath := fmt.Sprintf("chapters.%d", ci)

		chapterID, created, err := upsert(ctx, tx, chapterSpec, ch.Slug, subjectID, Fields{
			fieldName:        ch.Name,
			fieldDescription: ch.Description,
			fieldOrder:       ci + 1,
		}, now)
		if err != nil {
			return nil, fmt.Errorf("upsert chapter %q: %w", ch.Slug, err)
		}
		count(created, &res.ChaptersCreated, &res.ChaptersUpdated)

		for si := range ch.Sections {
			sec := &ch.Sections[si]
			secPath := fmt.Sprintf("%s.sections.%d", chPath, si)
			if err := materializeSection(ctx, tx, sec, chapterID, si+1, secPath, now, res, tree); err != nil {
				return nil, err
			}
		}
	}
	return tree, nil
}

func materializeSection(ctx context.Context, tx Tx, sec *curriculum.SectionDocument, chapterID string, order int, path string, now time.Time, res *SeedResult, tree *materializedTree) error {
	sectionID, created, err := upsert(ctx, tx, sectionSpec, sec.Slug, chapterID, Fields{
		fieldName:        sec.Name,
		fieldDescription: sec.Description,
		fieldOrder:       order,
	}, now)
	if err != nil {
		return fmt.Errorf("upsert section %q: %w", sec.Slug, err)
	}
	count(created, &res.SectionsCreated, &res.SectionsUpdated)

	for li, l := range sec.Lessons {
		_, created, err := upsert(ctx, tx, lessonSpec, l.Slug, sectionID, Fields{
			fieldTitle:            l.Title,
			fieldContent:          l.Content,
			fieldContentType:      l.ContentType,
			fieldEstimatedMinutes: l.EstimatedMinutes,
			fieldOrder:            li + 1,
		}, now)
		if err != nil {
			return fmt.Errorf("upsert lesson %q: %w", l.Slug, err)
		}
		count(created, &res.LessonsCreated, &res.LessonsUpdated)
	}

	if sec.Test == nil {
		return nil
	}
	t := sec.Test
	testID, created, err := upsert(ctx, tx, testSpec, t.Slug, sectionID, Fields{
		fieldTitle:              t.Title,
		fieldDescription:        t.Description,
		fieldTimeLimit:          optionalInt(t.TimeLimit),
		fieldPassingScore:       t.PassingScore,
		fieldMaxAttempts:        optionalInt(t.MaxAttempts),
		fieldShuffleQuestions:   t.ShuffleQuestions,
		fieldShowCorrectAnswers: t.ShowCorrectAnswers,
		fieldOrder:              1, // a section holds a single test
	}, now)
	if err != nil {
		return fmt.Errorf("upsert test %q: %w", t.Slug, err)
	}
	count(created, &res.TestsCreated, &res.TestsUpdated)

	tree.tests = append(tree.tests, pendingTest{id: testID, slug: t.Slug, path: path + ".test", doc: t})
	return nil
}

func count(created bool, createdN, updatedN *int) {
	if created {
		*createdN++
	} else {
		*updatedN++
	}
}

func optionalInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
