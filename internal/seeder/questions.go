package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// materializeQuestions always inserts fresh Question and QuestionOption rows
// for the test's questions; re-running a document appends another copy. Each
// question is then linked to the test at its 1-based position.
func materializeQuestions(ctx context.Context, tx Tx, t pendingTest, lessons map[string]string, now time.Time, res *SeedResult) error {
	for qi, q := range t.doc.Questions {
		path := fmt.Sprintf("%s.questions.%d", t.path, qi)

		var lessonID string
		if q.LessonSlug != "" {
			id, ok := lessons[q.LessonSlug]
			if ok {
				lessonID = id
			} else {
				slog.Warn("unresolved lesson reference",
					"test", t.slug,
					"question_index", qi,
					"lesson_slug", q.LessonSlug,
				)
				res.Warnings = append(res.Warnings, UnresolvedReference{
					Path:          path,
					TestSlug:      t.slug,
					QuestionIndex: qi,
					LessonSlug:    q.LessonSlug,
				})
			}
		}

		questionID, err := tx.InsertQuestion(ctx, Question{
			Text:               q.Text,
			Type:               q.Type,
			Explanation:        q.Explanation,
			Difficulty:         q.Difficulty,
			Points:             q.Points,
			AllowPartialCredit: q.AllowPartialCredit,
			LessonID:           lessonID,
			CreatedAt:          now,
			UpdatedAt:          now,
		})
		if err != nil {
			return fmt.Errorf("insert question %s: %w", path, err)
		}
		res.QuestionsCreated++

		for _, o := range q.Options {
			if _, err := tx.InsertOption(ctx, QuestionOption{
				QuestionID: questionID,
				Text:       o.Text,
				IsCorrect:  o.IsCorrect,
				Order:      o.Order,
				CreatedAt:  now,
			}); err != nil {
				return fmt.Errorf("insert option of %s: %w", path, err)
			}
			res.QuestionOptionsCreated++
		}

		if err := linkQuestion(ctx, tx, t.id, questionID, qi+1, now, res); err != nil {
			return fmt.Errorf("link question %s: %w", path, err)
		}
	}
	return nil
}

// linkQuestion upserts the (test, question) link, patching its order when it exists.
func linkQuestion(ctx context.Context, tx Tx, testID, questionID string, order int, now time.Time, res *SeedResult) error {
	existing, err := tx.FindTestQuestionLink(ctx, testID, questionID)
	if err != nil {
		return err
	}
	if existing != nil {
		if err := tx.UpdateTestQuestionLinkOrder(ctx, testID, questionID, order, now); err != nil {
			return err
		}
		res.TestQuestionLinksUpdated++
		return nil
	}

	if err := tx.InsertTestQuestionLink(ctx, TestQuestionLink{
		TestID:     testID,
		QuestionID: questionID,
		Order:      order,
		CreatedAt:  now,
		UpdatedAt:  now,
	}); err != nil {
		return err
	}
	res.TestQuestionLinksCreated++
	return nil
}
