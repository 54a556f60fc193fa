package seeder

import "context"

// buildLessonSlugMap walks every chapter, section and lesson already stored
// under the subject and returns lesson slug -> id. It must run after the whole
// tree is materialized: a question under one chapter may reference a lesson of
// another.
func buildLessonSlugMap(ctx context.Context, tx Tx, subjectID string) (map[string]string, error) {
	lessons := make(map[string]string)

	chapters, err := tx.ListChildren(ctx, KindChapter, subjectID)
	if err != nil {
		return nil, err
	}
	for _, ch := range chapters {
		sections, err := tx.ListChildren(ctx, KindSection, ch.ID)
		if err != nil {
			return nil, err
		}
		for _, sec := range sections {
			rows, err := tx.ListChildren(ctx, KindLesson, sec.ID)
			if err != nil {
				return nil, err
			}
			for _, l := range rows {
				lessons[l.Slug] = l.ID
			}
		}
	}
	return lessons, nil
}
