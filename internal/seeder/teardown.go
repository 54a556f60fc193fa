package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
)

// teardownOrder deletes referencing tables before the tables they reference.
// A store enforcing foreign keys rejects any other order.
var teardownOrder = []Kind{
	KindTestQuestionLink,
	KindQuestionOption,
	KindQuestion,
	KindTest,
	KindLesson,
	KindSection,
	KindChapter,
	KindSubject,
}

// TeardownOrder returns the kinds in the order teardown deletes them.
func TeardownOrder() []Kind {
	return slices.Clone(teardownOrder)
}

// teardown clears every curriculum table, for all subjects, in one unit of
// work. It is not batched.
func teardown(ctx context.Context, tx Tx) (map[Kind]int64, error) {
	deleted := make(map[Kind]int64, len(teardownOrder))
	for _, kind := range teardownOrder {
		n, err := tx.DeleteAll(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("delete %s: %w", kind, err)
		}
		deleted[kind] = n
		slog.Debug("curriculum table cleared", "kind", kind, "rows", n)
	}
	return deleted, nil
}
