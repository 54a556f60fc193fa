package seeder_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/p-n-ai/pai-curriculum/internal/seeder"
)

func TestMemoryStore_RejectsOrphans(t *testing.T) {
	store := seeder.NewMemoryStore()
	now := time.Now()

	err := store.InTx(context.Background(), func(ctx context.Context, tx seeder.Tx) error {
		_, err := tx.InsertNode(ctx, seeder.Node{Kind: seeder.KindChapter, Slug: "algebra", ParentID: "missing", CreatedAt: now, UpdatedAt: now})
		return err
	})
	if !errors.Is(err, seeder.ErrForeignKey) {
		t.Errorf("InsertNode() error = %v, want ErrForeignKey", err)
	}
}

func TestMemoryStore_UniqueSlugPerKind(t *testing.T) {
	store := seeder.NewMemoryStore()

	err := store.InTx(context.Background(), func(ctx context.Context, tx seeder.Tx) error {
		if _, err := tx.InsertNode(ctx, seeder.Node{Kind: seeder.KindSubject, Slug: "mathematics"}); err != nil {
			return err
		}
		_, err := tx.InsertNode(ctx, seeder.Node{Kind: seeder.KindSubject, Slug: "mathematics"})
		return err
	})
	if !errors.Is(err, seeder.ErrSlugConflict) {
		t.Errorf("second InsertNode() error = %v, want ErrSlugConflict", err)
	}
	if n := store.Count(seeder.KindSubject); n != 0 {
		t.Errorf("subjects = %d, want 0 after rollback", n)
	}
}

func TestMemoryStore_DeleteReferencedKind(t *testing.T) {
	store := seeder.NewMemoryStore()
	ctx := context.Background()

	err := store.InTx(ctx, func(ctx context.Context, tx seeder.Tx) error {
		subjectID, err := tx.InsertNode(ctx, seeder.Node{Kind: seeder.KindSubject, Slug: "mathematics"})
		if err != nil {
			return err
		}
		_, err = tx.InsertNode(ctx, seeder.Node{Kind: seeder.KindChapter, Slug: "algebra", ParentID: subjectID})
		return err
	})
	if err != nil {
		t.Fatalf("seed error = %v", err)
	}

	err = store.InTx(ctx, func(ctx context.Context, tx seeder.Tx) error {
		_, err := tx.DeleteAll(ctx, seeder.KindSubject)
		return err
	})
	if !errors.Is(err, seeder.ErrForeignKey) {
		t.Errorf("DeleteAll(subjects) error = %v, want ErrForeignKey", err)
	}
	if n := store.Count(seeder.KindSubject); n != 1 {
		t.Errorf("subjects = %d, want 1", n)
	}
}

func TestMemoryStore_ListChildrenByOrder(t *testing.T) {
	store := seeder.NewMemoryStore()

	var children []seeder.Node
	err := store.InTx(context.Background(), func(ctx context.Context, tx seeder.Tx) error {
		subjectID, err := tx.InsertNode(ctx, seeder.Node{Kind: seeder.KindSubject, Slug: "mathematics"})
		if err != nil {
			return err
		}
		for _, c := range []struct {
			slug  string
			order int
		}{{"geometry", 2}, {"algebra", 1}} {
			if _, err := tx.InsertNode(ctx, seeder.Node{
				Kind:     seeder.KindChapter,
				Slug:     c.slug,
				ParentID: subjectID,
				Fields:   seeder.Fields{"sort_order": c.order},
			}); err != nil {
				return err
			}
		}
		children, err = tx.ListChildren(ctx, seeder.KindChapter, subjectID)
		return err
	})
	if err != nil {
		t.Fatalf("InTx() error = %v", err)
	}
	if len(children) != 2 || children[0].Slug != "algebra" || children[1].Slug != "geometry" {
		t.Errorf("ListChildren() = %+v, want algebra then geometry", children)
	}
}
