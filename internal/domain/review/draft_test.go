package review

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestMemoryDraftStoreRoundTrip(t *testing.T) {
	store := NewMemoryDraftStore()
	ctx := context.Background()

	draft := Draft{
		Key: DraftKey{CycleID: "c1", SubjectID: "e1", ReviewerID: "m1"},
		Ratings: []RatingEntry{
			{ParameterID: "tech", Score: 4, Comment: "solid"},
			{ParameterID: "comm", Score: 3},
		},
		Feedback:  "keep going",
		LastSaved: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := store.Save(ctx, draft); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, ok, err := store.Load(ctx, draft.Key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatal("expected draft to exist")
	}

	loaded.LastSaved = draft.LastSaved
	if !reflect.DeepEqual(loaded, draft) {
		t.Fatalf("round trip mismatch:\nsaved  %+v\nloaded %+v", draft, loaded)
	}
}

func TestMemoryDraftStoreSaveOverwrites(t *testing.T) {
	store := NewMemoryDraftStore()
	ctx := context.Background()
	key := DraftKey{CycleID: "c1", SubjectID: "e1", ReviewerID: "m1"}

	first := Draft{Key: key, Ratings: []RatingEntry{{ParameterID: "tech", Score: 2}}, Feedback: "first"}
	second := Draft{Key: key, Ratings: []RatingEntry{{ParameterID: "tech", Score: 5}}}

	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	loaded, ok, err := store.Load(ctx, key)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if loaded.Feedback != "" || loaded.Ratings[0].Score != 5 {
		t.Fatalf("expected full overwrite, got %+v", loaded)
	}
}

func TestMemoryDraftStoreDelete(t *testing.T) {
	store := NewMemoryDraftStore()
	ctx := context.Background()
	key := DraftKey{CycleID: "c1", SubjectID: "e1", ReviewerID: "m1"}

	if err := store.Save(ctx, Draft{Key: key}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Load(ctx, key); ok {
		t.Fatal("expected draft to be gone")
	}

	// Deleting an absent key is a no-op.
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestMemoryDraftStoreIsolatesCallers(t *testing.T) {
	store := NewMemoryDraftStore()
	ctx := context.Background()
	key := DraftKey{CycleID: "c1", SubjectID: "e1", ReviewerID: "m1"}

	ratings := []RatingEntry{{ParameterID: "tech", Score: 3}}
	if err := store.Save(ctx, Draft{Key: key, Ratings: ratings}); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Mutating the caller's slice must not leak into the stored draft.
	ratings[0].Score = 1

	loaded, _, _ := store.Load(ctx, key)
	if loaded.Ratings[0].Score != 3 {
		t.Fatalf("stored draft aliased caller slice: %+v", loaded)
	}
}
