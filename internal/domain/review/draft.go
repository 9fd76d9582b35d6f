package review

import (
	"context"
	"sync"
	"time"
)

// DraftStore is a dumb key-value slot for in-progress drafts. Save always
// overwrites the full draft; partial merges are the caller's responsibility.
// LastSaved is advisory metadata, never used to resolve conflicts here.
type DraftStore interface {
	Load(ctx context.Context, key DraftKey) (Draft, bool, error)
	Save(ctx context.Context, draft Draft) error
	Delete(ctx context.Context, key DraftKey) error
}

// MemoryDraftStore keeps drafts in process memory. The engine tests run on
// it, and it serves as a fallback when no database-backed store is wired.
type MemoryDraftStore struct {
	mu     sync.Mutex
	drafts map[DraftKey]Draft
}

func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: map[DraftKey]Draft{}}
}

func (s *MemoryDraftStore) Load(_ context.Context, key DraftKey) (Draft, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[key]
	if !ok {
		return Draft{}, false, nil
	}
	return cloneDraft(draft), true, nil
}

func (s *MemoryDraftStore) Save(_ context.Context, draft Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if draft.LastSaved.IsZero() {
		draft.LastSaved = time.Now().UTC()
	}
	s.drafts[draft.Key] = cloneDraft(draft)
	return nil
}

func (s *MemoryDraftStore) Delete(_ context.Context, key DraftKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, key)
	return nil
}

func cloneDraft(draft Draft) Draft {
	out := draft
	if draft.Ratings != nil {
		out.Ratings = make([]RatingEntry, len(draft.Ratings))
		copy(out.Ratings, draft.Ratings)
	}
	return out
}
