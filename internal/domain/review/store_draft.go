package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// PGDraftStore persists drafts in Postgres so an in-progress review survives
// reloads. Save is a full-row upsert keyed by the (cycle, subject, reviewer)
// triple; last-write-wins across sessions.
type PGDraftStore struct {
	DB Queryer
}

func NewPGDraftStore(db Queryer) *PGDraftStore {
	return &PGDraftStore{DB: db}
}

func (s *PGDraftStore) Load(ctx context.Context, key DraftKey) (Draft, bool, error) {
	draft := Draft{Key: key}
	var ratingsJSON []byte
	err := s.DB.QueryRow(ctx, `
    SELECT ratings, feedback, last_saved
    FROM review_drafts
    WHERE cycle_id = $1 AND subject_id = $2 AND reviewer_id = $3
  `, key.CycleID, key.SubjectID, key.ReviewerID).Scan(&ratingsJSON, &draft.Feedback, &draft.LastSaved)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Draft{}, false, nil
		}
		return Draft{}, false, err
	}
	if len(ratingsJSON) > 0 {
		if err := json.Unmarshal(ratingsJSON, &draft.Ratings); err != nil {
			return Draft{}, false, fmt.Errorf("draft ratings: %w", err)
		}
	}
	return draft, true, nil
}

func (s *PGDraftStore) Save(ctx context.Context, draft Draft) error {
	ratingsJSON, err := json.Marshal(draft.Ratings)
	if err != nil {
		return err
	}

	_, err = s.DB.Exec(ctx, `
    INSERT INTO review_drafts (cycle_id, subject_id, reviewer_id, ratings, feedback, last_saved)
    VALUES ($1,$2,$3,$4,$5,$6)
    ON CONFLICT (cycle_id, subject_id, reviewer_id)
    DO UPDATE SET ratings = EXCLUDED.ratings, feedback = EXCLUDED.feedback, last_saved = EXCLUDED.last_saved
  `, draft.Key.CycleID, draft.Key.SubjectID, draft.Key.ReviewerID, ratingsJSON, draft.Feedback, draft.LastSaved)
	return err
}

func (s *PGDraftStore) Delete(ctx context.Context, key DraftKey) error {
	_, err := s.DB.Exec(ctx, `
    DELETE FROM review_drafts
    WHERE cycle_id = $1 AND subject_id = $2 AND reviewer_id = $3
  `, key.CycleID, key.SubjectID, key.ReviewerID)
	return err
}
