package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pms/internal/domain/auth"
)

// Actor is the authenticated party attempting a transition.
type Actor struct {
	UserID string
	Role   auth.Role
}

// Persister is the remote persistence boundary. The machine calls it exactly
// once per completed submitted/acknowledged transition, never speculatively,
// and does not retry it; a failure leaves the review in its last-known-good
// state so the caller can retry.
type Persister interface {
	SaveReview(ctx context.Context, rev PerformanceReview) error
}

// Machine enforces the review lifecycle:
//
//	not_started -> in_progress -> submitted -> acknowledged
//
// Transitions are strictly forward; no state is ever revisited. Every
// transition is authorized through the permission gate before any state is
// touched.
type Machine struct {
	gate   *auth.Gate
	drafts DraftStore
	store  Persister
	events *Hub
	now    func() time.Time
}

func NewMachine(gate *auth.Gate, drafts DraftStore, store Persister, events *Hub) *Machine {
	return &Machine{
		gate:   gate,
		drafts: drafts,
		store:  store,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func draftKeyFor(rev PerformanceReview) DraftKey {
	return DraftKey{CycleID: rev.CycleID, SubjectID: rev.EmployeeID, ReviewerID: rev.ReviewerID}
}

func (m *Machine) canEditDraft(actor Actor, rev PerformanceReview) bool {
	if actor.UserID == rev.ReviewerID {
		return m.gate.Can(actor.Role, auth.ActionEditOwnDraft)
	}
	return m.gate.Can(actor.Role, auth.ActionEditAnyDraft)
}

// RecordEdit stores the full draft state for the review's triple and moves a
// not_started review to in_progress. Edits against submitted or acknowledged
// reviews are rejected outright.
func (m *Machine) RecordEdit(ctx context.Context, actor Actor, rev *PerformanceReview, cycle ReviewCycle, ratings []RatingEntry, feedback string) error {
	switch rev.Status {
	case StatusNotStarted, StatusInProgress:
	default:
		return fmt.Errorf("%w: review is %s", ErrInvalidTransition, rev.Status)
	}
	if cycle.Status != CycleStatusActive {
		return ErrCycleNotActive
	}
	if !m.canEditDraft(actor, *rev) {
		return ErrPermissionDenied
	}

	draft := Draft{
		Key:       draftKeyFor(*rev),
		Ratings:   ratings,
		Feedback:  feedback,
		LastSaved: m.now(),
	}
	if err := m.drafts.Save(ctx, draft); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}

	if rev.Status == StatusNotStarted {
		rev.Status = StatusInProgress
		rev.UpdatedAt = m.now()
	}
	return nil
}

// Submit freezes the draft into the review. The steps — re-validate ratings
// against the cycle scale, aggregate the score, stamp updatedAt, persist,
// clear the draft — act as a single unit: any validation issue or persistence
// failure leaves the review in_progress with the draft intact.
func (m *Machine) Submit(ctx context.Context, actor Actor, rev *PerformanceReview, cycle ReviewCycle) ([]ValidationIssue, error) {
	switch rev.Status {
	case StatusInProgress:
	case StatusNotStarted:
		return nil, fmt.Errorf("%w: review has no recorded edits", ErrInvalidTransition)
	default:
		return nil, fmt.Errorf("%w: review is %s", ErrInvalidTransition, rev.Status)
	}
	if !m.canEditDraft(actor, *rev) || !m.gate.Can(actor.Role, auth.ActionSubmitReview) {
		return nil, ErrPermissionDenied
	}

	key := draftKeyFor(*rev)
	draft, ok, err := m.drafts.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	if !ok {
		return []ValidationIssue{{Field: "ratings", Reason: "no ratings recorded"}}, nil
	}

	issues := ValidateRatings(draft.Ratings, cycle)
	score, complete := AggregateScore(draft.Ratings, cycle.Parameters)
	if !complete {
		issues = append(issues, ValidationIssue{Field: "ratings", Reason: "every parameter must be rated before submission"})
	}
	if len(issues) > 0 {
		return issues, nil
	}

	frozen := *rev
	frozen.Ratings = draft.Ratings
	frozen.Feedback = draft.Feedback
	frozen.OverallScore = score
	frozen.Status = StatusSubmitted
	frozen.UpdatedAt = m.now()

	if err := m.store.SaveReview(ctx, frozen); err != nil {
		return nil, fmt.Errorf("persist review: %w", err)
	}
	*rev = frozen

	if err := m.drafts.Delete(ctx, key); err != nil {
		// The review is already committed; a leftover draft is disposable.
		slog.Warn("draft delete after submit failed", "reviewId", rev.ID, "err", err)
	}

	m.events.Publish(ctx, Event{
		Type:         EventReviewSubmitted,
		ReviewID:     rev.ID,
		CycleID:      rev.CycleID,
		EmployeeID:   rev.EmployeeID,
		ReviewerID:   rev.ReviewerID,
		OverallScore: rev.OverallScore,
		At:           rev.UpdatedAt,
	})
	return nil, nil
}

// Acknowledge is the terminal transition, reserved for the reviewed employee.
func (m *Machine) Acknowledge(ctx context.Context, actor Actor, rev *PerformanceReview) error {
	switch rev.Status {
	case StatusSubmitted:
	default:
		return fmt.Errorf("%w: review is %s", ErrInvalidTransition, rev.Status)
	}
	if actor.UserID != rev.EmployeeID || !m.gate.Can(actor.Role, auth.ActionAcknowledgeReview) {
		return ErrPermissionDenied
	}

	frozen := *rev
	frozen.Status = StatusAcknowledged
	frozen.UpdatedAt = m.now()

	if err := m.store.SaveReview(ctx, frozen); err != nil {
		return fmt.Errorf("persist review: %w", err)
	}
	*rev = frozen

	m.events.Publish(ctx, Event{
		Type:         EventReviewAcknowledged,
		ReviewID:     rev.ID,
		CycleID:      rev.CycleID,
		EmployeeID:   rev.EmployeeID,
		ReviewerID:   rev.ReviewerID,
		OverallScore: rev.OverallScore,
		At:           rev.UpdatedAt,
	})
	return nil
}
