package review

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"pms/internal/domain/auth"
)

const uniqueViolationCode = "23505"

// Service wires the state machine, the stores and the permission gate into
// the operations the transport layer calls. Every mutating operation asks the
// gate first and surfaces ErrPermissionDenied instead of silently no-opping.
type Service struct {
	store   StoreAPI
	drafts  DraftStore
	gate    *auth.Gate
	machine *Machine
	events  *Hub
}

func NewService(store StoreAPI, drafts DraftStore, gate *auth.Gate) *Service {
	events := NewHub()
	return &Service{
		store:   store,
		drafts:  drafts,
		gate:    gate,
		machine: NewMachine(gate, drafts, store, events),
		events:  events,
	}
}

func (s *Service) Events() *Hub {
	return s.events
}

func (s *Service) CreateCycle(ctx context.Context, actor Actor, draft CycleDraft) (ReviewCycle, []ValidationIssue, error) {
	if !s.gate.Can(actor.Role, auth.ActionManageCycle) {
		return ReviewCycle{}, nil, ErrPermissionDenied
	}

	cycle, issues := ValidateCycle(draft)
	if len(issues) > 0 {
		return ReviewCycle{}, issues, nil
	}

	id, err := s.store.CreateCycle(ctx, cycle)
	if err != nil {
		return ReviewCycle{}, nil, err
	}
	cycle.ID = id
	return cycle, nil, nil
}

// ActivateCycle re-runs validation at the draft->active boundary so a cycle
// edited since creation cannot reach active with an ambiguous weight scheme.
func (s *Service) ActivateCycle(ctx context.Context, actor Actor, cycleID string) ([]ValidationIssue, error) {
	if !s.gate.Can(actor.Role, auth.ActionManageCycle) {
		return nil, ErrPermissionDenied
	}

	cycle, err := s.store.GetCycle(ctx, cycleID)
	if err != nil {
		return nil, err
	}
	switch cycle.Status {
	case CycleStatusDraft:
	case CycleStatusActive:
		return nil, ErrCycleImmutable
	default:
		return nil, ErrInvalidTransition
	}

	_, issues := ValidateCycle(CycleDraft{
		Name:       cycle.Name,
		StartDate:  cycle.StartDate,
		EndDate:    cycle.EndDate,
		ScaleMin:   cycle.ScaleMin,
		ScaleMax:   cycle.ScaleMax,
		Parameters: cycle.Parameters,
	})
	if len(issues) > 0 {
		return issues, nil
	}

	return nil, s.store.UpdateCycleStatus(ctx, cycleID, CycleStatusActive)
}

func (s *Service) CompleteCycle(ctx context.Context, actor Actor, cycleID string) error {
	if !s.gate.Can(actor.Role, auth.ActionManageCycle) {
		return ErrPermissionDenied
	}

	cycle, err := s.store.GetCycle(ctx, cycleID)
	if err != nil {
		return err
	}
	if cycle.Status != CycleStatusActive {
		return ErrInvalidTransition
	}
	return s.store.UpdateCycleStatus(ctx, cycleID, CycleStatusCompleted)
}

func (s *Service) GetCycle(ctx context.Context, cycleID string) (ReviewCycle, error) {
	return s.store.GetCycle(ctx, cycleID)
}

func (s *Service) ListCycles(ctx context.Context) ([]ReviewCycle, error) {
	return s.store.ListCycles(ctx)
}

// OpenReview creates the not_started review record when a cycle is opened
// for a subject. Self-reviews set reviewerID == employeeID.
func (s *Service) OpenReview(ctx context.Context, actor Actor, cycleID, employeeID, reviewerID string) (PerformanceReview, error) {
	if !s.gate.Can(actor.Role, auth.ActionCreateReview) {
		return PerformanceReview{}, ErrPermissionDenied
	}

	cycle, err := s.store.GetCycle(ctx, cycleID)
	if err != nil {
		return PerformanceReview{}, err
	}
	if cycle.Status != CycleStatusActive {
		return PerformanceReview{}, ErrCycleNotActive
	}

	rev := PerformanceReview{
		CycleID:    cycleID,
		EmployeeID: employeeID,
		ReviewerID: reviewerID,
		Status:     StatusNotStarted,
	}
	id, err := s.store.CreateReview(ctx, rev)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return PerformanceReview{}, ErrReviewExists
		}
		return PerformanceReview{}, err
	}
	return s.store.GetReview(ctx, id)
}

func (s *Service) canView(actor Actor, rev PerformanceReview) bool {
	if s.gate.Can(actor.Role, auth.ActionViewAll) {
		return true
	}
	if s.gate.Can(actor.Role, auth.ActionViewTeam) && actor.UserID == rev.ReviewerID {
		return true
	}
	if s.gate.Can(actor.Role, auth.ActionViewOwn) && (actor.UserID == rev.EmployeeID || actor.UserID == rev.ReviewerID) {
		return true
	}
	return false
}

func (s *Service) GetReview(ctx context.Context, actor Actor, reviewID string) (PerformanceReview, error) {
	rev, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return PerformanceReview{}, err
	}
	if !s.canView(actor, rev) {
		return PerformanceReview{}, ErrPermissionDenied
	}
	return rev, nil
}

// ListReviews narrows the caller's filter to their visibility tier rather
// than rejecting it.
func (s *Service) ListReviews(ctx context.Context, actor Actor, filter ReviewFilter) ([]PerformanceReview, error) {
	switch {
	case s.gate.Can(actor.Role, auth.ActionViewAll):
	case s.gate.Can(actor.Role, auth.ActionViewTeam):
		filter.ReviewerID = actor.UserID
	case s.gate.Can(actor.Role, auth.ActionViewOwn):
		filter.EmployeeID = actor.UserID
	default:
		return nil, ErrPermissionDenied
	}
	return s.store.ListReviews(ctx, filter)
}

// SaveDraft records the full draft state for the review and moves a
// not_started review to in_progress on first edit.
func (s *Service) SaveDraft(ctx context.Context, actor Actor, reviewID string, ratings []RatingEntry, feedback string) (PerformanceReview, error) {
	rev, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return PerformanceReview{}, err
	}
	cycle, err := s.store.GetCycle(ctx, rev.CycleID)
	if err != nil {
		return PerformanceReview{}, err
	}

	before := rev.Status
	if err := s.machine.RecordEdit(ctx, actor, &rev, cycle, ratings, feedback); err != nil {
		return PerformanceReview{}, err
	}
	if before == StatusNotStarted && rev.Status == StatusInProgress {
		if err := s.store.UpdateReviewStatus(ctx, rev.ID, StatusInProgress); err != nil {
			return PerformanceReview{}, err
		}
	}
	return rev, nil
}

func (s *Service) LoadDraft(ctx context.Context, actor Actor, reviewID string) (Draft, bool, error) {
	rev, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return Draft{}, false, err
	}
	if !s.canView(actor, rev) {
		return Draft{}, false, ErrPermissionDenied
	}
	return s.drafts.Load(ctx, draftKeyFor(rev))
}

// DiscardDraft abandons the edit session. It never transitions status; only
// what was already saved disappears.
func (s *Service) DiscardDraft(ctx context.Context, actor Actor, reviewID string) error {
	rev, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if !s.machine.canEditDraft(actor, rev) {
		return ErrPermissionDenied
	}
	return s.drafts.Delete(ctx, draftKeyFor(rev))
}

func (s *Service) Submit(ctx context.Context, actor Actor, reviewID string) (PerformanceReview, []ValidationIssue, error) {
	rev, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return PerformanceReview{}, nil, err
	}
	cycle, err := s.store.GetCycle(ctx, rev.CycleID)
	if err != nil {
		return PerformanceReview{}, nil, err
	}

	issues, err := s.machine.Submit(ctx, actor, &rev, cycle)
	if err != nil {
		return PerformanceReview{}, nil, err
	}
	if len(issues) > 0 {
		return PerformanceReview{}, issues, nil
	}
	return rev, nil, nil
}

func (s *Service) Acknowledge(ctx context.Context, actor Actor, reviewID string) (PerformanceReview, error) {
	rev, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return PerformanceReview{}, err
	}
	if err := s.machine.Acknowledge(ctx, actor, &rev); err != nil {
		return PerformanceReview{}, err
	}
	return rev, nil
}
