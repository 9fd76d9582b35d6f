package review

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"pms/internal/domain/auth"
)

type fakeStore struct {
	cycles  map[string]ReviewCycle
	reviews map[string]PerformanceReview
	nextID  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{cycles: map[string]ReviewCycle{}, reviews: map[string]PerformanceReview{}}
}

func (s *fakeStore) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *fakeStore) CreateCycle(_ context.Context, cycle ReviewCycle) (string, error) {
	cycle.ID = s.id("c")
	s.cycles[cycle.ID] = cycle
	return cycle.ID, nil
}

func (s *fakeStore) GetCycle(_ context.Context, cycleID string) (ReviewCycle, error) {
	cycle, ok := s.cycles[cycleID]
	if !ok {
		return ReviewCycle{}, ErrCycleNotFound
	}
	return cycle, nil
}

func (s *fakeStore) ListCycles(_ context.Context) ([]ReviewCycle, error) {
	var out []ReviewCycle
	for _, cycle := range s.cycles {
		out = append(out, cycle)
	}
	return out, nil
}

func (s *fakeStore) UpdateCycleStatus(_ context.Context, cycleID, status string) error {
	cycle, ok := s.cycles[cycleID]
	if !ok {
		return ErrCycleNotFound
	}
	cycle.Status = status
	s.cycles[cycleID] = cycle
	return nil
}

func (s *fakeStore) CreateReview(_ context.Context, rev PerformanceReview) (string, error) {
	rev.ID = s.id("r")
	rev.CreatedAt = time.Now().UTC()
	rev.UpdatedAt = rev.CreatedAt
	s.reviews[rev.ID] = rev
	return rev.ID, nil
}

func (s *fakeStore) GetReview(_ context.Context, reviewID string) (PerformanceReview, error) {
	rev, ok := s.reviews[reviewID]
	if !ok {
		return PerformanceReview{}, ErrReviewNotFound
	}
	return rev, nil
}

func (s *fakeStore) ListReviews(_ context.Context, filter ReviewFilter) ([]PerformanceReview, error) {
	var out []PerformanceReview
	for _, rev := range s.reviews {
		if filter.CycleID != "" && rev.CycleID != filter.CycleID {
			continue
		}
		if filter.EmployeeID != "" && rev.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.ReviewerID != "" && rev.ReviewerID != filter.ReviewerID {
			continue
		}
		out = append(out, rev)
	}
	return out, nil
}

func (s *fakeStore) SaveReview(_ context.Context, rev PerformanceReview) error {
	if _, ok := s.reviews[rev.ID]; !ok {
		return ErrReviewNotFound
	}
	s.reviews[rev.ID] = rev
	return nil
}

func (s *fakeStore) UpdateReviewStatus(_ context.Context, reviewID, status string) error {
	rev, ok := s.reviews[reviewID]
	if !ok {
		return ErrReviewNotFound
	}
	rev.Status = status
	rev.UpdatedAt = time.Now().UTC()
	s.reviews[reviewID] = rev
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	return NewService(store, NewMemoryDraftStore(), testGate(t)), store
}

func seedActiveCycle(t *testing.T, service *Service, store *fakeStore) string {
	t.Helper()
	admin := Actor{UserID: "admin-1", Role: auth.RoleAdmin}
	cycle, issues, err := service.CreateCycle(context.Background(), admin, CycleDraft{
		Name:      "H1 2026",
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		Parameters: []Parameter{
			{ID: "tech", Name: "Technical", Weight: 60},
			{ID: "comm", Name: "Communication", Weight: 40},
		},
	})
	if err != nil || len(issues) != 0 {
		t.Fatalf("create cycle: issues=%v err=%v", issues, err)
	}
	if issues, err := service.ActivateCycle(context.Background(), admin, cycle.ID); err != nil || len(issues) != 0 {
		t.Fatalf("activate cycle: issues=%v err=%v", issues, err)
	}
	return cycle.ID
}

func TestServiceCycleLifecycle(t *testing.T) {
	service, store := newTestService(t)
	cycleID := seedActiveCycle(t, service, store)

	if store.cycles[cycleID].Status != CycleStatusActive {
		t.Fatalf("expected active cycle, got %s", store.cycles[cycleID].Status)
	}

	admin := Actor{UserID: "admin-1", Role: auth.RoleAdmin}

	// A second activation hits the immutability rule for active cycles.
	if _, err := service.ActivateCycle(context.Background(), admin, cycleID); !errors.Is(err, ErrCycleImmutable) {
		t.Fatalf("expected ErrCycleImmutable, got %v", err)
	}

	if err := service.CompleteCycle(context.Background(), admin, cycleID); err != nil {
		t.Fatalf("complete cycle: %v", err)
	}
	if err := service.CompleteCycle(context.Background(), admin, cycleID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on double complete, got %v", err)
	}
}

func TestServiceCreateCycleRequiresPermission(t *testing.T) {
	service, _ := newTestService(t)
	employee := Actor{UserID: "emp-1", Role: auth.RoleEmployee}

	_, _, err := service.CreateCycle(context.Background(), employee, cycleDraft(50, 50))
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestServiceActivateRejectsInvalidWeights(t *testing.T) {
	service, store := newTestService(t)
	admin := Actor{UserID: "admin-1", Role: auth.RoleAdmin}

	// Sneak an invalid weight scheme into a stored draft cycle; activation
	// must catch it.
	cycle := ReviewCycle{
		Name:      "Broken",
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		Status:    CycleStatusDraft,
		ScaleMin:  0,
		ScaleMax:  5,
		Parameters: []Parameter{
			{ID: "a", Name: "A", Weight: 30},
			{ID: "b", Name: "B", Weight: 30},
			{ID: "c", Name: "C", Weight: 30},
		},
	}
	id, _ := store.CreateCycle(context.Background(), cycle)

	issues, err := service.ActivateCycle(context.Background(), admin, id)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if len(issues) == 0 {
		t.Fatal("expected weight-sum violation to block activation")
	}
	if store.cycles[id].Status != CycleStatusDraft {
		t.Fatalf("cycle must stay draft, got %s", store.cycles[id].Status)
	}
}

func TestServiceOpenReviewRequiresActiveCycle(t *testing.T) {
	service, store := newTestService(t)
	manager := Actor{UserID: "mgr-1", Role: auth.RoleManager}

	id, _ := store.CreateCycle(context.Background(), ReviewCycle{Name: "Draft", Status: CycleStatusDraft})
	if _, err := service.OpenReview(context.Background(), manager, id, "emp-1", "mgr-1"); !errors.Is(err, ErrCycleNotActive) {
		t.Fatalf("expected ErrCycleNotActive, got %v", err)
	}

	employee := Actor{UserID: "emp-1", Role: auth.RoleEmployee}
	if _, err := service.OpenReview(context.Background(), employee, id, "emp-1", "emp-1"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for employee create, got %v", err)
	}
}

func TestServiceSubmitJourney(t *testing.T) {
	service, store := newTestService(t)
	cycleID := seedActiveCycle(t, service, store)
	ctx := context.Background()

	manager := Actor{UserID: "mgr-1", Role: auth.RoleManager}
	employee := Actor{UserID: "emp-1", Role: auth.RoleEmployee}

	var submitted, acknowledged int
	service.Events().Subscribe(func(_ context.Context, event Event) {
		switch event.Type {
		case EventReviewSubmitted:
			submitted++
		case EventReviewAcknowledged:
			acknowledged++
		}
	})

	rev, err := service.OpenReview(ctx, manager, cycleID, "emp-1", "mgr-1")
	if err != nil {
		t.Fatalf("open review: %v", err)
	}
	if rev.Status != StatusNotStarted {
		t.Fatalf("expected not_started, got %s", rev.Status)
	}

	rev, err = service.SaveDraft(ctx, manager, rev.ID, []RatingEntry{
		{ParameterID: "tech", Score: 5},
		{ParameterID: "comm", Score: 3},
	}, "strong half")
	if err != nil {
		t.Fatalf("save draft: %v", err)
	}
	if store.reviews[rev.ID].Status != StatusInProgress {
		t.Fatalf("expected persisted in_progress, got %s", store.reviews[rev.ID].Status)
	}

	draft, ok, err := service.LoadDraft(ctx, manager, rev.ID)
	if err != nil || !ok {
		t.Fatalf("load draft: ok=%v err=%v", ok, err)
	}
	if len(draft.Ratings) != 2 || draft.Feedback != "strong half" {
		t.Fatalf("draft round trip mismatch: %+v", draft)
	}

	rev, issues, err := service.Submit(ctx, manager, rev.ID)
	if err != nil || len(issues) != 0 {
		t.Fatalf("submit: issues=%v err=%v", issues, err)
	}
	if rev.OverallScore != 4.20 || rev.Status != StatusSubmitted {
		t.Fatalf("unexpected submit result: %+v", rev)
	}
	if _, ok, _ := service.LoadDraft(ctx, manager, rev.ID); ok {
		t.Fatal("draft must be gone after submit")
	}

	rev, err = service.Acknowledge(ctx, employee, rev.ID)
	if err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	if rev.Status != StatusAcknowledged {
		t.Fatalf("expected acknowledged, got %s", rev.Status)
	}

	if _, err := service.Acknowledge(ctx, employee, rev.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on double acknowledge, got %v", err)
	}

	if submitted != 1 || acknowledged != 1 {
		t.Fatalf("expected one event each, got submitted=%d acknowledged=%d", submitted, acknowledged)
	}
}

func TestServiceListReviewsVisibility(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	store.reviews["r1"] = PerformanceReview{ID: "r1", CycleID: "c1", EmployeeID: "emp-1", ReviewerID: "mgr-1"}
	store.reviews["r2"] = PerformanceReview{ID: "r2", CycleID: "c1", EmployeeID: "emp-2", ReviewerID: "mgr-2"}

	// Employee sees only reviews where they are the subject.
	got, err := service.ListReviews(ctx, Actor{UserID: "emp-1", Role: auth.RoleEmployee}, ReviewFilter{})
	if err != nil {
		t.Fatalf("employee list: %v", err)
	}
	if len(got) != 1 || got[0].ID != "r1" {
		t.Fatalf("employee visibility leak: %+v", got)
	}

	// Manager sees their team's reviews.
	got, err = service.ListReviews(ctx, Actor{UserID: "mgr-2", Role: auth.RoleManager}, ReviewFilter{})
	if err != nil {
		t.Fatalf("manager list: %v", err)
	}
	if len(got) != 1 || got[0].ID != "r2" {
		t.Fatalf("manager visibility leak: %+v", got)
	}

	// Admin sees everything.
	got, err = service.ListReviews(ctx, Actor{UserID: "admin-1", Role: auth.RoleAdmin}, ReviewFilter{})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected admin to see all, got %+v", got)
	}
}

func TestServiceGetReviewDeniesOutsider(t *testing.T) {
	service, store := newTestService(t)
	store.reviews["r1"] = PerformanceReview{ID: "r1", EmployeeID: "emp-1", ReviewerID: "mgr-1"}

	_, err := service.GetReview(context.Background(), Actor{UserID: "emp-2", Role: auth.RoleEmployee}, "r1")
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestServiceDiscardDraftKeepsStatus(t *testing.T) {
	service, store := newTestService(t)
	cycleID := seedActiveCycle(t, service, store)
	ctx := context.Background()
	manager := Actor{UserID: "mgr-1", Role: auth.RoleManager}

	rev, err := service.OpenReview(ctx, manager, cycleID, "emp-1", "mgr-1")
	if err != nil {
		t.Fatalf("open review: %v", err)
	}
	if _, err := service.SaveDraft(ctx, manager, rev.ID, []RatingEntry{{ParameterID: "tech", Score: 3}}, ""); err != nil {
		t.Fatalf("save draft: %v", err)
	}

	if err := service.DiscardDraft(ctx, manager, rev.ID); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if _, ok, _ := service.LoadDraft(ctx, manager, rev.ID); ok {
		t.Fatal("expected draft to be discarded")
	}
	// Abandoning never transitions status.
	if store.reviews[rev.ID].Status != StatusInProgress {
		t.Fatalf("discard must not change status, got %s", store.reviews[rev.ID].Status)
	}
}
