package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"pms/internal/domain/review"
)

type Service struct {
	store StoreAPI
}

func New(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, userID, ntype, title, body string) error {
	return s.store.CreateNotification(ctx, userID, ntype, title, body)
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]map[string]any, error) {
	return s.store.ListNotifications(ctx, userID, limit, offset)
}

func (s *Service) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.store.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.store.MarkRead(ctx, userID, notificationID)
}

// HandleReviewEvent subscribes to the engine's transition events and turns
// them into user-facing notification rows. Failures are logged, never
// propagated: a lost notification must not fail a committed transition.
func (s *Service) HandleReviewEvent(ctx context.Context, event review.Event) {
	switch event.Type {
	case review.EventReviewSubmitted:
		body := fmt.Sprintf("Your performance review has been submitted with an overall score of %.2f.", event.OverallScore)
		if err := s.Create(ctx, event.EmployeeID, TypeReviewSubmitted, "Review submitted", body); err != nil {
			slog.Warn("review submitted notification failed", "reviewId", event.ReviewID, "err", err)
		}
	case review.EventReviewAcknowledged:
		if event.ReviewerID == event.EmployeeID {
			return
		}
		if err := s.Create(ctx, event.ReviewerID, TypeReviewAcknowledged, "Review acknowledged", "The employee has acknowledged their performance review."); err != nil {
			slog.Warn("review acknowledged notification failed", "reviewId", event.ReviewID, "err", err)
		}
	}
}
