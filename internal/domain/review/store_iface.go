package review

import "context"

type StoreAPI interface {
	CreateCycle(ctx context.Context, cycle ReviewCycle) (string, error)
	GetCycle(ctx context.Context, cycleID string) (ReviewCycle, error)
	ListCycles(ctx context.Context) ([]ReviewCycle, error)
	UpdateCycleStatus(ctx context.Context, cycleID, status string) error

	CreateReview(ctx context.Context, rev PerformanceReview) (string, error)
	GetReview(ctx context.Context, reviewID string) (PerformanceReview, error)
	ListReviews(ctx context.Context, filter ReviewFilter) ([]PerformanceReview, error)
	SaveReview(ctx context.Context, rev PerformanceReview) error
	UpdateReviewStatus(ctx context.Context, reviewID, status string) error
}

// ReviewFilter narrows listings; empty fields match everything the caller is
// allowed to see.
type ReviewFilter struct {
	CycleID    string
	EmployeeID string
	ReviewerID string
}
