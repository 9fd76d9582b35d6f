package review

import "errors"

var (
	ErrPermissionDenied  = errors.New("action not permitted for role")
	ErrInvalidTransition = errors.New("review status does not allow this transition")
	ErrReviewNotFound    = errors.New("review not found")
	ErrCycleNotFound     = errors.New("review cycle not found")
	ErrCycleNotActive    = errors.New("review cycle is not active")
	ErrCycleImmutable    = errors.New("active cycle dates and weights cannot change")
	ErrReviewExists      = errors.New("review already exists for this cycle and subject")
)

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}
