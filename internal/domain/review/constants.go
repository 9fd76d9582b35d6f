package review

const (
	CycleStatusDraft     = "draft"
	CycleStatusActive    = "active"
	CycleStatusCompleted = "completed"

	StatusNotStarted   = "not_started"
	StatusInProgress   = "in_progress"
	StatusSubmitted    = "submitted"
	StatusAcknowledged = "acknowledged"

	// Default rating scale; cycles may narrow or widen it.
	DefaultScaleMin = 0
	DefaultScaleMax = 5

	// Scores at or below this need a written justification when the
	// parameter requires one.
	CommentRequiredAtOrBelow = 2

	MaxCycleNameLength = 100
)
