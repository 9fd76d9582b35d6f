package notifications

const (
	TypeReviewSubmitted    = "review_submitted"
	TypeReviewAcknowledged = "review_acknowledged"
	TypeCycleActivated     = "cycle_activated"
)
