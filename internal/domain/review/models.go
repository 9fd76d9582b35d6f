package review

import "time"

type Parameter struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Weight          float64 `json:"weight"`
	RequiresComment bool    `json:"requiresComment"`
}

type ReviewCycle struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	StartDate  time.Time   `json:"startDate"`
	EndDate    time.Time   `json:"endDate"`
	Status     string      `json:"status"`
	ScaleMin   int         `json:"scaleMin"`
	ScaleMax   int         `json:"scaleMax"`
	Parameters []Parameter `json:"parameters"`
}

// CycleDraft is the unvalidated input shape; only ValidateCycle turns it into
// a ReviewCycle.
type CycleDraft struct {
	Name       string
	StartDate  time.Time
	EndDate    time.Time
	ScaleMin   int
	ScaleMax   int
	Parameters []Parameter
}

type RatingEntry struct {
	ParameterID string `json:"parameterId"`
	Score       int    `json:"score"`
	Comment     string `json:"comment,omitempty"`
}

type PerformanceReview struct {
	ID           string        `json:"id"`
	EmployeeID   string        `json:"employeeId"`
	ReviewerID   string        `json:"reviewerId"`
	CycleID      string        `json:"cycleId"`
	Status       string        `json:"status"`
	Ratings      []RatingEntry `json:"ratings"`
	OverallScore float64       `json:"overallScore"`
	Feedback     string        `json:"feedback"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// DraftKey identifies the single working copy for a (cycle, subject, reviewer)
// triple. Exactly one editor owns it at a time.
type DraftKey struct {
	CycleID    string `json:"cycleId"`
	SubjectID  string `json:"subjectId"`
	ReviewerID string `json:"reviewerId"`
}

// Draft is the disposable shadow of an in-progress review. It is created on
// first edit and destroyed atomically with a successful submit.
type Draft struct {
	Key       DraftKey      `json:"key"`
	Ratings   []RatingEntry `json:"ratings"`
	Feedback  string        `json:"feedback"`
	LastSaved time.Time     `json:"lastSaved"`
}
