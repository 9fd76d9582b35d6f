package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"pms/internal/domain/review"
)

type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Store struct {
	DB Queryer
}

func NewStore(db Queryer) *Store {
	return &Store{DB: db}
}

// CycleReviewData returns every review status in the cycle plus the frozen
// scores of the submitted and acknowledged ones.
func (s *Store) CycleReviewData(ctx context.Context, cycleID string) ([]string, []float64, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT status, overall_score
    FROM reviews
    WHERE cycle_id = $1
  `, cycleID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var statuses []string
	var scores []float64
	for rows.Next() {
		var status string
		var score float64
		if err := rows.Scan(&status, &score); err != nil {
			return nil, nil, err
		}
		statuses = append(statuses, status)
		if status == review.StatusSubmitted || status == review.StatusAcknowledged {
			scores = append(scores, score)
		}
	}
	return statuses, scores, rows.Err()
}

type ReviewExport struct {
	ReviewID     string
	EmployeeName string
	ReviewerName string
	CycleName    string
	StartDate    time.Time
	EndDate      time.Time
	Status       string
	OverallScore float64
	Feedback     string
	Ratings      []review.RatingEntry
	Parameters   []review.Parameter
}

func (s *Store) ReviewForExport(ctx context.Context, reviewID string) (ReviewExport, error) {
	var export ReviewExport
	var ratingsJSON, paramsJSON []byte
	err := s.DB.QueryRow(ctx, `
    SELECT r.id, e.full_name, v.full_name, c.name, c.start_date, c.end_date,
           r.status, r.overall_score, r.feedback, r.ratings, c.parameters
    FROM reviews r
    JOIN users e ON r.employee_id = e.id
    JOIN users v ON r.reviewer_id = v.id
    JOIN review_cycles c ON r.cycle_id = c.id
    WHERE r.id = $1
  `, reviewID).Scan(&export.ReviewID, &export.EmployeeName, &export.ReviewerName, &export.CycleName,
		&export.StartDate, &export.EndDate, &export.Status, &export.OverallScore, &export.Feedback,
		&ratingsJSON, &paramsJSON)
	if err != nil {
		return ReviewExport{}, err
	}
	if len(ratingsJSON) > 0 {
		if err := json.Unmarshal(ratingsJSON, &export.Ratings); err != nil {
			return ReviewExport{}, fmt.Errorf("export ratings: %w", err)
		}
	}
	if err := json.Unmarshal(paramsJSON, &export.Parameters); err != nil {
		return ReviewExport{}, fmt.Errorf("export parameters: %w", err)
	}
	return export, nil
}
