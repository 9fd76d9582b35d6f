package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

func (s *Store) CreateCycle(ctx context.Context, cycle ReviewCycle) (string, error) {
	paramsJSON, err := json.Marshal(cycle.Parameters)
	if err != nil {
		return "", err
	}

	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO review_cycles (name, start_date, end_date, status, scale_min, scale_max, parameters)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, cycle.Name, cycle.StartDate, cycle.EndDate, cycle.Status, cycle.ScaleMin, cycle.ScaleMax, paramsJSON).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetCycle(ctx context.Context, cycleID string) (ReviewCycle, error) {
	var cycle ReviewCycle
	var paramsJSON []byte
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, start_date, end_date, status, scale_min, scale_max, parameters
    FROM review_cycles
    WHERE id = $1
  `, cycleID).Scan(&cycle.ID, &cycle.Name, &cycle.StartDate, &cycle.EndDate, &cycle.Status, &cycle.ScaleMin, &cycle.ScaleMax, &paramsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ReviewCycle{}, ErrCycleNotFound
		}
		return ReviewCycle{}, err
	}
	if err := json.Unmarshal(paramsJSON, &cycle.Parameters); err != nil {
		return ReviewCycle{}, fmt.Errorf("cycle %s parameters: %w", cycleID, err)
	}
	return cycle, nil
}

func (s *Store) ListCycles(ctx context.Context) ([]ReviewCycle, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, start_date, end_date, status, scale_min, scale_max, parameters
    FROM review_cycles
    ORDER BY start_date DESC
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReviewCycle
	for rows.Next() {
		var cycle ReviewCycle
		var paramsJSON []byte
		if err := rows.Scan(&cycle.ID, &cycle.Name, &cycle.StartDate, &cycle.EndDate, &cycle.Status, &cycle.ScaleMin, &cycle.ScaleMax, &paramsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(paramsJSON, &cycle.Parameters); err != nil {
			return nil, fmt.Errorf("cycle %s parameters: %w", cycle.ID, err)
		}
		out = append(out, cycle)
	}
	return out, rows.Err()
}

func (s *Store) UpdateCycleStatus(ctx context.Context, cycleID, status string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE review_cycles SET status = $2 WHERE id = $1", cycleID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCycleNotFound
	}
	return nil
}

func (s *Store) CreateReview(ctx context.Context, rev PerformanceReview) (string, error) {
	ratingsJSON, err := json.Marshal(rev.Ratings)
	if err != nil {
		return "", err
	}

	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO reviews (cycle_id, employee_id, reviewer_id, status, ratings, overall_score, feedback)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, rev.CycleID, rev.EmployeeID, rev.ReviewerID, rev.Status, ratingsJSON, rev.OverallScore, rev.Feedback).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetReview(ctx context.Context, reviewID string) (PerformanceReview, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id, cycle_id, employee_id, reviewer_id, status, ratings, overall_score, feedback, created_at, updated_at
    FROM reviews
    WHERE id = $1
  `, reviewID)
	rev, err := scanReview(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PerformanceReview{}, ErrReviewNotFound
		}
		return PerformanceReview{}, err
	}
	return rev, nil
}

func (s *Store) ListReviews(ctx context.Context, filter ReviewFilter) ([]PerformanceReview, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, cycle_id, employee_id, reviewer_id, status, ratings, overall_score, feedback, created_at, updated_at
    FROM reviews
    WHERE ($1 = '' OR cycle_id::text = $1)
      AND ($2 = '' OR employee_id::text = $2)
      AND ($3 = '' OR reviewer_id::text = $3)
    ORDER BY created_at DESC
  `, filter.CycleID, filter.EmployeeID, filter.ReviewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PerformanceReview
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}

func (s *Store) SaveReview(ctx context.Context, rev PerformanceReview) error {
	ratingsJSON, err := json.Marshal(rev.Ratings)
	if err != nil {
		return err
	}

	tag, err := s.DB.Exec(ctx, `
    UPDATE reviews
    SET status = $2, ratings = $3, overall_score = $4, feedback = $5, updated_at = $6
    WHERE id = $1
  `, rev.ID, rev.Status, ratingsJSON, rev.OverallScore, rev.Feedback, rev.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (s *Store) UpdateReviewStatus(ctx context.Context, reviewID, status string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE reviews SET status = $2, updated_at = now() WHERE id = $1", reviewID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func scanReview(row pgx.Row) (PerformanceReview, error) {
	var rev PerformanceReview
	var ratingsJSON []byte
	if err := row.Scan(&rev.ID, &rev.CycleID, &rev.EmployeeID, &rev.ReviewerID, &rev.Status, &ratingsJSON, &rev.OverallScore, &rev.Feedback, &rev.CreatedAt, &rev.UpdatedAt); err != nil {
		return PerformanceReview{}, err
	}
	if len(ratingsJSON) > 0 {
		if err := json.Unmarshal(ratingsJSON, &rev.Ratings); err != nil {
			return PerformanceReview{}, fmt.Errorf("review %s ratings: %w", rev.ID, err)
		}
	}
	return rev, nil
}
