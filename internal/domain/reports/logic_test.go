package reports

import (
	"testing"

	"pms/internal/domain/review"
)

func TestBuildCycleSummaryWithScores(t *testing.T) {
	statuses := []string{
		review.StatusNotStarted,
		review.StatusInProgress,
		review.StatusSubmitted,
		review.StatusAcknowledged,
	}
	summary := buildCycleSummary(statuses, []float64{3.2, 4.6})

	if summary.ReviewsTotal != 4 {
		t.Fatalf("expected 4 reviews, got %d", summary.ReviewsTotal)
	}
	if summary.Submitted != 1 || summary.Acknowledged != 1 {
		t.Fatalf("unexpected status counts: %+v", summary)
	}
	if summary.CompletionRate != 0.5 {
		t.Fatalf("expected completion rate 0.5, got %v", summary.CompletionRate)
	}
	if summary.AverageScore != 3.9 {
		t.Fatalf("expected average 3.9, got %v", summary.AverageScore)
	}
	if summary.ScoreDistribution["3"] != 1 {
		t.Fatalf("expected one score rounded to 3, got %d", summary.ScoreDistribution["3"])
	}
	if summary.ScoreDistribution["5"] != 1 {
		t.Fatalf("expected one score rounded to 5, got %d", summary.ScoreDistribution["5"])
	}
}

func TestBuildCycleSummaryHandlesEmptyCycle(t *testing.T) {
	summary := buildCycleSummary(nil, nil)
	if summary.CompletionRate != 0 {
		t.Fatalf("expected zero completion rate, got %v", summary.CompletionRate)
	}
	if summary.AverageScore != 0 {
		t.Fatalf("expected zero average, got %v", summary.AverageScore)
	}
	if len(summary.ScoreDistribution) != 0 {
		t.Fatalf("expected empty distribution, got %+v", summary.ScoreDistribution)
	}
}
