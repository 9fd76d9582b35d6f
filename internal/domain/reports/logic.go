package reports

import (
	"fmt"

	"pms/internal/domain/review"
)

type CycleSummary struct {
	ReviewsTotal      int            `json:"reviewsTotal"`
	NotStarted        int            `json:"notStarted"`
	InProgress        int            `json:"inProgress"`
	Submitted         int            `json:"submitted"`
	Acknowledged      int            `json:"acknowledged"`
	CompletionRate    float64        `json:"completionRate"`
	AverageScore      float64        `json:"averageScore"`
	ScoreDistribution map[string]int `json:"scoreDistribution"`
}

func buildCycleSummary(statuses []string, scores []float64) CycleSummary {
	summary := CycleSummary{
		ReviewsTotal:      len(statuses),
		ScoreDistribution: map[string]int{},
	}

	completed := 0
	for _, status := range statuses {
		switch status {
		case review.StatusNotStarted:
			summary.NotStarted++
		case review.StatusInProgress:
			summary.InProgress++
		case review.StatusSubmitted:
			summary.Submitted++
			completed++
		case review.StatusAcknowledged:
			summary.Acknowledged++
			completed++
		}
	}
	if summary.ReviewsTotal > 0 {
		summary.CompletionRate = float64(completed) / float64(summary.ReviewsTotal)
	}

	total := 0.0
	for _, score := range scores {
		key := fmt.Sprintf("%d", int(score+0.5))
		summary.ScoreDistribution[key]++
		total += score
	}
	if len(scores) > 0 {
		summary.AverageScore = total / float64(len(scores))
	}
	return summary
}
