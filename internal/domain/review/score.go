package review

import "math"

// AggregateScore joins ratings to their parameters and computes the overall
// score. With an all-zero weight scheme the result is the unweighted mean of
// the provided scores; otherwise it is Σ(score·weight)/100 over the
// parameters that actually have a rating, so a missing rating contributes
// neither numerator nor denominator weight. The second return value reports
// whether every parameter has been rated; callers must not freeze an
// incomplete score.
func AggregateScore(ratings []RatingEntry, params []Parameter) (float64, bool) {
	if len(ratings) == 0 {
		return 0, false
	}

	weights := map[string]float64{}
	allZero := true
	for _, param := range params {
		weights[param.ID] = param.Weight
		if param.Weight != 0 {
			allZero = false
		}
	}

	rated := map[string]int{}
	for _, rating := range ratings {
		if _, known := weights[rating.ParameterID]; !known {
			continue
		}
		rated[rating.ParameterID] = rating.Score
	}
	if len(rated) == 0 {
		return 0, false
	}
	complete := len(rated) == len(params)

	var score float64
	if allZero {
		sum := 0
		for _, value := range rated {
			sum += value
		}
		score = float64(sum) / float64(len(rated))
	} else {
		for id, value := range rated {
			score += float64(value) * weights[id]
		}
		score /= 100
	}

	return roundHalfUp(score, 2), complete
}

func roundHalfUp(value float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Floor(value*shift+0.5) / shift
}
