package review

import (
	"fmt"
	"strings"
)

// ValidateCycle checks a cycle definition and accumulates every violation
// instead of failing fast, so callers can show all problems at once. A cycle
// that validates cleanly is returned in draft status; activation is a
// separate step.
func ValidateCycle(draft CycleDraft) (ReviewCycle, []ValidationIssue) {
	var issues []ValidationIssue

	name := strings.TrimSpace(draft.Name)
	if name == "" {
		issues = append(issues, ValidationIssue{Field: "name", Reason: "must not be empty"})
	}
	if len(name) > MaxCycleNameLength {
		issues = append(issues, ValidationIssue{Field: "name", Reason: fmt.Sprintf("must be at most %d characters", MaxCycleNameLength)})
	}

	if draft.StartDate.IsZero() {
		issues = append(issues, ValidationIssue{Field: "startDate", Reason: "must be set"})
	}
	if draft.EndDate.IsZero() {
		issues = append(issues, ValidationIssue{Field: "endDate", Reason: "must be set"})
	}
	if !draft.StartDate.IsZero() && !draft.EndDate.IsZero() && !draft.EndDate.After(draft.StartDate) {
		issues = append(issues, ValidationIssue{Field: "endDate", Reason: "must be after startDate"})
	}

	scaleMin, scaleMax := draft.ScaleMin, draft.ScaleMax
	if scaleMin == 0 && scaleMax == 0 {
		scaleMin, scaleMax = DefaultScaleMin, DefaultScaleMax
	}
	if scaleMax <= scaleMin {
		issues = append(issues, ValidationIssue{Field: "scaleMax", Reason: "must be greater than scaleMin"})
	}

	if len(draft.Parameters) == 0 {
		issues = append(issues, ValidationIssue{Field: "parameters", Reason: "at least one parameter is required"})
	}

	seen := map[string]struct{}{}
	weightSum := 0.0
	allZero := true
	for i, param := range draft.Parameters {
		field := fmt.Sprintf("parameters[%d]", i)
		if strings.TrimSpace(param.ID) == "" {
			issues = append(issues, ValidationIssue{Field: field + ".id", Reason: "must not be empty"})
		} else if _, dup := seen[param.ID]; dup {
			issues = append(issues, ValidationIssue{Field: field + ".id", Reason: "duplicate parameter id " + param.ID})
		} else {
			seen[param.ID] = struct{}{}
		}
		if strings.TrimSpace(param.Name) == "" {
			issues = append(issues, ValidationIssue{Field: field + ".name", Reason: "must not be empty"})
		}
		if param.Weight < 0 || param.Weight > 100 {
			issues = append(issues, ValidationIssue{Field: field + ".weight", Reason: "must be between 0 and 100"})
		}
		weightSum += param.Weight
		if param.Weight != 0 {
			allZero = false
		}
	}

	// Weights must be all zero (unweighted) or sum to exactly 100. Partial
	// weighting is deliberately rejected rather than normalized.
	if len(draft.Parameters) > 0 && !allZero && weightSum != 100 {
		issues = append(issues, ValidationIssue{
			Field:  "parameters",
			Reason: fmt.Sprintf("weights must all be zero or sum to exactly 100, got %g", weightSum),
		})
	}

	if len(issues) > 0 {
		return ReviewCycle{}, issues
	}

	params := make([]Parameter, len(draft.Parameters))
	copy(params, draft.Parameters)
	return ReviewCycle{
		Name:       name,
		StartDate:  draft.StartDate,
		EndDate:    draft.EndDate,
		Status:     CycleStatusDraft,
		ScaleMin:   scaleMin,
		ScaleMax:   scaleMax,
		Parameters: params,
	}, nil
}

// ValidateRatings checks a rating set against the cycle's scale and comment
// rules. Like ValidateCycle it accumulates all violations.
func ValidateRatings(ratings []RatingEntry, cycle ReviewCycle) []ValidationIssue {
	var issues []ValidationIssue

	params := map[string]Parameter{}
	for _, param := range cycle.Parameters {
		params[param.ID] = param
	}

	seen := map[string]struct{}{}
	for i, rating := range ratings {
		field := fmt.Sprintf("ratings[%d]", i)
		param, known := params[rating.ParameterID]
		if !known {
			issues = append(issues, ValidationIssue{Field: field + ".parameterId", Reason: "unknown parameter " + rating.ParameterID})
			continue
		}
		if _, dup := seen[rating.ParameterID]; dup {
			issues = append(issues, ValidationIssue{Field: field + ".parameterId", Reason: "duplicate rating for " + rating.ParameterID})
			continue
		}
		seen[rating.ParameterID] = struct{}{}

		if rating.Score < cycle.ScaleMin || rating.Score > cycle.ScaleMax {
			issues = append(issues, ValidationIssue{
				Field:  field + ".score",
				Reason: fmt.Sprintf("must be between %d and %d", cycle.ScaleMin, cycle.ScaleMax),
			})
		}
		if param.RequiresComment && rating.Score <= CommentRequiredAtOrBelow && strings.TrimSpace(rating.Comment) == "" {
			issues = append(issues, ValidationIssue{
				Field:  field + ".comment",
				Reason: fmt.Sprintf("justification required for scores of %d or below", CommentRequiredAtOrBelow),
			})
		}
	}

	return issues
}
