package review

import (
	"strings"
	"testing"
	"time"
)

func cycleDraft(weights ...float64) CycleDraft {
	params := make([]Parameter, len(weights))
	for i, weight := range weights {
		params[i] = Parameter{ID: string(rune('a' + i)), Name: "Param " + string(rune('A'+i)), Weight: weight}
	}
	return CycleDraft{
		Name:       "H1 2026",
		StartDate:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		Parameters: params,
	}
}

func TestValidateCycleAcceptsWeightedScheme(t *testing.T) {
	cycle, issues := ValidateCycle(cycleDraft(30, 30, 40))
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
	if cycle.Status != CycleStatusDraft {
		t.Fatalf("expected draft status, got %s", cycle.Status)
	}
	if cycle.ScaleMin != DefaultScaleMin || cycle.ScaleMax != DefaultScaleMax {
		t.Fatalf("expected default scale, got [%d,%d]", cycle.ScaleMin, cycle.ScaleMax)
	}
}

func TestValidateCycleAcceptsUnweightedScheme(t *testing.T) {
	if _, issues := ValidateCycle(cycleDraft(0, 0, 0)); len(issues) != 0 {
		t.Fatalf("expected all-zero weights to be accepted, got %+v", issues)
	}
}

func TestValidateCycleRejectsPartialWeights(t *testing.T) {
	_, issues := ValidateCycle(cycleDraft(30, 30, 30))
	if len(issues) != 1 {
		t.Fatalf("expected exactly one issue, got %+v", issues)
	}
	if issues[0].Field != "parameters" {
		t.Fatalf("expected weight-sum issue on parameters, got %+v", issues[0])
	}
}

func TestValidateCycleRejectsWeightOutOfRange(t *testing.T) {
	_, issues := ValidateCycle(cycleDraft(120, -20))
	if len(issues) != 2 {
		t.Fatalf("expected an issue per out-of-range weight, got %+v", issues)
	}
}

func TestValidateCycleAccumulatesAllViolations(t *testing.T) {
	draft := cycleDraft(30, 30, 30)
	draft.Name = strings.Repeat("x", MaxCycleNameLength+1)
	draft.EndDate = draft.StartDate.AddDate(0, -1, 0)

	_, issues := ValidateCycle(draft)
	fields := map[string]bool{}
	for _, issue := range issues {
		fields[issue.Field] = true
	}
	for _, want := range []string{"name", "endDate", "parameters"} {
		if !fields[want] {
			t.Fatalf("expected issue on %s, got %+v", want, issues)
		}
	}
}

func TestValidateCycleRejectsEmptyAndDuplicateParameters(t *testing.T) {
	draft := cycleDraft()
	if _, issues := ValidateCycle(draft); len(issues) == 0 {
		t.Fatal("expected empty parameter set to be rejected")
	}

	draft = cycleDraft(50, 50)
	draft.Parameters[1].ID = draft.Parameters[0].ID
	_, issues := ValidateCycle(draft)
	if len(issues) == 0 {
		t.Fatal("expected duplicate parameter ids to be rejected")
	}
}

func TestValidateRatingsChecksScaleAndComments(t *testing.T) {
	cycle := ReviewCycle{
		Status:   CycleStatusActive,
		ScaleMin: 0,
		ScaleMax: 5,
		Parameters: []Parameter{
			{ID: "tech", Name: "Technical", Weight: 60, RequiresComment: true},
			{ID: "comm", Name: "Communication", Weight: 40},
		},
	}

	issues := ValidateRatings([]RatingEntry{
		{ParameterID: "tech", Score: 2},
		{ParameterID: "comm", Score: 9},
		{ParameterID: "ghost", Score: 3},
	}, cycle)

	reasons := map[string]bool{}
	for _, issue := range issues {
		reasons[issue.Field] = true
	}
	if !reasons["ratings[0].comment"] {
		t.Fatalf("expected low tech score to require a comment, got %+v", issues)
	}
	if !reasons["ratings[1].score"] {
		t.Fatalf("expected out-of-scale comm score to be rejected, got %+v", issues)
	}
	if !reasons["ratings[2].parameterId"] {
		t.Fatalf("expected unknown parameter to be rejected, got %+v", issues)
	}
}

func TestValidateRatingsRejectsDuplicates(t *testing.T) {
	cycle := ReviewCycle{
		ScaleMin:   0,
		ScaleMax:   5,
		Parameters: []Parameter{{ID: "tech", Name: "Technical"}},
	}
	issues := ValidateRatings([]RatingEntry{
		{ParameterID: "tech", Score: 3},
		{ParameterID: "tech", Score: 4},
	}, cycle)
	if len(issues) != 1 {
		t.Fatalf("expected one duplicate issue, got %+v", issues)
	}
}
