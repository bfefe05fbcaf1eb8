package model

// RunReport is the ordered record of a single reconciler invocation. It is
// owned by that invocation and must not be mutated after the run completes.
type RunReport struct {
	Outcomes []RunOutcome
}

// Failure pairs a failed assertion id with its reason.
type Failure struct {
	AssertionID string
	Detail      string
}

// Summary aggregates per-assertion outcomes into final counts.
type Summary struct {
	Created          int
	AlreadySatisfied int
	Failed           int
	Failures         []Failure
}

// Append records an outcome in run order.
func (r *RunReport) Append(outcome RunOutcome) {
	r.Outcomes = append(r.Outcomes, outcome)
}

// Summarize reduces the report to counts and failure details. Pure
// aggregation: calling it any number of times yields the same value.
func (r *RunReport) Summarize() Summary {
	summary := Summary{}
	if r == nil {
		return summary
	}

	for _, outcome := range r.Outcomes {
		switch outcome.Status {
		case StatusCreated:
			summary.Created++
		case StatusAlreadySatisfied:
			summary.AlreadySatisfied++
		case StatusFailed:
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{
				AssertionID: outcome.AssertionID,
				Detail:      outcome.Detail,
			})
		}
	}

	return summary
}

// HasRequiredFailures reports whether any non-optional assertion failed.
// Optional assertion failures are recorded but never affect exit status.
func (r *RunReport) HasRequiredFailures() bool {
	if r == nil {
		return false
	}
	for _, outcome := range r.Outcomes {
		if outcome.Status == StatusFailed && !outcome.Optional {
			return true
		}
	}
	return false
}
