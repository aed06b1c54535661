package domain

import (
	"strings"

	dErrors "complia/pkg/domain-errors"
)

// Outcome is the per-regulation compliance verdict produced by an evaluator.
type Outcome string

const (
	// OutcomePass means the regulation's checks were fully satisfied.
	OutcomePass Outcome = "PASS"

	// OutcomeFail means the checks were not satisfied, or the evaluator
	// itself was unavailable, timed out, or errored. FAIL always
	// contributes a sub-score of 0 to aggregation.
	OutcomeFail Outcome = "FAIL"

	// OutcomePartial means a graded evaluator satisfied some checks; the
	// evaluator supplies the sub-score.
	OutcomePartial Outcome = "PARTIAL"
)

var knownOutcomes = map[Outcome]struct{}{
	OutcomePass:    {},
	OutcomeFail:    {},
	OutcomePartial: {},
}

// ParseOutcome validates and returns an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	o := Outcome(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := knownOutcomes[o]; !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown outcome: "+s)
	}
	return o, nil
}

func (o Outcome) String() string {
	return string(o)
}

// IsValid reports whether the outcome is one of the known verdicts.
func (o Outcome) IsValid() bool {
	_, ok := knownOutcomes[o]
	return ok
}
