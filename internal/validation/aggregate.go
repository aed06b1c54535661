package validation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	id "complia/pkg/domain"
	dErrors "complia/pkg/domain-errors"
)

// Band maps a minimum score to an IRR level.
type Band struct {
	Min   float64
	Level id.IRRLevel
}

// Thresholds is the ordered IRR classification table. It is configuration,
// not hardcoded constants, so per-market overrides need no code change.
type Thresholds []Band

// DefaultThresholds returns the platform's standard risk bands.
func DefaultThresholds() Thresholds {
	return Thresholds{
		{Min: 95, Level: id.IRR1},
		{Min: 85, Level: id.IRR2},
		{Min: 70, Level: id.IRR3},
		{Min: 0, Level: id.IRR4},
	}
}

// ParseThresholds parses an override string like "R1:95,R2:85,R3:70".
// R4 is always appended as the floor band. An empty string yields the
// defaults.
func ParseThresholds(s string) (Thresholds, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultThresholds(), nil
	}

	var t Thresholds
	for _, part := range strings.Split(s, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(kv) != 2 {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "malformed threshold entry: "+part)
		}
		level, err := id.ParseIRRLevel(kv[0])
		if err != nil {
			return nil, err
		}
		min, err := strconv.ParseFloat(kv[1], 64)
		if err != nil || min < 0 || min > 100 {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "threshold out of range: "+part)
		}
		t = append(t, Band{Min: min, Level: level})
	}
	t = append(t, Band{Min: 0, Level: id.IRR4})

	sort.SliceStable(t, func(i, j int) bool { return t[i].Min > t[j].Min })
	return t, nil
}

// Classify maps a consolidated score to its IRR band. Exact boundary values
// resolve to the higher (safer) band: 95.00 is R1, 94.99 falls through to
// the next band that accepts it.
func (t Thresholds) Classify(score float64) id.IRRLevel {
	for _, band := range t {
		if score >= band.Min {
			return band.Level
		}
	}
	return id.IRR4
}

// Aggregator reduces per-regulation results into a consolidated score and
// risk classification.
type Aggregator struct {
	thresholds Thresholds
}

// NewAggregator builds an aggregator over the given threshold table.
func NewAggregator(t Thresholds) *Aggregator {
	if len(t) == 0 {
		t = DefaultThresholds()
	}
	return &Aggregator{thresholds: t}
}

// Aggregate computes the arithmetic mean of all sub-scores and classifies
// it. FAIL contributes 0 regardless of any partial evidence; PASS
// contributes 100 unless the evaluator supplied a graded sub-score.
// Aggregation never silently defaults: an empty input is an error.
func (a *Aggregator) Aggregate(results []Result) (float64, id.IRRLevel, error) {
	if len(results) == 0 {
		return 0, "", dErrors.New(dErrors.CodeEmptyAggregationInput, "no results to aggregate")
	}

	var sum float64
	for _, r := range results {
		sum += subScore(r)
	}
	score := sum / float64(len(results))
	return score, a.thresholds.Classify(score), nil
}

func subScore(r Result) float64 {
	switch r.Outcome {
	case id.OutcomeFail:
		return 0
	case id.OutcomePass:
		if r.Score > 0 && r.Score < 100 {
			return r.Score // graded pass
		}
		return 100
	case id.OutcomePartial:
		return clamp(r.Score, 0, 100)
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// String renders the table for startup logging.
func (t Thresholds) String() string {
	parts := make([]string, 0, len(t))
	for _, b := range t {
		parts = append(parts, fmt.Sprintf("%s:%g", b.Level, b.Min))
	}
	return strings.Join(parts, ",")
}
