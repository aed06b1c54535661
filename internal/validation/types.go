package validation

import (
	"context"
	"time"

	id "complia/pkg/domain"
)

// Request is the immutable context handed to one evaluator invocation.
// Evaluators must not mutate global state and must be idempotent for
// identical inputs.
type Request struct {
	TenantID     id.TenantID
	Sector       id.Sector
	Regulation   string
	Jurisdiction string
}

// Result is the verdict of one regulation check in one jurisdiction.
//
// Invariants:
//   - Score is in [0,100]
//   - Outcome FAIL forces Score 0 during aggregation regardless of the
//     evaluator-supplied value
//   - (Sector, Regulation) must exist in the registry
type Result struct {
	Sector       id.Sector  `json:"sector"`
	Regulation   string     `json:"regulation"`
	Jurisdiction string     `json:"jurisdiction"`
	Outcome      id.Outcome `json:"outcome"`
	Score        float64    `json:"score"`
	Evidence     string     `json:"evidence,omitempty"`
	Timestamp    time.Time  `json:"timestamp"`
}

// Evaluator is the pluggable unit of compliance logic for one
// (sector, regulation) binding. Implementations report their own internal
// errors as a FAIL outcome rather than returning an error across the
// boundary; the returned error is reserved for context cancellation.
type Evaluator interface {
	Evaluate(ctx context.Context, req Request) (Result, error)
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, req Request) (Result, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}

// Bindings resolves the evaluator bound to a (sector, regulation) pair.
// Implemented by the dispatch table; injected so the orchestrator never
// hardcodes a sector's rule logic.
type Bindings interface {
	Lookup(sector id.Sector, regulation string) (Evaluator, bool)
}

// AggregatedReport is the consolidated, scored output of one validation run.
// Immutable once produced; consumed by the serializer and the history store.
type AggregatedReport struct {
	TenantID      id.TenantID `json:"tenant"`
	Sectors       []id.Sector `json:"sectors"`
	Jurisdictions []string    `json:"jurisdictions"`
	Results       []Result    `json:"results"`
	Score         float64     `json:"score"`
	IRR           id.IRRLevel `json:"irr"`
	GeneratedAt   time.Time   `json:"generatedAt"`
}
