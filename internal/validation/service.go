package validation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"complia/internal/registry"
	"complia/internal/validation/metrics"
	id "complia/pkg/domain"
	dErrors "complia/pkg/domain-errors"
	"complia/pkg/requestcontext"
)

const (
	defaultConcurrency = 8
	defaultEvalTimeout = 10 * time.Second
)

// TenantConfigs supplies a tenant's configured active sectors. Implemented
// by the tenantcfg service.
type TenantConfigs interface {
	ActiveSectors(ctx context.Context, tenantID id.TenantID) ([]id.Sector, error)
}

// Service orchestrates validation runs: it resolves the applicable
// (sector, regulation, jurisdiction) triples, fans out to the bound
// evaluators, and folds the results into an aggregated report.
//
// Persistence is the caller's responsibility; Validate has no side effects
// beyond producing the report and emitting one observability event.
type Service struct {
	registry *registry.Registry
	bindings Bindings
	tenants  TenantConfigs
	agg      *Aggregator

	sink    Sink
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer

	concurrency int
	evalTimeout time.Duration
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithSink wires the observability event sink.
func WithSink(sink Sink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithMetrics wires prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger wires the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithConcurrency bounds the parallel evaluator fan-out.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithEvaluatorTimeout bounds each evaluator invocation.
func WithEvaluatorTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.evalTimeout = d
		}
	}
}

// NewService builds the orchestrator.
func NewService(reg *registry.Registry, bindings Bindings, tenants TenantConfigs, agg *Aggregator, opts ...Option) *Service {
	s := &Service{
		registry:    reg,
		bindings:    bindings,
		tenants:     tenants,
		agg:         agg,
		tracer:      otel.Tracer("complia/validation"),
		concurrency: defaultConcurrency,
		evalTimeout: defaultEvalTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.agg == nil {
		s.agg = NewAggregator(nil)
	}
	return s
}

// Validate runs an ad hoc validation for the tenant.
//
// An empty sectors slice defaults to the tenant's configured active sectors.
// An empty jurisdictions slice means "all jurisdictions registered for the
// resolved regulations".
func (s *Service) Validate(ctx context.Context, tenantID id.TenantID, sectors []id.Sector, jurisdictions []string) (*AggregatedReport, error) {
	return s.run(ctx, tenantID, sectors, jurisdictions, TriggerAdHoc)
}

// ValidateScheduled is Validate with the scheduled trigger on the emitted
// event. Used by the scheduler runner.
func (s *Service) ValidateScheduled(ctx context.Context, tenantID id.TenantID, sectors []id.Sector, jurisdictions []string) (*AggregatedReport, error) {
	return s.run(ctx, tenantID, sectors, jurisdictions, TriggerScheduled)
}

// unit is one resolved evaluator invocation.
type unit struct {
	sector       id.Sector
	regulation   registry.Regulation
	jurisdiction string
}

func (s *Service) run(ctx context.Context, tenantID id.TenantID, sectors []id.Sector, jurisdictions []string, trigger Trigger) (report *AggregatedReport, err error) {
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "validation.Validate",
		trace.WithAttributes(attribute.String("tenant.id", tenantID.String())))
	defer span.End()

	defer func() {
		s.metrics.ObserveValidateLatency(time.Since(start))
		s.emit(ctx, tenantID, sectors, jurisdictions, trigger, time.Since(start), report, err)
		if err != nil {
			span.RecordError(err)
		}
	}()

	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "tenant id is required")
	}
	for _, sec := range sectors {
		if !sec.IsValid() {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown sector: "+sec.String())
		}
	}

	if len(sectors) == 0 {
		sectors, err = s.tenants.ActiveSectors(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		if len(sectors) == 0 {
			return nil, dErrors.New(dErrors.CodeBadRequest, "no sectors requested and tenant has no active sectors configured")
		}
	}

	units := s.resolve(sectors, jurisdictions)
	if len(units) == 0 {
		return nil, dErrors.New(dErrors.CodeNoApplicableRegulations, "no regulation applies to the requested sectors and jurisdictions")
	}
	span.SetAttributes(attribute.Int("resolved.units", len(units)))

	results, completed := s.fanOut(ctx, tenantID, units)

	sortResults(results)
	if ctxErr := ctx.Err(); ctxErr != nil {
		// Caller-initiated abort: hand back whatever finished, unaggregated,
		// so the caller never mistakes it for a successful report.
		partial := &AggregatedReport{
			TenantID:      tenantID,
			Sectors:       sectors,
			Jurisdictions: jurisdictions,
			Results:       results,
			GeneratedAt:   requestcontext.Now(ctx).UTC(),
		}
		return partial, dErrors.Wrap(ctxErr, dErrors.CodeCancelled,
			fmt.Sprintf("validation cancelled with %d of %d evaluators completed", completed, len(units)))
	}

	score, irr, err := s.agg.Aggregate(results)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveScore(score)
	span.SetAttributes(attribute.Float64("score", score), attribute.String("irr", irr.String()))

	return &AggregatedReport{
		TenantID:      tenantID,
		Sectors:       sectors,
		Jurisdictions: jurisdictions,
		Results:       results,
		Score:         score,
		IRR:           irr,
		GeneratedAt:   requestcontext.Now(ctx).UTC(),
	}, nil
}

// resolve expands the requested sectors into evaluator invocations. A
// regulation whose jurisdictions do not overlap the filter is skipped, not
// an error. Order is deterministic: sectors as requested, regulations in
// registry (ID) order, jurisdictions in registration order.
func (s *Service) resolve(sectors []id.Sector, jurisdictions []string) []unit {
	filter := make(map[string]struct{}, len(jurisdictions))
	for _, j := range jurisdictions {
		filter[j] = struct{}{}
	}

	var units []unit
	for _, sec := range sectors {
		for _, reg := range s.registry.RegulationsFor(sec) {
			for _, j := range reg.Jurisdictions {
				if len(filter) > 0 {
					if _, ok := filter[j]; !ok {
						continue
					}
				}
				units = append(units, unit{sector: sec, regulation: reg, jurisdiction: j})
			}
		}
	}
	return units
}

// fanOut invokes the evaluators in parallel, bounded by the configured
// concurrency. Evaluators never share mutable state; each receives an
// immutable Request. Returns the completed results and their count; slots
// whose evaluator never ran (cancellation) are excluded.
func (s *Service) fanOut(ctx context.Context, tenantID id.TenantID, units []unit) ([]Result, int) {
	slots := make([]Result, len(units))
	done := make([]bool, len(units))

	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)

	for i, u := range units {
		if ctx.Err() != nil {
			break // stop dispatching new evaluator calls
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res, ok := s.evaluate(ctx, tenantID, u)
			if ok {
				slots[i] = res
				done[i] = true
			}
			return nil
		})
	}
	_ = g.Wait() // goroutines report per-regulation failures as results

	results := make([]Result, 0, len(units))
	for i, ok := range done {
		if ok {
			results = append(results, slots[i])
		}
	}
	return results, len(results)
}

// evaluate runs one bound evaluator with a per-call timeout. A missing
// binding, a timeout, an evaluator error, or a panic all become a FAIL
// result with explanatory evidence; only run-level cancellation makes the
// invocation "not completed" (ok=false).
func (s *Service) evaluate(ctx context.Context, tenantID id.TenantID, u unit) (Result, bool) {
	req := Request{
		TenantID:     tenantID,
		Sector:       u.sector,
		Regulation:   u.regulation.ID,
		Jurisdiction: u.jurisdiction,
	}

	ev, bound := s.bindings.Lookup(u.sector, u.regulation.ID)
	if !bound {
		s.metrics.IncrementResult(u.regulation.ID, id.OutcomeFail.String())
		return s.failResult(ctx, req, fmt.Sprintf("EvaluatorUnavailable: no evaluator bound for %s/%s", u.sector, u.regulation.ID)), true
	}

	callCtx, cancel := context.WithTimeout(ctx, s.evalTimeout)
	defer cancel()

	start := time.Now()
	res, err := s.safeEvaluate(callCtx, ev, req)
	s.metrics.ObserveEvaluatorLatency(u.regulation.ID, time.Since(start))

	switch {
	case err == nil:
		res = s.normalize(ctx, req, res)
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		// Run-level cancellation, not an evaluator verdict.
		return Result{}, false
	case errors.Is(err, context.DeadlineExceeded):
		res = s.failResult(ctx, req, fmt.Sprintf("EvaluatorUnavailable: evaluator timed out after %s", s.evalTimeout))
	default:
		res = s.failResult(ctx, req, "evaluator error: "+err.Error())
	}

	s.metrics.IncrementResult(u.regulation.ID, res.Outcome.String())
	return res, true
}

// safeEvaluate contains evaluator panics at the boundary; errors never
// propagate as exceptions across it.
func (s *Service) safeEvaluate(ctx context.Context, ev Evaluator, req Request) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			if s.logger != nil {
				s.logger.ErrorContext(ctx, "evaluator panicked",
					"regulation", req.Regulation,
					"jurisdiction", req.Jurisdiction,
					"panic", r,
				)
			}
			err = fmt.Errorf("evaluator panicked: %v", r)
		}
	}()
	return ev.Evaluate(ctx, req)
}

// normalize stamps identity fields from the resolved unit so every result
// satisfies the registry invariant regardless of what the evaluator filled
// in, clamps the score, and defaults a missing timestamp.
func (s *Service) normalize(ctx context.Context, req Request, res Result) Result {
	res.Sector = req.Sector
	res.Regulation = req.Regulation
	res.Jurisdiction = req.Jurisdiction
	if !res.Outcome.IsValid() {
		res.Outcome = id.OutcomeFail
		res.Evidence = "evaluator returned an unknown outcome"
	}
	res.Score = clamp(res.Score, 0, 100)
	if res.Timestamp.IsZero() {
		res.Timestamp = requestcontext.Now(ctx).UTC()
	}
	return res
}

func (s *Service) failResult(ctx context.Context, req Request, evidence string) Result {
	return Result{
		Sector:       req.Sector,
		Regulation:   req.Regulation,
		Jurisdiction: req.Jurisdiction,
		Outcome:      id.OutcomeFail,
		Score:        0,
		Evidence:     evidence,
		Timestamp:    requestcontext.Now(ctx).UTC(),
	}
}

func (s *Service) emit(ctx context.Context, tenantID id.TenantID, sectors []id.Sector, jurisdictions []string, trigger Trigger, d time.Duration, report *AggregatedReport, err error) {
	if s.sink == nil {
		return
	}
	event := Event{
		TenantID:      tenantID,
		Sectors:       sectors,
		Jurisdictions: jurisdictions,
		Trigger:       trigger,
		Duration:      d,
		OutcomeCounts: make(map[id.Outcome]int),
		Err:           err,
	}
	if report != nil {
		event.Score = report.Score
		event.IRR = report.IRR
		for _, r := range report.Results {
			event.OutcomeCounts[r.Outcome]++
		}
	}
	s.sink.Emit(ctx, event)
}

// sortResults orders results by (sector, regulation, jurisdiction) so
// repeated runs over identical inputs are deterministic.
func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Sector != b.Sector {
			return a.Sector < b.Sector
		}
		if a.Regulation != b.Regulation {
			return a.Regulation < b.Regulation
		}
		return a.Jurisdiction < b.Jurisdiction
	})
}
