// Package dispatch holds the evaluator bindings. Sector modules register
// their evaluators during startup; the table is frozen before traffic
// begins and is safe for unsynchronized concurrent lookups afterwards.
package dispatch

import (
	"sort"
	"sync"

	"complia/internal/validation"
	id "complia/pkg/domain"
	dErrors "complia/pkg/domain-errors"
)

type bindingKey struct {
	sector     id.Sector
	regulation string
}

// Table maps (sector, regulation) pairs to evaluators. It implements
// validation.Bindings.
type Table struct {
	mu       sync.Mutex
	frozen   bool
	bindings map[bindingKey]validation.Evaluator
}

// NewTable returns an empty, unfrozen table.
func NewTable() *Table {
	return &Table{bindings: make(map[bindingKey]validation.Evaluator)}
}

// Register binds an evaluator to a (sector, regulation) pair. Registration
// after Freeze and duplicate bindings are errors; the engine never silently
// replaces rule logic.
func (t *Table) Register(sector id.Sector, regulation string, ev validation.Evaluator) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.frozen {
		return dErrors.New(dErrors.CodeInvariantViolation, "dispatch table is frozen")
	}
	if !sector.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown sector: "+sector.String())
	}
	if regulation == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "regulation id is required")
	}
	if ev == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "evaluator must not be nil")
	}

	key := bindingKey{sector: sector, regulation: regulation}
	if _, dup := t.bindings[key]; dup {
		return dErrors.Newf(dErrors.CodeConflict, "evaluator already bound for %s/%s", sector, regulation)
	}
	t.bindings[key] = ev
	return nil
}

// Freeze closes the table for registration. Idempotent.
func (t *Table) Freeze() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frozen = true
}

// Lookup resolves the evaluator bound to a (sector, regulation) pair.
func (t *Table) Lookup(sector id.Sector, regulation string) (validation.Evaluator, bool) {
	ev, ok := t.bindings[bindingKey{sector: sector, regulation: regulation}]
	return ev, ok
}

// Bound returns the registered (sector, regulation) pairs, sorted, for
// startup logging.
func (t *Table) Bound() []string {
	out := make([]string, 0, len(t.bindings))
	for k := range t.bindings {
		out = append(out, k.sector.String()+"/"+k.regulation)
	}
	sort.Strings(out)
	return out
}

var _ validation.Bindings = (*Table)(nil)
