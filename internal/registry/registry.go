// Package registry holds the sector → regulation → jurisdiction reference
// data. It is populated during startup, frozen before traffic begins, and
// safe for unsynchronized concurrent reads afterwards.
package registry

import (
	"sort"
	"sync"

	id "complia/pkg/domain"
	dErrors "complia/pkg/domain-errors"
)

// Regulation is a regulatory framework tied to one sector and the
// jurisdictions in which it is in force. Immutable reference data.
type Regulation struct {
	ID            string
	Sector        id.Sector
	Name          string
	Jurisdictions []string
}

// AppliesIn reports whether the regulation is in force in the jurisdiction.
func (r Regulation) AppliesIn(jurisdiction string) bool {
	for _, j := range r.Jurisdictions {
		if j == jurisdiction {
			return true
		}
	}
	return false
}

// Registry is the process-wide sector/regulation mapping.
type Registry struct {
	mu     sync.Mutex
	frozen bool

	bySector      map[id.Sector][]Regulation
	byID          map[string]Regulation
	jurisdictions map[string]struct{}
}

// New returns an empty, unfrozen registry.
func New() *Registry {
	return &Registry{
		bySector:      make(map[id.Sector][]Regulation),
		byID:          make(map[string]Regulation),
		jurisdictions: make(map[string]struct{}),
	}
}

// Add registers a regulation. It fails after Freeze, for unknown sectors,
// for duplicate IDs, and for regulations without jurisdictions.
func (r *Registry) Add(reg Regulation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return dErrors.New(dErrors.CodeInvariantViolation, "registry is frozen")
	}
	if reg.ID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "regulation id is required")
	}
	if !reg.Sector.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown sector: "+reg.Sector.String())
	}
	if len(reg.Jurisdictions) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "regulation "+reg.ID+" has no jurisdictions")
	}
	if _, dup := r.byID[reg.ID]; dup {
		return dErrors.New(dErrors.CodeConflict, "regulation already registered: "+reg.ID)
	}

	r.byID[reg.ID] = reg
	r.bySector[reg.Sector] = append(r.bySector[reg.Sector], reg)
	for _, j := range reg.Jurisdictions {
		r.jurisdictions[j] = struct{}{}
	}
	return nil
}

// Freeze closes the registry for writes. Idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true

	// Stable per-sector ordering so resolution is deterministic.
	for s := range r.bySector {
		regs := r.bySector[s]
		sort.Slice(regs, func(i, j int) bool { return regs[i].ID < regs[j].ID })
	}
}

// RegulationsFor returns the regulations owned by a sector, in ID order.
// The returned slice is a copy.
func (r *Registry) RegulationsFor(sector id.Sector) []Regulation {
	return append([]Regulation(nil), r.bySector[sector]...)
}

// Regulation looks up one regulation by ID.
func (r *Registry) Regulation(regID string) (Regulation, bool) {
	reg, ok := r.byID[regID]
	return reg, ok
}

// KnownJurisdiction reports whether any registered regulation names the
// jurisdiction.
func (r *Registry) KnownJurisdiction(j string) bool {
	_, ok := r.jurisdictions[j]
	return ok
}

// KnownJurisdictions returns every jurisdiction named by any regulation,
// sorted.
func (r *Registry) KnownJurisdictions() []string {
	out := make([]string, 0, len(r.jurisdictions))
	for j := range r.jurisdictions {
		out = append(out, j)
	}
	sort.Strings(out)
	return out
}

// Validate checks that the (sector, regulation, jurisdiction) triple exists
// in the reference data. An empty jurisdiction skips the jurisdiction check.
func (r *Registry) Validate(sector id.Sector, regID, jurisdiction string) error {
	if !sector.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown sector: "+sector.String())
	}
	reg, ok := r.byID[regID]
	if !ok {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown regulation: "+regID)
	}
	if reg.Sector != sector {
		return dErrors.Newf(dErrors.CodeInvalidInput, "regulation %s belongs to sector %s", regID, reg.Sector)
	}
	if jurisdiction != "" && !reg.AppliesIn(jurisdiction) {
		return dErrors.Newf(dErrors.CodeInvalidInput, "regulation %s does not apply in %s", regID, jurisdiction)
	}
	return nil
}
