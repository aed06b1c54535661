package domain

import dErrors "complia/pkg/domain-errors"

// IRRLevel is the Residual Risk Index, a discrete ordinal classification
// derived from a consolidated compliance score. R1 is the safest band,
// R4 the worst.
type IRRLevel string

const (
	IRR1 IRRLevel = "R1" // very low residual risk
	IRR2 IRRLevel = "R2" // low
	IRR3 IRRLevel = "R3" // moderate
	IRR4 IRRLevel = "R4" // elevated
)

// irrRank orders levels for comparison; lower rank is safer.
var irrRank = map[IRRLevel]int{
	IRR1: 1,
	IRR2: 2,
	IRR3: 3,
	IRR4: 4,
}

// ParseIRRLevel validates and returns an IRRLevel.
func ParseIRRLevel(s string) (IRRLevel, error) {
	l := IRRLevel(s)
	if _, ok := irrRank[l]; !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown IRR level: "+s)
	}
	return l, nil
}

func (l IRRLevel) String() string {
	return string(l)
}

// IsValid reports whether the level is one of R1..R4.
func (l IRRLevel) IsValid() bool {
	_, ok := irrRank[l]
	return ok
}

// SaferThan reports whether l carries less residual risk than other.
// Unknown levels are treated as worse than any known level.
func (l IRRLevel) SaferThan(other IRRLevel) bool {
	lr, lok := irrRank[l]
	or, ook := irrRank[other]
	if !lok {
		return false
	}
	if !ook {
		return true
	}
	return lr < or
}
