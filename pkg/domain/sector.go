package domain

import (
	"sort"
	"strings"

	dErrors "complia/pkg/domain-errors"
)

// Sector is a business domain subject to its own regulatory regime.
// This is a domain primitive that enforces validity at parse time.
type Sector string

const (
	SectorHealthcare Sector = "HEALTHCARE"
	SectorFinancial  Sector = "FINANCIAL"
	SectorGovernment Sector = "GOVERNMENT"
	SectorARVR       Sector = "ARVR"
	SectorMulti      Sector = "MULTI"
)

// sectorNames maps each sector to its display name.
var sectorNames = map[Sector]string{
	SectorHealthcare: "Healthcare",
	SectorFinancial:  "Financial Services",
	SectorGovernment: "Government",
	SectorARVR:       "AR/VR",
	SectorMulti:      "Multi-Sector",
}

// ParseSector validates and returns a Sector.
// Returns an error if the sector is unknown.
func ParseSector(s string) (Sector, error) {
	sec := Sector(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := sectorNames[sec]; !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown sector: "+s)
	}
	return sec, nil
}

// ParseSectors parses a list of sector strings, rejecting duplicates.
func ParseSectors(ss []string) ([]Sector, error) {
	out := make([]Sector, 0, len(ss))
	seen := make(map[Sector]struct{}, len(ss))
	for _, s := range ss {
		sec, err := ParseSector(s)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[sec]; dup {
			continue
		}
		seen[sec] = struct{}{}
		out = append(out, sec)
	}
	return out, nil
}

// String returns the sector identifier.
func (s Sector) String() string {
	return string(s)
}

// DisplayName returns the human-readable sector name.
func (s Sector) DisplayName() string {
	return sectorNames[s]
}

// IsValid reports whether the sector is one of the known identifiers.
func (s Sector) IsValid() bool {
	_, ok := sectorNames[s]
	return ok
}

// AllSectors returns the known sectors in stable order.
func AllSectors() []Sector {
	out := make([]Sector, 0, len(sectorNames))
	for s := range sectorNames {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
