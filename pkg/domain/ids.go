package domain

import (
	"github.com/google/uuid"

	dErrors "complia/pkg/domain-errors"
)

// Typed ID wrappers around uuid.UUID. The compiler prevents passing a
// ScheduleID where a TenantID is expected; parse functions enforce validity
// at trust boundaries.
type (
	// TenantID identifies a tenant organization.
	TenantID uuid.UUID

	// ScheduleID identifies a recurring scheduled validation.
	ScheduleID uuid.UUID

	// RunID identifies a single validation run in the history ledger.
	RunID uuid.UUID
)

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be nil")
	}
	return u, nil
}

// ParseTenantID validates and returns a TenantID.
func ParseTenantID(s string) (TenantID, error) {
	u, err := parseUUID(s, "tenant")
	if err != nil {
		return TenantID{}, err
	}
	return TenantID(u), nil
}

// ParseScheduleID validates and returns a ScheduleID.
func ParseScheduleID(s string) (ScheduleID, error) {
	u, err := parseUUID(s, "schedule")
	if err != nil {
		return ScheduleID{}, err
	}
	return ScheduleID(u), nil
}

// ParseRunID validates and returns a RunID.
func ParseRunID(s string) (RunID, error) {
	u, err := parseUUID(s, "run")
	if err != nil {
		return RunID{}, err
	}
	return RunID(u), nil
}

func (id TenantID) String() string   { return uuid.UUID(id).String() }
func (id ScheduleID) String() string { return uuid.UUID(id).String() }
func (id RunID) String() string      { return uuid.UUID(id).String() }

func (id TenantID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id ScheduleID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id RunID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
