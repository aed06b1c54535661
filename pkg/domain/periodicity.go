package domain

import (
	"strings"
	"time"

	dErrors "complia/pkg/domain-errors"
)

// Periodicity is the recurrence interval of a scheduled validation.
type Periodicity string

const (
	PeriodDaily     Periodicity = "DAILY"
	PeriodWeekly    Periodicity = "WEEKLY"
	PeriodMonthly   Periodicity = "MONTHLY"
	PeriodQuarterly Periodicity = "QUARTERLY"
)

var knownPeriodicities = map[Periodicity]struct{}{
	PeriodDaily:     {},
	PeriodWeekly:    {},
	PeriodMonthly:   {},
	PeriodQuarterly: {},
}

// ParsePeriodicity validates and returns a Periodicity.
func ParsePeriodicity(s string) (Periodicity, error) {
	p := Periodicity(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := knownPeriodicities[p]; !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown periodicity: "+s)
	}
	return p, nil
}

func (p Periodicity) String() string {
	return string(p)
}

// IsValid reports whether the periodicity is one of the known intervals.
func (p Periodicity) IsValid() bool {
	_, ok := knownPeriodicities[p]
	return ok
}

// Next returns the due timestamp one period after from. The advancement is
// computed from the previous due value, never from "now", so a delayed tick
// does not compress the following interval.
//
// Month-based periods clamp to the last day of the target month:
// 2025-01-31 MONTHLY advances to 2025-02-28, not 2025-03-02. time.AddDate
// normalizes overflowing days, which is exactly the behavior we must avoid.
func (p Periodicity) Next(from time.Time) time.Time {
	switch p {
	case PeriodDaily:
		return from.AddDate(0, 0, 1)
	case PeriodWeekly:
		return from.AddDate(0, 0, 7)
	case PeriodMonthly:
		return addMonthsClamped(from, 1)
	case PeriodQuarterly:
		return addMonthsClamped(from, 3)
	}
	return from
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	m := int(month) + months
	year += (m - 1) / 12
	month = time.Month((m-1)%12 + 1)

	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}
	h, min, sec := t.Clock()
	return time.Date(year, month, day, h, min, sec, t.Nanosecond(), t.Location())
}

func lastDayOfMonth(year int, month time.Month) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
