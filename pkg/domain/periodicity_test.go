package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "complia/pkg/domain-errors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 6, 30, 0, 0, time.UTC)
}

func TestPeriodicityNext(t *testing.T) {
	tests := []struct {
		name   string
		period Periodicity
		from   time.Time
		want   time.Time
	}{
		{"daily", PeriodDaily, date(2025, time.March, 10), date(2025, time.March, 11)},
		{"weekly", PeriodWeekly, date(2025, time.March, 10), date(2025, time.March, 17)},
		{"monthly mid-month", PeriodMonthly, date(2025, time.March, 10), date(2025, time.April, 10)},
		{"monthly clamps Jan 31 to Feb 28", PeriodMonthly, date(2025, time.January, 31), date(2025, time.February, 28)},
		{"monthly clamps to Feb 29 in leap year", PeriodMonthly, date(2024, time.January, 31), date(2024, time.February, 29)},
		{"monthly across year boundary", PeriodMonthly, date(2025, time.December, 15), date(2026, time.January, 15)},
		{"quarterly", PeriodQuarterly, date(2025, time.January, 15), date(2025, time.April, 15)},
		{"quarterly clamps May 31 to Aug 31", PeriodQuarterly, date(2025, time.May, 31), date(2025, time.August, 31)},
		{"quarterly clamps Nov 30 across year", PeriodQuarterly, date(2025, time.November, 30), date(2026, time.February, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.period.Next(tt.from))
		})
	}
}

func TestPeriodicityNextPreservesClock(t *testing.T) {
	from := time.Date(2025, time.January, 31, 23, 45, 12, 999, time.UTC)
	next := PeriodMonthly.Next(from)
	assert.Equal(t, 23, next.Hour())
	assert.Equal(t, 45, next.Minute())
	assert.Equal(t, 999, next.Nanosecond())
}

func TestParsePeriodicity(t *testing.T) {
	t.Run("accepts known values case-insensitively", func(t *testing.T) {
		p, err := ParsePeriodicity("monthly")
		require.NoError(t, err)
		assert.Equal(t, PeriodMonthly, p)
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		_, err := ParsePeriodicity("fortnightly")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
