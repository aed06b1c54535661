package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complia/internal/validation"
	id "complia/pkg/domain"
	dErrors "complia/pkg/domain-errors"
)

func passEvaluator() validation.Evaluator {
	return validation.EvaluatorFunc(func(_ context.Context, req validation.Request) (validation.Result, error) {
		return validation.Result{Outcome: id.OutcomePass}, nil
	})
}

func TestRegisterAndLookup(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.Register(id.SectorFinancial, "PSD2", passEvaluator()))
	table.Freeze()

	t.Run("finds registered binding", func(t *testing.T) {
		_, ok := table.Lookup(id.SectorFinancial, "PSD2")
		assert.True(t, ok)
	})

	t.Run("misses unbound regulation", func(t *testing.T) {
		_, ok := table.Lookup(id.SectorFinancial, "SOX")
		assert.False(t, ok)
	})

	t.Run("misses same regulation under another sector", func(t *testing.T) {
		_, ok := table.Lookup(id.SectorHealthcare, "PSD2")
		assert.False(t, ok)
	})
}

func TestRegisterRejections(t *testing.T) {
	t.Run("after freeze", func(t *testing.T) {
		table := NewTable()
		table.Freeze()
		err := table.Register(id.SectorFinancial, "PSD2", passEvaluator())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("duplicate binding", func(t *testing.T) {
		table := NewTable()
		require.NoError(t, table.Register(id.SectorFinancial, "PSD2", passEvaluator()))
		err := table.Register(id.SectorFinancial, "PSD2", passEvaluator())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("nil evaluator", func(t *testing.T) {
		table := NewTable()
		require.Error(t, table.Register(id.SectorFinancial, "PSD2", nil))
	})

	t.Run("unknown sector", func(t *testing.T) {
		table := NewTable()
		require.Error(t, table.Register(id.Sector("RETAIL"), "PSD2", passEvaluator()))
	})
}

func TestBound(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.Register(id.SectorHealthcare, "HIPAA", passEvaluator()))
	require.NoError(t, table.Register(id.SectorFinancial, "PSD2", passEvaluator()))
	table.Freeze()

	assert.Equal(t, []string{"FINANCIAL/PSD2", "HEALTHCARE/HIPAA"}, table.Bound())
}
