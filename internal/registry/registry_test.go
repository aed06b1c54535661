package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "complia/pkg/domain"
	dErrors "complia/pkg/domain-errors"
)

func TestBuiltinReferenceData(t *testing.T) {
	r := NewBuiltin()

	t.Run("every sector has at least one regulation", func(t *testing.T) {
		for _, s := range id.AllSectors() {
			assert.NotEmpty(t, r.RegulationsFor(s), "sector %s", s)
		}
	})

	t.Run("regulations come back in stable ID order", func(t *testing.T) {
		regs := r.RegulationsFor(id.SectorFinancial)
		for i := 1; i < len(regs); i++ {
			assert.Less(t, regs[i-1].ID, regs[i].ID)
		}
	})

	t.Run("jurisdiction index covers builtin markets", func(t *testing.T) {
		for _, j := range []string{"US", "EU", "Brazil", "Angola"} {
			assert.True(t, r.KnownJurisdiction(j), j)
		}
		assert.False(t, r.KnownJurisdiction("Mars"))
	})
}

func TestAdd(t *testing.T) {
	t.Run("rejects writes after freeze", func(t *testing.T) {
		r := New()
		r.Freeze()
		err := r.Add(Regulation{ID: "X", Sector: id.SectorFinancial, Jurisdictions: []string{"EU"}})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects duplicate IDs", func(t *testing.T) {
		r := New()
		reg := Regulation{ID: "X", Sector: id.SectorFinancial, Jurisdictions: []string{"EU"}}
		require.NoError(t, r.Add(reg))
		err := r.Add(reg)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("rejects empty jurisdiction set", func(t *testing.T) {
		r := New()
		err := r.Add(Regulation{ID: "X", Sector: id.SectorFinancial})
		require.Error(t, err)
	})

	t.Run("rejects unknown sector", func(t *testing.T) {
		r := New()
		err := r.Add(Regulation{ID: "X", Sector: id.Sector("RETAIL"), Jurisdictions: []string{"EU"}})
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	r := NewBuiltin()

	t.Run("accepts a valid triple", func(t *testing.T) {
		assert.NoError(t, r.Validate(id.SectorFinancial, "PSD2", "EU"))
	})

	t.Run("accepts empty jurisdiction", func(t *testing.T) {
		assert.NoError(t, r.Validate(id.SectorFinancial, "PSD2", ""))
	})

	t.Run("rejects unknown regulation", func(t *testing.T) {
		err := r.Validate(id.SectorFinancial, "MIFID9", "EU")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects sector mismatch", func(t *testing.T) {
		err := r.Validate(id.SectorHealthcare, "PSD2", "EU")
		require.Error(t, err)
	})

	t.Run("rejects jurisdiction where regulation is not in force", func(t *testing.T) {
		err := r.Validate(id.SectorFinancial, "PSD2", "Brazil")
		require.Error(t, err)
	})
}
