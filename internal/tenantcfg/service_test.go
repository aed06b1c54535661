package tenantcfg

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complia/internal/registry"
	id "complia/pkg/domain"
	dErrors "complia/pkg/domain-errors"
	"complia/pkg/requestcontext"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(NewInMemory(), registry.NewBuiltin(), nil)
}

func TestSetValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	tenantID := id.TenantID(uuid.New())

	t.Run("rejects empty sector set", func(t *testing.T) {
		_, err := svc.Set(ctx, tenantID, nil)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects unknown sector", func(t *testing.T) {
		_, err := svc.Set(ctx, tenantID, []id.Sector{id.Sector("RETAIL")})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects duplicate sectors", func(t *testing.T) {
		_, err := svc.Set(ctx, tenantID, []id.Sector{id.SectorFinancial, id.SectorFinancial})
		require.Error(t, err)
	})

	t.Run("rejects nil tenant id", func(t *testing.T) {
		_, err := svc.Set(ctx, id.TenantID{}, []id.Sector{id.SectorFinancial})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestSetAndGet(t *testing.T) {
	svc := newService(t)
	tenantID := id.TenantID(uuid.New())
	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	cfg, err := svc.Set(ctx, tenantID, []id.Sector{id.SectorHealthcare, id.SectorFinancial})
	require.NoError(t, err)
	assert.Equal(t, now, cfg.UpdatedAt)

	got, err := svc.Get(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, []id.Sector{id.SectorHealthcare, id.SectorFinancial}, got.Sectors)
	assert.True(t, got.HasSector(id.SectorFinancial))
	assert.False(t, got.HasSector(id.SectorARVR))
}

func TestGetUnknownTenant(t *testing.T) {
	svc := newService(t)
	_, err := svc.Get(context.Background(), id.TenantID(uuid.New()))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestActiveSectors(t *testing.T) {
	svc := newService(t)
	tenantID := id.TenantID(uuid.New())
	ctx := context.Background()

	_, err := svc.Set(ctx, tenantID, []id.Sector{id.SectorGovernment})
	require.NoError(t, err)

	sectors, err := svc.ActiveSectors(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, []id.Sector{id.SectorGovernment}, sectors)
}
