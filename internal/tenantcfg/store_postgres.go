package tenantcfg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "complia/pkg/domain"
	"complia/pkg/platform/sentinel"
)

// PostgresStore persists tenant validator configurations.
//
// Schema:
//
//	CREATE TABLE tenant_validator_configs (
//	    tenant_id  UUID PRIMARY KEY,
//	    sectors    TEXT[] NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, tenantID id.TenantID) (*Config, error) {
	query := `
		SELECT tenant_id, sectors, updated_at
		FROM tenant_validator_configs
		WHERE tenant_id = $1
	`

	var (
		tid     uuid.UUID
		sectors pq.StringArray
		cfg     Config
	)
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(tenantID)).Scan(&tid, &sectors, &cfg.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query tenant config: %w", err)
	}

	cfg.TenantID = id.TenantID(tid)
	cfg.Sectors = make([]id.Sector, 0, len(sectors))
	for _, s := range sectors {
		cfg.Sectors = append(cfg.Sectors, id.Sector(s))
	}
	return &cfg, nil
}

// Put upserts the whole row, so the sector set is replaced atomically and
// concurrent writers resolve last-writer-wins without partial merges.
func (s *PostgresStore) Put(ctx context.Context, cfg *Config) error {
	sectors := make(pq.StringArray, 0, len(cfg.Sectors))
	for _, sec := range cfg.Sectors {
		sectors = append(sectors, sec.String())
	}

	query := `
		INSERT INTO tenant_validator_configs (tenant_id, sectors, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id) DO UPDATE
		SET sectors = EXCLUDED.sectors, updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, uuid.UUID(cfg.TenantID), sectors, cfg.UpdatedAt); err != nil {
		return fmt.Errorf("upsert tenant config: %w", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
