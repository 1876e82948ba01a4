// Package settings resolves the business identity printed on receipts,
// returns and audit exports. Profile storage itself belongs to the
// settings subsystem upstream; this service only reads it, falling back
// to the configured defaults when a tenant has no stored profile.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Profile is the business identity block.
type Profile struct {
	Name        string
	TaxNumber   string
	Address     string
	City        string
	CountryCode string
	Phone       string
}

// Service reads business profiles with a config-supplied fallback.
type Service struct {
	pool     *pgxpool.Pool
	fallback Profile
	logger   *slog.Logger
}

// NewService creates a settings service. fallback is returned whenever
// a tenant has no stored profile.
func NewService(pool *pgxpool.Pool, fallback Profile, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{pool: pool, fallback: fallback, logger: logger}
}

// GetProfile returns the tenant's business profile, or the configured
// fallback when none is stored.
func (s *Service) GetProfile(ctx context.Context, tenantID uuid.UUID) (Profile, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT name, tax_number, address, city, country_code, phone
		FROM business_profiles
		WHERE tenant_id = $1
	`, tenantID)

	var p Profile
	err := row.Scan(&p.Name, &p.TaxNumber, &p.Address, &p.City, &p.CountryCode, &p.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Debug("no business profile stored, using fallback",
				"tenant_id", tenantID.String(),
			)
			return s.fallback, nil
		}
		return Profile{}, fmt.Errorf("loading business profile for %s: %w", tenantID, err)
	}

	return p, nil
}

// Upsert stores or replaces a tenant's business profile.
func (s *Service) Upsert(ctx context.Context, tenantID uuid.UUID, p Profile) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO business_profiles (tenant_id, name, tax_number, address, city, country_code, phone, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (tenant_id)
		DO UPDATE SET name = $2, tax_number = $3, address = $4, city = $5,
			country_code = $6, phone = $7, updated_at = now()
	`, tenantID, p.Name, p.TaxNumber, p.Address, p.City, p.CountryCode, p.Phone)
	if err != nil {
		return fmt.Errorf("upserting business profile for %s: %w", tenantID, err)
	}
	return nil
}
