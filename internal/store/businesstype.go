package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/noah-isme/backend-levy/internal/tax"
)

// FindActive returns the active business type profile, or (nil, nil) when
// the type is unknown or disabled.
func (s *Store) FindActive(ctx context.Context, tenantID string, businessType tax.BusinessType) (*tax.BusinessTypeProfile, error) {
	const query = `
		SELECT type, display_name, active
		FROM tax_business_types
		WHERE tenant_id = $1 AND type = $2 AND active`

	var profile tax.BusinessTypeProfile
	err := s.Pool.QueryRow(ctx, query, tenantID, string(businessType)).Scan(
		&profile.Type,
		&profile.DisplayName,
		&profile.Active,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: find business type: %w", err)
	}
	return &profile, nil
}
