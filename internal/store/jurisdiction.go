package store

import (
	"context"
	"fmt"

	"github.com/noah-isme/backend-levy/internal/tax"
)

// LoadTerritorySet reads the jurisdiction reference table and returns the
// set of codes marked as special territories.
func (s *Store) LoadTerritorySet(ctx context.Context) (tax.TerritorySet, error) {
	const query = `SELECT code FROM jurisdictions WHERE special_territory`

	rows, err := s.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: load territories: %w", err)
	}
	defer rows.Close()

	set := tax.TerritorySet{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("store: scan territory: %w", err)
		}
		set[code] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate territories: %w", err)
	}
	return set, nil
}
