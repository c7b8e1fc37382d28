package tax

import (
	"context"
	"strings"
	"time"
)

// The engine reads catalog, business-type, and configuration data through
// these collaborator interfaces; it never owns persistence. Every method
// takes an explicit tenant identifier, there is no ambient tenant state.

// ClassificationCodeStore looks up catalog entries valid on a date.
// Absence is reported as (nil, nil).
type ClassificationCodeStore interface {
	FindValidForDate(ctx context.Context, tenantID, code string, date time.Time) (*ClassificationCode, error)
}

// BusinessTypeStore looks up active business-type profiles.
// Absence is reported as (nil, nil).
type BusinessTypeStore interface {
	FindActive(ctx context.Context, tenantID string, businessType BusinessType) (*BusinessTypeProfile, error)
}

// ConfigurationStore returns the single best effective configuration for
// the inputs, owning the most-specific-scope-then-most-recent tie-break.
// Absence is reported as (nil, nil).
type ConfigurationStore interface {
	FindEffective(ctx context.Context, tenantID, code string, businessType BusinessType, jurisdictionScope string, date time.Time) (*TaxConfiguration, error)
}

// TerritoryLookup answers whether a jurisdiction code is a special
// territory. Infallible: the classifier has no failure modes.
type TerritoryLookup interface {
	IsSpecialTerritory(code string) bool
}

// TerritorySet is an in-memory TerritoryLookup over uppercase codes.
type TerritorySet map[string]struct{}

// NewTerritorySet builds a set from jurisdiction codes, normalising case.
func NewTerritorySet(codes ...string) TerritorySet {
	set := make(TerritorySet, len(codes))
	for _, code := range codes {
		trimmed := strings.ToUpper(strings.TrimSpace(code))
		if trimmed != "" {
			set[trimmed] = struct{}{}
		}
	}
	return set
}

// IsSpecialTerritory implements TerritoryLookup.
func (s TerritorySet) IsSpecialTerritory(code string) bool {
	_, ok := s[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// DefaultSpecialTerritories covers the union territories of the reference
// jurisdiction scheme. Deployments with a jurisdiction table load the
// authoritative set at startup instead.
var DefaultSpecialTerritories = NewTerritorySet("AN", "CH", "DD", "DN", "LD")
