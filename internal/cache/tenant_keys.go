package cache

import (
	"time"

	"github.com/noah-isme/backend-levy/internal/tenant"
)

// KeyTaxConfig returns the per-tenant cache key for a resolved tax
// configuration. The effective date is bucketed to the UTC day so entries
// cannot leak across an effective-window boundary, and the tenant prefix
// guarantees entries are never shared across tenants.
func KeyTaxConfig(tenantID, code, businessType, scope string, date time.Time) string {
	key := "taxcfg:" + code + ":" + businessType + ":" + scope + ":" + date.UTC().Format(time.DateOnly)
	return tenant.PrefixKey(tenantID, key)
}
