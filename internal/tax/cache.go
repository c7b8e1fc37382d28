package tax

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-levy/internal/cache"
	"github.com/noah-isme/backend-levy/internal/obs"
)

// ConfigCache is a short-TTL cache for resolved configurations. It is a
// pure performance optimisation: a miss or an error falls through to the
// store, and keys are tenant-scoped and day-bucketed so a cached rate can
// never outlive its effective window or cross tenants.
type ConfigCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// Get returns the cached configuration for the lookup tuple, reporting
// whether the key existed. Redis errors degrade to a miss.
func (c *ConfigCache) Get(ctx context.Context, tenantID, code string, businessType BusinessType, scope string, date time.Time) (*TaxConfiguration, bool) {
	if c == nil || c.Client == nil {
		return nil, false
	}
	key := cache.KeyTaxConfig(tenantID, code, string(businessType), scope, date)
	data, err := c.Client.Get(ctx, key).Bytes()
	if err != nil {
		obs.ObserveConfigCache("miss")
		return nil, false
	}
	var cfg TaxConfiguration
	if err := json.Unmarshal(data, &cfg); err != nil {
		obs.ObserveConfigCache("miss")
		return nil, false
	}
	obs.ObserveConfigCache("hit")
	return &cfg, true
}

// Set stores the configuration under the lookup tuple with the configured
// TTL. Errors are swallowed: the cache must never fail a calculation.
func (c *ConfigCache) Set(ctx context.Context, tenantID, code string, businessType BusinessType, scope string, date time.Time, cfg *TaxConfiguration) {
	if c == nil || c.Client == nil || cfg == nil || c.TTL <= 0 {
		return
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return
	}
	key := cache.KeyTaxConfig(tenantID, code, string(businessType), scope, date)
	_ = c.Client.Set(ctx, key, data, c.TTL).Err()
}
