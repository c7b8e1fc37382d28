package tax

import (
	"context"
	"time"
)

// ResolvedConfiguration bundles the effective configuration with the
// prerequisite lookups performed along the way.
type ResolvedConfiguration struct {
	Config       *TaxConfiguration
	Code         *ClassificationCode
	BusinessType *BusinessTypeProfile
}

// Resolver finds the single applicable configuration for a calculation.
// Absence is an error, never a default: substituting a rate would misstate
// a legal tax liability.
type Resolver struct {
	Codes         ClassificationCodeStore
	BusinessTypes BusinessTypeStore
	Configs       ConfigurationStore
	// Cache is optional; when set, resolved configurations are served from
	// it for their short TTL.
	Cache *ConfigCache
}

// Resolve performs the prerequisite code and business-type lookups and
// then the effective-configuration query for the given date.
func (r *Resolver) Resolve(ctx context.Context, tenantID, code string, businessType BusinessType, jurisdictionScope string, date time.Time) (*ResolvedConfiguration, error) {
	cc, err := r.Codes.FindValidForDate(ctx, tenantID, code, date)
	if err != nil {
		return nil, err
	}
	if cc == nil {
		return nil, NewCodeNotFoundError(code, date)
	}

	profile, err := r.BusinessTypes.FindActive(ctx, tenantID, businessType)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, NewBusinessTypeNotFoundError(businessType)
	}

	if cfg, ok := r.Cache.Get(ctx, tenantID, code, businessType, jurisdictionScope, date); ok {
		return &ResolvedConfiguration{Config: cfg, Code: cc, BusinessType: profile}, nil
	}

	cfg, err := r.Configs.FindEffective(ctx, tenantID, code, businessType, jurisdictionScope, date)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, NewConfigurationNotFoundError(code, businessType, date)
	}
	r.Cache.Set(ctx, tenantID, code, businessType, jurisdictionScope, date, cfg)

	return &ResolvedConfiguration{Config: cfg, Code: cc, BusinessType: profile}, nil
}
