package tax

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-levy/internal/obs"
)

// Named exemption predicates evaluated against a configuration's maps.
const (
	ThresholdExemption = "EXEMPTION_THRESHOLD"
	ThresholdQuantity  = "QUANTITY_THRESHOLD"
	ExemptionSmallBiz  = "SMALL_BUSINESS"
	ExemptionEssential = "ESSENTIAL_GOODS"
)

// Service is the public entry point of the engine: it validates inputs,
// resolves the configuration, classifies the transaction, computes
// components, and assembles the result. Stateless and safe for concurrent
// use.
type Service struct {
	Resolver    *Resolver
	Territories TerritoryLookup
	Logger      zerolog.Logger
	// Now overrides the clock in tests; defaults to time.Now.
	Now func() time.Time
}

// CalculateInput carries one calculation request. Zero values select
// defaults: quantity 1, business type B2B, effective date today.
type CalculateInput struct {
	TenantID                string
	ClassificationCode      string
	BaseAmount              decimal.Decimal
	Quantity                int64
	BusinessType            BusinessType
	SourceJurisdiction      string
	DestinationJurisdiction string
	EffectiveDate           time.Time
}

// Calculate runs one calculation. All failures surface to the caller
// unmodified; there is no partial success for a single item.
func (s *Service) Calculate(ctx context.Context, in CalculateInput) (*Result, error) {
	start := s.now()

	if !in.BaseAmount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	quantity := in.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	businessType := in.BusinessType
	if businessType == "" {
		businessType = BusinessB2B
	}
	date := in.EffectiveDate
	if date.IsZero() {
		date = start
	}

	scope := jurisdictionScope(in.SourceJurisdiction, in.DestinationJurisdiction)
	resolved, err := s.Resolver.Resolve(ctx, in.TenantID, in.ClassificationCode, businessType, scope, date)
	if err != nil {
		obs.ObserveCalculation("unresolved", "error")
		return nil, err
	}
	cfg := resolved.Config

	classification := Classify(in.SourceJurisdiction, in.DestinationJurisdiction, businessType, s.Territories)
	components := Components(cfg, classification, in.BaseAmount, quantity, businessType)

	totalTax := decimal.Zero
	for _, component := range components {
		totalTax = totalTax.Add(component.Amount)
	}

	exemption := exemptionReason(cfg, in.BaseAmount, quantity)

	result := &Result{
		BaseAmount:         in.BaseAmount,
		TotalTaxAmount:     totalTax,
		TotalAmount:        in.BaseAmount.Add(totalTax),
		ClassificationCode: in.ClassificationCode,
		Classification:     classification,
		Components:         components,
		CalculatedAt:       s.now(),
		ReverseCharge:      cfg.ReverseCharge,
		ExemptionReason:    exemption,
		Notes:              buildNotes(cfg, classification, exemption),
	}

	obs.ObserveCalculation(string(classification), "ok")
	if obs.TaxCalculationDuration != nil {
		obs.TaxCalculationDuration.Observe(obs.DurationMillis(s.now().Sub(start)))
	}
	s.Logger.Debug().
		Str("tenant_id", in.TenantID).
		Str("classification_code", in.ClassificationCode).
		Str("classification", string(classification)).
		Str("business_type", string(businessType)).
		Str("total_tax", totalTax.String()).
		Msg("tax_calculated")

	return result, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// jurisdictionScope picks the jurisdiction hint for configuration
// resolution: the destination when known, otherwise the source.
func jurisdictionScope(source, destination string) string {
	if destination != "" {
		return destination
	}
	return source
}

// exemptionReason evaluates the exemption predicates in a fixed order and
// returns the first matching reason. Informational only: the computed
// components stand either way, callers decide how to apply the exemption.
func exemptionReason(cfg *TaxConfiguration, base decimal.Decimal, quantity int64) string {
	if limit, ok := cfg.ThresholdLimit(ThresholdExemption); ok && base.LessThanOrEqual(limit) {
		return "Amount below exemption threshold"
	}
	if limit, ok := cfg.ThresholdLimit(ThresholdQuantity); ok && decimal.NewFromInt(quantity).LessThanOrEqual(limit) {
		return "Quantity below exemption threshold"
	}
	if cfg.ExemptionApplies(ExemptionSmallBiz, &base) {
		return "Small business exemption"
	}
	if cfg.ExemptionApplies(ExemptionEssential, nil) {
		return "Essential goods exemption"
	}
	return ""
}

func buildNotes(cfg *TaxConfiguration, classification Classification, exemption string) []string {
	notes := []string{"Transaction type: " + classification.Label()}
	if cfg.ReverseCharge {
		notes = append(notes, "Reverse charge applicable - tax payable by recipient")
	}
	if cfg.CompositionEligible {
		notes = append(notes, "Eligible for composition scheme")
	}
	if exemption != "" {
		notes = append(notes, "Exemption applied: "+exemption)
	}
	if cfg.Description != "" {
		notes = append(notes, "Note: "+cfg.Description)
	}
	return notes
}
