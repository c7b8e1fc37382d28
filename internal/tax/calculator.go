package tax

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// percentOf computes base*rate/100 at scale 4, rounding half up. The scale
// and mode are a contract of the engine, not an implementation detail:
// downstream totals must reconcile to the smallest currency unit in audits.
func percentOf(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate).DivRound(hundred, 4)
}

// Components derives the ordered component list for one calculation. Pure
// over its inputs; returns an empty (non-nil) slice for zero-rated cases.
//
// Order is fixed: standard components by classification, then the
// ad-valorem surcharge, then the fixed per-unit surcharge. A composition
// flat rate short-circuits everything else.
func Components(cfg *TaxConfiguration, class Classification, base decimal.Decimal, quantity int64, businessType BusinessType) []Component {
	if businessType == BusinessComposition && cfg.CompositionRate != nil {
		rate := *cfg.CompositionRate
		return []Component{{
			Kind:        KindIntegrated,
			Name:        "Tax (Composition)",
			Rate:        rate,
			Amount:      percentOf(base, rate),
			BaseAmount:  base,
			Description: "Composition scheme flat rate",
		}}
	}

	components := make([]Component, 0, 4)
	appendPercent := func(kind ComponentKind, name, description string, rate decimal.Decimal) {
		components = append(components, Component{
			Kind:        kind,
			Name:        name,
			Rate:        rate,
			Amount:      percentOf(base, rate),
			BaseAmount:  base,
			Description: description,
		})
	}

	switch class {
	case SameJurisdiction:
		if cfg.CentralRate != nil {
			appendPercent(KindCentral, "Central Tax", "Central share of the levy", *cfg.CentralRate)
		}
		if cfg.StateRate != nil {
			appendPercent(KindState, "State Tax", "State share of the levy", *cfg.StateRate)
		}
	case SpecialTerritory:
		if cfg.CentralRate != nil {
			appendPercent(KindCentral, "Central Tax", "Central share of the levy", *cfg.CentralRate)
		}
		if cfg.TerritoryRate != nil {
			appendPercent(KindTerritory, "Territory Tax", "Union territory share of the levy", *cfg.TerritoryRate)
		}
	case Export:
		// Zero rated: no standard components.
	case CrossJurisdiction:
		fallthrough
	default:
		rate := cfg.TotalRate
		if cfg.IntegratedRate != nil {
			rate = *cfg.IntegratedRate
		}
		appendPercent(KindIntegrated, "Integrated Tax", "Unified cross-jurisdiction levy", rate)
	}

	if rate := cfg.EffectiveSurchargeRate(); rate.IsPositive() {
		appendPercent(KindSurcharge, "Surcharge", "Additional ad-valorem surcharge", rate)
	}

	if perUnit := cfg.EffectiveSurchargePerUnit(); perUnit.IsPositive() {
		components = append(components, Component{
			Kind:        KindSurcharge,
			Name:        "Surcharge (Per Unit)",
			Rate:        decimal.Zero,
			Amount:      perUnit.Mul(decimal.NewFromInt(quantity)),
			BaseAmount:  base,
			Fixed:       true,
			Description: "Fixed surcharge per unit",
		})
	}

	return components
}
