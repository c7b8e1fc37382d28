package tax

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Classification is the jurisdiction-dependent branch a transaction falls
// into. It decides which components of a configuration apply.
type Classification string

const (
	SameJurisdiction  Classification = "SAME_JURISDICTION"
	SpecialTerritory  Classification = "SPECIAL_TERRITORY"
	CrossJurisdiction Classification = "CROSS_JURISDICTION"
	Export            Classification = "EXPORT"
)

// Label returns the human-readable name used in calculation notes.
func (c Classification) Label() string {
	switch c {
	case SameJurisdiction:
		return "Intra-jurisdiction"
	case SpecialTerritory:
		return "Union territory"
	case CrossJurisdiction:
		return "Inter-jurisdiction"
	case Export:
		return "Export"
	}
	return string(c)
}

// BusinessType categorises the transaction party for rate selection.
type BusinessType string

const (
	BusinessB2B         BusinessType = "B2B"
	BusinessB2C         BusinessType = "B2C"
	BusinessComposition BusinessType = "COMPOSITION"
	BusinessExport      BusinessType = "EXPORT"
)

// ParseBusinessType validates a caller-supplied business type string.
func ParseBusinessType(value string) (BusinessType, bool) {
	switch BusinessType(value) {
	case BusinessB2B, BusinessB2C, BusinessComposition, BusinessExport:
		return BusinessType(value), true
	}
	return "", false
}

// ComponentKind identifies one of the named lines in a tax breakdown.
type ComponentKind string

const (
	// KindCentral and KindState are the two split components applied when
	// both parties share a jurisdiction.
	KindCentral ComponentKind = "CENTRAL"
	KindState   ComponentKind = "STATE"
	// KindIntegrated is the single unified component for cross-jurisdiction
	// transactions (and the composition flat rate).
	KindIntegrated ComponentKind = "INTEGRATED"
	// KindTerritory replaces the state share inside special territories.
	KindTerritory ComponentKind = "TERRITORY"
	// KindSurcharge covers both ad-valorem and fixed per-unit surcharges.
	KindSurcharge ComponentKind = "SURCHARGE"
)

// ClassificationCode is a node in the hierarchical product/service
// classification catalog. Read-only to this engine.
type ClassificationCode struct {
	Code              string     `json:"code"`
	Description       string     `json:"description"`
	ParentCode        string     `json:"parentCode,omitempty"`
	Level             int16      `json:"level"`
	UnitOfMeasure     string     `json:"unitOfMeasure,omitempty"`
	ExemptionEligible bool       `json:"exemptionEligible"`
	EffectiveFrom     time.Time  `json:"effectiveFrom"`
	EffectiveTo       *time.Time `json:"effectiveTo,omitempty"`
	Active            bool       `json:"active"`
}

// ValidFor reports whether the code is active and inside its effective window.
func (c *ClassificationCode) ValidFor(date time.Time) bool {
	if c == nil || !c.Active {
		return false
	}
	day := DateOnly(date)
	if day.Before(DateOnly(c.EffectiveFrom)) {
		return false
	}
	return c.EffectiveTo == nil || !day.After(DateOnly(*c.EffectiveTo))
}

// BusinessTypeProfile is a named transaction-party category.
type BusinessTypeProfile struct {
	Type        BusinessType `json:"type"`
	DisplayName string       `json:"displayName"`
	Active      bool         `json:"active"`
}

// ConditionKind discriminates the value stored in a Condition.
type ConditionKind uint8

const (
	ConditionNumber ConditionKind = iota + 1
	ConditionFlag
	ConditionTag
)

// Condition is one typed value from a configuration's special-conditions
// map. The persisted form is plain JSON (number, boolean, or string); the
// closed set of kinds keeps evaluation exhaustive.
type Condition struct {
	Kind   ConditionKind
	Number decimal.Decimal
	Flag   bool
	Tag    string
}

// NumberCondition builds a numeric condition value.
func NumberCondition(n decimal.Decimal) Condition {
	return Condition{Kind: ConditionNumber, Number: n}
}

// FlagCondition builds a boolean condition value.
func FlagCondition(v bool) Condition {
	return Condition{Kind: ConditionFlag, Flag: v}
}

// TagCondition builds a string condition value.
func TagCondition(tag string) Condition {
	return Condition{Kind: ConditionTag, Tag: tag}
}

// MarshalJSON encodes the condition as its bare JSON value.
func (c Condition) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case ConditionNumber:
		return c.Number.MarshalJSON()
	case ConditionFlag:
		return json.Marshal(c.Flag)
	case ConditionTag:
		return json.Marshal(c.Tag)
	}
	return nil, fmt.Errorf("tax: unknown condition kind %d", c.Kind)
}

// UnmarshalJSON decodes a bare JSON number, boolean, or string.
func (c *Condition) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("tax: empty condition value")
	}
	switch trimmed[0] {
	case 't', 'f':
		var flag bool
		if err := json.Unmarshal(trimmed, &flag); err != nil {
			return err
		}
		*c = FlagCondition(flag)
		return nil
	case '"':
		var tag string
		if err := json.Unmarshal(trimmed, &tag); err != nil {
			return err
		}
		*c = TagCondition(tag)
		return nil
	default:
		var n decimal.Decimal
		if err := n.UnmarshalJSON(trimmed); err != nil {
			return fmt.Errorf("tax: condition value %q is not a number, boolean, or string", trimmed)
		}
		*c = NumberCondition(n)
		return nil
	}
}

// CompareOp enumerates the comparison operators an exemption rule may use.
type CompareOp string

const (
	CompareGreaterThan CompareOp = "GREATER_THAN"
	CompareLessThan    CompareOp = "LESS_THAN"
	CompareEquals      CompareOp = "EQUALS"
)

// ExemptionRule is one entry of a configuration's exemption-criteria map:
// either an unconditional flag or a threshold comparison.
type ExemptionRule struct {
	Flag      bool            `json:"flag,omitempty"`
	Operator  CompareOp       `json:"operator,omitempty"`
	Threshold decimal.Decimal `json:"threshold"`
}

// Applies reports whether the rule matches. Comparison rules require a
// value; flag rules ignore it.
func (r ExemptionRule) Applies(value *decimal.Decimal) bool {
	if r.Operator == "" {
		return r.Flag
	}
	if value == nil {
		return false
	}
	switch r.Operator {
	case CompareGreaterThan:
		return value.GreaterThan(r.Threshold)
	case CompareLessThan:
		return value.LessThan(r.Threshold)
	case CompareEquals:
		return value.Equal(r.Threshold)
	}
	return false
}

// TaxConfiguration is the versioned rate-bearing record resolved per
// calculation. Never mutated by the engine.
type TaxConfiguration struct {
	ID                 string       `json:"id"`
	ClassificationCode string       `json:"classificationCode"`
	BusinessType       BusinessType `json:"businessType"`
	// JurisdictionScope narrows the configuration to one jurisdiction;
	// empty means it applies everywhere.
	JurisdictionScope string `json:"jurisdictionScope,omitempty"`

	TotalRate        decimal.Decimal  `json:"totalRate"`
	CentralRate      *decimal.Decimal `json:"centralRate,omitempty"`
	StateRate        *decimal.Decimal `json:"stateRate,omitempty"`
	IntegratedRate   *decimal.Decimal `json:"integratedRate,omitempty"`
	TerritoryRate    *decimal.Decimal `json:"territoryRate,omitempty"`
	SurchargeRate    *decimal.Decimal `json:"surchargeRate,omitempty"`
	SurchargePerUnit *decimal.Decimal `json:"surchargePerUnit,omitempty"`

	EffectiveFrom time.Time  `json:"effectiveFrom"`
	EffectiveTo   *time.Time `json:"effectiveTo,omitempty"`

	ReverseCharge       bool             `json:"reverseCharge"`
	CompositionEligible bool             `json:"compositionEligible"`
	CompositionRate     *decimal.Decimal `json:"compositionRate,omitempty"`

	SpecialConditions map[string]Condition       `json:"specialConditions,omitempty"`
	ExemptionCriteria map[string]ExemptionRule   `json:"exemptionCriteria,omitempty"`
	ThresholdLimits   map[string]decimal.Decimal `json:"thresholdLimits,omitempty"`

	Description string `json:"description,omitempty"`
	Active      bool   `json:"active"`
}

// ValidFor reports whether date falls inside the effective window
// (inclusive on both ends).
func (c *TaxConfiguration) ValidFor(date time.Time) bool {
	if c == nil || !c.Active {
		return false
	}
	day := DateOnly(date)
	if day.Before(DateOnly(c.EffectiveFrom)) {
		return false
	}
	return c.EffectiveTo == nil || !day.After(DateOnly(*c.EffectiveTo))
}

// RateFor returns the nominal combined rate for a classification.
func (c *TaxConfiguration) RateFor(class Classification) decimal.Decimal {
	switch class {
	case SameJurisdiction:
		return derefOrZero(c.CentralRate).Add(derefOrZero(c.StateRate))
	case SpecialTerritory:
		return derefOrZero(c.CentralRate).Add(derefOrZero(c.TerritoryRate))
	case CrossJurisdiction:
		if c.IntegratedRate != nil {
			return *c.IntegratedRate
		}
		return c.TotalRate
	case Export:
		return decimal.Zero
	}
	return c.TotalRate
}

// EffectiveSurchargeRate returns the ad-valorem surcharge rate, zero when
// none is configured.
func (c *TaxConfiguration) EffectiveSurchargeRate() decimal.Decimal {
	return derefOrZero(c.SurchargeRate)
}

// EffectiveSurchargePerUnit returns the fixed per-unit surcharge amount,
// zero when none is configured.
func (c *TaxConfiguration) EffectiveSurchargePerUnit() decimal.Decimal {
	return derefOrZero(c.SurchargePerUnit)
}

// ThresholdLimit looks up a named threshold limit.
func (c *TaxConfiguration) ThresholdLimit(name string) (decimal.Decimal, bool) {
	limit, ok := c.ThresholdLimits[name]
	return limit, ok
}

// ExemptionApplies evaluates the named exemption criterion against an
// optional value.
func (c *TaxConfiguration) ExemptionApplies(name string, value *decimal.Decimal) bool {
	rule, ok := c.ExemptionCriteria[name]
	if !ok {
		return false
	}
	return rule.Applies(value)
}

// Component is one named line of a calculation result.
type Component struct {
	Kind       ComponentKind   `json:"kind"`
	Name       string          `json:"name"`
	Rate       decimal.Decimal `json:"rate"`
	Amount     decimal.Decimal `json:"amount"`
	BaseAmount decimal.Decimal `json:"baseAmount"`
	// Fixed marks per-unit amounts that carry no percentage rate.
	Fixed       bool   `json:"fixed"`
	Description string `json:"description,omitempty"`
}

// Result is the itemised outcome of a single calculation.
type Result struct {
	BaseAmount         decimal.Decimal `json:"baseAmount"`
	TotalTaxAmount     decimal.Decimal `json:"totalTaxAmount"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	ClassificationCode string          `json:"classificationCode"`
	Classification     Classification  `json:"classification"`
	Components         []Component     `json:"components"`
	CalculatedAt       time.Time       `json:"calculatedAt"`
	ReverseCharge      bool            `json:"reverseCharge"`
	// ExemptionReason is informational; matching an exemption predicate
	// does not zero out the computed components.
	ExemptionReason string   `json:"exemptionReason,omitempty"`
	Notes           []string `json:"notes"`
}

// BulkResult aggregates per-item results, including downgraded failures.
type BulkResult struct {
	Items           []Result        `json:"items"`
	TotalBaseAmount decimal.Decimal `json:"totalBaseAmount"`
	TotalTaxAmount  decimal.Decimal `json:"totalTaxAmount"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	CalculatedAt    time.Time       `json:"calculatedAt"`
}

// DateOnly truncates a timestamp to its UTC calendar day. Effective-window
// comparisons operate on days, not instants.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func derefOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
