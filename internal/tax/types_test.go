package tax

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigurationValidForWindow(t *testing.T) {
	to := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	cfg := &TaxConfiguration{
		EffectiveFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EffectiveTo:   &to,
		Active:        true,
	}

	// Inclusive on both ends, compared by calendar day.
	require.True(t, cfg.ValidFor(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.True(t, cfg.ValidFor(time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)))
	require.True(t, cfg.ValidFor(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)))
	require.False(t, cfg.ValidFor(time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC)))
	require.False(t, cfg.ValidFor(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestConfigurationValidForOpenEnded(t *testing.T) {
	cfg := &TaxConfiguration{
		EffectiveFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Active:        true,
	}
	require.True(t, cfg.ValidFor(time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)))

	cfg.Active = false
	require.False(t, cfg.ValidFor(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
}

func TestClassificationCodeValidFor(t *testing.T) {
	cc := &ClassificationCode{
		Code:          "1001",
		EffectiveFrom: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Active:        true,
	}
	require.True(t, cc.ValidFor(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.False(t, cc.ValidFor(time.Date(2019, 12, 31, 0, 0, 0, 0, time.UTC)))

	var nilCode *ClassificationCode
	require.False(t, nilCode.ValidFor(time.Now()))
}

func TestConditionJSONRoundTrip(t *testing.T) {
	raw := []byte(`{"MIN_ORDER": 250.5, "SEASONAL": true, "REGION_TAG": "coastal"}`)

	var conditions map[string]Condition
	require.NoError(t, json.Unmarshal(raw, &conditions))

	require.Equal(t, ConditionNumber, conditions["MIN_ORDER"].Kind)
	require.True(t, conditions["MIN_ORDER"].Number.Equal(dec("250.5")))
	require.Equal(t, ConditionFlag, conditions["SEASONAL"].Kind)
	require.True(t, conditions["SEASONAL"].Flag)
	require.Equal(t, ConditionTag, conditions["REGION_TAG"].Kind)
	require.Equal(t, "coastal", conditions["REGION_TAG"].Tag)

	out, err := json.Marshal(conditions)
	require.NoError(t, err)

	var again map[string]Condition
	require.NoError(t, json.Unmarshal(out, &again))
	require.Equal(t, conditions["REGION_TAG"], again["REGION_TAG"])
	require.True(t, conditions["MIN_ORDER"].Number.Equal(again["MIN_ORDER"].Number))
}

func TestConditionRejectsInvalidJSON(t *testing.T) {
	var c Condition
	require.Error(t, c.UnmarshalJSON([]byte(`[1,2]`)))
	require.Error(t, c.UnmarshalJSON([]byte(``)))
}

func TestExemptionRuleApplies(t *testing.T) {
	flag := ExemptionRule{Flag: true}
	require.True(t, flag.Applies(nil))

	lessThan := ExemptionRule{Operator: CompareLessThan, Threshold: dec("1000")}
	v := dec("999")
	require.True(t, lessThan.Applies(&v))
	v = dec("1000")
	require.False(t, lessThan.Applies(&v))
	require.False(t, lessThan.Applies(nil), "comparison rules need a value")

	equals := ExemptionRule{Operator: CompareEquals, Threshold: dec("100")}
	v = dec("100.000")
	require.True(t, equals.Applies(&v))

	greater := ExemptionRule{Operator: CompareGreaterThan, Threshold: dec("10")}
	v = dec("10.01")
	require.True(t, greater.Applies(&v))
}

func TestRateFor(t *testing.T) {
	cfg := standardConfig()
	require.True(t, cfg.RateFor(SameJurisdiction).Equal(dec("5.0")))
	require.True(t, cfg.RateFor(SpecialTerritory).Equal(dec("5.0")))
	require.True(t, cfg.RateFor(CrossJurisdiction).Equal(dec("5.0")))
	require.True(t, cfg.RateFor(Export).IsZero())

	cfg.IntegratedRate = nil
	cfg.TotalRate = dec("12")
	require.True(t, cfg.RateFor(CrossJurisdiction).Equal(dec("12")))
}
