package tax

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-levy/internal/common"
)

type stubCodes struct {
	code *ClassificationCode
	err  error
}

func (s stubCodes) FindValidForDate(context.Context, string, string, time.Time) (*ClassificationCode, error) {
	return s.code, s.err
}

func (s stubCodes) Search(context.Context, string, string, int, int) ([]ClassificationCode, int64, error) {
	if s.code == nil {
		return nil, 0, nil
	}
	return []ClassificationCode{*s.code}, 1, nil
}

type stubBusinessTypes struct {
	profile *BusinessTypeProfile
	err     error
}

func (s stubBusinessTypes) FindActive(context.Context, string, BusinessType) (*BusinessTypeProfile, error) {
	return s.profile, s.err
}

type stubConfigs struct {
	cfg   *TaxConfiguration
	err   error
	calls int
}

func (s *stubConfigs) FindEffective(context.Context, string, string, BusinessType, string, time.Time) (*TaxConfiguration, error) {
	s.calls++
	return s.cfg, s.err
}

func testService(cfg *TaxConfiguration) (*Service, *stubConfigs) {
	configs := &stubConfigs{cfg: cfg}
	resolver := &Resolver{
		Codes: stubCodes{code: &ClassificationCode{
			Code:          "1001",
			Description:   "Wheat and meslin",
			EffectiveFrom: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			Active:        true,
		}},
		BusinessTypes: stubBusinessTypes{profile: &BusinessTypeProfile{Type: BusinessB2B, DisplayName: "Business to Business", Active: true}},
		Configs:       configs,
	}
	svc := &Service{
		Resolver:    resolver,
		Territories: DefaultSpecialTerritories,
		Logger:      zerolog.Nop(),
		Now:         func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
	return svc, configs
}

func TestCalculateSameJurisdiction(t *testing.T) {
	svc, _ := testService(standardConfig())

	result, err := svc.Calculate(context.Background(), CalculateInput{
		TenantID:                "acme",
		ClassificationCode:      "1001",
		BaseAmount:              dec("1000"),
		Quantity:                1,
		BusinessType:            BusinessB2B,
		SourceJurisdiction:      "MH",
		DestinationJurisdiction: "MH",
	})
	require.NoError(t, err)

	require.Equal(t, SameJurisdiction, result.Classification)
	require.Len(t, result.Components, 2)
	require.True(t, result.TotalTaxAmount.Equal(dec("50.0000")), "got %s", result.TotalTaxAmount)
	require.True(t, result.TotalAmount.Equal(dec("1050.0000")), "got %s", result.TotalAmount)
	require.Contains(t, result.Notes, "Transaction type: Intra-jurisdiction")
}

func TestCalculateTotalsReconcile(t *testing.T) {
	cfg := standardConfig()
	cfg.SurchargeRate = decPtr("1.0")
	cfg.SurchargePerUnit = decPtr("0.25")
	svc, _ := testService(cfg)

	result, err := svc.Calculate(context.Background(), CalculateInput{
		TenantID:                "acme",
		ClassificationCode:      "1001",
		BaseAmount:              dec("987.65"),
		Quantity:                4,
		BusinessType:            BusinessB2B,
		SourceJurisdiction:      "MH",
		DestinationJurisdiction: "KA",
	})
	require.NoError(t, err)

	sum := decimal.Zero
	for _, component := range result.Components {
		sum = sum.Add(component.Amount)
	}
	require.True(t, result.TotalTaxAmount.Equal(sum))
	require.True(t, result.TotalAmount.Equal(result.BaseAmount.Add(sum)))
}

func TestCalculateRejectsNonPositiveAmount(t *testing.T) {
	svc, _ := testService(standardConfig())

	_, err := svc.Calculate(context.Background(), CalculateInput{
		TenantID:           "acme",
		ClassificationCode: "1001",
		BaseAmount:         dec("0"),
	})
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Calculate(context.Background(), CalculateInput{
		TenantID:           "acme",
		ClassificationCode: "1001",
		BaseAmount:         dec("-5"),
	})
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestCalculateRejectsNegativeQuantity(t *testing.T) {
	svc, _ := testService(standardConfig())

	_, err := svc.Calculate(context.Background(), CalculateInput{
		TenantID:           "acme",
		ClassificationCode: "1001",
		BaseAmount:         dec("100"),
		Quantity:           -1,
	})
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCalculateDefaults(t *testing.T) {
	svc, _ := testService(standardConfig())

	// Zero quantity defaults to one, empty business type to B2B, zero date
	// to the service clock.
	result, err := svc.Calculate(context.Background(), CalculateInput{
		TenantID:           "acme",
		ClassificationCode: "1001",
		BaseAmount:         dec("100"),
	})
	require.NoError(t, err)
	require.Equal(t, CrossJurisdiction, result.Classification)
	require.True(t, result.TotalTaxAmount.Equal(dec("5.0000")))
}

func TestCalculateUnknownCode(t *testing.T) {
	svc, _ := testService(standardConfig())
	svc.Resolver.Codes = stubCodes{code: nil}

	_, err := svc.Calculate(context.Background(), CalculateInput{
		TenantID:           "acme",
		ClassificationCode: "0000",
		BaseAmount:         dec("100"),
	})
	require.Error(t, err)
	requireAppErrorCode(t, err, CodeClassificationNotFound)
}

func TestCalculateUnknownBusinessType(t *testing.T) {
	svc, _ := testService(standardConfig())
	svc.Resolver.BusinessTypes = stubBusinessTypes{profile: nil}

	_, err := svc.Calculate(context.Background(), CalculateInput{
		TenantID:           "acme",
		ClassificationCode: "1001",
		BaseAmount:         dec("100"),
	})
	requireAppErrorCode(t, err, CodeBusinessTypeNotFound)
}

func TestCalculateMissingConfiguration(t *testing.T) {
	svc, _ := testService(nil)

	_, err := svc.Calculate(context.Background(), CalculateInput{
		TenantID:           "acme",
		ClassificationCode: "1001",
		BaseAmount:         dec("100"),
	})
	requireAppErrorCode(t, err, CodeConfigurationNotFound)
}

func TestCalculateStoreErrorPropagates(t *testing.T) {
	svc, configs := testService(standardConfig())
	configs.err = errors.New("connection reset")

	_, err := svc.Calculate(context.Background(), CalculateInput{
		TenantID:           "acme",
		ClassificationCode: "1001",
		BaseAmount:         dec("100"),
	})
	require.ErrorContains(t, err, "connection reset")
}

func TestCalculateReverseChargeNote(t *testing.T) {
	cfg := standardConfig()
	cfg.ReverseCharge = true
	svc, _ := testService(cfg)

	result, err := svc.Calculate(context.Background(), CalculateInput{
		TenantID:                "acme",
		ClassificationCode:      "1001",
		BaseAmount:              dec("100"),
		SourceJurisdiction:      "MH",
		DestinationJurisdiction: "KA",
	})
	require.NoError(t, err)
	require.True(t, result.ReverseCharge)
	require.Contains(t, result.Notes, "Reverse charge applicable - tax payable by recipient")
}

func TestCalculateExemptionThreshold(t *testing.T) {
	cfg := standardConfig()
	cfg.ThresholdLimits = map[string]decimal.Decimal{
		ThresholdExemption: dec("100"),
	}
	svc, _ := testService(cfg)

	result, err := svc.Calculate(context.Background(), CalculateInput{
		TenantID:           "acme",
		ClassificationCode: "1001",
		BaseAmount:         dec("99.99"),
	})
	require.NoError(t, err)
	require.Equal(t, "Amount below exemption threshold", result.ExemptionReason)
	require.Contains(t, result.Notes, "Exemption applied: Amount below exemption threshold")
	// The components are still computed; the exemption is advisory.
	require.False(t, result.TotalTaxAmount.IsZero())
}

func TestCalculateEssentialGoodsExemption(t *testing.T) {
	cfg := standardConfig()
	cfg.ExemptionCriteria = map[string]ExemptionRule{
		ExemptionEssential: {Flag: true},
	}
	svc, _ := testService(cfg)

	result, err := svc.Calculate(context.Background(), CalculateInput{
		TenantID:           "acme",
		ClassificationCode: "1001",
		BaseAmount:         dec("500"),
	})
	require.NoError(t, err)
	require.Equal(t, "Essential goods exemption", result.ExemptionReason)
}

func TestCalculateSmallBusinessExemption(t *testing.T) {
	cfg := standardConfig()
	cfg.ExemptionCriteria = map[string]ExemptionRule{
		ExemptionSmallBiz: {Operator: CompareLessThan, Threshold: dec("1000")},
	}
	svc, _ := testService(cfg)

	result, err := svc.Calculate(context.Background(), CalculateInput{
		TenantID:           "acme",
		ClassificationCode: "1001",
		BaseAmount:         dec("500"),
	})
	require.NoError(t, err)
	require.Equal(t, "Small business exemption", result.ExemptionReason)
}

func TestCalculateCompositionNote(t *testing.T) {
	cfg := standardConfig()
	cfg.CompositionEligible = true
	cfg.CompositionRate = decPtr("6.0")
	svc, _ := testService(cfg)

	result, err := svc.Calculate(context.Background(), CalculateInput{
		TenantID:           "acme",
		ClassificationCode: "9988",
		BaseAmount:         dec("1000"),
		BusinessType:       BusinessComposition,
	})
	require.NoError(t, err)
	require.Contains(t, result.Notes, "Eligible for composition scheme")
	require.Len(t, result.Components, 1)
	require.True(t, result.TotalTaxAmount.Equal(dec("60.0000")))
}

func TestCalculateNotesOrder(t *testing.T) {
	cfg := standardConfig()
	cfg.ReverseCharge = true
	cfg.CompositionEligible = true
	cfg.Description = "Standard wheat levy"
	cfg.ExemptionCriteria = map[string]ExemptionRule{
		ExemptionEssential: {Flag: true},
	}
	svc, _ := testService(cfg)

	result, err := svc.Calculate(context.Background(), CalculateInput{
		TenantID:                "acme",
		ClassificationCode:      "1001",
		BaseAmount:              dec("100"),
		SourceJurisdiction:      "MH",
		DestinationJurisdiction: "MH",
	})
	require.NoError(t, err)
	require.Equal(t, []string{
		"Transaction type: Intra-jurisdiction",
		"Reverse charge applicable - tax payable by recipient",
		"Eligible for composition scheme",
		"Exemption applied: Essential goods exemption",
		"Note: Standard wheat levy",
	}, result.Notes)
}

func requireAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code)
}
