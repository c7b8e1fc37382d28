package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/noah-isme/backend-levy/internal/tax"
)

// FindEffective returns the single configuration applicable to the lookup
// tuple on the given date. Jurisdiction-scoped rows win over unscoped ones,
// and among equals the most recent effective_from wins, so overlapping
// versions resolve deterministically. Absence is (nil, nil).
func (s *Store) FindEffective(ctx context.Context, tenantID, code string, businessType tax.BusinessType, jurisdictionScope string, date time.Time) (*tax.TaxConfiguration, error) {
	const query = `
		SELECT id, classification_code, business_type, COALESCE(jurisdiction_scope, ''),
		       total_rate, central_rate, state_rate, integrated_rate, territory_rate,
		       surcharge_rate, surcharge_per_unit,
		       effective_from, effective_to,
		       reverse_charge, composition_eligible, composition_rate,
		       special_conditions, exemption_criteria, threshold_limits,
		       COALESCE(description, ''), active
		FROM tax_configurations
		WHERE tenant_id = $1
		  AND classification_code = $2
		  AND business_type = $3
		  AND active
		  AND effective_from <= $5
		  AND (effective_to IS NULL OR effective_to >= $5)
		  AND ($4 = '' OR jurisdiction_scope IS NULL OR jurisdiction_scope = $4)
		ORDER BY (jurisdiction_scope IS NOT NULL) DESC, effective_from DESC
		LIMIT 1`

	row := s.Pool.QueryRow(ctx, query, tenantID, code, string(businessType), jurisdictionScope, tax.DateOnly(date))

	var (
		cfg               tax.TaxConfiguration
		totalRate         pgtype.Numeric
		centralRate       pgtype.Numeric
		stateRate         pgtype.Numeric
		integratedRate    pgtype.Numeric
		territoryRate     pgtype.Numeric
		surchargeRate     pgtype.Numeric
		surchargePerUnit  pgtype.Numeric
		compositionRate   pgtype.Numeric
		effectiveTo       pgtype.Timestamptz
		specialConditions []byte
		exemptionCriteria []byte
		thresholdLimits   []byte
	)
	err := row.Scan(
		&cfg.ID,
		&cfg.ClassificationCode,
		&cfg.BusinessType,
		&cfg.JurisdictionScope,
		&totalRate,
		&centralRate,
		&stateRate,
		&integratedRate,
		&territoryRate,
		&surchargeRate,
		&surchargePerUnit,
		&cfg.EffectiveFrom,
		&effectiveTo,
		&cfg.ReverseCharge,
		&cfg.CompositionEligible,
		&compositionRate,
		&specialConditions,
		&exemptionCriteria,
		&thresholdLimits,
		&cfg.Description,
		&cfg.Active,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: find tax configuration: %w", err)
	}

	cfg.TotalRate = decimalFromNumeric(totalRate)
	cfg.CentralRate = decimalPtrFromNumeric(centralRate)
	cfg.StateRate = decimalPtrFromNumeric(stateRate)
	cfg.IntegratedRate = decimalPtrFromNumeric(integratedRate)
	cfg.TerritoryRate = decimalPtrFromNumeric(territoryRate)
	cfg.SurchargeRate = decimalPtrFromNumeric(surchargeRate)
	cfg.SurchargePerUnit = decimalPtrFromNumeric(surchargePerUnit)
	cfg.CompositionRate = decimalPtrFromNumeric(compositionRate)
	if effectiveTo.Valid {
		t := effectiveTo.Time
		cfg.EffectiveTo = &t
	}
	if err := unmarshalJSONB(specialConditions, &cfg.SpecialConditions); err != nil {
		return nil, fmt.Errorf("store: decode special conditions: %w", err)
	}
	if err := unmarshalJSONB(exemptionCriteria, &cfg.ExemptionCriteria); err != nil {
		return nil, fmt.Errorf("store: decode exemption criteria: %w", err)
	}
	if err := unmarshalJSONB(thresholdLimits, &cfg.ThresholdLimits); err != nil {
		return nil, fmt.Errorf("store: decode threshold limits: %w", err)
	}
	return &cfg, nil
}

func unmarshalJSONB(data []byte, target any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, target)
}
