package tax

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-levy/internal/obs"
)

// BulkItem is one line of a bulk calculation. Jurisdictions, business type
// and effective date are shared across the batch; only the classification
// code, amount and quantity vary per line.
type BulkItem struct {
	ClassificationCode string
	BaseAmount         decimal.Decimal
	Quantity           int64
}

// BulkInput is a batch of calculations sharing one transaction context.
type BulkInput struct {
	TenantID                string
	Items                   []BulkItem
	BusinessType            BusinessType
	SourceJurisdiction      string
	DestinationJurisdiction string
	EffectiveDate           time.Time
}

// CalculateBulk runs the batch sequentially with per-item failure
// isolation: a failed line is downgraded to a zero-tax result carrying the
// error as a note, and never aborts the batch. Aggregates sum over every
// line, downgraded ones included.
func (s *Service) CalculateBulk(ctx context.Context, in BulkInput) (*BulkResult, error) {
	results := make([]Result, 0, len(in.Items))
	totalBase := decimal.Zero
	totalTax := decimal.Zero

	for _, item := range in.Items {
		res, err := s.Calculate(ctx, CalculateInput{
			TenantID:                in.TenantID,
			ClassificationCode:      item.ClassificationCode,
			BaseAmount:              item.BaseAmount,
			Quantity:                item.Quantity,
			BusinessType:            in.BusinessType,
			SourceJurisdiction:      in.SourceJurisdiction,
			DestinationJurisdiction: in.DestinationJurisdiction,
			EffectiveDate:           in.EffectiveDate,
		})
		if err != nil {
			s.Logger.Warn().
				Err(err).
				Str("tenant_id", in.TenantID).
				Str("classification_code", item.ClassificationCode).
				Msg("bulk_item_failed")
			obs.ObserveBulkItem("error")
			res = failedItemResult(item, err)
		} else {
			obs.ObserveBulkItem("ok")
		}
		results = append(results, *res)
		totalBase = totalBase.Add(res.BaseAmount)
		totalTax = totalTax.Add(res.TotalTaxAmount)
	}

	return &BulkResult{
		Items:           results,
		TotalBaseAmount: totalBase,
		TotalTaxAmount:  totalTax,
		TotalAmount:     totalBase.Add(totalTax),
		CalculatedAt:    s.now(),
	}, nil
}

// failedItemResult is the downgraded placeholder for a line that could not
// be calculated. The base amount is preserved so batch totals still
// reconcile; tax is zero and the error travels in the notes.
func failedItemResult(item BulkItem, err error) *Result {
	return &Result{
		BaseAmount:         item.BaseAmount,
		TotalTaxAmount:     decimal.Zero,
		TotalAmount:        item.BaseAmount,
		ClassificationCode: item.ClassificationCode,
		Classification:     CrossJurisdiction,
		Components:         []Component{},
		CalculatedAt:       time.Now(),
		Notes:              []string{"Error: " + err.Error()},
	}
}
