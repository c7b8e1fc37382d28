package tax

import (
	"fmt"
	"net/http"
	"time"

	"github.com/noah-isme/backend-levy/internal/common"
)

// Error codes surfaced by the engine. Handlers map these onto HTTP
// statuses; batch calculation downgrades them into per-item notes.
const (
	CodeInvalidAmount          = "INVALID_AMOUNT"
	CodeInvalidQuantity        = "INVALID_QUANTITY"
	CodeClassificationNotFound = "CLASSIFICATION_CODE_NOT_FOUND"
	CodeBusinessTypeNotFound   = "BUSINESS_TYPE_NOT_FOUND"
	CodeConfigurationNotFound  = "TAX_CONFIG_NOT_FOUND"
)

// ErrInvalidAmount rejects non-positive base amounts.
var ErrInvalidAmount = common.NewAppError(CodeInvalidAmount, "base amount must be greater than zero", http.StatusUnprocessableEntity, nil)

// ErrInvalidQuantity rejects non-positive quantities.
var ErrInvalidQuantity = common.NewAppError(CodeInvalidQuantity, "quantity must be greater than zero", http.StatusUnprocessableEntity, nil)

// NewCodeNotFoundError signals an unknown or date-invalid classification code.
func NewCodeNotFoundError(code string, date time.Time) error {
	msg := fmt.Sprintf("classification code %s not found or not valid on %s", code, DateOnly(date).Format(time.DateOnly))
	return common.NewAppError(CodeClassificationNotFound, msg, http.StatusNotFound, nil)
}

// NewBusinessTypeNotFoundError signals an inactive or unknown business type.
func NewBusinessTypeNotFoundError(businessType BusinessType) error {
	msg := fmt.Sprintf("business type %s not found or inactive", businessType)
	return common.NewAppError(CodeBusinessTypeNotFound, msg, http.StatusNotFound, nil)
}

// NewConfigurationNotFoundError signals that no tax rule is configured for
// the inputs. Never silently defaulted: picking a rate here could misstate
// a legal tax liability.
func NewConfigurationNotFoundError(code string, businessType BusinessType, date time.Time) error {
	msg := fmt.Sprintf("no tax configuration for classification code %s and business type %s on %s", code, businessType, DateOnly(date).Format(time.DateOnly))
	return common.NewAppError(CodeConfigurationNotFound, msg, http.StatusNotFound, nil)
}
