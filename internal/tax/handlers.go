package tax

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-levy/internal/common"
	"github.com/noah-isme/backend-levy/internal/tenant"
)

// CodeDirectory serves the read-only classification code lookups exposed
// over HTTP.
type CodeDirectory interface {
	FindValidForDate(ctx context.Context, tenantID, code string, date time.Time) (*ClassificationCode, error)
	Search(ctx context.Context, tenantID, query string, page, perPage int) ([]ClassificationCode, int64, error)
}

// Handler exposes the calculation and code lookup endpoints.
type Handler struct {
	Service   *Service
	Directory CodeDirectory
	Validate  *validator.Validate
}

type calculateRequest struct {
	ClassificationCode      string          `json:"classificationCode" validate:"required"`
	BaseAmount              decimal.Decimal `json:"baseAmount" validate:"required"`
	Quantity                *int64          `json:"quantity,omitempty"`
	BusinessType            string          `json:"businessType,omitempty" validate:"omitempty,oneof=B2B B2C COMPOSITION EXPORT"`
	SourceJurisdiction      string          `json:"sourceJurisdiction,omitempty"`
	DestinationJurisdiction string          `json:"destinationJurisdiction,omitempty"`
	EffectiveDate           string          `json:"effectiveDate,omitempty"`
}

type bulkItemRequest struct {
	ClassificationCode string          `json:"classificationCode" validate:"required"`
	BaseAmount         decimal.Decimal `json:"baseAmount" validate:"required"`
	Quantity           *int64          `json:"quantity,omitempty"`
}

type bulkRequest struct {
	Items                   []bulkItemRequest `json:"items" validate:"required,min=1,dive"`
	BusinessType            string            `json:"businessType,omitempty" validate:"omitempty,oneof=B2B B2C COMPOSITION EXPORT"`
	SourceJurisdiction      string            `json:"sourceJurisdiction,omitempty"`
	DestinationJurisdiction string            `json:"destinationJurisdiction,omitempty"`
	EffectiveDate           string            `json:"effectiveDate,omitempty"`
}

// Calculate handles POST /api/v1/tax/calculations.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "tax service not configured", nil)
		return
	}
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if err := h.validate(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	date, ok := parseEffectiveDate(req.EffectiveDate)
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "effectiveDate must be formatted as YYYY-MM-DD", nil)
		return
	}
	tenantID, _ := tenant.From(r.Context())

	result, err := h.Service.Calculate(r.Context(), CalculateInput{
		TenantID:                tenantID,
		ClassificationCode:      req.ClassificationCode,
		BaseAmount:              req.BaseAmount,
		Quantity:                quantityOrDefault(req.Quantity),
		BusinessType:            BusinessType(req.BusinessType),
		SourceJurisdiction:      req.SourceJurisdiction,
		DestinationJurisdiction: req.DestinationJurisdiction,
		EffectiveDate:           date,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

// CalculateBulk handles POST /api/v1/tax/calculations/bulk.
func (h *Handler) CalculateBulk(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "tax service not configured", nil)
		return
	}
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return
	}
	if err := h.validate(req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	date, ok := parseEffectiveDate(req.EffectiveDate)
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "effectiveDate must be formatted as YYYY-MM-DD", nil)
		return
	}
	tenantID, _ := tenant.From(r.Context())

	items := make([]BulkItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, BulkItem{
			ClassificationCode: item.ClassificationCode,
			BaseAmount:         item.BaseAmount,
			Quantity:           quantityOrDefault(item.Quantity),
		})
	}
	result, err := h.Service.CalculateBulk(r.Context(), BulkInput{
		TenantID:                tenantID,
		Items:                   items,
		BusinessType:            BusinessType(req.BusinessType),
		SourceJurisdiction:      req.SourceJurisdiction,
		DestinationJurisdiction: req.DestinationJurisdiction,
		EffectiveDate:           date,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}

// Codes handles GET /api/v1/tax/codes with search and pagination.
func (h *Handler) Codes(w http.ResponseWriter, r *http.Request) {
	if h.Directory == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "code directory not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, 20)
	if perPage > 100 {
		perPage = 100
	}
	tenantID, _ := tenant.From(r.Context())
	query := r.URL.Query().Get("search")

	codes, total, err := h.Directory.Search(r.Context(), tenantID, query, page, perPage)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": codes,
		"pagination": common.Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalItems: int(total),
		},
	})
}

// CodeDetail handles GET /api/v1/tax/codes/{code}.
func (h *Handler) CodeDetail(w http.ResponseWriter, r *http.Request) {
	if h.Directory == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "code directory not configured", nil)
		return
	}
	code := chi.URLParam(r, "code")
	date, ok := parseEffectiveDate(r.URL.Query().Get("date"))
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "date must be formatted as YYYY-MM-DD", nil)
		return
	}
	if date.IsZero() {
		date = time.Now()
	}
	tenantID, _ := tenant.From(r.Context())

	cc, err := h.Directory.FindValidForDate(r.Context(), tenantID, code, date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if cc == nil {
		common.JSONError(w, http.StatusNotFound, CodeClassificationNotFound, "classification code not found", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": cc})
}

func (h *Handler) validate(v any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(v)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		code := appErr.Code
		if code == "" {
			code = "INTERNAL"
		}
		message := appErr.Message
		if message == "" {
			message = "internal error"
		}
		common.JSONError(w, status, code, message, appErr.Details)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}

// quantityOrDefault treats an absent quantity as one unit. An explicit
// non-positive quantity passes through negative so the service rejects it.
func quantityOrDefault(q *int64) int64 {
	if q == nil {
		return 1
	}
	if *q == 0 {
		return -1
	}
	return *q
}

// parseEffectiveDate accepts an empty string as "today" (zero time) and
// otherwise requires the YYYY-MM-DD wire format.
func parseEffectiveDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, true
	}
	date, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}
