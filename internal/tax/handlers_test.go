package tax

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-levy/internal/tenant"
)

func testHandler(cfg *TaxConfiguration) *Handler {
	svc, _ := testService(cfg)
	return &Handler{
		Service: svc,
		Directory: stubCodes{code: &ClassificationCode{
			Code:          "1001",
			Description:   "Wheat and meslin",
			EffectiveFrom: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			Active:        true,
		}},
		Validate: validator.New(),
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(tenant.With(req.Context(), "acme"))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandlerCalculate(t *testing.T) {
	h := testHandler(standardConfig())

	rec := postJSON(t, h.Calculate, "/api/v1/tax/calculations", `{
		"classificationCode": "1001",
		"baseAmount": "1000",
		"sourceJurisdiction": "MH",
		"destinationJurisdiction": "MH"
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, SameJurisdiction, resp.Data.Classification)
	require.Len(t, resp.Data.Components, 2)
	require.True(t, resp.Data.TotalTaxAmount.Equal(dec("50.0000")))
}

func TestHandlerCalculateDefaultsQuantity(t *testing.T) {
	cfg := standardConfig()
	cfg.SurchargePerUnit = decPtr("2.00")
	h := testHandler(cfg)

	rec := postJSON(t, h.Calculate, "/api/v1/tax/calculations", `{
		"classificationCode": "8528",
		"baseAmount": "100",
		"sourceJurisdiction": "MH",
		"destinationJurisdiction": "KA"
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// Absent quantity defaults to one unit of per-unit surcharge.
	last := resp.Data.Components[len(resp.Data.Components)-1]
	require.True(t, last.Fixed)
	require.True(t, last.Amount.Equal(dec("2.00")))
}

func TestHandlerCalculateRejectsZeroQuantity(t *testing.T) {
	h := testHandler(standardConfig())

	rec := postJSON(t, h.Calculate, "/api/v1/tax/calculations", `{
		"classificationCode": "1001",
		"baseAmount": "100",
		"quantity": 0
	}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, CodeInvalidQuantity, resp.Error.Code)
}

func TestHandlerCalculateRejectsMalformedBody(t *testing.T) {
	h := testHandler(standardConfig())

	rec := postJSON(t, h.Calculate, "/api/v1/tax/calculations", `{nope}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerCalculateRejectsBadBusinessType(t *testing.T) {
	h := testHandler(standardConfig())

	rec := postJSON(t, h.Calculate, "/api/v1/tax/calculations", `{
		"classificationCode": "1001",
		"baseAmount": "100",
		"businessType": "WHOLESALE"
	}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerCalculateRejectsBadDate(t *testing.T) {
	h := testHandler(standardConfig())

	rec := postJSON(t, h.Calculate, "/api/v1/tax/calculations", `{
		"classificationCode": "1001",
		"baseAmount": "100",
		"effectiveDate": "01-06-2024"
	}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerCalculateMapsDomainErrors(t *testing.T) {
	h := testHandler(standardConfig())

	rec := postJSON(t, h.Calculate, "/api/v1/tax/calculations", `{
		"classificationCode": "1001",
		"baseAmount": "-10"
	}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, CodeInvalidAmount, resp.Error.Code)
}

func TestHandlerCalculateNotFound(t *testing.T) {
	h := testHandler(nil)

	rec := postJSON(t, h.Calculate, "/api/v1/tax/calculations", `{
		"classificationCode": "1001",
		"baseAmount": "100"
	}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, CodeConfigurationNotFound, resp.Error.Code)
}

func TestHandlerCalculateBulk(t *testing.T) {
	h := testHandler(standardConfig())

	rec := postJSON(t, h.CalculateBulk, "/api/v1/tax/calculations/bulk", `{
		"items": [
			{"classificationCode": "1001", "baseAmount": "1000"},
			{"classificationCode": "1001", "baseAmount": "0"}
		],
		"sourceJurisdiction": "MH",
		"destinationJurisdiction": "MH"
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data BulkResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Items, 2)
	require.True(t, resp.Data.Items[1].TotalTaxAmount.IsZero())
	require.True(t, resp.Data.TotalBaseAmount.Equal(dec("1000")))
}

func TestHandlerCalculateBulkRequiresItems(t *testing.T) {
	h := testHandler(standardConfig())

	rec := postJSON(t, h.CalculateBulk, "/api/v1/tax/calculations/bulk", `{"items": []}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerCodes(t *testing.T) {
	h := testHandler(standardConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tax/codes?search=wheat", nil)
	req = req.WithContext(tenant.With(req.Context(), "acme"))
	rec := httptest.NewRecorder()
	h.Codes(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "1", rec.Header().Get("X-Total-Count"))

	var resp struct {
		Data []ClassificationCode `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	require.Equal(t, "1001", resp.Data[0].Code)
}

func TestHandlerCodeDetail(t *testing.T) {
	h := testHandler(standardConfig())

	router := chi.NewRouter()
	router.Get("/api/v1/tax/codes/{code}", h.CodeDetail)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tax/codes/1001", nil)
	req = req.WithContext(tenant.With(req.Context(), "acme"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data ClassificationCode `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Wheat and meslin", resp.Data.Description)
}

func TestHandlerCodeDetailNotFound(t *testing.T) {
	h := testHandler(standardConfig())
	h.Directory = stubCodes{code: nil}

	router := chi.NewRouter()
	router.Get("/api/v1/tax/codes/{code}", h.CodeDetail)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tax/codes/0000", nil)
	req = req.WithContext(tenant.With(req.Context(), "acme"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
