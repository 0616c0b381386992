package dto

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeInvalidJSON, http.StatusBadRequest},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeInvalidTaxID, http.StatusUnprocessableEntity},
		{"TAX_ID_NOT_FOUND", http.StatusUnprocessableEntity},
		{"MULTIPLE_COMPANY_TAX_ID_MATCHES", http.StatusUnprocessableEntity},
		{"PARTNER_TAX_ID_NOT_FOUND", http.StatusUnprocessableEntity},
		{"MULTIPLE_PARTNER_TAX_IDS", http.StatusUnprocessableEntity},
		{"TAX_PERCENTAGE_NOT_FOUND", http.StatusUnprocessableEntity},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestHighestStatus(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HighestStatus(nil))
	assert.Equal(t, http.StatusUnprocessableEntity,
		HighestStatus([]string{"TAX_ID_NOT_FOUND", "TAX_PERCENTAGE_NOT_FOUND"}))
	assert.Equal(t, http.StatusUnprocessableEntity,
		HighestStatus([]string{ErrCodeInvalidInput, "TAX_PERCENTAGE_NOT_FOUND"}))
	assert.Equal(t, http.StatusInternalServerError,
		HighestStatus([]string{"TAX_ID_NOT_FOUND", ErrCodeInternal}))
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	requestID := "req-123-456"
	resp := NewErrorResponseWithRequestID(ErrCodeInvalidTaxID, "Value is not a valid fiscal identifier", requestID)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidTaxID, resp.Error.Code)
	assert.Equal(t, requestID, resp.Error.RequestID)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "value", Message: "This field is required"},
		{Field: "currency", Message: "Invalid value"},
	}

	resp := NewValidationErrorResponse("Request validation failed", "req-789", details)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	assert.Len(t, resp.Error.Fields, 2)
	assert.Equal(t, "value", resp.Error.Fields[0].Field)
}

func TestResponse_WithDetailsAndCauses(t *testing.T) {
	resp := NewErrorResponse(ErrCodeMultipleErrors, "Invoice could not be reconciled").
		WithDetails(map[string]any{"partners": []string{"A", "B"}}).
		WithCauses([]ErrorCause{
			{Code: "MULTIPLE_PARTNER_TAX_IDS", Message: "More than one distinct partner tax ID candidate remains"},
			{Code: "TAX_PERCENTAGE_NOT_FOUND", Message: "The invoice amounts do not determine a legal tax percentage"},
		})

	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Details, "partners")
	assert.Len(t, resp.Error.Causes, 2)

	// success responses are left untouched
	ok := NewSuccessResponse("x").WithDetails(map[string]any{"a": 1})
	assert.Nil(t, ok.Error)
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID("TAX_ID_NOT_FOUND", "No extracted tax ID matches", "req-test-123").
		WithDetails(map[string]any{"candidates": []string{"A58818501"}})

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, false, raw["success"])
	assert.NotContains(t, raw, "data")

	errObj := raw["error"].(map[string]any)
	assert.Equal(t, "TAX_ID_NOT_FOUND", errObj["code"])
	assert.Equal(t, "req-test-123", errObj["request_id"])
	assert.Equal(t, []any{"A58818501"}, errObj["details"].(map[string]any)["candidates"])
	assert.NotContains(t, errObj, "fields")
	assert.NotContains(t, errObj, "causes")
}

func TestErrorResponseTimestamp(t *testing.T) {
	before := time.Now()
	resp := NewErrorResponse(ErrCodeInternal, "Server error")
	after := time.Now()

	assert.False(t, resp.Error.Timestamp.Before(before), "Timestamp should not be before call")
	assert.False(t, resp.Error.Timestamp.After(after), "Timestamp should not be after call")
}

func TestNewSuccessResponse(t *testing.T) {
	resp := NewSuccessResponse(map[string]string{"name": "test"})

	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}
