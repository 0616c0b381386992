package dto

import (
	"net/http"

	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/resolution"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/taxrate"
)

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeNotFound is used when no route matches
	ErrCodeNotFound = "NOT_FOUND"
)

// Input error codes
const (
	// ErrCodeInvalidInput is used when the engine rejects malformed input
	ErrCodeInvalidInput = "INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "INVALID_JSON"
	// ErrCodeValidation is used when request binding rules fail
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// Business rule error codes
const (
	// ErrCodeInvalidTaxID is used when a single supplied value fails every scheme
	ErrCodeInvalidTaxID = "INVALID_TAX_ID"
	// ErrCodeMultipleErrors is used when independent failures are reported together
	ErrCodeMultipleErrors = "MULTIPLE_ERRORS"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,
	ErrCodeNotFound: http.StatusNotFound,

	// Input errors -> 400 Bad Request
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidTaxID:                        http.StatusUnprocessableEntity,
	ErrCodeMultipleErrors:                      http.StatusUnprocessableEntity,
	resolution.CodeTaxIDNotFound:               http.StatusUnprocessableEntity,
	resolution.CodeMultipleCompanyTaxIDMatches: http.StatusUnprocessableEntity,
	resolution.CodePartnerTaxIDNotFound:        http.StatusUnprocessableEntity,
	resolution.CodeMultiplePartnerTaxIDs:       http.StatusUnprocessableEntity,
	taxrate.CodeTaxPercentageNotFound:          http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HighestStatus returns the most severe status among the codes
func HighestStatus(codes []string) int {
	status := 0
	for _, code := range codes {
		if s := GetHTTPStatus(code); s > status {
			status = s
		}
	}
	if status == 0 {
		return http.StatusInternalServerError
	}
	return status
}
