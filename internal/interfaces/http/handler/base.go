package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/shared"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/infrastructure/logger"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/interfaces/http/dto"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, code, message string) {
	h.Error(c, http.StatusBadRequest, code, message)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		middleware.GetRequestID(c),
		details,
	))
}

// BindJSON binds the request body and writes the error response on failure
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &tooLarge):
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.As(err, &syntaxErr):
		h.BadRequest(c, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
	case errors.As(err, &typeErr):
		h.ValidationError(c, []dto.ValidationDetail{{Field: typeErr.Field, Message: "Invalid type"}})
	default:
		if details := middleware.ValidationDetails(err); details != nil {
			h.ValidationError(c, details)
			return false
		}
		h.BadRequest(c, dto.ErrCodeInvalidInput, err.Error())
	}
	return false
}

// HandleError converts engine errors to HTTP responses. Typed failures put
// their diagnostics in details; joined failures are listed as causes.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := middleware.GetRequestID(c)
	causes := errorCauses(err)

	if len(causes) == 0 {
		logger.GetGinLogger(c).Error("Unhandled engine error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeInternal,
			"An unexpected error occurred",
			requestID,
		))
		return
	}

	if len(causes) == 1 {
		cause := causes[0]
		c.JSON(dto.GetHTTPStatus(cause.Code), dto.NewErrorResponseWithRequestID(cause.Code, cause.Message, requestID).
			WithDetails(cause.Details))
		return
	}

	codes := make([]string, 0, len(causes))
	for _, cause := range causes {
		codes = append(codes, cause.Code)
	}
	c.JSON(dto.HighestStatus(codes), dto.NewErrorResponseWithRequestID(
		dto.ErrCodeMultipleErrors,
		"Several independent checks failed",
		requestID,
	).WithCauses(causes))
}

// errorCauses flattens err into one cause per domain error, in order
func errorCauses(err error) []dto.ErrorCause {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var causes []dto.ErrorCause
		for _, e := range joined.Unwrap() {
			causes = append(causes, errorCauses(e)...)
		}
		if len(causes) == 1 && causes[0].Code == shared.ErrInvalidInput.Code {
			causes[0].Message = err.Error()
		}
		return causes
	}

	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		return nil
	}
	cause := dto.ErrorCause{Code: domainErr.Code, Message: domainErr.Message, Details: domainErr.Details}

	var detailed shared.DetailedError
	if errors.As(err, &detailed) {
		cause.Details = detailed.Details()
	} else if domainErr.Code == shared.ErrInvalidInput.Code {
		// Input errors wrap the sentinel with a descriptive message
		cause.Message = err.Error()
	}
	return []dto.ErrorCause{cause}
}
