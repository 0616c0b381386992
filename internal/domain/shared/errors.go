package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error carrying structured diagnostic data
func (e *DomainError) WithDetails(details map[string]any) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}

// DetailedError is implemented by errors that carry machine-readable diagnostics
type DetailedError interface {
	error
	Details() map[string]any
}

// ErrInvalidInput is wrapped by every error caused by malformed caller input
var ErrInvalidInput = NewDomainError("INVALID_INPUT", "Invalid input provided")
