package invoice

import (
	"errors"
	"fmt"

	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/shared"
)

// CodeInvalidTaxID is returned when a single supplied value fails validation
const CodeInvalidTaxID = "INVALID_TAX_ID"

// ErrInvalidTaxID is the sentinel for InvalidTaxIDError
var ErrInvalidTaxID = shared.NewDomainError(CodeInvalidTaxID, "Value is not a valid fiscal identifier")

// InvalidTaxIDError reports the value that failed every scheme
type InvalidTaxIDError struct {
	Value string
}

func (e *InvalidTaxIDError) Error() string {
	return fmt.Sprintf("invalid tax ID %q", e.Value)
}

func (e *InvalidTaxIDError) Unwrap() error {
	return ErrInvalidTaxID
}

// Details returns the rejected value
func (e *InvalidTaxIDError) Details() map[string]any {
	return map[string]any{"value": e.Value}
}

const outcomeInternal = "INTERNAL_ERROR"

// ErrorCodes returns the domain error codes carried by err in order,
// looking through multi-error wrappers such as errors.Join. An error with
// no code anywhere in its tree yields INTERNAL_ERROR.
func ErrorCodes(err error) []string {
	if err == nil {
		return nil
	}
	if codes := domainCodes(err); len(codes) > 0 {
		return codes
	}
	return []string{outcomeInternal}
}

func domainCodes(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var codes []string
		for _, e := range joined.Unwrap() {
			codes = append(codes, domainCodes(e)...)
		}
		return codes
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return []string{de.Code}
	}
	return nil
}
