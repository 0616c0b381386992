package taxrate

import (
	"fmt"

	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/shared"
)

// CodeTaxPercentageNotFound is the error code of ErrTaxPercentageNotFound
const CodeTaxPercentageNotFound = "TAX_PERCENTAGE_NOT_FOUND"

// ErrTaxPercentageNotFound is the sentinel matched with errors.Is
var ErrTaxPercentageNotFound = shared.NewDomainError(CodeTaxPercentageNotFound,
	"The invoice amounts do not determine a legal tax percentage")

// Reason explains why no tax percentage was found
type Reason string

const (
	ReasonInsufficientAmounts Reason = "insufficient_amounts" // fewer than two known amounts
	ReasonInconsistentAmounts Reason = "inconsistent_amounts" // amounts contradict each other beyond correction
	ReasonNoStandardRate      Reason = "no_standard_rate"     // the implied rate is not in the table
)

// TaxPercentageNotFoundError carries the raw inputs of a failed reconciliation
type TaxPercentageNotFoundError struct {
	Amounts  Amounts
	Presence PresenceVector
	Branch   Branch
	Reason   Reason
}

func (e *TaxPercentageNotFoundError) Error() string {
	return fmt.Sprintf("tax percentage not found (%s): tax_base=%s total=%s tax_amount=%s discount=%s",
		e.Reason, e.Amounts.TaxBase.String(), e.Amounts.Total.String(),
		e.Amounts.TaxAmount.String(), e.Amounts.Discount.String())
}

func (e *TaxPercentageNotFoundError) Unwrap() error {
	return ErrTaxPercentageNotFound
}

// Details returns the four inputs and the failure context
func (e *TaxPercentageNotFoundError) Details() map[string]any {
	details := map[string]any{
		"tax_base":   e.Amounts.TaxBase.String(),
		"total":      e.Amounts.Total.String(),
		"tax_amount": e.Amounts.TaxAmount.String(),
		"discount":   e.Amounts.Discount.String(),
		"presence":   e.Presence.String(),
		"reason":     string(e.Reason),
	}
	if e.Branch != "" {
		details["branch"] = string(e.Branch)
	}
	return details
}
