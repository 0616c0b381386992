package resolution

import (
	"fmt"
	"strings"

	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/shared"
)

// Error codes for identity resolution failures
const (
	CodeTaxIDNotFound               = "TAX_ID_NOT_FOUND"
	CodeMultipleCompanyTaxIDMatches = "MULTIPLE_COMPANY_TAX_ID_MATCHES"
	CodePartnerTaxIDNotFound        = "PARTNER_TAX_ID_NOT_FOUND"
	CodeMultiplePartnerTaxIDs       = "MULTIPLE_PARTNER_TAX_IDS"
)

// Sentinels matched with errors.Is
var (
	ErrTaxIDNotFound = shared.NewDomainError(CodeTaxIDNotFound,
		"No extracted tax ID matches the company's known tax IDs")
	ErrMultipleCompanyTaxIDMatches = shared.NewDomainError(CodeMultipleCompanyTaxIDMatches,
		"More than one distinct extracted tax ID matches the company's known tax IDs")
	ErrPartnerTaxIDNotFound = shared.NewDomainError(CodePartnerTaxIDNotFound,
		"No extracted tax ID is distinguishable from the company's tax ID")
	ErrMultiplePartnerTaxIDs = shared.NewDomainError(CodeMultiplePartnerTaxIDs,
		"More than one distinct partner tax ID candidate remains")
)

// TaxIDNotFoundError is returned when none of the candidates matches a known ID
type TaxIDNotFoundError struct {
	Candidates []string
	KnownIDs   []string
}

func (e *TaxIDNotFoundError) Error() string {
	return fmt.Sprintf("tax ID not found: none of [%s] matches known [%s]",
		strings.Join(e.Candidates, ", "), strings.Join(e.KnownIDs, ", "))
}

func (e *TaxIDNotFoundError) Unwrap() error {
	return ErrTaxIDNotFound
}

// Details returns the inputs for diagnostics
func (e *TaxIDNotFoundError) Details() map[string]any {
	return map[string]any{
		"candidates": e.Candidates,
		"known_ids":  e.KnownIDs,
	}
}

// MultipleCompanyTaxIDsError is returned when two or more distinct candidates match the known IDs
type MultipleCompanyTaxIDsError struct {
	Matches  []string
	KnownIDs []string
}

func (e *MultipleCompanyTaxIDsError) Error() string {
	return fmt.Sprintf("multiple company tax ID matches: [%s]", strings.Join(e.Matches, ", "))
}

func (e *MultipleCompanyTaxIDsError) Unwrap() error {
	return ErrMultipleCompanyTaxIDMatches
}

// Details returns the matches and the known IDs
func (e *MultipleCompanyTaxIDsError) Details() map[string]any {
	return map[string]any{
		"matches":   e.Matches,
		"known_ids": e.KnownIDs,
	}
}

// PartnerTaxIDNotFoundError is returned when every candidate is similar to the company ID
type PartnerTaxIDNotFoundError struct {
	Candidates []string
	CompanyID  string
}

func (e *PartnerTaxIDNotFoundError) Error() string {
	return fmt.Sprintf("partner tax ID not found: no candidate in [%s] differs from company %s",
		strings.Join(e.Candidates, ", "), e.CompanyID)
}

func (e *PartnerTaxIDNotFoundError) Unwrap() error {
	return ErrPartnerTaxIDNotFound
}

// Details returns the candidates and the company ID
func (e *PartnerTaxIDNotFoundError) Details() map[string]any {
	return map[string]any{
		"candidates": e.Candidates,
		"company_id": e.CompanyID,
	}
}

// MultiplePartnerTaxIDsError is returned when the partner candidates are not all similar
type MultiplePartnerTaxIDsError struct {
	Partners  []string
	CompanyID string
}

func (e *MultiplePartnerTaxIDsError) Error() string {
	return fmt.Sprintf("multiple partner tax IDs: [%s]", strings.Join(e.Partners, ", "))
}

func (e *MultiplePartnerTaxIDsError) Unwrap() error {
	return ErrMultiplePartnerTaxIDs
}

// Details returns the distinct partner candidates and the company ID
func (e *MultiplePartnerTaxIDsError) Details() map[string]any {
	return map[string]any{
		"partners":   e.Partners,
		"company_id": e.CompanyID,
	}
}
