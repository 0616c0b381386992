package invoice

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/fiscal"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/taxrate"
)

// FiscalIDResult is a validated fiscal identifier
type FiscalIDResult struct {
	Value   string `json:"value"`
	Raw     string `json:"raw"`
	Scheme  string `json:"scheme"`
	Country string `json:"country"`
}

// ToFiscalIDResult converts a domain identifier
func ToFiscalIDResult(id fiscal.Identifier) FiscalIDResult {
	return FiscalIDResult{
		Value:   id.Value(),
		Raw:     id.Raw(),
		Scheme:  id.Scheme().String(),
		Country: id.Country(),
	}
}

// ToFiscalIDResults converts identifiers preserving order
func ToFiscalIDResults(ids []fiscal.Identifier) []FiscalIDResult {
	results := make([]FiscalIDResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, ToFiscalIDResult(id))
	}
	return results
}

// ResolveIdentitiesCommand assigns company and partner roles.
// When both supposed values are set they are checked instead of ValidIDs.
// A nil Threshold keeps the resolver's configured threshold.
type ResolveIdentitiesCommand struct {
	ValidIDs        []string
	KnownCompanyIDs []string
	SupposedCompany string
	SupposedPartner string
	Threshold       *float64
}

// HasSupposedPair reports whether an upstream guess should be verified
func (c ResolveIdentitiesCommand) HasSupposedPair() bool {
	return c.SupposedCompany != "" && c.SupposedPartner != ""
}

// IdentityResult is the resolved company/partner pair
type IdentityResult struct {
	CompanyTaxID string `json:"company_tax_id"`
	PartnerTaxID string `json:"partner_tax_id"`
	Swapped      bool   `json:"swapped"`
}

// ReconcileTaxRateCommand carries the OCR amounts; zero means unknown
type ReconcileTaxRateCommand struct {
	TaxBase   decimal.Decimal
	Total     decimal.Decimal
	TaxAmount decimal.Decimal
	Discount  decimal.Decimal
}

// Amounts converts the command to domain amounts
func (c ReconcileTaxRateCommand) Amounts() taxrate.Amounts {
	return taxrate.Amounts{
		TaxBase:   c.TaxBase,
		Total:     c.Total,
		TaxAmount: c.TaxAmount,
		Discount:  c.Discount,
	}
}

// TaxRateResult is a successful reconciliation
type TaxRateResult struct {
	TaxRate        decimal.Decimal   `json:"tax_rate"`
	CandidateRates []decimal.Decimal `json:"candidate_rates"`
	RawRate        decimal.Decimal   `json:"raw_rate"`
	Branch         string            `json:"branch"`
	Corrected      bool              `json:"corrected"`
	TaxBase        decimal.Decimal   `json:"tax_base"`
	Discount       decimal.Decimal   `json:"discount"`
	TaxAmount      decimal.Decimal   `json:"tax_amount"`
	Total          decimal.Decimal   `json:"total"`
}

// ToTaxRateResult converts a domain reconciliation
func ToTaxRateResult(r *taxrate.Reconciliation) *TaxRateResult {
	return &TaxRateResult{
		TaxRate:        r.Rate(),
		CandidateRates: append([]decimal.Decimal(nil), r.Candidates...),
		RawRate:        r.RawRate,
		Branch:         string(r.Branch),
		Corrected:      r.Corrected,
		TaxBase:        r.Amounts.TaxBase,
		Discount:       r.Amounts.Discount,
		TaxAmount:      r.Amounts.TaxAmount,
		Total:          r.Amounts.Total,
	}
}

// ReconcileInvoiceCommand runs extraction, resolution and reconciliation on one invoice
type ReconcileInvoiceCommand struct {
	Text            string
	KnownCompanyIDs []string
	SupposedCompany string
	SupposedPartner string
	Threshold       *float64
	InvoiceNumber   string
	IssueDate       string
	Currency        string
	TaxBase         decimal.Decimal
	Total           decimal.Decimal
	TaxAmount       decimal.Decimal
	Discount        decimal.Decimal
}

// NormalizedInvoice is an invoice whose identities and amounts reconcile
type NormalizedInvoice struct {
	ID             uuid.UUID         `json:"id"`
	CompanyTaxID   string            `json:"company_tax_id"`
	PartnerTaxID   string            `json:"partner_tax_id"`
	InvoiceNumber  string            `json:"invoice_number,omitempty"`
	IssueDate      string            `json:"issue_date,omitempty"`
	Currency       string            `json:"currency,omitempty"`
	TaxBase        decimal.Decimal   `json:"tax_base"`
	Discount       decimal.Decimal   `json:"discount"`
	TaxAmount      decimal.Decimal   `json:"tax_amount"`
	Total          decimal.Decimal   `json:"total"`
	TaxRate        decimal.Decimal   `json:"tax_rate"`
	CandidateRates []decimal.Decimal `json:"candidate_rates"`
	Branch         string            `json:"branch"`
	Corrected      bool              `json:"corrected"`
	Swapped        bool              `json:"swapped"`
	ExtractedIDs   []FiscalIDResult  `json:"extracted_ids"`
}
