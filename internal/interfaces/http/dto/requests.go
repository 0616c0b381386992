package dto

// ExtractFiscalIDsRequest carries OCR text. Empty text yields no identifiers.
type ExtractFiscalIDsRequest struct {
	Text string `json:"text" binding:"max=1048576"`
}

// ValidateFiscalIDRequest carries one caller-supplied value
type ValidateFiscalIDRequest struct {
	Value string `json:"value" binding:"required,max=64"`
}

// ResolveIdentitiesRequest asks which identifier belongs to the company
type ResolveIdentitiesRequest struct {
	ValidIDs        []string `json:"valid_ids" binding:"max=100,dive,max=64"`
	KnownCompanyIDs []string `json:"known_company_ids" binding:"max=100,dive,max=64"`
	SupposedCompany string   `json:"supposed_company" binding:"omitempty,max=64"`
	SupposedPartner string   `json:"supposed_partner" binding:"omitempty,max=64"`
	Threshold       *float64 `json:"threshold" binding:"omitempty,gt=0,lte=1"`
}

// AmountsRequest carries OCR amount strings; "1.234,56" and "1,234.56" are both accepted
type AmountsRequest struct {
	TaxBase   string `json:"tax_base" binding:"omitempty,max=32"`
	Total     string `json:"total" binding:"omitempty,max=32"`
	TaxAmount string `json:"tax_amount" binding:"omitempty,max=32"`
	Discount  string `json:"discount" binding:"omitempty,max=32"`
}

// ReconcileInvoiceRequest runs the whole engine on one invoice
type ReconcileInvoiceRequest struct {
	AmountsRequest
	Text            string   `json:"text" binding:"max=1048576"`
	KnownCompanyIDs []string `json:"known_company_ids" binding:"max=100,dive,max=64"`
	SupposedCompany string   `json:"supposed_company" binding:"omitempty,max=64"`
	SupposedPartner string   `json:"supposed_partner" binding:"omitempty,max=64"`
	Threshold       *float64 `json:"threshold" binding:"omitempty,gt=0,lte=1"`
	InvoiceNumber   string   `json:"invoice_number" binding:"omitempty,max=64"`
	IssueDate       string   `json:"issue_date" binding:"omitempty,datetime=2006-01-02"`
	Currency        string   `json:"currency" binding:"omitempty,iso4217"`
}
