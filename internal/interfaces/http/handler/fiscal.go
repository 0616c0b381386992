package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/JohnRSantamaria/exponential-it-sub000/internal/application/invoice"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/shared"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/taxrate"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/interfaces/http/dto"
)

// pdfFormField is the multipart field holding the uploaded invoice
const pdfFormField = "file"

// FiscalEngine is the application facade served by FiscalHandler
type FiscalEngine interface {
	ExtractAndValidateFiscalIDs(ctx context.Context, text string) []invoice.FiscalIDResult
	ExtractFiscalIDsFromPDF(ctx context.Context, data []byte) ([]invoice.FiscalIDResult, error)
	ValidateFiscalID(ctx context.Context, value string) (*invoice.FiscalIDResult, error)
	ResolveIdentities(ctx context.Context, cmd invoice.ResolveIdentitiesCommand) (*invoice.IdentityResult, error)
	ReconcileTaxRate(ctx context.Context, cmd invoice.ReconcileTaxRateCommand) (*invoice.TaxRateResult, error)
	ReconcileInvoice(ctx context.Context, cmd invoice.ReconcileInvoiceCommand) (*invoice.NormalizedInvoice, error)
}

// FiscalHandler handles fiscal identifier, identity and tax-rate endpoints
type FiscalHandler struct {
	BaseHandler
	engine FiscalEngine
}

// NewFiscalHandler creates a new FiscalHandler
func NewFiscalHandler(engine FiscalEngine) *FiscalHandler {
	return &FiscalHandler{engine: engine}
}

// ExtractFiscalIDs handles POST /fiscal-ids/extract
func (h *FiscalHandler) ExtractFiscalIDs(c *gin.Context) {
	var req dto.ExtractFiscalIDsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.Success(c, h.engine.ExtractAndValidateFiscalIDs(c.Request.Context(), req.Text))
}

// ExtractFiscalIDsFromPDF handles POST /fiscal-ids/extract-pdf with a multipart "file" field
func (h *FiscalHandler) ExtractFiscalIDsFromPDF(c *gin.Context) {
	header, err := c.FormFile(pdfFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
			return
		}
		h.ValidationError(c, []dto.ValidationDetail{{Field: pdfFormField, Message: "This field is required"}})
		return
	}

	file, err := header.Open()
	if err != nil {
		h.HandleError(c, fmt.Errorf("open uploaded file: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.HandleError(c, fmt.Errorf("read uploaded file: %w", err))
		return
	}

	ids, err := h.engine.ExtractFiscalIDsFromPDF(c.Request.Context(), data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ids)
}

// ValidateFiscalID handles POST /fiscal-ids/validate
func (h *FiscalHandler) ValidateFiscalID(c *gin.Context) {
	var req dto.ValidateFiscalIDRequest
	if !h.BindJSON(c, &req) {
		return
	}
	id, err := h.engine.ValidateFiscalID(c.Request.Context(), req.Value)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, id)
}

// ResolveIdentities handles POST /identities/resolve
func (h *FiscalHandler) ResolveIdentities(c *gin.Context) {
	var req dto.ResolveIdentitiesRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.engine.ResolveIdentities(c.Request.Context(), invoice.ResolveIdentitiesCommand{
		ValidIDs:        req.ValidIDs,
		KnownCompanyIDs: req.KnownCompanyIDs,
		SupposedCompany: req.SupposedCompany,
		SupposedPartner: req.SupposedPartner,
		Threshold:       req.Threshold,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ReconcileTaxRate handles POST /tax-rates/reconcile
func (h *FiscalHandler) ReconcileTaxRate(c *gin.Context) {
	var req dto.AmountsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	amounts, err := parseAmounts(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	result, err := h.engine.ReconcileTaxRate(c.Request.Context(), invoice.ReconcileTaxRateCommand{
		TaxBase:   amounts.TaxBase,
		Total:     amounts.Total,
		TaxAmount: amounts.TaxAmount,
		Discount:  amounts.Discount,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ReconcileInvoice handles POST /invoices/reconcile
func (h *FiscalHandler) ReconcileInvoice(c *gin.Context) {
	var req dto.ReconcileInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}
	amounts, err := parseAmounts(req.AmountsRequest)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	result, err := h.engine.ReconcileInvoice(c.Request.Context(), invoice.ReconcileInvoiceCommand{
		Text:            req.Text,
		KnownCompanyIDs: req.KnownCompanyIDs,
		SupposedCompany: req.SupposedCompany,
		SupposedPartner: req.SupposedPartner,
		Threshold:       req.Threshold,
		InvoiceNumber:   req.InvoiceNumber,
		IssueDate:       req.IssueDate,
		Currency:        req.Currency,
		TaxBase:         amounts.TaxBase,
		Total:           amounts.Total,
		TaxAmount:       amounts.TaxAmount,
		Discount:        amounts.Discount,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// parseAmounts parses every amount string and reports all invalid fields at once
func parseAmounts(req dto.AmountsRequest) (taxrate.Amounts, error) {
	var a taxrate.Amounts
	var invalid []string
	parse := func(name, raw string, dst *decimal.Decimal) {
		v, err := taxrate.ParseAmount(raw)
		if err != nil {
			invalid = append(invalid, name)
			return
		}
		*dst = v
	}
	parse("tax_base", req.TaxBase, &a.TaxBase)
	parse("total", req.Total, &a.Total)
	parse("tax_amount", req.TaxAmount, &a.TaxAmount)
	parse("discount", req.Discount, &a.Discount)

	if len(invalid) > 0 {
		return taxrate.Amounts{}, shared.ErrInvalidInput.WithDetails(map[string]any{"invalid_amounts": invalid})
	}
	return a, nil
}
