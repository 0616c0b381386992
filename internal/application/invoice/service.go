// Package invoice is the application facade over fiscal identifier
// extraction, identity resolution and tax-rate reconciliation.
package invoice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/fiscal"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/resolution"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/shared"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/taxrate"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/infrastructure/document"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/infrastructure/logger"
	"github.com/JohnRSantamaria/exponential-it-sub000/internal/infrastructure/telemetry"
)

const spanService = "invoice"

// Operation names used for spans, metrics and log fields
const (
	OpExtractFiscalIDs    = "extract_fiscal_ids"
	OpExtractFiscalIDsPDF = "extract_fiscal_ids_pdf"
	OpValidateFiscalID    = "validate_fiscal_id"
	OpResolveIdentities   = "resolve_identities"
	OpReconcileTaxRate    = "reconcile_tax_rate"
	OpReconcileInvoice    = "reconcile_invoice"
)

// IDExtractor finds and validates fiscal identifiers in text
type IDExtractor interface {
	ExtractAndValidate(text string) []fiscal.Identifier
	ValidateValue(raw string) (fiscal.Identifier, bool)
}

// IdentityResolver assigns company and partner roles
type IdentityResolver interface {
	Resolve(validIDs, knownIDs []string) (resolution.ResolvedIdentity, error)
	ResolveCompanyAndPartner(supposedCompany, supposedPartner string, knownIDs []string) (resolution.ResolvedIdentity, error)
}

// ThresholdResolver is an IdentityResolver that can be re-derived with another
// similarity threshold for a single call
type ThresholdResolver interface {
	AtThreshold(threshold float64) (*resolution.Resolver, error)
}

// TaxRateReconciler validates amounts against the legal rate table
type TaxRateReconciler interface {
	Reconcile(a taxrate.Amounts) (*taxrate.Reconciliation, error)
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithLogger sets the logger used when the request context carries none
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTracer sets the tracer for operation spans
func WithTracer(t trace.Tracer) ServiceOption {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithMetrics sets the engine metrics recorder
func WithMetrics(m *telemetry.EngineMetrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithIDGenerator replaces the generator of normalized invoice IDs
func WithIDGenerator(fn func() uuid.UUID) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithMaxPDFTextBytes caps the text read from an uploaded PDF
func WithMaxPDFTextBytes(n int) ServiceOption {
	return func(s *Service) {
		s.maxPDFTextBytes = n
	}
}

// Service orchestrates the engine for one invoice at a time. The domain
// collaborators are stateless, so a Service is safe for concurrent use.
type Service struct {
	extractor       IDExtractor
	resolver        IdentityResolver
	reconciler      TaxRateReconciler
	logger          *zap.Logger
	tracer          trace.Tracer
	metrics         *telemetry.EngineMetrics
	newID           func() uuid.UUID
	maxPDFTextBytes int
}

// NewService creates a new invoice Service
func NewService(extractor IDExtractor, resolver IdentityResolver, reconciler TaxRateReconciler, opts ...ServiceOption) *Service {
	s := &Service{
		extractor:       extractor,
		resolver:        resolver,
		reconciler:      reconciler,
		logger:          zap.NewNop(),
		tracer:          otel.Tracer(telemetry.TracerName),
		newID:           uuid.New,
		maxPDFTextBytes: document.DefaultMaxTextBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// operation tracks the span, logger and timing of one facade call
type operation struct {
	name  string
	span  trace.Span
	log   *zap.Logger
	start time.Time
}

func (s *Service) begin(ctx context.Context, name string, opts ...telemetry.SpanOption) (context.Context, *operation) {
	ctx, span := telemetry.StartSpanWith(ctx, s.tracer, telemetry.ServiceSpanName(spanService, name), opts...)
	return ctx, &operation{
		name:  name,
		span:  span,
		log:   logger.ForOperation(ctx, s.logger, name),
		start: time.Now(),
	}
}

// end closes the span, records metrics and logs failures
func (s *Service) end(ctx context.Context, op *operation, err error) {
	defer op.span.End()

	outcome := telemetry.OutcomeSuccess
	if err != nil {
		codes := ErrorCodes(err)
		outcome = strings.Join(codes, "+")
		telemetry.SetAttributes(op.span, telemetry.SpanAttrErrorCode, outcome)
		telemetry.RecordError(op.span, err)

		fields := []zap.Field{zap.Strings("error_codes", codes), zap.Error(err)}
		if isBusinessFailure(err) {
			op.log.Warn("Fiscal engine rejected input", append(fields, detailFields(err)...)...)
		} else {
			op.log.Error("Fiscal engine failed", fields...)
		}
	} else {
		telemetry.SetOK(op.span)
	}

	s.metrics.Record(ctx, op.name, outcome, time.Since(op.start))
}

func isBusinessFailure(err error) bool {
	for _, code := range ErrorCodes(err) {
		if code == outcomeInternal {
			return false
		}
	}
	return true
}

// detailFields logs the structured diagnostics of every typed error in err
func detailFields(err error) []zap.Field {
	var fields []zap.Field
	var visit func(error)
	visit = func(e error) {
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				visit(inner)
			}
			return
		}
		var detailed shared.DetailedError
		if errors.As(e, &detailed) {
			for _, code := range ErrorCodes(e) {
				fields = append(fields, zap.Any(strings.ToLower(code), detailed.Details()))
			}
		}
	}
	visit(err)
	return fields
}

// ExtractAndValidateFiscalIDs returns the valid fiscal identifiers found in
// OCR text, deduplicated by canonical value in first-seen order
func (s *Service) ExtractAndValidateFiscalIDs(ctx context.Context, text string) []FiscalIDResult {
	ctx, op := s.begin(ctx, OpExtractFiscalIDs)

	ids := s.extractor.ExtractAndValidate(text)
	telemetry.SetAttributes(op.span, telemetry.SpanAttrValidCount, len(ids))
	op.log.Debug("Fiscal identifiers extracted",
		zap.Int("text_length", len(text)),
		zap.Int("valid_count", len(ids)),
	)

	s.end(ctx, op, nil)
	return ToFiscalIDResults(ids)
}

// ExtractFiscalIDsFromPDF reads the text layer of a PDF and extracts the
// fiscal identifiers from it
func (s *Service) ExtractFiscalIDsFromPDF(ctx context.Context, data []byte) (results []FiscalIDResult, err error) {
	ctx, op := s.begin(ctx, OpExtractFiscalIDsPDF, telemetry.WithAttribute("document.size", len(data)))
	defer func() { s.end(ctx, op, err) }()

	pdfText, err := document.ExtractPDFText(data, s.maxPDFTextBytes)
	if err != nil {
		return nil, err
	}
	if pdfText.Truncated {
		op.log.Warn("PDF text truncated", zap.Int("max_bytes", s.maxPDFTextBytes))
	}

	ids := s.extractor.ExtractAndValidate(pdfText.Text)
	telemetry.SetAttributes(op.span,
		"document.pages", pdfText.PageCount,
		telemetry.SpanAttrValidCount, len(ids),
	)
	op.log.Debug("Fiscal identifiers extracted from PDF",
		zap.Int("pages", pdfText.PageCount),
		zap.Int("valid_count", len(ids)),
	)
	return ToFiscalIDResults(ids), nil
}

// ValidateFiscalID validates a single caller-supplied value
func (s *Service) ValidateFiscalID(ctx context.Context, value string) (result *FiscalIDResult, err error) {
	ctx, op := s.begin(ctx, OpValidateFiscalID)
	defer func() { s.end(ctx, op, err) }()

	id, ok := s.extractor.ValidateValue(value)
	if !ok {
		return nil, &InvalidTaxIDError{Value: value}
	}
	r := ToFiscalIDResult(id)
	return &r, nil
}

// ResolveIdentities determines which identifier belongs to the company and
// which to the partner
func (s *Service) ResolveIdentities(ctx context.Context, cmd ResolveIdentitiesCommand) (result *IdentityResult, err error) {
	ctx, op := s.begin(ctx, OpResolveIdentities,
		telemetry.WithAttribute(telemetry.SpanAttrCandidateCount, len(cmd.ValidIDs)),
		telemetry.WithAttribute(telemetry.SpanAttrKnownCount, len(cmd.KnownCompanyIDs)),
	)
	defer func() { s.end(ctx, op, err) }()

	result, err = s.resolveIdentity(cmd)
	if err != nil {
		return nil, err
	}
	telemetry.SetAttributes(op.span,
		telemetry.SpanAttrCompanyID, result.CompanyTaxID,
		telemetry.SpanAttrPartnerID, result.PartnerTaxID,
	)
	op.log.Debug("Identities resolved",
		zap.String("company_tax_id", result.CompanyTaxID),
		zap.String("partner_tax_id", result.PartnerTaxID),
		zap.Bool("swapped", result.Swapped),
	)
	return result, nil
}

func (s *Service) resolverFor(threshold *float64) (IdentityResolver, error) {
	if threshold == nil {
		return s.resolver, nil
	}
	tr, ok := s.resolver.(ThresholdResolver)
	if !ok {
		return nil, fmt.Errorf("%w: resolver does not support a per-call threshold", shared.ErrInvalidInput)
	}
	return tr.AtThreshold(*threshold)
}

func (s *Service) resolveIdentity(cmd ResolveIdentitiesCommand) (*IdentityResult, error) {
	resolver, err := s.resolverFor(cmd.Threshold)
	if err != nil {
		return nil, err
	}
	if cmd.HasSupposedPair() {
		resolved, err := resolver.ResolveCompanyAndPartner(cmd.SupposedCompany, cmd.SupposedPartner, cmd.KnownCompanyIDs)
		if err != nil {
			return nil, err
		}
		return &IdentityResult{
			CompanyTaxID: resolved.Company,
			PartnerTaxID: resolved.Partner,
			Swapped:      resolved.Company != cmd.SupposedCompany,
		}, nil
	}

	resolved, err := resolver.Resolve(cmd.ValidIDs, cmd.KnownCompanyIDs)
	if err != nil {
		return nil, err
	}
	return &IdentityResult{CompanyTaxID: resolved.Company, PartnerTaxID: resolved.Partner}, nil
}

// ReconcileTaxRate infers missing amounts and returns the validated tax rate
func (s *Service) ReconcileTaxRate(ctx context.Context, cmd ReconcileTaxRateCommand) (result *TaxRateResult, err error) {
	amounts := cmd.Amounts()
	ctx, op := s.begin(ctx, OpReconcileTaxRate,
		telemetry.WithAttribute(telemetry.SpanAttrPresence, amounts.Presence().String()),
	)
	defer func() { s.end(ctx, op, err) }()

	rec, err := s.reconciler.Reconcile(amounts)
	if err != nil {
		return nil, err
	}
	s.annotateReconciliation(op, rec)
	return ToTaxRateResult(rec), nil
}

func (s *Service) annotateReconciliation(op *operation, rec *taxrate.Reconciliation) {
	telemetry.SetAttributes(op.span,
		telemetry.SpanAttrBranch, string(rec.Branch),
		telemetry.SpanAttrRate, rec.Rate(),
		telemetry.SpanAttrCorrected, rec.Corrected,
	)
	op.log.Debug("Tax rate reconciled",
		zap.String("branch", string(rec.Branch)),
		zap.String("rate", rec.Rate().String()),
		zap.String("raw_rate", rec.RawRate.String()),
		zap.Bool("corrected", rec.Corrected),
	)
}

// ReconcileInvoice extracts the identifiers from the invoice text, resolves
// company and partner, reconciles the amounts and assembles the normalized
// invoice. Identity and tax failures are reported together.
func (s *Service) ReconcileInvoice(ctx context.Context, cmd ReconcileInvoiceCommand) (result *NormalizedInvoice, err error) {
	ctx, op := s.begin(ctx, OpReconcileInvoice,
		telemetry.WithAttribute(telemetry.SpanAttrKnownCount, len(cmd.KnownCompanyIDs)),
	)
	defer func() { s.end(ctx, op, err) }()

	ids := s.extractor.ExtractAndValidate(cmd.Text)
	telemetry.AddEvent(op.span, "fiscal_ids_extracted", telemetry.SpanAttrValidCount, len(ids))

	identity, identityErr := s.resolveIdentity(ResolveIdentitiesCommand{
		ValidIDs:        fiscal.Values(ids),
		KnownCompanyIDs: cmd.KnownCompanyIDs,
		SupposedCompany: cmd.SupposedCompany,
		SupposedPartner: cmd.SupposedPartner,
		Threshold:       cmd.Threshold,
	})

	amounts := taxrate.Amounts{
		TaxBase:   cmd.TaxBase,
		Total:     cmd.Total,
		TaxAmount: cmd.TaxAmount,
		Discount:  cmd.Discount,
	}
	rec, taxErr := s.reconciler.Reconcile(amounts)

	if joined := errors.Join(identityErr, taxErr); joined != nil {
		return nil, joined
	}
	s.annotateReconciliation(op, rec)

	tax := ToTaxRateResult(rec)
	invoice := &NormalizedInvoice{
		ID:             s.newID(),
		CompanyTaxID:   identity.CompanyTaxID,
		PartnerTaxID:   identity.PartnerTaxID,
		InvoiceNumber:  cmd.InvoiceNumber,
		IssueDate:      cmd.IssueDate,
		Currency:       cmd.Currency,
		TaxBase:        tax.TaxBase,
		Discount:       tax.Discount,
		TaxAmount:      tax.TaxAmount,
		Total:          tax.Total,
		TaxRate:        tax.TaxRate,
		CandidateRates: tax.CandidateRates,
		Branch:         tax.Branch,
		Corrected:      tax.Corrected,
		Swapped:        identity.Swapped,
		ExtractedIDs:   ToFiscalIDResults(ids),
	}

	op.log.Info("Invoice reconciled",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("company_tax_id", invoice.CompanyTaxID),
		zap.String("partner_tax_id", invoice.PartnerTaxID),
		zap.String("branch", invoice.Branch),
	)
	return invoice, nil
}
