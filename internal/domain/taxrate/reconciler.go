package taxrate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/shared"
)

// Default tolerances
var (
	DefaultBalanceTolerance       = decimal.NewFromFloat(0.30) // currency units
	DefaultDirectRateTolerance    = decimal.NewFromFloat(0.03) // percentage points
	DefaultCorrectedRateTolerance = decimal.NewFromFloat(0.3)  // percentage points
)

// Branch names the decision-table row that produced a reconciliation
type Branch string

const (
	BranchDirect             Branch = "direct"              // B, T, A balanced
	BranchTrustTotal         Branch = "trust_total"         // B, T, A unbalanced; base recomputed from T - A
	BranchTrustBase          Branch = "trust_base"          // B, T, A unbalanced; total recomputed from B + A
	BranchSelfCorrection     Branch = "self_correction"     // B, T, A unbalanced and neither correction fits
	BranchDiscountCorrection Branch = "discount_correction" // B, T, A unbalanced with discount; base recomputed from T - A + D
	BranchInferTaxAmount     Branch = "infer_tax_amount"    // B, T known
	BranchInferTaxBase       Branch = "infer_tax_base"      // T, A known
	BranchInferTotal         Branch = "infer_total"         // B, A known
)

// Reconciliation is the outcome of a successful reconciliation
type Reconciliation struct {
	// Amounts holds the reconciled values with missing or corrected fields filled in
	Amounts    Amounts
	Candidates []decimal.Decimal
	Branch     Branch
	Corrected  bool
	RawRate    decimal.Decimal
}

// Rate returns the lowest candidate, the deterministic pick when several rates qualify
func (r *Reconciliation) Rate() decimal.Decimal {
	if len(r.Candidates) == 0 {
		return decimal.Zero
	}
	lowest := r.Candidates[0]
	for _, c := range r.Candidates[1:] {
		if c.LessThan(lowest) {
			lowest = c
		}
	}
	return lowest
}

// Option configures a Reconciler
type Option func(*Reconciler)

// WithRateTable replaces the legal rate table
func WithRateTable(table RateTable) Option {
	return func(r *Reconciler) {
		r.rates = table
	}
}

// WithBalanceTolerance sets the absolute tolerance of base - discount + tax == total
func WithBalanceTolerance(tol decimal.Decimal) Option {
	return func(r *Reconciler) {
		r.balanceTolerance = tol
	}
}

// WithDirectRateTolerance sets the snapping tolerance for balanced amounts
func WithDirectRateTolerance(tol decimal.Decimal) Option {
	return func(r *Reconciler) {
		r.directTolerance = tol
	}
}

// WithCorrectedRateTolerance sets the snapping tolerance for inferred or corrected amounts
func WithCorrectedRateTolerance(tol decimal.Decimal) Option {
	return func(r *Reconciler) {
		r.correctedTolerance = tol
	}
}

// Reconciler infers missing amounts and validates the implied tax rate.
// It is immutable after construction and safe for concurrent use.
//
// A discount always reduces the base before tax: the reconciled amounts satisfy
// taxBase - discount + taxAmount == total in every branch.
type Reconciler struct {
	rates              RateTable
	balanceTolerance   decimal.Decimal
	directTolerance    decimal.Decimal
	correctedTolerance decimal.Decimal
}

// NewReconciler creates a reconciler with the standard rates and tolerances unless overridden
func NewReconciler(opts ...Option) (*Reconciler, error) {
	r := &Reconciler{
		rates:              SpanishRates(),
		balanceTolerance:   DefaultBalanceTolerance,
		directTolerance:    DefaultDirectRateTolerance,
		correctedTolerance: DefaultCorrectedRateTolerance,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rates.Len() == 0 {
		return nil, fmt.Errorf("%w: rate table cannot be empty", shared.ErrInvalidInput)
	}
	tolerances := []struct {
		name  string
		value decimal.Decimal
	}{
		{"balance", r.balanceTolerance},
		{"direct rate", r.directTolerance},
		{"corrected rate", r.correctedTolerance},
	}
	for _, tol := range tolerances {
		if !tol.value.IsPositive() {
			return nil, fmt.Errorf("%w: %s tolerance must be positive", shared.ErrInvalidInput, tol.name)
		}
	}
	return r, nil
}

// Rates returns the rate table in use
func (r *Reconciler) Rates() RateTable {
	return r.rates
}

type branchFunc func(*Reconciler, Amounts) (*Reconciliation, Reason)

// decisionTable maps each presence vector with at least two known amounts to its branch
var decisionTable = map[PresenceVector]branchFunc{
	HasTaxBase | HasTotal | HasTaxAmount: (*Reconciler).reconcileComplete,
	HasTaxBase | HasTotal:                (*Reconciler).inferTaxAmount,
	HasTotal | HasTaxAmount:              (*Reconciler).inferTaxBase,
	HasTaxBase | HasTaxAmount:            (*Reconciler).inferTotal,
}

// Reconcile validates the amounts and returns the candidate tax rates.
// Every failure is a *TaxPercentageNotFoundError carrying the inputs.
func (r *Reconciler) Reconcile(a Amounts) (*Reconciliation, error) {
	presence := a.Presence()
	if presence.Count() < 2 {
		return nil, r.notFound(a, presence, "", ReasonInsufficientAmounts)
	}
	branch, ok := decisionTable[presence]
	if !ok {
		return nil, r.notFound(a, presence, "", ReasonInsufficientAmounts)
	}

	result, reason := branch(r, a)
	if reason != "" {
		return nil, r.notFound(a, presence, result.Branch, reason)
	}
	if len(result.Candidates) == 0 {
		return nil, r.notFound(a, presence, result.Branch, ReasonNoStandardRate)
	}
	return result, nil
}

func (r *Reconciler) notFound(a Amounts, p PresenceVector, branch Branch, reason Reason) error {
	return &TaxPercentageNotFoundError{Amounts: a, Presence: p, Branch: branch, Reason: reason}
}

// evaluate computes taxAmount / netBase * 100 and snaps it to the table
func (r *Reconciler) evaluate(a Amounts, netBase, tolerance decimal.Decimal, branch Branch, corrected bool) *Reconciliation {
	raw := a.TaxAmount.Div(netBase).Mul(hundred)
	result := &Reconciliation{
		Amounts:    a,
		Candidates: []decimal.Decimal{},
		Branch:     branch,
		Corrected:  corrected,
		RawRate:    raw.Round(4),
	}
	if rate, ok := r.rates.Snap(raw, tolerance); ok {
		result.Candidates = append(result.Candidates, rate)
	}
	return result
}

func (r *Reconciler) reconcileComplete(a Amounts) (*Reconciliation, Reason) {
	if a.Balanced(r.balanceTolerance) {
		net := a.NetBase()
		if !net.IsPositive() {
			return &Reconciliation{Amounts: a, Branch: BranchDirect}, ReasonInconsistentAmounts
		}
		return r.evaluate(a, net, r.directTolerance, BranchDirect, false), ""
	}

	if a.HasDiscount() {
		net := a.Total.Sub(a.TaxAmount)
		if !net.IsPositive() {
			return &Reconciliation{Amounts: a, Branch: BranchDiscountCorrection}, ReasonInconsistentAmounts
		}
		corrected := a
		corrected.TaxBase = net.Add(a.Discount)
		result := r.evaluate(corrected, net, r.correctedTolerance, BranchDiscountCorrection, true)
		if len(result.Candidates) == 0 {
			return result, ReasonInconsistentAmounts
		}
		return result, ""
	}

	// Trusting the total is preferred when both corrections fit.
	if base := a.Total.Sub(a.TaxAmount); base.IsPositive() {
		corrected := a
		corrected.TaxBase = base
		if result := r.evaluate(corrected, base, r.correctedTolerance, BranchTrustTotal, true); len(result.Candidates) > 0 {
			return result, ""
		}
	}
	corrected := a
	corrected.Total = a.TaxBase.Add(a.TaxAmount)
	if result := r.evaluate(corrected, a.TaxBase, r.correctedTolerance, BranchTrustBase, true); len(result.Candidates) > 0 {
		return result, ""
	}
	return &Reconciliation{Amounts: a, Branch: BranchSelfCorrection}, ReasonInconsistentAmounts
}

func (r *Reconciler) inferTaxAmount(a Amounts) (*Reconciliation, Reason) {
	net := a.NetBase()
	tax := a.Total.Sub(net)
	if !net.IsPositive() || tax.IsNegative() {
		return &Reconciliation{Amounts: a, Branch: BranchInferTaxAmount}, ReasonInconsistentAmounts
	}
	inferred := a
	inferred.TaxAmount = tax
	return r.evaluate(inferred, net, r.correctedTolerance, BranchInferTaxAmount, false), ""
}

func (r *Reconciler) inferTaxBase(a Amounts) (*Reconciliation, Reason) {
	net := a.Total.Sub(a.TaxAmount)
	if !net.IsPositive() {
		return &Reconciliation{Amounts: a, Branch: BranchInferTaxBase}, ReasonInconsistentAmounts
	}
	inferred := a
	inferred.TaxBase = net
	if a.HasDiscount() {
		inferred.TaxBase = net.Add(a.Discount)
	}
	return r.evaluate(inferred, net, r.correctedTolerance, BranchInferTaxBase, false), ""
}

func (r *Reconciler) inferTotal(a Amounts) (*Reconciliation, Reason) {
	net := a.NetBase()
	if !net.IsPositive() {
		return &Reconciliation{Amounts: a, Branch: BranchInferTotal}, ReasonInconsistentAmounts
	}
	inferred := a
	inferred.Total = net.Add(a.TaxAmount)
	return r.evaluate(inferred, net, r.correctedTolerance, BranchInferTotal, false), ""
}
