package taxrate

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts is the monetary triple of an invoice plus its optional discount.
// Zero or negative values are treated as unknown.
type Amounts struct {
	TaxBase   decimal.Decimal `json:"tax_base"`
	Total     decimal.Decimal `json:"total"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Discount  decimal.Decimal `json:"discount"`
}

// PresenceVector records which of tax base, total and tax amount are known-positive
type PresenceVector uint8

const (
	HasTaxBase   PresenceVector = 1 << iota // B
	HasTotal                                // T
	HasTaxAmount                            // A
)

// Presence returns the presence vector of the three main amounts
func (a Amounts) Presence() PresenceVector {
	var p PresenceVector
	if a.TaxBase.IsPositive() {
		p |= HasTaxBase
	}
	if a.Total.IsPositive() {
		p |= HasTotal
	}
	if a.TaxAmount.IsPositive() {
		p |= HasTaxAmount
	}
	return p
}

// HasDiscount reports whether a positive discount was supplied
func (a Amounts) HasDiscount() bool {
	return a.Discount.IsPositive()
}

// NetBase is the tax base after discount; the tax applies to this value
func (a Amounts) NetBase() decimal.Decimal {
	if a.HasDiscount() {
		return a.TaxBase.Sub(a.Discount)
	}
	return a.TaxBase
}

// Imbalance is |taxBase - discount + taxAmount - total|
func (a Amounts) Imbalance() decimal.Decimal {
	return a.NetBase().Add(a.TaxAmount).Sub(a.Total).Abs()
}

// Balanced reports whether the amounts add up within tolerance
func (a Amounts) Balanced(tolerance decimal.Decimal) bool {
	return a.Imbalance().LessThanOrEqual(tolerance)
}

// Has reports whether every bit of mask is set
func (p PresenceVector) Has(mask PresenceVector) bool {
	return p&mask == mask
}

// Count returns the number of known amounts
func (p PresenceVector) Count() int {
	n := 0
	for _, bit := range []PresenceVector{HasTaxBase, HasTotal, HasTaxAmount} {
		if p&bit != 0 {
			n++
		}
	}
	return n
}

// String renders the vector as "BTA" with "-" for missing amounts
func (p PresenceVector) String() string {
	var b strings.Builder
	for i, bit := range []PresenceVector{HasTaxBase, HasTotal, HasTaxAmount} {
		if p&bit != 0 {
			b.WriteByte("BTA"[i])
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}
