// Package taxrate reconciles the monetary fields of an invoice (tax base, tax
// amount, total and discount) into a legal tax percentage.
package taxrate

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/shared"
)

var hundred = decimal.NewFromInt(100)

// RateTable is the sorted, duplicate-free set of legal tax percentages
type RateTable struct {
	rates []decimal.Decimal
}

// NewRateTable builds a table; every rate must be in [0, 100)
func NewRateTable(rates ...decimal.Decimal) (RateTable, error) {
	if len(rates) == 0 {
		return RateTable{}, fmt.Errorf("%w: rate table cannot be empty", shared.ErrInvalidInput)
	}
	sorted := make([]decimal.Decimal, 0, len(rates))
	for _, r := range rates {
		if r.IsNegative() || r.GreaterThanOrEqual(hundred) {
			return RateTable{}, fmt.Errorf("%w: tax rate %s must be in [0, 100)", shared.ErrInvalidInput, r.String())
		}
		sorted = append(sorted, r)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Equal(sorted[i-1]) {
			return RateTable{}, fmt.Errorf("%w: duplicate tax rate %s", shared.ErrInvalidInput, sorted[i].String())
		}
	}
	return RateTable{rates: sorted}, nil
}

// NewRateTableFromFloats is a convenience constructor for configuration values
func NewRateTableFromFloats(rates []float64) (RateTable, error) {
	ds := make([]decimal.Decimal, 0, len(rates))
	for _, r := range rates {
		ds = append(ds, decimal.NewFromFloat(r))
	}
	return NewRateTable(ds...)
}

// SpanishRates returns the standard table: 0%, 4%, 10% and 21%
func SpanishRates() RateTable {
	return RateTable{rates: []decimal.Decimal{
		decimal.Zero,
		decimal.NewFromInt(4),
		decimal.NewFromInt(10),
		decimal.NewFromInt(21),
	}}
}

// Rates returns a copy of the table in ascending order
func (t RateTable) Rates() []decimal.Decimal {
	return append([]decimal.Decimal(nil), t.rates...)
}

// Len returns the number of rates
func (t RateTable) Len() int {
	return len(t.rates)
}

// Contains reports whether rate is in the table
func (t RateTable) Contains(rate decimal.Decimal) bool {
	for _, r := range t.rates {
		if r.Equal(rate) {
			return true
		}
	}
	return false
}

// Snap returns the table rate nearest to raw when the absolute difference is
// within tolerance. Equidistant rates resolve to the lower one.
func (t RateTable) Snap(raw, tolerance decimal.Decimal) (decimal.Decimal, bool) {
	var (
		best     decimal.Decimal
		bestDiff decimal.Decimal
		found    bool
	)
	for _, r := range t.rates {
		diff := raw.Sub(r).Abs()
		if diff.GreaterThan(tolerance) {
			continue
		}
		if !found || diff.LessThan(bestDiff) {
			best, bestDiff, found = r, diff, true
		}
	}
	return best, found
}
