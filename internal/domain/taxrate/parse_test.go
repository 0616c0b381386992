package taxrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/shared"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "0"},
		{"  ", "0"},
		{"121", "121"},
		{"121,00", "121"},
		{"121.00", "121"},
		{"1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"1.234.567", "1234567"},
		{"1,234,567", "1234567"},
		{"1 234,56 €", "1234.56"},
		{"€1,234.56", "1234.56"},
		{"1.234,56 EUR", "1234.56"},
		{"1 234,56", "1234.56"},
		{"-21,00", "-21"},
		{"21,00-", "-21"},
		{"(21,00)", "-21"},
		{"$ 0.99", "0.99"},
		{"1.210", "1210"},
		{"1.000", "1000"},
		{"12.500", "12500"},
		{"123,456", "123456"},
		{"1.210 €", "1210"},
		{"-1.000", "-1000"},
		{"0.500", "0.5"},
		{"0,125", "0.125"},
		{"1234.567", "1234.567"},
		{"12,50", "12.5"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			require.NoError(t, err)
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, in := range []string{"abc", "12a", "1e5", "--5", "+-3"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseAmount(in)
			assert.ErrorIs(t, err, shared.ErrInvalidInput)
		})
	}
}

func TestParseAmount_ThousandsGroupingReconciles(t *testing.T) {
	r, err := NewReconciler()
	require.NoError(t, err)

	base, err := ParseAmount("1.000")
	require.NoError(t, err)
	tax, err := ParseAmount("210,00")
	require.NoError(t, err)

	result, err := r.Reconcile(Amounts{TaxBase: base, TaxAmount: tax})
	require.NoError(t, err)
	assert.True(t, result.Rate().Equal(d("21")))
	assert.True(t, result.Amounts.Total.Equal(d("1210")))
}

func TestMustParseAmount(t *testing.T) {
	assert.True(t, MustParseAmount("10,5").Equal(d("10.5")))
	assert.Panics(t, func() { MustParseAmount("x") })
}
