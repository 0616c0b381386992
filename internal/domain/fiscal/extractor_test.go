package fiscal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInvoice = `FACTURA Nº 2024-0117
Emisor: Suministros Norte S.L.  CIF: B-1234567-4
Cliente: Ana Pérez  NIF 12.345.678-Z
Proveedor intracomunitario: VAT FR40303265045
Base imponible 100,00  IVA 21% 21,00  Total 121,00
Ref. pedido 99999999`

func TestExtractor_Extract(t *testing.T) {
	e := NewExtractor()

	t.Run("finds every scheme in first-seen order", func(t *testing.T) {
		set := e.Extract(sampleInvoice)
		keys := set.Normalized()
		assert.Contains(t, keys, "B12345674")
		assert.Contains(t, keys, "12345678Z")
		assert.Contains(t, keys, "FR40303265045")
		assert.Contains(t, keys, "99999999")

		for i := 1; i < len(set); i++ {
			assert.LessOrEqual(t, set[i-1].Offset, set[i].Offset)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Equal(t, 0, e.Extract("").Len())
		assert.Equal(t, 0, e.Extract("   \n\t").Len())
	})

	t.Run("text without identifiers", func(t *testing.T) {
		assert.Equal(t, 0, e.Extract("Gracias por su compra").Len())
	})

	t.Run("keeps the first occurrence of each normalized value", func(t *testing.T) {
		set := e.Extract("B12345674 y luego b-1234567-4 otra vez B.1234567.4")
		require.Equal(t, 1, set.Len())
		assert.Equal(t, "B12345674", set[0].Raw)
		assert.Equal(t, SchemeCIF, set[0].Scheme)
		assert.Equal(t, 0, set[0].Offset)
	})

	t.Run("lower-case VAT numbers are found", func(t *testing.T) {
		set := e.Extract("nif intracomunitario esb12345674")
		require.Equal(t, 1, set.Len())
		assert.Equal(t, SchemeEUVAT, set[0].Scheme)
		assert.Equal(t, "ESB12345674", set[0].Normalized())
	})

	t.Run("words starting with a country code are not VAT candidates", func(t *testing.T) {
		assert.Equal(t, 0, e.Extract("Deutschland Italia Esperanza").Len())
	})

	t.Run("full-width digits are folded", func(t *testing.T) {
		set := e.Extract("ＣＩＦ：Ｂ１２３４５６７４")
		require.Equal(t, 1, set.Len())
		assert.Equal(t, "B12345674", set[0].Normalized())
	})
}

func TestExtractor_ExtractIsIdempotent(t *testing.T) {
	e := NewExtractor()
	first := e.Extract(sampleInvoice)
	second := e.Extract(sampleInvoice)
	assert.ElementsMatch(t, first, second)
}

func TestExtractor_DedupInvariant(t *testing.T) {
	e := NewExtractor()
	texts := []string{
		sampleInvoice,
		"B12345674 B-1234567-4 b12345674 12345678Z 12345678-z",
		"X1234567L x-1234567-l ESB12345674 ES-B12345674",
	}
	for _, text := range texts {
		seen := map[string]bool{}
		for _, key := range e.Extract(text).Normalized() {
			assert.False(t, seen[key], "duplicate normalized value %s", key)
			seen[key] = true
		}
	}
}

func TestExtractor_Validate(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name      string
		candidate Candidate
		wantOK    bool
		wantValue string
		scheme    Scheme
		country   string
	}{
		{"cif", Candidate{Scheme: SchemeCIF, Raw: "A12345674"}, true, "A12345674", SchemeCIF, "ES"},
		{"cif bad control", Candidate{Scheme: SchemeCIF, Raw: "A12345670"}, false, "", "", ""},
		{"nif with separators", Candidate{Scheme: SchemeNIF, Raw: "12.345.678-Z"}, true, "12345678Z", SchemeNIF, "ES"},
		{"fallback resolves to nif", Candidate{Scheme: SchemeFallback, Raw: "12345678Z"}, true, "12345678Z", SchemeNIF, "ES"},
		{"vat", Candidate{Scheme: SchemeEUVAT, Raw: "DE136695976"}, true, "DE136695976", SchemeEUVAT, "DE"},
		{"spanish vat", Candidate{Scheme: SchemeEUVAT, Raw: "ES-B12345674"}, true, "ESB12345674", SchemeEUVAT, "ES"},
		{"vat with trailing reference", Candidate{Scheme: SchemeEUVAT, Raw: "ESB12345674-2024"}, true, "ESB12345674", SchemeEUVAT, "ES"},
		{"vat bad checksum", Candidate{Scheme: SchemeEUVAT, Raw: "DE136695977"}, false, "", "", ""},
		{"vat without prefix", Candidate{Scheme: SchemeEUVAT, Raw: "136695976"}, false, "", "", ""},
		{"unknown scheme", Candidate{Scheme: Scheme("OTHER"), Raw: "A12345674"}, false, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := e.Validate(tt.candidate)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.True(t, id.IsZero())
				return
			}
			assert.Equal(t, tt.wantValue, id.Value())
			assert.Contains(t, tt.candidate.Raw, id.Raw())
			assert.Equal(t, tt.scheme, id.Scheme())
			assert.Equal(t, tt.country, id.Country())
		})
	}
}

func TestExtractor_ExtractAndValidate(t *testing.T) {
	e := NewExtractor()

	ids := e.ExtractAndValidate(sampleInvoice)
	assert.Equal(t, []string{"B12345674", "12345678Z", "FR40303265045"}, Values(ids))

	t.Run("invalid checksums are dropped silently", func(t *testing.T) {
		ids := e.ExtractAndValidate("CIF B12345670 NIF 12345678A")
		assert.Empty(t, ids)
	})

	t.Run("VAT glued to following text is recovered", func(t *testing.T) {
		ids := e.ExtractAndValidate("CIF: ESB12345674-2024")
		require.Len(t, ids, 1)
		assert.Equal(t, "ESB12345674", ids[0].Value())
		assert.Equal(t, "ESB12345674", ids[0].Raw())
		assert.Equal(t, SchemeEUVAT, ids[0].Scheme())
	})

	t.Run("lower-case VAT validates", func(t *testing.T) {
		assert.Equal(t, []string{"ESB12345674"}, Values(e.ExtractAndValidate("esb12345674")))
	})

	t.Run("custom VAT collaborator", func(t *testing.T) {
		rejectAll := NewExtractor(WithVATValidator(VATValidatorFunc(func(string, string) bool { return false })))
		ids := rejectAll.ExtractAndValidate("VAT FR40303265045 CIF B12345674")
		assert.Equal(t, []string{"B12345674"}, Values(ids))
	})

	t.Run("nil VAT collaborator keeps the default", func(t *testing.T) {
		ex := NewExtractor(WithVATValidator(nil))
		assert.Equal(t, []string{"FR40303265045"}, Values(ex.ExtractAndValidate("FR40303265045")))
	})
}

func TestExtractor_ValidateValue(t *testing.T) {
	e := NewExtractor()

	id, ok := e.ValidateValue(" b-1234567-4 ")
	require.True(t, ok)
	assert.Equal(t, "B12345674", id.Value())
	assert.Equal(t, SchemeCIF, id.Scheme())

	id, ok = e.ValidateValue("ESB12345674")
	require.True(t, ok)
	assert.Equal(t, SchemeEUVAT, id.Scheme())
	assert.Equal(t, "ES", id.Country())

	_, ok = e.ValidateValue("ESX1234567A")
	assert.False(t, ok)

	_, ok = e.ValidateValue("ESB12345674-2024")
	assert.False(t, ok, "a single value must not carry trailing text")

	_, ok = e.ValidateValue("")
	assert.False(t, ok)
}
