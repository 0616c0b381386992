package fiscal

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// separatorReplacer removes the separators OCR and humans insert inside identifiers
var separatorReplacer = strings.NewReplacer("-", "", ".", "", " ", "", "/", "", "\u00a0", "")

// vatCountries lists the VAT country prefixes (ISO 3166 except EL for Greece, plus XI)
var vatCountries = map[string]bool{
	"AT": true, "BE": true, "BG": true, "CY": true, "CZ": true, "DE": true, "DK": true,
	"EE": true, "EL": true, "ES": true, "FI": true, "FR": true, "HR": true, "HU": true,
	"IE": true, "IT": true, "LT": true, "LU": true, "LV": true, "MT": true, "NL": true,
	"PL": true, "PT": true, "RO": true, "SE": true, "SI": true, "SK": true, "XI": true,
}

// FoldText maps full-width characters to their ASCII forms and strips combining
// accents, so "Ｂ１２３４５６７４" scans the same as "B12345674". The transformers
// are stateful, so a fresh chain is built per call.
func FoldText(text string) string {
	t := transform.Chain(width.Fold, norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return folded
}

// Normalize returns the canonical form of an identifier: folded, separators removed, upper-cased
func Normalize(raw string) string {
	s := separatorReplacer.Replace(FoldText(strings.TrimSpace(raw)))
	return cases.Upper(language.Und).String(s)
}

// IsVATCountry reports whether code is a recognised VAT country prefix
func IsVATCountry(code string) bool {
	return vatCountries[code]
}

// SplitCountryPrefix splits a normalized value into its VAT country prefix and
// the national part. Domestic identifiers never start with two letters, so a
// two-letter VAT country prefix followed by at least two characters is safe to
// strip.
func SplitCountryPrefix(value string) (country, national string) {
	if len(value) > 3 && isASCIILetter(value[0]) && isASCIILetter(value[1]) {
		prefix := strings.ToUpper(value[:2])
		if vatCountries[prefix] {
			return prefix, value[2:]
		}
	}
	return "", value
}

// StripCountryPrefix removes a leading VAT country prefix, if any
func StripCountryPrefix(value string) string {
	_, national := SplitCountryPrefix(value)
	return national
}

func isASCIILetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func countDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			n++
		}
	}
	return n
}
