// Package fiscal extracts and validates fiscal identifiers (CIF, NIF, NIE, EU VAT)
// from free OCR text.
package fiscal

// Scheme tags the format family a fiscal identifier belongs to
type Scheme string

const (
	SchemeCIF        Scheme = "CIF"         // Domestic company identifier: letter + 7 digits + control
	SchemeNIF        Scheme = "NIF"         // Domestic personal identifier: 8 digits + control letter
	SchemeNIE        Scheme = "NIE"         // Foreign resident identifier: X/Y/Z + 7 digits + control letter
	SchemeNumericCIF Scheme = "NUMERIC_CIF" // Company identifier whose leading letter was lost: 7 digits + control digit
	SchemeEUVAT      Scheme = "EU_VAT"      // Intra-community VAT number with a 2-letter country prefix
	SchemeFallback   Scheme = "FALLBACK"    // Extraction-only: alphanumeric token tried against the domestic schemes
)

// DomesticCountry is the country code assigned to identifiers of the domestic schemes
const DomesticCountry = "ES"

// IsValid returns true if the scheme is a known scheme
func (s Scheme) IsValid() bool {
	switch s {
	case SchemeCIF, SchemeNIF, SchemeNIE, SchemeNumericCIF, SchemeEUVAT, SchemeFallback:
		return true
	}
	return false
}

// String returns the string representation
func (s Scheme) String() string {
	return string(s)
}

// AllSchemes returns every scheme an Identifier can carry.
// SchemeFallback is not included: validated identifiers always carry a concrete scheme.
func AllSchemes() []Scheme {
	return []Scheme{
		SchemeCIF,
		SchemeNIF,
		SchemeNIE,
		SchemeNumericCIF,
		SchemeEUVAT,
	}
}

// Identifier is a fiscal identifier that has passed its scheme's format and checksum.
// It is immutable and can only be obtained from the validators in this package.
type Identifier struct {
	value   string
	raw     string
	scheme  Scheme
	country string
}

func newIdentifier(scheme Scheme, raw, value, country string) Identifier {
	return Identifier{
		value:   value,
		raw:     raw,
		scheme:  scheme,
		country: country,
	}
}

// Value returns the canonical form: separators removed, upper-cased
func (id Identifier) Value() string {
	return id.value
}

// Raw returns the identifier as it appeared in the source text
func (id Identifier) Raw() string {
	return id.raw
}

// Scheme returns the scheme the identifier was validated against
func (id Identifier) Scheme() Scheme {
	return id.scheme
}

// Country returns the ISO country prefix (EL for Greece, XI for Northern Ireland)
func (id Identifier) Country() string {
	return id.country
}

// IsZero reports whether the identifier is the zero value
func (id Identifier) IsZero() bool {
	return id.value == ""
}

// Equal compares two identifiers by canonical value
func (id Identifier) Equal(other Identifier) bool {
	return id.value == other.value
}

// String returns the canonical value
func (id Identifier) String() string {
	return id.value
}

// Values returns the canonical values of the identifiers, preserving order
func Values(ids []Identifier) []string {
	values := make([]string, 0, len(ids))
	for _, id := range ids {
		values = append(values, id.value)
	}
	return values
}

// Candidate is an identifier-shaped substring found in text, before validation
type Candidate struct {
	Scheme Scheme
	Raw    string
	Offset int
}

// Normalized returns the separator-free, upper-cased form used for deduplication
func (c Candidate) Normalized() string {
	return Normalize(c.Raw)
}

// CandidateSet holds the candidates of one extraction pass in first-seen order.
// No two candidates share the same normalized form.
type CandidateSet []Candidate

// Len returns the number of candidates
func (s CandidateSet) Len() int {
	return len(s)
}

// Normalized returns the normalized forms of the candidates in order
func (s CandidateSet) Normalized() []string {
	keys := make([]string, 0, len(s))
	for _, c := range s {
		keys = append(keys, c.Normalized())
	}
	return keys
}
