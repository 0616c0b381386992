package fiscal

import (
	"regexp"
	"sort"
	"strings"
)

// Minimum digit counts that keep the fallback and VAT patterns from matching ordinary words
const (
	minFallbackDigits = 7
	minVATDigits      = 6
)

// pattern binds a scheme to the expression that finds its candidates
type pattern struct {
	scheme Scheme
	re     *regexp.Regexp
}

// patterns are listed in priority order: when two patterns match at the same
// offset with the same normalized value, the earlier scheme is kept.
var patterns = []pattern{
	{SchemeCIF, regexp.MustCompile(`(?i)\b[ABCDEFGHJNPQRSUVW][-.]?\d{7}[-.]?[0-9A-J]\b`)},
	{SchemeNIF, regexp.MustCompile(`(?i)\b\d{2}\.?\d{3}\.?\d{3}[-.]?[TRWAGMYFPDXBNJZSQVHLCKE]\b`)},
	{SchemeNIE, regexp.MustCompile(`(?i)\b[XYZ][-.]?\d{7}[-.]?[A-Z]\b`)},
	{SchemeEUVAT, regexp.MustCompile(`(?i)\b(?:` + vatPrefixAlternation() + `)[-.]?[0-9A-Z](?:[-.]?[0-9A-Z+*]){1,13}\b`)},
	{SchemeNumericCIF, regexp.MustCompile(`\b\d{8}\b`)},
	{SchemeFallback, regexp.MustCompile(`(?i)\b[0-9A-Z]{9}\b`)},
}

func vatPrefixAlternation() string {
	prefixes := make([]string, 0, len(vatCountries))
	for code := range vatCountries {
		prefixes = append(prefixes, code)
	}
	sort.Strings(prefixes)
	return strings.Join(prefixes, "|")
}

func schemePriority(s Scheme) int {
	for i, p := range patterns {
		if p.scheme == s {
			return i
		}
	}
	return len(patterns)
}

// ExtractorOption configures an Extractor
type ExtractorOption func(*Extractor)

// WithVATValidator replaces the VAT collaborator
func WithVATValidator(v VATValidator) ExtractorOption {
	return func(e *Extractor) {
		if v != nil {
			e.vat = v
		}
	}
}

// Extractor finds fiscal identifiers in OCR text and validates them.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	vat VATValidator
}

// NewExtractor creates an extractor using StandardVATValidator unless overridden
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{vat: NewStandardVATValidator()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract scans text for identifier-shaped substrings. The text is folded first
// (full-width to ASCII, accents removed), so Raw and Offset refer to the folded
// text. Candidates are ordered by offset and deduplicated by normalized form,
// keeping the first occurrence.
func (e *Extractor) Extract(text string) CandidateSet {
	folded := FoldText(text)
	if strings.TrimSpace(folded) == "" {
		return CandidateSet{}
	}

	var found []Candidate
	for _, p := range patterns {
		for _, loc := range p.re.FindAllStringIndex(folded, -1) {
			raw := folded[loc[0]:loc[1]]
			if p.scheme == SchemeFallback && countDigits(raw) < minFallbackDigits {
				continue
			}
			if p.scheme == SchemeEUVAT && countDigits(raw) < minVATDigits {
				continue
			}
			found = append(found, Candidate{Scheme: p.scheme, Raw: raw, Offset: loc[0]})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Offset != found[j].Offset {
			return found[i].Offset < found[j].Offset
		}
		return schemePriority(found[i].Scheme) < schemePriority(found[j].Scheme)
	})

	seen := make(map[string]struct{}, len(found))
	set := make(CandidateSet, 0, len(found))
	for _, c := range found {
		key := c.Normalized()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		set = append(set, c)
	}
	return set
}

// Validate checks a candidate against its scheme. Failing candidates are
// reported with ok == false; this is not an error.
func (e *Extractor) Validate(c Candidate) (Identifier, bool) {
	value := c.Normalized()
	switch c.Scheme {
	case SchemeEUVAT:
		if id, ok := e.validateVAT(c.Raw); ok {
			return id, true
		}
		// The VAT pattern also consumes text glued on with a separator, as in
		// "ESB12345674-2024"; retry each prefix ending at a separator, longest first.
		for i := len(c.Raw) - 1; i > 0; i-- {
			if c.Raw[i] != '-' && c.Raw[i] != '.' {
				continue
			}
			if id, ok := e.validateVAT(c.Raw[:i]); ok {
				return id, true
			}
		}
		return Identifier{}, false
	case SchemeFallback:
		return validateDomestic(c.Raw, value)
	}
	validate, ok := domesticValidators[c.Scheme]
	if !ok {
		return Identifier{}, false
	}
	return validate(c.Raw, value)
}

// ExtractAndValidate returns the valid identifiers found in text, in first-seen
// order, with no two sharing a canonical value.
func (e *Extractor) ExtractAndValidate(text string) []Identifier {
	candidates := e.Extract(text)
	ids := make([]Identifier, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		id, ok := e.Validate(c)
		if !ok {
			continue
		}
		if _, dup := seen[id.Value()]; dup {
			continue
		}
		seen[id.Value()] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// ValidateValue validates a single caller-supplied value of unknown scheme.
// A recognised VAT prefix routes the value to the VAT validator, anything else
// is tried against the domestic schemes.
func (e *Extractor) ValidateValue(raw string) (Identifier, bool) {
	value := Normalize(raw)
	if value == "" {
		return Identifier{}, false
	}
	if country, _ := SplitCountryPrefix(value); country != "" {
		return e.validateVAT(raw)
	}
	return validateDomestic(raw, value)
}

func (e *Extractor) validateVAT(raw string) (Identifier, bool) {
	value := Normalize(raw)
	country, national := SplitCountryPrefix(value)
	if country == "" || !e.vat.ValidVAT(country, national) {
		return Identifier{}, false
	}
	return newIdentifier(SchemeEUVAT, raw, value, country), true
}
