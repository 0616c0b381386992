package resolution

import (
	"fmt"

	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/shared"
)

// DefaultThreshold is the minimum similarity for two identifiers to be considered the same
const DefaultThreshold = 0.9

// ResolvedIdentity pairs the tenant's identifier with the counterparty's.
// Company and Partner are never similar to each other.
type ResolvedIdentity struct {
	Company string `json:"company"`
	Partner string `json:"partner"`
}

// Option configures a Resolver
type Option func(*Resolver)

// WithThreshold sets the similarity threshold, validated by NewResolver
func WithThreshold(threshold float64) Option {
	return func(r *Resolver) {
		r.threshold = threshold
	}
}

// WithSimilarity replaces the similarity function
func WithSimilarity(fn SimilarityFunc) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.similarity = fn
		}
	}
}

// Resolver assigns company and partner roles to extracted identifiers using
// fuzzy similarity. It is immutable after construction and safe for concurrent use.
type Resolver struct {
	threshold  float64
	similarity SimilarityFunc
}

// NewResolver creates a resolver. The threshold must lie in (0, 1].
func NewResolver(opts ...Option) (*Resolver, error) {
	r := &Resolver{
		threshold:  DefaultThreshold,
		similarity: LevenshteinRatio,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.threshold <= 0 || r.threshold > 1 {
		return nil, fmt.Errorf("%w: similarity threshold %v must be in (0, 1]", shared.ErrInvalidInput, r.threshold)
	}
	return r, nil
}

// AtThreshold returns a resolver sharing r's similarity function but using
// another threshold. r itself is left unchanged.
func (r *Resolver) AtThreshold(threshold float64) (*Resolver, error) {
	return NewResolver(WithThreshold(threshold), WithSimilarity(r.similarity))
}

// Threshold returns the configured similarity threshold
func (r *Resolver) Threshold() float64 {
	return r.threshold
}

// Similar reports whether two identifiers refer to the same fiscal number,
// ignoring separators, case and country prefix
func (r *Resolver) Similar(a, b string) bool {
	return r.similarity(canonicalKey(a), canonicalKey(b)) >= r.threshold
}

func (r *Resolver) distinctSpellings(a, b string) bool {
	return r.similarity(displayKey(a), displayKey(b)) < r.threshold
}

func (r *Resolver) matchesAny(value string, knownIDs []string) bool {
	key := canonicalKey(value)
	if key == "" {
		return false
	}
	for _, known := range knownIDs {
		k := canonicalKey(known)
		if k != "" && r.similarity(key, k) >= r.threshold {
			return true
		}
	}
	return false
}

// ResolveCompany returns the single extracted identifier that matches one of the
// tenant's known identifiers. Matches are collected in first-seen order; a match
// that is a near-identical spelling of one already collected is not counted again.
func (r *Resolver) ResolveCompany(validIDs, knownIDs []string) (string, error) {
	var matches []string
	for _, id := range validIDs {
		if !r.matchesAny(id, knownIDs) {
			continue
		}
		distinct := true
		for _, m := range matches {
			if !r.distinctSpellings(id, m) {
				distinct = false
				break
			}
		}
		if distinct {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", &TaxIDNotFoundError{Candidates: clone(validIDs), KnownIDs: clone(knownIDs)}
	case 1:
		return matches[0], nil
	default:
		return "", &MultipleCompanyTaxIDsError{Matches: matches, KnownIDs: clone(knownIDs)}
	}
}

// ResolvePartner returns the counterparty identifier: the candidates not similar
// to companyID, with mutually similar spellings collapsed into the longest one.
func (r *Resolver) ResolvePartner(validIDs []string, companyID string) (string, error) {
	var clusters [][]string
	for _, id := range validIDs {
		if canonicalKey(id) == "" || r.Similar(id, companyID) {
			continue
		}
		placed := false
		for i, cluster := range clusters {
			if r.similarToAll(id, cluster) {
				clusters[i] = append(cluster, id)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, []string{id})
		}
	}

	switch len(clusters) {
	case 0:
		return "", &PartnerTaxIDNotFoundError{Candidates: clone(validIDs), CompanyID: companyID}
	case 1:
		return longest(clusters[0]), nil
	default:
		partners := make([]string, 0, len(clusters))
		for _, cluster := range clusters {
			partners = append(partners, longest(cluster))
		}
		return "", &MultiplePartnerTaxIDsError{Partners: partners, CompanyID: companyID}
	}
}

func (r *Resolver) similarToAll(id string, cluster []string) bool {
	for _, member := range cluster {
		if r.distinctSpellings(id, member) {
			return false
		}
	}
	return true
}

// Resolve runs ResolveCompany followed by ResolvePartner
func (r *Resolver) Resolve(validIDs, knownIDs []string) (ResolvedIdentity, error) {
	company, err := r.ResolveCompany(validIDs, knownIDs)
	if err != nil {
		return ResolvedIdentity{}, err
	}
	partner, err := r.ResolvePartner(validIDs, company)
	if err != nil {
		return ResolvedIdentity{}, err
	}
	return ResolvedIdentity{Company: company, Partner: partner}, nil
}

// ResolveCompanyAndPartner checks an upstream guess of which value is the
// company. Whichever single value matches the known identifiers becomes the
// company, swapping the pair when needed.
func (r *Resolver) ResolveCompanyAndPartner(supposedCompany, supposedPartner string, knownIDs []string) (ResolvedIdentity, error) {
	companyMatches := r.matchesAny(supposedCompany, knownIDs)
	partnerMatches := r.matchesAny(supposedPartner, knownIDs)

	var resolved ResolvedIdentity
	switch {
	case companyMatches && partnerMatches:
		return ResolvedIdentity{}, &MultipleCompanyTaxIDsError{
			Matches:  []string{supposedCompany, supposedPartner},
			KnownIDs: clone(knownIDs),
		}
	case companyMatches:
		resolved = ResolvedIdentity{Company: supposedCompany, Partner: supposedPartner}
	case partnerMatches:
		resolved = ResolvedIdentity{Company: supposedPartner, Partner: supposedCompany}
	default:
		return ResolvedIdentity{}, &TaxIDNotFoundError{
			Candidates: nonEmpty(supposedCompany, supposedPartner),
			KnownIDs:   clone(knownIDs),
		}
	}

	if canonicalKey(resolved.Partner) == "" || r.Similar(resolved.Partner, resolved.Company) {
		return ResolvedIdentity{}, &PartnerTaxIDNotFoundError{
			Candidates: nonEmpty(resolved.Partner),
			CompanyID:  resolved.Company,
		}
	}
	return resolved, nil
}

// longest picks the longest value; ties go to the lexicographically greatest
func longest(values []string) string {
	best := values[0]
	for _, v := range values[1:] {
		if len(v) > len(best) || (len(v) == len(best) && v > best) {
			best = v
		}
	}
	return best
}

func clone(values []string) []string {
	if values == nil {
		return []string{}
	}
	return append([]string(nil), values...)
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
