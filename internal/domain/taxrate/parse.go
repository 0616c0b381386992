package taxrate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/JohnRSantamaria/exponential-it-sub000/internal/domain/shared"
)

// thousandsOnly matches a single grouping separator such as "1.210" or "12,500"
var thousandsOnly = regexp.MustCompile(`^[1-9]\d{0,2}[.,]\d{3}$`)

var amountNoise = strings.NewReplacer(
	"€", "", "$", "", "£", "",
	"EUR", "", "USD", "", "GBP", "",
	" ", "", "\u00a0", "", "\u202f", "", "'", "",
)

// ParseAmount parses an OCR amount string. Both "1.234,56" and "1,234.56" are
// accepted: when both separators appear the last one is the decimal mark and a
// repeated one groups thousands. A single separator is the decimal mark unless
// it is followed by exactly three digits after a non-zero integer part of at
// most three digits, so "1.210" is 1210 while "0.500" and "12,50" are decimals. Currency symbols and spaces are ignored; a leading minus or
// surrounding parentheses make the amount negative. An empty string is zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := amountNoise.Replace(strings.ToUpper(strings.TrimSpace(s)))
	if clean == "" {
		return decimal.Zero, nil
	}

	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		negative = true
		clean = clean[1 : len(clean)-1]
	}
	if strings.HasPrefix(clean, "-") {
		negative = !negative
		clean = clean[1:]
	} else if strings.HasSuffix(clean, "-") {
		negative = !negative
		clean = clean[:len(clean)-1]
	}

	clean = normalizeSeparators(clean)
	d, err := decimal.NewFromString(clean)
	if err != nil || strings.ContainsAny(clean, "+-eE") {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", shared.ErrInvalidInput, s)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// MustParseAmount is ParseAmount for literals; it panics on invalid input
func MustParseAmount(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return d
}

func normalizeSeparators(s string) string {
	if thousandsOnly.MatchString(s) {
		return s[:len(s)-4] + s[len(s)-3:]
	}
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			return strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			return strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}
