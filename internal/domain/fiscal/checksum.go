package fiscal

import (
	"strconv"
	"strings"
)

const (
	// nifLetters is indexed by the identifier number mod 23
	nifLetters = "TRWAGMYFPDXBNJZSQVHLCKE"
	// cifControlLetters is indexed by the computed control digit
	cifControlLetters = "JABCDEFGHI"
	// cifLeadingLetters are the organisation-type letters a CIF may start with
	cifLeadingLetters = "ABCDEFGHJNPQRSUVW"
	// cifLetterControl leading letters always carry a letter control character
	cifLetterControl = "NPQRSW"
	// cifDigitControl leading letters always carry a digit control character
	cifDigitControl = "ABEH"
)

// ValidatorFunc validates a normalized value and returns the identifier on success
type ValidatorFunc func(raw, value string) (Identifier, bool)

// domesticValidators is the closed scheme -> validator table for the domestic schemes.
// The order of fallbackOrder decides which scheme an ambiguous token is tried against first.
var domesticValidators = map[Scheme]ValidatorFunc{
	SchemeCIF:        validateCIF,
	SchemeNIF:        validateNIF,
	SchemeNIE:        validateNIE,
	SchemeNumericCIF: validateNumericCIF,
}

var fallbackOrder = []Scheme{SchemeCIF, SchemeNIF, SchemeNIE, SchemeNumericCIF}

// CIFControl computes the control digit for the 7 central digits of a CIF.
// Odd positions are doubled and digit-summed, even positions are summed as is.
func CIFControl(digits string) (int, bool) {
	if len(digits) != 7 || !isDigits(digits) {
		return 0, false
	}
	sum := 0
	for i := 0; i < len(digits); i++ {
		d := int(digits[i] - '0')
		if i%2 == 0 {
			d *= 2
			sum += d/10 + d%10
		} else {
			sum += d
		}
	}
	return (10 - sum%10) % 10, true
}

// NIFLetter returns the control letter for an 8-digit identifier number
func NIFLetter(digits string) (byte, bool) {
	if len(digits) != 8 || !isDigits(digits) {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return nifLetters[n%23], true
}

// ValidCIF reports whether value is a valid domestic company identifier
func ValidCIF(value string) bool {
	_, ok := validateCIF(value, Normalize(value))
	return ok
}

// ValidNIF reports whether value is a valid domestic personal identifier
func ValidNIF(value string) bool {
	_, ok := validateNIF(value, Normalize(value))
	return ok
}

// ValidNIE reports whether value is a valid foreign resident identifier
func ValidNIE(value string) bool {
	_, ok := validateNIE(value, Normalize(value))
	return ok
}

// ValidNumericCIF reports whether value is a company identifier missing its leading letter
func ValidNumericCIF(value string) bool {
	_, ok := validateNumericCIF(value, Normalize(value))
	return ok
}

func validateCIF(raw, value string) (Identifier, bool) {
	if len(value) != 9 || !strings.ContainsRune(cifLeadingLetters, rune(value[0])) {
		return Identifier{}, false
	}
	control, ok := CIFControl(value[1:8])
	if !ok {
		return Identifier{}, false
	}

	got := value[8]
	letterMatch := got == cifControlLetters[control]
	digitMatch := got == byte('0'+control)

	var valid bool
	switch {
	case strings.IndexByte(cifLetterControl, value[0]) >= 0:
		valid = letterMatch
	case strings.IndexByte(cifDigitControl, value[0]) >= 0:
		valid = digitMatch
	default:
		valid = letterMatch || digitMatch
	}
	if !valid {
		return Identifier{}, false
	}
	return newIdentifier(SchemeCIF, raw, value, DomesticCountry), true
}

func validateNIF(raw, value string) (Identifier, bool) {
	if len(value) != 9 {
		return Identifier{}, false
	}
	letter, ok := NIFLetter(value[:8])
	if !ok || value[8] != letter {
		return Identifier{}, false
	}
	return newIdentifier(SchemeNIF, raw, value, DomesticCountry), true
}

func validateNIE(raw, value string) (Identifier, bool) {
	if len(value) != 9 {
		return Identifier{}, false
	}
	prefix := strings.IndexByte("XYZ", value[0])
	if prefix < 0 {
		return Identifier{}, false
	}
	letter, ok := NIFLetter(strconv.Itoa(prefix) + value[1:8])
	if !ok || value[8] != letter {
		return Identifier{}, false
	}
	return newIdentifier(SchemeNIE, raw, value, DomesticCountry), true
}

func validateNumericCIF(raw, value string) (Identifier, bool) {
	if len(value) != 8 || !isDigits(value) {
		return Identifier{}, false
	}
	control, ok := CIFControl(value[:7])
	if !ok || value[7] != byte('0'+control) {
		return Identifier{}, false
	}
	return newIdentifier(SchemeNumericCIF, raw, value, DomesticCountry), true
}

// validateDomestic tries every domestic scheme in fallback order
func validateDomestic(raw, value string) (Identifier, bool) {
	for _, scheme := range fallbackOrder {
		if id, ok := domesticValidators[scheme](raw, value); ok {
			return id, true
		}
	}
	return Identifier{}, false
}
