package domain

import (
	"github.com/asaskevich/govalidator"

	dErrors "canvass/pkg/domain-errors"
)

// IdentityNumberLength is the length of a national identity number.
const IdentityNumberLength = 13

// centuryPivot splits two-digit birth years: above it is the 1900s, at or below is the 2000s.
const centuryPivot = 25

// IdentityNumber is a 13-digit national identity number. Construct it with
// ParseIdentityNumber at trust boundaries; the zero value is invalid.
type IdentityNumber string

// ParseIdentityNumber accepts exactly 13 ASCII digits. Leading zeros are allowed.
func ParseIdentityNumber(s string) (IdentityNumber, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "ID number is required")
	}
	if len(s) != IdentityNumberLength || !govalidator.IsNumeric(s) {
		return "", dErrors.New(dErrors.CodeValidation, "Please enter a valid 13-digit ID number")
	}
	return IdentityNumber(s), nil
}

func (n IdentityNumber) String() string { return string(n) }

// Digit returns the numeric value of the digit at position i.
func (n IdentityNumber) Digit(i int) int {
	return int(n[i] - '0')
}

// Digits returns the integer formed by positions [from, to).
func (n IdentityNumber) Digits(from, to int) int {
	v := 0
	for i := from; i < to; i++ {
		v = v*10 + n.Digit(i)
	}
	return v
}

// BirthYear derives the four-digit birth year from the first two digits using
// a fixed pivot. Anyone born more than a century ago is misread as born in the 2000s.
func (n IdentityNumber) BirthYear() int {
	yy := n.Digits(0, 2)
	if yy > centuryPivot {
		return 1900 + yy
	}
	return 2000 + yy
}

// AgeIn returns currentYear minus the birth year. No month/day correction.
func (n IdentityNumber) AgeIn(currentYear int) int {
	return currentYear - n.BirthYear()
}

// Redacted keeps the birth date prefix and masks the rest, for logs.
func (n IdentityNumber) Redacted() string {
	if len(n) != IdentityNumberLength {
		return "***"
	}
	return string(n[:6]) + "*******"
}
