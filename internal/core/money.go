// Package core provides the domain types and money handling utilities.
//
// Amounts are stored as miliunits: an int64 holding the amount multiplied by
// 1000, so 12.34 is stored as 12340.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// MiliunitsPerUnit is the fixed-point scale of stored amounts.
const MiliunitsPerUnit = 1000

var (
	miliunitScale = decimal.NewFromInt(MiliunitsPerUnit)
	maxMiliunits  = decimal.NewFromInt(1<<63 - 1)
)

// ParseDecimalToMiliunits converts a user supplied decimal string to miliunits.
//
// Both dot (12.34) and comma (12,34) are accepted as decimal separator. The
// value is rounded half away from zero to the nearest miliunit. Signs,
// exponents, thousands separators and non-positive results are rejected with
// ErrInvalidAmount.
//
// Examples:
//
//	ParseDecimalToMiliunits("40.00")   -> 40000, nil
//	ParseDecimalToMiliunits("12,5")    -> 12500, nil
//	ParseDecimalToMiliunits("0.0005")  -> 1, nil
//	ParseDecimalToMiliunits("0.0004")  -> 0, ErrInvalidAmount
func ParseDecimalToMiliunits(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return 0, ErrInvalidAmount
	}
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '.':
		default:
			return 0, ErrInvalidAmount
		}
	}
	if digits == 0 {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	scaled := d.Mul(miliunitScale).Round(0)
	if scaled.GreaterThan(maxMiliunits) {
		return 0, ErrInvalidAmount
	}
	v := scaled.IntPart()
	if v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatMiliunits renders miliunits as a decimal string for display.
// Two decimals are always shown, three when the value has a sub-cent part.
func FormatMiliunits(v int64) string {
	places := int32(2)
	if v%10 != 0 {
		places = 3
	}
	return decimal.New(v, -3).StringFixed(places)
}

// Units returns the amount as a float64 for display purposes only.
func (m Money) Units() float64 {
	return decimal.New(m.Miliunits, -3).InexactFloat64()
}
