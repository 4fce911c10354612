// Package utils holds small symbol and identifier helpers shared by the
// provider layer and the API.
package utils

import (
	"strings"
	"unicode"
)

// NormalizeTicker uppercases a ticker and strips whitespace. Class shares
// keep their dot form ("BRK.B").
func NormalizeTicker(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ValidTicker reports whether a normalized ticker looks like a US listing:
// 1 to 10 characters, letters, digits, dots, and hyphens only.
func ValidTicker(symbol string) bool {
	if len(symbol) == 0 || len(symbol) > 10 {
		return false
	}
	for _, r := range symbol {
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) && r != '.' && r != '-' {
			return false
		}
	}
	return true
}

// PadCIK left-pads a CIK to the 10 digits EDGAR URLs require.
func PadCIK(cik string) string {
	cik = strings.TrimSpace(cik)
	if len(cik) >= 10 {
		return cik
	}
	return strings.Repeat("0", 10-len(cik)) + cik
}
