package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatBRL formats an amount (in BRL) as a string like "R$ 1.250,86".
// Uses dot as thousands separator and comma for cents (common in Brazil).
func FormatBRL(amount decimal.Decimal) string {
	neg := amount.IsNegative()
	if neg {
		amount = amount.Neg()
	}

	fixed := amount.StringFixed(2)
	intPart, cents, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	// Pre-allocate: digits + separators + prefix + cents
	b.Grow(len(intPart) + len(intPart)/3 + 7)
	if neg {
		b.WriteString("-R$ ")
	} else {
		b.WriteString("R$ ")
	}

	// Insert separators from the left.
	rem := len(intPart) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(intPart[:rem])
	for i := rem; i < len(intPart); i += 3 {
		b.WriteByte('.')
		b.WriteString(intPart[i : i+3])
	}
	b.WriteByte(',')
	b.WriteString(cents)

	return b.String()
}
