package records

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders a value the es-EC way: two decimals, ',' as the decimal
// separator and '.' grouping thousands (1.500,00).
func FormatAmount(v decimal.Decimal) string {
	fixed := v.StringFixed(2)
	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, frac, _ := strings.Cut(fixed, ".")
	var b strings.Builder
	if negative && strings.Trim(fixed, "0.") != "" {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}
