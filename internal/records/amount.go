package records

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount applies the best-effort monetary parsing rule used for every
// numeric field: drop everything that is not a digit, '.' or '-', then read the
// longest decimal prefix. Values with no usable prefix become zero. The boolean
// is false when a non-blank raw value needed that fallback.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	cleaned := stripNonNumeric(raw)
	prefix, consumed := decimalPrefix(cleaned)
	if prefix == "" {
		return decimal.Zero, strings.TrimSpace(raw) == ""
	}
	value, err := decimal.NewFromString(prefix)
	if err != nil {
		return decimal.Zero, false
	}
	return value, consumed == len(cleaned)
}

// Amount is ParseAmount without the fallback flag.
func Amount(raw string) decimal.Decimal {
	value, _ := ParseAmount(raw)
	return value
}

func stripNonNumeric(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// decimalPrefix returns the longest leading "-?digits(.digits)?" run, normalised
// so decimal.NewFromString accepts it ("5." -> "5", "-.5" -> "-0.5"), and the
// number of bytes it covers.
func decimalPrefix(s string) (string, int) {
	i := 0
	negative := false
	if i < len(s) && s[i] == '-' {
		negative = true
		i++
	}
	intStart := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	intPart := s[intStart:i]
	fracPart := ""
	if i < len(s) && s[i] == '.' {
		j := i + 1
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		fracPart = s[i+1 : j]
		i = j
	}
	if intPart == "" && fracPart == "" {
		return "", 0
	}
	if intPart == "" {
		intPart = "0"
	}
	out := intPart
	if fracPart != "" {
		out += "." + fracPart
	}
	if negative {
		out = "-" + out
	}
	return out, i
}
