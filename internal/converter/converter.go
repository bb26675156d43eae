package converter

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// ZeroOutput is the converted amount shown for empty or unparsable input.
const ZeroOutput = "0.00"

const outputPrecision = 2

// ParseAmount parses a decimal amount. Empty, malformed and non-finite input is invalid.
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := cast.ToFloat64E(s)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Amount converts a parsed amount at rate in the direction of mode.
// ok is false when the result is undefined (division by a non-positive rate).
func Amount(amount float64, mode Mode, rate float64) (out decimal.Decimal, ok bool) {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return decimal.Zero, false
	}
	a := decimal.NewFromFloat(amount)
	r := decimal.NewFromFloat(rate)

	if mode == USDToEUR {
		if !r.IsPositive() {
			return decimal.Zero, false
		}
		return a.Div(r), true
	}
	return a.Mul(r), true
}

// Convert converts the entered amount text and formats the result with two decimals.
// Invalid input yields ZeroOutput.
func Convert(amount string, mode Mode, rate float64) string {
	a, ok := ParseAmount(amount)
	if !ok {
		return ZeroOutput
	}
	out, ok := Amount(a, mode, rate)
	if !ok {
		return ZeroOutput
	}
	return FormatAmount(out)
}

// FormatAmount renders d with two decimals, rounding half away from zero.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(outputPrecision)
}

// CarryOver returns the amount text that replaces the input when the mode flips:
// the current output, or empty when the output is ZeroOutput.
func CarryOver(output string) string {
	if output == ZeroOutput {
		return ""
	}
	return output
}
