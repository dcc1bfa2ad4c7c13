package canonical

import (
	"math"
	"strconv"
	"strings"
)

// formatNumber renders a float64 in the canonical numeric form: the
// ES-style shortest round-trip decimal representation.
//
// Edge cases are pinned by the wire format:
//   - NaN and the infinities render as null (cross-platform divergence is
//     worse than lossy) rather than erroring
//   - negative zero renders as 0
//   - |x| >= 1e21 or |x| < 1e-6 use exponent form with no leading zeros
//     in the exponent digits
func formatNumber(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "null"
	}
	if f == 0 {
		// Covers -0: the sign bit must not leak into the wire form.
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		return formatExponent(f)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatExponent renders the exponent form the way the producer does:
// mantissa in shortest form, explicit exponent sign, exponent digits
// without leading zeros ("9.5e-7", not "9.5e-07").
func formatExponent(f float64) string {
	s := strconv.FormatFloat(f, 'e', -1, 64)
	i := strings.IndexByte(s, 'e')
	mant, exp := s[:i], s[i+1:]

	sign := ""
	if exp[0] == '+' || exp[0] == '-' {
		sign = string(exp[0])
		exp = exp[1:]
	}
	exp = strings.TrimLeft(exp, "0")
	if exp == "" {
		exp = "0"
	}
	return mant + "e" + sign + exp
}
