package number

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// FormatInt32 returns the canonical text of v.
func FormatInt32(v int32) string { return strconv.FormatInt(int64(v), 10) }

// FormatInt64 returns the canonical text of v.
func FormatInt64(v int64) string { return strconv.FormatInt(v, 10) }

// FormatBigInt returns the canonical text of v; nil formats as 0.
func FormatBigInt(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// FormatFloat64 returns the shortest text that parses back to f. Values in
// [1e-6, 1e21) use plain notation, everything else uses an exponent. Negative
// zero keeps its sign. NaN and infinities have no JSON form; callers reject
// them before formatting.
func FormatFloat64(f float64) string {
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	s := strconv.FormatFloat(f, format, -1, 64)
	if format == 'e' {
		// e-09 -> e-9
		n := len(s)
		if n >= 4 && s[n-4] == 'e' && s[n-3] == '-' && s[n-2] == '0' {
			s = s[:n-2] + s[n-1:]
		}
	}
	return s
}

// FormatDecimal returns the canonical minimal text of d: trailing zeros are
// dropped, plain notation is used while the adjusted exponent lies in
// [-7, 21), scientific notation with an explicit exponent sign otherwise.
// Zero, including negative zero, formats as "0".
func FormatDecimal(d *apd.Decimal) string {
	if d == nil {
		return "0"
	}
	if d.Form != apd.Finite {
		return d.String()
	}
	coeff := d.Coeff.String()
	if strings.TrimLeft(coeff, "0") == "" {
		return "0"
	}
	coeff = strings.TrimLeft(coeff, "0")
	exp := int64(d.Exponent)
	trimmed := strings.TrimRight(coeff, "0")
	exp += int64(len(coeff) - len(trimmed))
	coeff = trimmed

	var sb strings.Builder
	if d.Negative {
		sb.WriteByte('-')
	}
	adj := int64(len(coeff)) - 1 + exp
	switch {
	case exp >= 0 && adj < 21:
		sb.WriteString(coeff)
		sb.WriteString(strings.Repeat("0", int(exp)))
	case exp < 0 && adj >= -7:
		point := int64(len(coeff)) + exp
		if point > 0 {
			sb.WriteString(coeff[:point])
			sb.WriteByte('.')
			sb.WriteString(coeff[point:])
		} else {
			sb.WriteString("0.")
			sb.WriteString(strings.Repeat("0", int(-point)))
			sb.WriteString(coeff)
		}
	default:
		sb.WriteByte(coeff[0])
		if len(coeff) > 1 {
			sb.WriteByte('.')
			sb.WriteString(coeff[1:])
		}
		sb.WriteByte('e')
		if adj < 0 {
			sb.WriteByte('-')
			adj = -adj
		} else {
			sb.WriteByte('+')
		}
		sb.WriteString(strconv.FormatInt(adj, 10))
	}
	return sb.String()
}

// Format returns the canonical text of a value produced by this package.
// ok is false for unsupported types and for NaN or infinite floats.
func Format(v any) (s string, ok bool) {
	switch t := v.(type) {
	case int32:
		return FormatInt32(t), true
	case int64:
		return FormatInt64(t), true
	case *big.Int:
		return FormatBigInt(t), true
	case *apd.Decimal:
		if t.Form != apd.Finite {
			return "", false
		}
		return FormatDecimal(t), true
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "", false
		}
		return FormatFloat64(t), true
	}
	return "", false
}
