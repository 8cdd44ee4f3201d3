// Package number lexes JSON number literals and converts them to exact
// numeric representations.
//
// Conversions never go through floating point unless the target is Double:
//
//   - ParseExact returns the smallest of int32, int64, *big.Int and
//     *apd.Decimal that holds the literal's mathematical value.
//   - ParseAs enforces a target. Integral targets accept any literal whose
//     value is integral (1000E3 and 1.0E5 are valid int32 values), fail with
//     ErrFraction otherwise, and with ErrOverflow when the value does not fit.
//   - BigDecimal keeps the literal's scale: 1.50 has coefficient 150 and
//     exponent -2.
//
// The Format functions are the inverse: each kind has one canonical text, and
// text -> value -> text -> value preserves the mathematical value.
package number
