package number

import (
	"errors"
	"math"
	"math/big"
	"strconv"

	"github.com/cockroachdb/apd/v3"
)

// Kind names a numeric target representation.
type Kind int

const (
	Exact      Kind = iota // smallest of Int32, Int64, BigInt, BigDecimal
	Int32                  // int32
	Int64                  // int64
	BigInt                 // *big.Int
	BigDecimal             // *apd.Decimal
	Double                 // float64
)

func (k Kind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case BigInt:
		return "bigint"
	case BigDecimal:
		return "bigdecimal"
	case Double:
		return "double"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Integral reports whether k only admits integers.
func (k Kind) Integral() bool { return k == Int32 || k == Int64 || k == BigInt }

// MaxDigits caps the number of decimal digits of a materialized integer.
// Literals such as 1e999999999 are integral but would otherwise allocate
// unbounded memory.
const MaxDigits = 1 << 16

var (
	// ErrSyntax reports a literal that does not follow the JSON number grammar.
	ErrSyntax = errors.New("invalid number syntax")
	// ErrOverflow reports an integral value outside the target width, or a
	// magnitude the target cannot hold at all.
	ErrOverflow = errors.New("value out of range")
	// ErrFraction reports a value with a non-zero fractional part supplied
	// for an integral target.
	ErrFraction = errors.New("fractional value where integer required")
)

// NumError records a failed conversion.
type NumError struct {
	Literal string
	Target  Kind
	Err     error
	Detail  string
}

func (e *NumError) Error() string {
	lit := e.Literal
	if len(lit) > 64 {
		lit = lit[:61] + "..."
	}
	msg := "number: parsing " + strconv.Quote(lit) + " as " + e.Target.String() + ": " + e.Err.Error()
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *NumError) Unwrap() error { return e.Err }

func numErr(b []byte, k Kind, err error) error {
	return &NumError{Literal: string(b), Target: k, Err: err}
}

func retarget(err error, k Kind) error {
	var ne *NumError
	if errors.As(err, &ne) {
		cp := *ne
		cp.Target = k
		return &cp
	}
	return err
}

// ParseAs converts b to the representation named by k. The result is one of
// int32, int64, *big.Int, *apd.Decimal or float64.
func ParseAs(b []byte, k Kind) (any, error) {
	l, err := Scan(b)
	if err != nil {
		return nil, retarget(err, k)
	}
	return ConvertAs(b, l, k)
}

// ConvertAs is ParseAs for a literal that was already scanned from b.
func ConvertAs(b []byte, l Literal, k Kind) (any, error) {
	switch k {
	case Exact:
		return exact(b, l)
	case Int32:
		return toInt32(b, l)
	case Int64:
		return toInt64(b, l)
	case BigInt:
		return toBigInt(b, l)
	case BigDecimal:
		return toDecimal(b, l)
	case Double:
		return toFloat64(b, l)
	}
	return nil, numErr(b, k, errors.New("unknown target kind"))
}

// ParseExact computes the exact value of b and returns it in the smallest of
// int32, int64, *big.Int and *apd.Decimal that represents it without loss.
// Integral values are integers even when written as 1.0E5.
func ParseExact(b []byte) (any, error) { return ParseAs(b, Exact) }

// ParseInt32 parses b as an integral value that fits in 32 bits.
func ParseInt32(b []byte) (int32, error) {
	v, err := ParseAs(b, Int32)
	if err != nil {
		return 0, err
	}
	return v.(int32), nil
}

// ParseInt64 parses b as an integral value that fits in 64 bits.
func ParseInt64(b []byte) (int64, error) {
	v, err := ParseAs(b, Int64)
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// ParseBigInt parses b as an arbitrary-precision integer.
func ParseBigInt(b []byte) (*big.Int, error) {
	v, err := ParseAs(b, BigInt)
	if err != nil {
		return nil, err
	}
	return v.(*big.Int), nil
}

// ParseBigDecimal parses b as an exact decimal, keeping the literal's scale.
func ParseBigDecimal(b []byte) (*apd.Decimal, error) {
	v, err := ParseAs(b, BigDecimal)
	if err != nil {
		return nil, err
	}
	return v.(*apd.Decimal), nil
}

// ParseFloat64 parses b as the nearest IEEE-754 double.
func ParseFloat64(b []byte) (float64, error) {
	v, err := ParseAs(b, Double)
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

func exact(b []byte, l Literal) (any, error) {
	r := l.reduce()
	if r.integral() {
		n := r.intDigits()
		switch {
		case n <= 10:
			v, err := strconv.ParseInt(r.intText(l.Neg), 10, 64)
			if err == nil {
				if v >= math.MinInt32 && v <= math.MaxInt32 {
					return int32(v), nil
				}
				return v, nil
			}
		case n <= 19:
			if v, err := strconv.ParseInt(r.intText(l.Neg), 10, 64); err == nil {
				return v, nil
			}
		}
		if n <= MaxDigits {
			return toBigInt(b, l)
		}
	}
	return toDecimal(b, l)
}

func toInt32(b []byte, l Literal) (any, error) {
	r := l.reduce()
	if !r.integral() {
		return nil, numErr(b, Int32, ErrFraction)
	}
	if r.intDigits() > 10 {
		return nil, numErr(b, Int32, ErrOverflow)
	}
	v, err := strconv.ParseInt(r.intText(l.Neg), 10, 32)
	if err != nil {
		return nil, numErr(b, Int32, ErrOverflow)
	}
	return int32(v), nil
}

func toInt64(b []byte, l Literal) (any, error) {
	r := l.reduce()
	if !r.integral() {
		return nil, numErr(b, Int64, ErrFraction)
	}
	if r.intDigits() > 19 {
		return nil, numErr(b, Int64, ErrOverflow)
	}
	v, err := strconv.ParseInt(r.intText(l.Neg), 10, 64)
	if err != nil {
		return nil, numErr(b, Int64, ErrOverflow)
	}
	return v, nil
}

func toBigInt(b []byte, l Literal) (any, error) {
	r := l.reduce()
	if !r.integral() {
		return nil, numErr(b, BigInt, ErrFraction)
	}
	if r.intDigits() > MaxDigits {
		return nil, numErr(b, BigInt, ErrOverflow)
	}
	v, ok := new(big.Int).SetString(r.intText(l.Neg), 10)
	if !ok {
		return nil, numErr(b, BigInt, ErrSyntax)
	}
	return v, nil
}

func toDecimal(b []byte, l Literal) (any, error) {
	exp := l.exponent() - int64(len(l.Frac))
	if exp < math.MinInt32 || exp > math.MaxInt32 {
		// Zero has the same value at any scale.
		if !l.reduce().zero {
			return nil, numErr(b, BigDecimal, ErrOverflow)
		}
		exp = 0
	}
	digits := make([]byte, 0, len(l.Int)+len(l.Frac))
	digits = append(digits, l.Int...)
	digits = append(digits, l.Frac...)
	coeff, ok := new(apd.BigInt).SetString(string(digits), 10)
	if !ok {
		return nil, numErr(b, BigDecimal, ErrSyntax)
	}
	d := apd.NewWithBigInt(coeff, int32(exp))
	d.Negative = l.Neg && coeff.Sign() != 0
	return d, nil
}

func toFloat64(b []byte, l Literal) (any, error) {
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && math.IsInf(f, 0) {
			return nil, numErr(b, Double, ErrOverflow)
		}
		return nil, numErr(b, Double, ErrSyntax)
	}
	return f, nil
}
