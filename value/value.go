// Package value is the immutable JSON value model produced by parsing and
// consumed by validation.
//
// Every kind is a distinct Go type implementing Value. Scalars are plain named
// types (String, Bool, Int32, ...); big numbers, binaries, arrays and objects
// wrap their payload and hand out copies, so a Value can be shared freely.
package value

import (
	"math/big"
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// Kind discriminates value types.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindString
	KindInt32
	KindInt64
	KindBigInt
	KindBigDecimal
	KindDouble
	KindTimestamp
	KindBinary
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindNull:       "null",
	KindBool:       "bool",
	KindString:     "string",
	KindInt32:      "int32",
	KindInt64:      "int64",
	KindBigInt:     "bigint",
	KindBigDecimal: "bigdecimal",
	KindDouble:     "double",
	KindTimestamp:  "timestamp",
	KindBinary:     "binary",
	KindArray:      "array",
	KindObject:     "object",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a JSON value. The set of implementations is closed.
type Value interface {
	Kind() Kind
	isValue()
}

// NullValue is the type of Null.
type NullValue struct{}

// Null is the JSON null.
var Null Value = NullValue{}

type (
	Bool   bool
	String string
	Int32  int32
	Int64  int64
	Double float64
)

// BigInt is an arbitrary-precision integer.
type BigInt struct{ n *big.Int }

// BigDecimal is an arbitrary-precision decimal that keeps its scale.
type BigDecimal struct{ d *apd.Decimal }

// Timestamp is an instant with the offset it was written with.
type Timestamp struct{ t time.Time }

// Binary is an opaque byte string.
type Binary struct{ b []byte }

func (NullValue) Kind() Kind  { return KindNull }
func (Bool) Kind() Kind       { return KindBool }
func (String) Kind() Kind     { return KindString }
func (Int32) Kind() Kind      { return KindInt32 }
func (Int64) Kind() Kind      { return KindInt64 }
func (BigInt) Kind() Kind     { return KindBigInt }
func (BigDecimal) Kind() Kind { return KindBigDecimal }
func (Double) Kind() Kind     { return KindDouble }
func (Timestamp) Kind() Kind  { return KindTimestamp }
func (Binary) Kind() Kind     { return KindBinary }
func (Array) Kind() Kind      { return KindArray }
func (Object) Kind() Kind     { return KindObject }

func (NullValue) isValue()  {}
func (Bool) isValue()       {}
func (String) isValue()     {}
func (Int32) isValue()      {}
func (Int64) isValue()      {}
func (BigInt) isValue()     {}
func (BigDecimal) isValue() {}
func (Double) isValue()     {}
func (Timestamp) isValue()  {}
func (Binary) isValue()     {}
func (Array) isValue()      {}
func (Object) isValue()     {}

// NewBigInt copies n into a BigInt. A nil n is zero.
func NewBigInt(n *big.Int) BigInt {
	if n == nil {
		return BigInt{n: new(big.Int)}
	}
	return BigInt{n: new(big.Int).Set(n)}
}

// Int returns a copy of the integer.
func (v BigInt) Int() *big.Int {
	if v.n == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v.n)
}

// NewBigDecimal copies d into a BigDecimal. A nil d is zero.
func NewBigDecimal(d *apd.Decimal) BigDecimal {
	out := new(apd.Decimal)
	if d != nil {
		out.Set(d)
	}
	return BigDecimal{d: out}
}

// Decimal returns a copy of the decimal.
func (v BigDecimal) Decimal() *apd.Decimal {
	out := new(apd.Decimal)
	if v.d != nil {
		out.Set(v.d)
	}
	return out
}

// NewTimestamp wraps t. The monotonic clock reading is stripped.
func NewTimestamp(t time.Time) Timestamp { return Timestamp{t: t.Round(0)} }

// Time returns the instant.
func (v Timestamp) Time() time.Time { return v.t }

// NewBinary copies b into a Binary.
func NewBinary(b []byte) Binary { return Binary{b: append([]byte(nil), b...)} }

// Bytes returns a copy of the payload.
func (v Binary) Bytes() []byte { return append([]byte(nil), v.b...) }

// Len returns the payload length in bytes.
func (v Binary) Len() int { return len(v.b) }

// Array is an ordered sequence of values.
type Array struct{ elems []Value }

// NewArray copies elems into an Array.
func NewArray(elems ...Value) Array {
	if len(elems) == 0 {
		return Array{}
	}
	return Array{elems: append([]Value(nil), elems...)}
}

// Len returns the number of elements.
func (a Array) Len() int { return len(a.elems) }

// At returns the i-th element.
func (a Array) At(i int) Value { return a.elems[i] }

// Elems returns a copy of the elements.
func (a Array) Elems() []Value { return append([]Value(nil), a.elems...) }

// Append returns a new array with vs appended.
func (a Array) Append(vs ...Value) Array {
	out := make([]Value, 0, len(a.elems)+len(vs))
	out = append(out, a.elems...)
	out = append(out, vs...)
	return Array{elems: out}
}

// Kind predicates.

func IsNull(v Value) bool       { return v == nil || v.Kind() == KindNull }
func IsBool(v Value) bool       { return v != nil && v.Kind() == KindBool }
func IsString(v Value) bool     { return v != nil && v.Kind() == KindString }
func IsInt32(v Value) bool      { return v != nil && v.Kind() == KindInt32 }
func IsInt64(v Value) bool      { return v != nil && v.Kind() == KindInt64 }
func IsBigInt(v Value) bool     { return v != nil && v.Kind() == KindBigInt }
func IsBigDecimal(v Value) bool { return v != nil && v.Kind() == KindBigDecimal }
func IsDouble(v Value) bool     { return v != nil && v.Kind() == KindDouble }
func IsTimestamp(v Value) bool  { return v != nil && v.Kind() == KindTimestamp }
func IsBinary(v Value) bool     { return v != nil && v.Kind() == KindBinary }
func IsArray(v Value) bool      { return v != nil && v.Kind() == KindArray }
func IsObject(v Value) bool     { return v != nil && v.Kind() == KindObject }

// IsIntegral reports whether v is of an integer kind. It does not look at
// the value: Double(2) is not integral.
func IsIntegral(v Value) bool {
	if v == nil {
		return false
	}
	switch v.Kind() {
	case KindInt32, KindInt64, KindBigInt:
		return true
	}
	return false
}

// IsNumber reports whether v is of any numeric kind.
func IsNumber(v Value) bool {
	if v == nil {
		return false
	}
	switch v.Kind() {
	case KindInt32, KindInt64, KindBigInt, KindBigDecimal, KindDouble:
		return true
	}
	return false
}

// IsScalar reports whether v is neither an array nor an object.
func IsScalar(v Value) bool { return !IsArray(v) && !IsObject(v) }
