package value

import (
	"bytes"
	"math"

	"github.com/cockroachdb/apd/v3"
)

// Decimal returns the exact decimal value of a numeric v. ok is false for
// non-numeric kinds and for NaN or infinite doubles. Doubles convert through
// their shortest decimal representation, so Double(0.1) equals 0.1.
func Decimal(v Value) (d *apd.Decimal, ok bool) {
	switch t := v.(type) {
	case Int32:
		return apd.New(int64(t), 0), true
	case Int64:
		return apd.New(int64(t), 0), true
	case BigInt:
		coeff := new(apd.BigInt).SetMathBigInt(t.Int())
		return apd.NewWithBigInt(coeff, 0), true
	case BigDecimal:
		return t.Decimal(), true
	case Double:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		d, err := new(apd.Decimal).SetFloat64(f)
		if err != nil {
			return nil, false
		}
		return d, true
	}
	return nil, false
}

// Compare orders two numeric values by mathematical value. ok is false when
// either side is not a finite number.
func Compare(a, b Value) (c int, ok bool) {
	da, ok := Decimal(a)
	if !ok {
		return 0, false
	}
	db, ok := Decimal(b)
	if !ok {
		return 0, false
	}
	return da.Cmp(db), true
}

// Equal reports deep equality. Numbers of different kinds are equal when
// their mathematical values are; 1, 1.0 and 1e0 are all equal. Objects are
// equal regardless of member order. Timestamps compare as instants.
func Equal(a, b Value) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	if IsNumber(a) && IsNumber(b) {
		c, ok := Compare(a, b)
		return ok && c == 0
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case Bool:
		return x == b.(Bool)
	case String:
		return x == b.(String)
	case Timestamp:
		return x.t.Equal(b.(Timestamp).t)
	case Binary:
		return bytes.Equal(x.b, b.(Binary).b)
	case Array:
		y := b.(Array)
		if x.Len() != y.Len() {
			return false
		}
		for i := range x.elems {
			if !Equal(x.elems[i], y.elems[i]) {
				return false
			}
		}
		return true
	case Object:
		y := b.(Object)
		if x.Len() != y.Len() {
			return false
		}
		for _, m := range x.members {
			w, ok := y.Get(m.Key)
			if !ok || !Equal(m.Value, w) {
				return false
			}
		}
		return true
	}
	return false
}
