package value

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// FromGo converts a plain Go value, as produced by YAML or JSON decoders,
// into a Value. Integers pick the narrowest integer kind; map keys are
// sorted so the result is deterministic.
func FromGo(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null, nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case int:
		return fromInt64(int64(t)), nil
	case int8:
		return Int32(t), nil
	case int16:
		return Int32(t), nil
	case int32:
		return Int32(t), nil
	case int64:
		return fromInt64(t), nil
	case uint:
		return fromUint64(uint64(t)), nil
	case uint8:
		return Int32(t), nil
	case uint16:
		return Int32(t), nil
	case uint32:
		return fromInt64(int64(t)), nil
	case uint64:
		return fromUint64(t), nil
	case float32:
		return fromFloat(float64(t))
	case float64:
		return fromFloat(t)
	case *big.Int:
		return NewBigInt(t), nil
	case *apd.Decimal:
		if t.Form != apd.Finite {
			return nil, fmt.Errorf("value: non-finite decimal %s", t)
		}
		return NewBigDecimal(t), nil
	case time.Time:
		return NewTimestamp(t), nil
	case []byte:
		return NewBinary(t), nil
	case []any:
		elems := make([]Value, len(t))
		for i, e := range t {
			v, err := FromGo(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			elems[i] = v
		}
		return Array{elems: elems}, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b ObjectBuilder
		for _, k := range keys {
			v, err := FromGo(t[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			b.Set(k, v)
		}
		return b.Build(), nil
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, v := range t {
			m[fmt.Sprint(k)] = v
		}
		return FromGo(m)
	}
	return nil, fmt.Errorf("value: unsupported Go type %T", x)
}

func fromInt64(n int64) Value {
	if n >= math.MinInt32 && n <= math.MaxInt32 {
		return Int32(n)
	}
	return Int64(n)
}

func fromUint64(n uint64) Value {
	if n <= math.MaxInt64 {
		return fromInt64(int64(n))
	}
	return NewBigInt(new(big.Int).SetUint64(n))
}

func fromFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("value: non-finite number %v", f)
	}
	return Double(f), nil
}

// ToGo converts v into plain Go values: nil, bool, string, int64 (for both
// integer widths), *big.Int, *apd.Decimal, float64, time.Time, []byte,
// []any and map[string]any.
func ToGo(v Value) any {
	switch t := v.(type) {
	case nil, NullValue:
		return nil
	case Bool:
		return bool(t)
	case String:
		return string(t)
	case Int32:
		return int64(t)
	case Int64:
		return int64(t)
	case BigInt:
		return t.Int()
	case BigDecimal:
		return t.Decimal()
	case Double:
		return float64(t)
	case Timestamp:
		return t.t
	case Binary:
		return t.Bytes()
	case Array:
		out := make([]any, len(t.elems))
		for i, e := range t.elems {
			out[i] = ToGo(e)
		}
		return out
	case Object:
		out := make(map[string]any, len(t.members))
		for _, m := range t.members {
			out[m.Key] = ToGo(m.Value)
		}
		return out
	}
	return nil
}
