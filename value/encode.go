package value

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/jspec/number"
)

// TimestampLayout is the layout timestamps are encoded with.
const TimestampLayout = time.RFC3339Nano

// ErrUnencodable reports a value with no JSON representation, such as a NaN
// double.
var ErrUnencodable = errors.New("value: no JSON representation")

// Encode renders v as compact canonical JSON: numbers in their canonical
// text, timestamps as RFC 3339 strings, binaries as standard base64 strings
// and object members in order.
func Encode(v Value) ([]byte, error) {
	return appendValue(nil, v)
}

// Text is Encode for diagnostics; unencodable values render as a
// placeholder instead of failing.
func Text(v Value) string {
	b, err := Encode(v)
	if err != nil {
		return fmt.Sprintf("<%s>", kindOf(v))
	}
	return string(b)
}

func kindOf(v Value) Kind {
	if v == nil {
		return KindNull
	}
	return v.Kind()
}

func appendValue(dst []byte, v Value) ([]byte, error) {
	switch t := v.(type) {
	case nil, NullValue:
		return append(dst, "null"...), nil
	case Bool:
		if t {
			return append(dst, "true"...), nil
		}
		return append(dst, "false"...), nil
	case String:
		return appendString(dst, string(t))
	case Int32:
		return append(dst, number.FormatInt32(int32(t))...), nil
	case Int64:
		return append(dst, number.FormatInt64(int64(t))...), nil
	case BigInt:
		return append(dst, number.FormatBigInt(t.n)...), nil
	case BigDecimal:
		s, ok := number.Format(t.Decimal())
		if !ok {
			return nil, fmt.Errorf("%w: non-finite decimal", ErrUnencodable)
		}
		return append(dst, s...), nil
	case Double:
		s, ok := number.Format(float64(t))
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrUnencodable, float64(t))
		}
		return append(dst, s...), nil
	case Timestamp:
		return appendString(dst, t.t.Format(TimestampLayout))
	case Binary:
		return appendString(dst, base64.StdEncoding.EncodeToString(t.b))
	case Array:
		dst = append(dst, '[')
		for i, e := range t.elems {
			if i > 0 {
				dst = append(dst, ',')
			}
			var err error
			if dst, err = appendValue(dst, e); err != nil {
				return nil, err
			}
		}
		return append(dst, ']'), nil
	case Object:
		dst = append(dst, '{')
		for i, m := range t.members {
			if i > 0 {
				dst = append(dst, ',')
			}
			var err error
			if dst, err = appendString(dst, m.Key); err != nil {
				return nil, err
			}
			dst = append(dst, ':')
			if dst, err = appendValue(dst, m.Value); err != nil {
				return nil, err
			}
		}
		return append(dst, '}'), nil
	}
	return nil, fmt.Errorf("%w: unsupported type %T", ErrUnencodable, v)
}

func appendString(dst []byte, s string) ([]byte, error) {
	b, err := gojson.MarshalNoEscape(s)
	if err != nil {
		return nil, err
	}
	return append(dst, b...), nil
}
