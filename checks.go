package jspec

import (
	"math/big"
	"strconv"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"

	"github.com/reoring/jspec/codec"
	"github.com/reoring/jspec/number"
	"github.com/reoring/jspec/spec"
	"github.com/reoring/jspec/value"
)

var numberKinds = map[spec.Type]number.Kind{
	spec.TypeInt32:      number.Int32,
	spec.TypeInt64:      number.Int64,
	spec.TypeBigInt:     number.BigInt,
	spec.TypeBigDecimal: number.BigDecimal,
	spec.TypeDouble:     number.Double,
}

// numberToValue wraps a result of the number package in its value kind.
func numberToValue(n any) value.Value {
	switch t := n.(type) {
	case int32:
		return value.Int32(t)
	case int64:
		return value.Int64(t)
	case *big.Int:
		return value.NewBigInt(t)
	case *apd.Decimal:
		return value.NewBigDecimal(t)
	case float64:
		return value.Double(t)
	}
	return nil
}

// numericCode maps a conversion failure to its error code: fractions are a
// type mismatch, too-wide integers an overflow.
func numericCode(t spec.Type, err error) ErrorCode {
	if isOverflow(err) {
		return CodeOverflow
	}
	return ExpectedCode(t)
}

// coerce converts a generic value to the representation of t. It accepts
// any numeric kind whose value the target holds exactly (any numeric for
// double), RFC 3339 strings for timestamps and base64 strings for binaries.
func coerce(t spec.Type, v value.Value) (value.Value, ErrorCode, bool) {
	switch t {
	case spec.TypeString:
		if value.IsString(v) {
			return v, "", true
		}
	case spec.TypeBool:
		if value.IsBool(v) {
			return v, "", true
		}
	case spec.TypeTimestamp:
		switch x := v.(type) {
		case value.Timestamp:
			return x, "", true
		case value.String:
			if ts, err := codec.TimeRFC3339().Decode(string(x)); err == nil {
				return ts, "", true
			}
		}
	case spec.TypeBinary:
		switch x := v.(type) {
		case value.Binary:
			return x, "", true
		case value.String:
			if b, err := codec.Base64().Decode(string(x)); err == nil {
				return b, "", true
			}
		}
	default:
		if !value.IsNumber(v) {
			break
		}
		if sameNumberKind(t, v) {
			return v, "", true
		}
		text, ok := numberText(v)
		if !ok {
			break
		}
		n, err := number.ParseAs([]byte(text), numberKinds[t])
		if err != nil {
			return nil, numericCode(t, err), false
		}
		return numberToValue(n), "", true
	}
	return nil, ExpectedCode(t), false
}

func sameNumberKind(t spec.Type, v value.Value) bool {
	switch v.Kind() {
	case value.KindInt32:
		return t == spec.TypeInt32
	case value.KindInt64:
		return t == spec.TypeInt64
	case value.KindBigInt:
		return t == spec.TypeBigInt
	case value.KindBigDecimal:
		return t == spec.TypeBigDecimal
	case value.KindDouble:
		return t == spec.TypeDouble
	}
	return false
}

func numberText(v value.Value) (string, bool) {
	switch x := v.(type) {
	case value.Int32:
		return number.FormatInt32(int32(x)), true
	case value.Int64:
		return number.FormatInt64(int64(x)), true
	case value.BigInt:
		return number.FormatBigInt(x.Int()), true
	case value.BigDecimal:
		return number.Format(x.Decimal())
	case value.Double:
		return number.Format(float64(x))
	}
	return "", false
}

// primitiveErrors runs the refinements of s against an already typed v:
// length, pattern, range, then predicates.
func primitiveErrors(s *spec.PrimitiveSpec, v value.Value, p Path) Errors {
	var errs Errors
	t := s.Type()
	cond := ConditionCode(t)
	if min, max, ok := s.LengthBounds(); ok {
		n, isLen := lengthOf(v)
		if isLen {
			data := map[string]string{"min": strconv.Itoa(min), "max": boundText(max), "got": strconv.Itoa(n)}
			switch {
			case n < min:
				errs = append(errs, newError(p, tooShortCode(t), v, data))
			case max >= 0 && n > max:
				errs = append(errs, newError(p, tooLongCode(t), v, data))
			}
		}
	}
	if re := s.PatternRegexp(); re != nil {
		if str, ok := v.(value.String); ok && !re.MatchString(string(str)) {
			errs = append(errs, newError(p, cond, v, map[string]string{"pattern": re.String()}))
		}
	}
	min, max := s.Range()
	if min != nil {
		if c, ok := compare(v, min); ok && c < 0 {
			errs = append(errs, newError(p, cond, v, map[string]string{"min": value.Text(min)}))
		}
	}
	if max != nil {
		if c, ok := compare(v, max); ok && c > 0 {
			errs = append(errs, newError(p, cond, v, map[string]string{"max": value.Text(max)}))
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return predicateErrors(s.Predicates(), cond, v, p)
}

func lengthOf(v value.Value) (int, bool) {
	switch x := v.(type) {
	case value.String:
		return utf8.RuneCountInString(string(x)), true
	case value.Binary:
		return x.Len(), true
	}
	return 0, false
}

func tooShortCode(t spec.Type) ErrorCode {
	if t == spec.TypeString {
		return CodeStringTooShort
	}
	return ConditionCode(t)
}

func tooLongCode(t spec.Type) ErrorCode {
	if t == spec.TypeString {
		return CodeStringTooLong
	}
	return ConditionCode(t)
}

func compare(a, b value.Value) (int, bool) {
	if ta, ok := a.(value.Timestamp); ok {
		if tb, ok := b.(value.Timestamp); ok {
			return ta.Time().Compare(tb.Time()), true
		}
		return 0, false
	}
	return value.Compare(a, b)
}

func boundText(max int) string {
	if max < 0 {
		return "unbounded"
	}
	return strconv.Itoa(max)
}

func predicateErrors(preds []spec.Predicate, code ErrorCode, v value.Value, p Path) Errors {
	var errs Errors
	for _, pr := range preds {
		if !pr.Check(v) {
			errs = append(errs, newError(p, code, v, map[string]string{"predicate": pr.Name}))
		}
	}
	return errs
}

// sizeError checks n against an inclusive range.
func sizeError(min, max, n int, small, big ErrorCode, v value.Value, p Path) (ValidationError, bool) {
	data := map[string]string{"min": strconv.Itoa(min), "max": boundText(max), "got": strconv.Itoa(n)}
	if n < min {
		return newError(p, small, v, data), true
	}
	if max >= 0 && n > max {
		return newError(p, big, v, data), true
	}
	return ValidationError{}, false
}

// resolveRef finds the spec a Ref names: the innermost enclosing Named of
// that name first, then the registry.
func resolveRef(name string, scope []*spec.NamedSpec, reg *spec.Registry) (*spec.NamedSpec, bool) {
	for i := len(scope) - 1; i >= 0; i-- {
		if scope[i].Name() == name {
			return scope[i], true
		}
	}
	return reg.Lookup(name)
}
