package spec

import (
	"regexp"
	"strconv"

	"github.com/reoring/jspec/value"
)

// Type names the target representation of a primitive.
type Type int

const (
	TypeString Type = iota
	TypeInt32
	TypeInt64
	TypeBigInt
	TypeBigDecimal
	TypeDouble
	TypeBool
	TypeTimestamp
	TypeBinary
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeBigInt:
		return "bigint"
	case TypeBigDecimal:
		return "bigdecimal"
	case TypeDouble:
		return "double"
	case TypeBool:
		return "bool"
	case TypeTimestamp:
		return "timestamp"
	case TypeBinary:
		return "binary"
	}
	return "type(" + strconv.Itoa(int(t)) + ")"
}

// Numeric reports whether values of t are JSON numbers.
func (t Type) Numeric() bool {
	switch t {
	case TypeInt32, TypeInt64, TypeBigInt, TypeBigDecimal, TypeDouble:
		return true
	}
	return false
}

// ParseType maps a type name as returned by Type.String back to a Type.
func ParseType(name string) (Type, bool) {
	for t := TypeString; t <= TypeBinary; t++ {
		if t.String() == name {
			return t, true
		}
	}
	return 0, false
}

// PrimitiveSpec constrains a scalar of one Type.
type PrimitiveSpec struct {
	typ     Type
	preds   []Predicate
	length  bounds
	pattern *regexp.Regexp
	min     value.Value
	max     value.Value
}

func (*PrimitiveSpec) Kind() Kind { return KindPrimitive }
func (*PrimitiveSpec) isSpec()    {}

// Primitive returns an unconstrained primitive of type t.
func Primitive(t Type) *PrimitiveSpec { return &PrimitiveSpec{typ: t, length: noBounds()} }

func String() *PrimitiveSpec     { return Primitive(TypeString) }
func Int32() *PrimitiveSpec      { return Primitive(TypeInt32) }
func Int64() *PrimitiveSpec      { return Primitive(TypeInt64) }
func BigInt() *PrimitiveSpec     { return Primitive(TypeBigInt) }
func BigDecimal() *PrimitiveSpec { return Primitive(TypeBigDecimal) }
func Double() *PrimitiveSpec     { return Primitive(TypeDouble) }
func Bool() *PrimitiveSpec       { return Primitive(TypeBool) }
func Timestamp() *PrimitiveSpec  { return Primitive(TypeTimestamp) }
func Binary() *PrimitiveSpec     { return Primitive(TypeBinary) }

func (s *PrimitiveSpec) clone() *PrimitiveSpec {
	cp := *s
	cp.preds = clonePreds(s.preds)
	return &cp
}

// Type returns the target type.
func (s *PrimitiveSpec) Type() Type { return s.typ }

// Predicates returns a copy of the attached predicates.
func (s *PrimitiveSpec) Predicates() []Predicate { return clonePreds(s.preds) }

// SuchThat returns a copy with an additional predicate.
func (s *PrimitiveSpec) SuchThat(name string, fn func(value.Value) bool) *PrimitiveSpec {
	cp := s.clone()
	cp.preds = appendPred(s.preds, Predicate{Name: name, Fn: fn})
	return cp
}

// Length bounds the length of strings (in code points) and binaries (in
// bytes), inclusive. Pass Unbounded as max for no upper bound.
func (s *PrimitiveSpec) Length(min, max int) *PrimitiveSpec {
	cp := s.clone()
	cp.length = bounds{min: min, max: max}
	return cp
}

// LengthBounds returns the length range and whether one was set.
func (s *PrimitiveSpec) LengthBounds() (min, max int, ok bool) {
	return s.length.min, s.length.max, s.length.set()
}

// Pattern requires strings to match re.
func (s *PrimitiveSpec) Pattern(re *regexp.Regexp) *PrimitiveSpec {
	cp := s.clone()
	cp.pattern = re
	return cp
}

// PatternRegexp returns the pattern, or nil.
func (s *PrimitiveSpec) PatternRegexp() *regexp.Regexp { return s.pattern }

// Min sets an inclusive numeric lower bound.
func (s *PrimitiveSpec) Min(v value.Value) *PrimitiveSpec {
	cp := s.clone()
	cp.min = v
	return cp
}

// Max sets an inclusive numeric upper bound.
func (s *PrimitiveSpec) Max(v value.Value) *PrimitiveSpec {
	cp := s.clone()
	cp.max = v
	return cp
}

// Range returns the numeric bounds; nil means unbounded on that side.
func (s *PrimitiveSpec) Range() (min, max value.Value) { return s.min, s.max }
