package spec

import "github.com/reoring/jspec/value"

// AnySpec accepts every value, subject to its predicates.
type AnySpec struct{ preds []Predicate }

func (*AnySpec) Kind() Kind { return KindAny }
func (*AnySpec) isSpec()    {}

// Any returns a spec accepting any value.
func Any() *AnySpec { return &AnySpec{} }

// Predicates returns a copy of the attached predicates.
func (s *AnySpec) Predicates() []Predicate { return clonePreds(s.preds) }

// SuchThat returns a copy with an additional predicate.
func (s *AnySpec) SuchThat(name string, fn func(value.Value) bool) *AnySpec {
	return &AnySpec{preds: appendPred(s.preds, Predicate{Name: name, Fn: fn})}
}

// ConstantSpec accepts exactly one value.
type ConstantSpec struct{ v value.Value }

func (*ConstantSpec) Kind() Kind { return KindConstant }
func (*ConstantSpec) isSpec()    {}

// Constant returns a spec accepting only values equal to v.
func Constant(v value.Value) *ConstantSpec { return &ConstantSpec{v: v} }

// Value returns the accepted value.
func (s *ConstantSpec) Value() value.Value { return s.v }

// OneValueOfSpec accepts any value of a fixed set.
type OneValueOfSpec struct{ vs []value.Value }

func (*OneValueOfSpec) Kind() Kind { return KindOneValueOf }
func (*OneValueOfSpec) isSpec()    {}

// OneValueOf returns a spec accepting values equal to one of vs.
func OneValueOf(vs ...value.Value) *OneValueOfSpec {
	return &OneValueOfSpec{vs: append([]value.Value(nil), vs...)}
}

// Values returns a copy of the accepted values.
func (s *OneValueOfSpec) Values() []value.Value { return append([]value.Value(nil), s.vs...) }

// OneOfSpec accepts a value conforming to at least one alternative.
// Alternatives are tried in order and the first that matches wins.
type OneOfSpec struct{ alts []Spec }

func (*OneOfSpec) Kind() Kind { return KindOneOf }
func (*OneOfSpec) isSpec()    {}

// OneOf returns a union of alts.
func OneOf(alts ...Spec) *OneOfSpec { return &OneOfSpec{alts: append([]Spec(nil), alts...)} }

// Alternatives returns a copy of the alternatives in order.
func (s *OneOfSpec) Alternatives() []Spec { return append([]Spec(nil), s.alts...) }

// NullableSpec admits null in addition to its inner spec.
type NullableSpec struct{ inner Spec }

func (*NullableSpec) Kind() Kind { return KindNullable }
func (*NullableSpec) isSpec()    {}

// Nullable wraps s so that null is accepted. Wrapping twice is a no-op.
func Nullable(s Spec) Spec {
	if n, ok := s.(*NullableSpec); ok {
		return n
	}
	return &NullableSpec{inner: s}
}

// Inner returns the wrapped spec.
func (s *NullableSpec) Inner() Spec { return s.inner }

// NamedSpec labels a spec. Refs inside the inner tree can refer back to it
// by name, which is how recursive shapes are expressed.
type NamedSpec struct {
	name  string
	inner Spec
}

func (*NamedSpec) Kind() Kind { return KindNamed }
func (*NamedSpec) isSpec()    {}

// Named labels s with name.
func Named(name string, s Spec) *NamedSpec { return &NamedSpec{name: name, inner: s} }

// Name returns the label.
func (s *NamedSpec) Name() string { return s.name }

// Inner returns the labelled spec.
func (s *NamedSpec) Inner() Spec { return s.inner }

// RefSpec refers to a NamedSpec by name. It is resolved at parse time
// through a Registry or an enclosing Named node.
type RefSpec struct{ name string }

func (*RefSpec) Kind() Kind { return KindRef }
func (*RefSpec) isSpec()    {}

// Ref returns a reference to the spec named name.
func Ref(name string) *RefSpec { return &RefSpec{name: name} }

// Name returns the referenced name.
func (s *RefSpec) Name() string { return s.name }
