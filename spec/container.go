package spec

import "github.com/reoring/jspec/value"

// TupleSpec is a fixed-length array with one spec per position.
type TupleSpec struct {
	items []Spec
	preds []Predicate
}

func (*TupleSpec) Kind() Kind { return KindTuple }
func (*TupleSpec) isSpec()    {}

// Tuple returns a tuple of the given positional specs.
func Tuple(items ...Spec) *TupleSpec { return &TupleSpec{items: append([]Spec(nil), items...)} }

// Items returns a copy of the positional specs.
func (s *TupleSpec) Items() []Spec { return append([]Spec(nil), s.items...) }

// Len returns the arity.
func (s *TupleSpec) Len() int { return len(s.items) }

// Predicates returns a copy of the attached predicates.
func (s *TupleSpec) Predicates() []Predicate { return clonePreds(s.preds) }

// SuchThat returns a copy with an additional whole-array predicate.
func (s *TupleSpec) SuchThat(name string, fn func(value.Value) bool) *TupleSpec {
	return &TupleSpec{items: s.items, preds: appendPred(s.preds, Predicate{Name: name, Fn: fn})}
}

// ArraySpec is a homogeneous array.
type ArraySpec struct {
	elem  Spec
	size  bounds
	preds []Predicate
}

func (*ArraySpec) Kind() Kind { return KindArray }
func (*ArraySpec) isSpec()    {}

// ArrayOf returns an array whose elements all conform to elem.
func ArrayOf(elem Spec) *ArraySpec { return &ArraySpec{elem: elem, size: noBounds()} }

func (s *ArraySpec) clone() *ArraySpec {
	cp := *s
	cp.preds = clonePreds(s.preds)
	return &cp
}

// Elem returns the element spec.
func (s *ArraySpec) Elem() Spec { return s.elem }

// Size bounds the element count, inclusive. Pass Unbounded as max for no
// upper bound.
func (s *ArraySpec) Size(min, max int) *ArraySpec {
	cp := s.clone()
	cp.size = bounds{min: min, max: max}
	return cp
}

// SizeBounds returns the element count range and whether one was set.
func (s *ArraySpec) SizeBounds() (min, max int, ok bool) {
	return s.size.min, s.size.max, s.size.set()
}

// Predicates returns a copy of the attached predicates.
func (s *ArraySpec) Predicates() []Predicate { return clonePreds(s.preds) }

// SuchThat returns a copy with an additional whole-array predicate.
func (s *ArraySpec) SuchThat(name string, fn func(value.Value) bool) *ArraySpec {
	cp := s.clone()
	cp.preds = appendPred(s.preds, Predicate{Name: name, Fn: fn})
	return cp
}

// MapSpec is an object with arbitrary keys and homogeneous values.
type MapSpec struct {
	value Spec
	size  bounds
	preds []Predicate
}

func (*MapSpec) Kind() Kind { return KindMap }
func (*MapSpec) isSpec()    {}

// MapOf returns a map whose values all conform to v.
func MapOf(v Spec) *MapSpec { return &MapSpec{value: v, size: noBounds()} }

func (s *MapSpec) clone() *MapSpec {
	cp := *s
	cp.preds = clonePreds(s.preds)
	return &cp
}

// Value returns the value spec.
func (s *MapSpec) Value() Spec { return s.value }

// Size bounds the member count, inclusive.
func (s *MapSpec) Size(min, max int) *MapSpec {
	cp := s.clone()
	cp.size = bounds{min: min, max: max}
	return cp
}

// SizeBounds returns the member count range and whether one was set.
func (s *MapSpec) SizeBounds() (min, max int, ok bool) {
	return s.size.min, s.size.max, s.size.set()
}

// Predicates returns a copy of the attached predicates.
func (s *MapSpec) Predicates() []Predicate { return clonePreds(s.preds) }

// SuchThat returns a copy with an additional whole-map predicate.
func (s *MapSpec) SuchThat(name string, fn func(value.Value) bool) *MapSpec {
	cp := s.clone()
	cp.preds = appendPred(s.preds, Predicate{Name: name, Fn: fn})
	return cp
}
