// Package spec is the declarative constraint language: an immutable tree of
// nodes describing which JSON values are acceptable.
//
// Nodes are built with the constructors in this package and refined with
// methods that always return a new node. Nothing here parses or validates;
// the root package interprets the tree.
//
//	user := spec.Object(
//		spec.Req("id", spec.Int64()),
//		spec.Opt("tags", spec.ArrayOf(spec.String()).Size(0, 8)),
//	).Lenient()
package spec

import (
	"errors"
	"strconv"

	"github.com/reoring/jspec/value"
)

// Kind discriminates node types.
type Kind int

const (
	KindAny Kind = iota
	KindConstant
	KindOneValueOf
	KindPrimitive
	KindTuple
	KindArray
	KindObject
	KindMap
	KindOneOf
	KindNullable
	KindNamed
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindConstant:
		return "constant"
	case KindOneValueOf:
		return "oneValueOf"
	case KindPrimitive:
		return "primitive"
	case KindTuple:
		return "tuple"
	case KindArray:
		return "arrayOf"
	case KindObject:
		return "object"
	case KindMap:
		return "mapOf"
	case KindOneOf:
		return "oneOf"
	case KindNullable:
		return "nullable"
	case KindNamed:
		return "named"
	case KindRef:
		return "ref"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Spec is a node of the constraint tree. The implementations are the
// pointer types declared in this package.
type Spec interface {
	Kind() Kind
	isSpec()
}

// Predicate is a named refinement evaluated after structural checks pass.
// The name is metadata for diagnostics and schema export.
type Predicate struct {
	Name string
	Fn   func(value.Value) bool
}

// Check evaluates the predicate; a nil Fn accepts everything.
func (p Predicate) Check(v value.Value) bool {
	if p.Fn == nil {
		return true
	}
	return p.Fn(v)
}

var (
	// ErrFieldConflict is returned by Concat when both objects declare the
	// same field differently.
	ErrFieldConflict = errors.New("spec: conflicting field definitions")
	// ErrAliasConflict is returned by Concat when an alias would resolve to
	// two different fields.
	ErrAliasConflict = errors.New("spec: conflicting alias definitions")
	// ErrNoPredicates is returned by WithPredicate for nodes that do not
	// carry predicates.
	ErrNoPredicates = errors.New("spec: node does not accept predicates")
	// ErrDuplicateName is returned by NewRegistry for repeated names.
	ErrDuplicateName = errors.New("spec: duplicate name")
)

// Unbounded marks an absent upper size bound.
const Unbounded = -1

// bounds is an inclusive size range; max == Unbounded means no upper bound.
type bounds struct {
	min, max int
}

func noBounds() bounds { return bounds{min: 0, max: Unbounded} }

func (b bounds) set() bool { return b.min > 0 || b.max != Unbounded }

func appendPred(ps []Predicate, p Predicate) []Predicate {
	out := make([]Predicate, 0, len(ps)+1)
	out = append(out, ps...)
	return append(out, p)
}

func clonePreds(ps []Predicate) []Predicate { return append([]Predicate(nil), ps...) }

// WithPredicate attaches p to s, looking through Nullable and Named
// wrappers. Nodes without a predicate slot return ErrNoPredicates.
func WithPredicate(s Spec, p Predicate) (Spec, error) {
	switch n := s.(type) {
	case *AnySpec:
		return n.SuchThat(p.Name, p.Fn), nil
	case *PrimitiveSpec:
		return n.SuchThat(p.Name, p.Fn), nil
	case *TupleSpec:
		return n.SuchThat(p.Name, p.Fn), nil
	case *ArraySpec:
		return n.SuchThat(p.Name, p.Fn), nil
	case *ObjectSpec:
		return n.SuchThat(p.Name, p.Fn), nil
	case *MapSpec:
		return n.SuchThat(p.Name, p.Fn), nil
	case *NullableSpec:
		inner, err := WithPredicate(n.inner, p)
		if err != nil {
			return nil, err
		}
		return Nullable(inner), nil
	case *NamedSpec:
		inner, err := WithPredicate(n.inner, p)
		if err != nil {
			return nil, err
		}
		return Named(n.name, inner), nil
	}
	return nil, ErrNoPredicates
}

// Predicates returns the predicates attached directly to s.
func Predicates(s Spec) []Predicate {
	switch n := s.(type) {
	case *AnySpec:
		return n.Predicates()
	case *PrimitiveSpec:
		return n.Predicates()
	case *TupleSpec:
		return n.Predicates()
	case *ArraySpec:
		return n.Predicates()
	case *ObjectSpec:
		return n.Predicates()
	case *MapSpec:
		return n.Predicates()
	}
	return nil
}
