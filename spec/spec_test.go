package spec_test

import (
	"errors"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/jspec/spec"
	"github.com/reoring/jspec/value"
)

func fieldNames(s *spec.ObjectSpec) []string {
	var out []string
	for _, f := range s.Fields() {
		out = append(out, f.Name)
	}
	return out
}

func TestComposition_DoesNotMutateShared(t *testing.T) {
	base := spec.Object(spec.Req("a", spec.Int32()), spec.Opt("b", spec.String()))

	lenient := base.Lenient()
	opt := base.WithOptKeys("a")
	aliased := base.Alias("b", "B")
	defaulted := base.Default("b", value.String("x"))
	checked := base.SuchThat("nonEmpty", func(v value.Value) bool { return true })

	if base.Mode() != spec.ModeStrict || lenient.Mode() != spec.ModeLenient {
		t.Fatalf("mode leaked: base=%s lenient=%s", base.Mode(), lenient.Mode())
	}
	if f, _ := base.Field("a"); !f.Required {
		t.Fatalf("WithOptKeys mutated the base spec")
	}
	if f, _ := opt.Field("a"); f.Required {
		t.Fatalf("WithOptKeys had no effect")
	}
	if _, ok := base.Resolve("B"); ok {
		t.Fatalf("Alias mutated the base spec")
	}
	if f, ok := aliased.Resolve("B"); !ok || f.Name != "b" {
		t.Fatalf("alias did not resolve: %+v %v", f, ok)
	}
	if f, _ := base.Field("b"); f.Default != nil {
		t.Fatalf("Default mutated the base spec")
	}
	if f, _ := defaulted.Field("b"); !value.Equal(f.Default, value.String("x")) {
		t.Fatalf("default not recorded")
	}
	if len(base.Predicates()) != 0 || len(checked.Predicates()) != 1 {
		t.Fatalf("SuchThat leaked predicates")
	}
	if diff := cmp.Diff([]string{"a", "b"}, fieldNames(lenient)); diff != "" {
		t.Fatalf("field order changed (-want +got):\n%s", diff)
	}
}

func TestPrimitive_Refinements(t *testing.T) {
	s := spec.String()
	r := s.Length(1, 3).Pattern(regexp.MustCompile(`^[a-z]+$`))
	if _, _, ok := s.LengthBounds(); ok {
		t.Fatalf("Length mutated the base spec")
	}
	min, max, ok := r.LengthBounds()
	if !ok || min != 1 || max != 3 || r.PatternRegexp() == nil {
		t.Fatalf("unexpected refinements: %d %d %v", min, max, ok)
	}
	n := spec.Int32().Min(value.Int32(0)).Max(value.Int32(10))
	lo, hi := n.Range()
	if !value.Equal(lo, value.Int32(0)) || !value.Equal(hi, value.Int32(10)) {
		t.Fatalf("range not recorded")
	}
	if ty, ok := spec.ParseType("bigdecimal"); !ok || ty != spec.TypeBigDecimal {
		t.Fatalf("ParseType failed")
	}
}

func TestConcat(t *testing.T) {
	id := spec.Int64()
	a := spec.Object(spec.Req("id", id), spec.Opt("name", spec.String()).WithAliases("title"))
	b := spec.Object(spec.Req("id", id), spec.Opt("age", spec.Int32())).Size(1, 5)

	merged, err := spec.Concat(a, b)
	if err != nil {
		t.Fatalf("concat: %v", err)
	}
	if diff := cmp.Diff([]string{"id", "name", "age"}, fieldNames(merged)); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if min, max, ok := merged.SizeBounds(); !ok || min != 1 || max != 5 {
		t.Fatalf("bounds not inherited: %d %d", min, max)
	}

	c := spec.Object(spec.Opt("id", id))
	if _, err := spec.Concat(a, c); !errors.Is(err, spec.ErrFieldConflict) {
		t.Fatalf("expected ErrFieldConflict, got %v", err)
	}
	twin := spec.Object(spec.Req("id", spec.Int64()))
	if _, err := spec.Concat(a, twin); !errors.Is(err, spec.ErrFieldConflict) {
		t.Fatalf("expected ErrFieldConflict for an equal but distinct spec, got %v", err)
	}
	d := spec.Object(spec.Opt("label", spec.String()).WithAliases("title"))
	if _, err := spec.Concat(a, d); !errors.Is(err, spec.ErrAliasConflict) {
		t.Fatalf("expected ErrAliasConflict, got %v", err)
	}
	e := spec.Object(spec.Opt("title", spec.String()))
	if _, err := spec.Concat(a, e); !errors.Is(err, spec.ErrAliasConflict) {
		t.Fatalf("expected ErrAliasConflict for alias shadowing a field, got %v", err)
	}
}

func TestWithPredicate(t *testing.T) {
	p := spec.Predicate{Name: "even", Fn: func(v value.Value) bool { return true }}
	got, err := spec.WithPredicate(spec.Named("n", spec.Nullable(spec.Int32())), p)
	if err != nil {
		t.Fatalf("WithPredicate: %v", err)
	}
	named, ok := got.(*spec.NamedSpec)
	if !ok || named.Name() != "n" {
		t.Fatalf("expected named wrapper preserved, got %T", got)
	}
	inner := named.Inner().(*spec.NullableSpec).Inner()
	if ps := spec.Predicates(inner); len(ps) != 1 || ps[0].Name != "even" {
		t.Fatalf("predicate not attached: %+v", ps)
	}
	if _, err := spec.WithPredicate(spec.Constant(value.Null), p); !errors.Is(err, spec.ErrNoPredicates) {
		t.Fatalf("expected ErrNoPredicates, got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	tree := spec.Named("tree", spec.Object(spec.Req("children", spec.ArrayOf(spec.Ref("tree")))))
	leaf := spec.Named("leaf", spec.String())
	reg, err := spec.NewRegistry(tree, leaf)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if diff := cmp.Diff([]string{"leaf", "tree"}, reg.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if got, ok := reg.Lookup("tree"); !ok || got != tree {
		t.Fatalf("lookup failed")
	}
	if _, err := spec.NewRegistry(leaf, spec.Named("leaf", spec.Bool())); !errors.Is(err, spec.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	var empty *spec.Registry
	if _, ok := empty.Lookup("x"); ok || empty.Len() != 0 {
		t.Fatalf("nil registry must be empty")
	}
}
