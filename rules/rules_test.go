package rules_test

import (
	"context"
	"testing"

	"github.com/reoring/jspec"
	"github.com/reoring/jspec/rules"
	"github.com/reoring/jspec/spec"
	"github.com/reoring/jspec/value"
)

func orderSpec(t *testing.T) spec.Spec {
	t.Helper()
	item := spec.Object(spec.Req("sku", spec.String()), spec.Req("qty", spec.Int32()))
	o := spec.Object(
		spec.Req("status", spec.String()),
		spec.Req("items", spec.ArrayOf(item)),
	)
	s, err := spec.WithPredicate(o, rules.If("/status", rules.Ne, value.String("QUOTE")).Then(rules.AtLeastOne("/items")))
	if err != nil {
		t.Fatalf("predicate: %v", err)
	}
	if s, err = spec.WithPredicate(s, rules.UniqueBy("/items", "/sku")); err != nil {
		t.Fatalf("predicate: %v", err)
	}
	return s
}

func TestRules_OnParse(t *testing.T) {
	ctx := context.Background()
	s := orderSpec(t)
	cases := []struct {
		doc string
		ok  bool
	}{
		{`{"status":"QUOTE","items":[]}`, true},
		{`{"status":"CONFIRMED","items":[]}`, false},
		{`{"status":"CONFIRMED","items":[{"sku":"A","qty":1}]}`, true},
		{`{"status":"CONFIRMED","items":[{"sku":"A","qty":1},{"sku":"A","qty":2}]}`, false},
	}
	for _, tc := range cases {
		_, err := jspec.ParseString(ctx, s, tc.doc)
		if (err == nil) != tc.ok {
			t.Fatalf("%s: ok=%v, err=%v", tc.doc, tc.ok, err)
		}
		if err != nil {
			es, _ := jspec.AsErrors(err)
			if es[0].Code != jspec.CodeObjectCondition {
				t.Fatalf("%s: code %s", tc.doc, es[0].Code)
			}
		}
	}
}

func TestConditional_Composition(t *testing.T) {
	v := jspec.MustParseString(spec.Any(), `{"n":5,"s":"b","at":"x","list":[{"k":1}]}`)
	cases := []struct {
		c    rules.Conditional
		want bool
	}{
		{rules.If("/n", rules.Gt, value.Int32(4)), true},
		{rules.If("/n", rules.Le, value.Double(4.5)), false},
		{rules.If("/s", rules.Lt, value.String("c")), true},
		{rules.If("/s", rules.Lt, value.Int32(1)), false},
		{rules.If("/missing", rules.Ne, value.Int32(1)), false},
		{rules.If("/list/0/k", rules.Eq, value.Int64(1)), true},
		{rules.If("/n", rules.Eq, value.Int32(5)).And(rules.If("/s", rules.Eq, value.String("a"))), false},
		{rules.If("/n", rules.Eq, value.Int32(5)).Or(rules.If("/s", rules.Eq, value.String("a"))), true},
	}
	never := spec.Predicate{Name: "never", Fn: func(value.Value) bool { return false }}
	for _, tc := range cases {
		// The rule fails exactly when the condition holds.
		if got := !tc.c.Then(never).Check(v); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.c, got, tc.want)
		}
	}
}

func TestAndOr(t *testing.T) {
	yes := spec.Predicate{Name: "yes", Fn: func(value.Value) bool { return true }}
	no := spec.Predicate{Name: "no", Fn: func(value.Value) bool { return false }}
	if rules.And("both", yes, no).Check(value.Null) || !rules.Or("either", yes, no).Check(value.Null) {
		t.Fatalf("unexpected combination result")
	}
}
