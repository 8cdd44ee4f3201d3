package jsonschema_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	sjs "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/reoring/jspec"
	"github.com/reoring/jspec/jsonschema"
	"github.com/reoring/jspec/spec"
	"github.com/reoring/jspec/value"
)

func compile(t *testing.T, s *jsonschema.Schema) *sjs.Schema {
	t.Helper()
	b, err := jsonschema.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	c := sjs.NewCompiler()
	c.Draft = sjs.Draft2020
	if err := c.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		t.Fatalf("add resource: %v\n%s", err, b)
	}
	sch, err := c.Compile("schema.json")
	if err != nil {
		t.Fatalf("compile: %v\n%s", err, b)
	}
	return sch
}

func agree(t *testing.T, s spec.Spec, reg *spec.Registry, docs []string) {
	t.Helper()
	js, err := jsonschema.FromSpec(s, reg)
	if err != nil {
		t.Fatalf("FromSpec: %v", err)
	}
	sch := compile(t, js)
	for _, d := range docs {
		doc, err := sjs.UnmarshalJSON(strings.NewReader(d))
		if err != nil {
			t.Fatalf("%s: unmarshal: %v", d, err)
		}
		schemaOK := sch.Validate(doc) == nil
		_, perr := jspec.ParseString(context.Background(), s, d, jspec.ParseOpt{Registry: reg})
		if parseOK := perr == nil; schemaOK != parseOK {
			t.Fatalf("%s: schema accepts=%v, parser accepts=%v (%v)", d, schemaOK, parseOK, perr)
		}
	}
}

func TestFromSpec_AgreesWithParser(t *testing.T) {
	s := spec.Object(
		spec.Req("id", spec.Int32()),
		spec.Opt("name", spec.String().Length(1, 5)).OrNull(),
		spec.Req("tags", spec.ArrayOf(spec.String()).Size(0, 2)),
		spec.Opt("kind", spec.OneValueOf(value.String("a"), value.String("b"))),
	)
	agree(t, s, nil, []string{
		`{"id":1,"tags":[]}`,
		`{"id":1.0,"tags":[]}`,
		`{"id":1.5,"tags":[]}`,
		`{"id":3000000000,"tags":[]}`,
		`{"id":1,"tags":["a","b","c"]}`,
		`{"id":1,"tags":[],"x":1}`,
		`{"id":1,"tags":[],"name":null}`,
		`{"id":1,"tags":[],"name":""}`,
		`{"id":1,"tags":[],"name":"toolong"}`,
		`{"id":1,"tags":[],"kind":"b"}`,
		`{"id":1,"tags":[],"kind":"c"}`,
		`{"tags":[]}`,
		`[]`,
	})
}

func TestFromSpec_TuplesAndUnions(t *testing.T) {
	s := spec.Tuple(spec.String(), spec.OneOf(spec.Bool(), spec.Int64()))
	agree(t, s, nil, []string{
		`["a",true]`,
		`["a",7]`,
		`["a","b"]`,
		`["a"]`,
		`["a",1,2]`,
	})
}

func TestFromSpec_RecursiveDefs(t *testing.T) {
	tree := spec.Named("tree", spec.Object(
		spec.Req("v", spec.Int32()),
		spec.Opt("kids", spec.ArrayOf(spec.Ref("tree"))),
	))
	js, err := jsonschema.FromSpec(tree, nil)
	if err != nil {
		t.Fatalf("FromSpec: %v", err)
	}
	if js.Ref != "#/$defs/tree" || js.Defs["tree"] == nil || js.Schema != jsonschema.Draft {
		t.Fatalf("unexpected root: %+v", js)
	}
	agree(t, tree, nil, []string{
		`{"v":1,"kids":[{"v":2},{"v":3,"kids":[]}]}`,
		`{"v":1,"kids":[{"v":"x"}]}`,
	})
}

func TestFromSpec_RegistryAndAliases(t *testing.T) {
	reg, err := spec.NewRegistry(spec.Named("id", spec.Int64().Min(value.Int32(1))))
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	s := spec.Object(spec.Req("owner", spec.Ref("id")).WithAliases("ownerId"))
	agree(t, s, reg, []string{
		`{"owner":5}`,
		`{"ownerId":5}`,
		`{"owner":0}`,
		`{}`,
	})

	if _, err := jsonschema.FromSpec(spec.Ref("nope"), nil); !errors.Is(err, jsonschema.ErrUnresolvedRef) {
		t.Fatalf("expected ErrUnresolvedRef, got %v", err)
	}
}

func TestFromSpec_Primitives(t *testing.T) {
	s, err := jsonschema.FromSpec(spec.Int32().Min(value.Int32(0)).SuchThat("even", func(value.Value) bool { return true }), nil)
	if err != nil {
		t.Fatalf("FromSpec: %v", err)
	}
	got := []string{s.Type, s.Format, string(s.Minimum), string(s.Maximum)}
	want := []string{"integer", "int32", "0", "2147483647"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("int32 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"even"}, s.Predicates); diff != "" {
		t.Fatalf("predicates (-want +got):\n%s", diff)
	}

	ts, _ := jsonschema.FromSpec(spec.Timestamp(), nil)
	bin, _ := jsonschema.FromSpec(spec.Binary(), nil)
	if ts.Format != "date-time" || bin.ContentEncoding != "base64" {
		t.Fatalf("timestamp=%+v binary=%+v", ts, bin)
	}
}
