package gojson_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/reoring/jspec"
	"github.com/reoring/jspec/source/gojson"
	"github.com/reoring/jspec/spec"
	"github.com/reoring/jspec/value"
)

func TestSource_MatchesBuiltinTokenizer(t *testing.T) {
	ctx := context.Background()
	s := spec.Object(
		spec.Req("id", spec.Int64()),
		spec.Req("price", spec.BigDecimal()),
		spec.Opt("tags", spec.ArrayOf(spec.String())),
		spec.Opt("meta", spec.MapOf(spec.Any())),
		spec.Opt("ok", spec.Bool()).OrNull(),
	)
	docs := []string{
		`{"id":1,"price":0.10}`,
		`{"id":123456789,"price":1e2,"tags":["a","b"],"ok":null}`,
		`{"id":2,"price":3,"meta":{"x":[1,{"y":null}],"z":true}}`,
	}
	for _, d := range docs {
		want, err := jspec.ParseString(ctx, s, d)
		if err != nil {
			t.Fatalf("%s: builtin: %v", d, err)
		}
		got, err := jspec.Parse(ctx, s, gojson.NewReader(strings.NewReader(d)))
		if err != nil {
			t.Fatalf("%s: gojson: %v", d, err)
		}
		if !value.Equal(want, got) {
			t.Fatalf("%s: values differ: %v vs %v", d, want, got)
		}
	}
}

func TestSource_Errors(t *testing.T) {
	ctx := context.Background()
	_, err := jspec.Parse(ctx, spec.ArrayOf(spec.Int32()), gojson.NewBytes([]byte(`[1,2`)))
	if !jspec.IsTruncated(err) {
		t.Fatalf("expected truncated input, got %v", err)
	}

	_, err = jspec.Parse(ctx, spec.ArrayOf(spec.Int32()), gojson.NewBytes([]byte(`[1] [2]`)))
	var pe *jspec.ParseError
	if !errors.As(err, &pe) || pe.Code != jspec.CodeSyntaxError || jspec.IsTruncated(err) {
		t.Fatalf("expected trailing data error, got %v", err)
	}

	_, err = jspec.Parse(ctx, spec.ArrayOf(spec.Int32()), gojson.NewBytes([]byte(`[1,"x"]`)))
	if !errors.As(err, &pe) || pe.Code != jspec.CodeInt32Expected || pe.Path.String() != "/1" || pe.Offset != -1 {
		t.Fatalf("expected int32_expected at /1 without offset, got %v", err)
	}
}

func TestSource_DuplicateKeys(t *testing.T) {
	_, err := jspec.Parse(context.Background(), spec.MapOf(spec.Int32()),
		gojson.NewBytes([]byte(`{"a":1,"a":2}`)),
		jspec.ParseOpt{Strictness: jspec.Strictness{OnDuplicateKey: jspec.Error}})
	var pe *jspec.ParseError
	if !errors.As(err, &pe) || pe.Code != jspec.CodeDuplicateKey || pe.Path.String() != "/a" {
		t.Fatalf("expected duplicate_key at /a, got %v", err)
	}
}
