package jspec_test

import (
	"context"
	"errors"
	"io"
	"math/big"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/jspec"
	"github.com/reoring/jspec/spec"
	"github.com/reoring/jspec/value"
)

func encode(t *testing.T, v value.Value) string {
	t.Helper()
	b, err := value.Encode(v)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return string(b)
}

func parseErr(t *testing.T, err error) *jspec.ParseError {
	t.Helper()
	var pe *jspec.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
	return pe
}

func TestParse_RoundTrip(t *testing.T) {
	s := spec.Object(spec.Req("a", spec.Int32()), spec.Req("b", spec.String()), spec.Opt("c", spec.ArrayOf(spec.Double())))
	in := `{"a":1,"b":"x","c":[0.5,2]}`
	v, err := jspec.ParseString(context.Background(), s, in)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := encode(t, v); got != in {
		t.Fatalf("round trip: got %s, want %s", got, in)
	}
	c, _ := v.(value.Object).Get("c")
	if _, ok := c.(value.Array).At(1).(value.Double); !ok {
		t.Fatalf("expected double for 2, got %T", c.(value.Array).At(1))
	}
}

func TestParse_UnknownKeyModes(t *testing.T) {
	ctx := context.Background()
	base := spec.Object(spec.Req("a", spec.Int32()))
	in := `{"a":1,"extra":2}`

	_, err := jspec.ParseString(ctx, base, in)
	pe := parseErr(t, err)
	if pe.Code != jspec.CodeSpecMissing || pe.Path.String() != "/extra" || pe.Offset != 7 {
		t.Fatalf("strict: got %s at %s offset %d", pe.Code, pe.Path, pe.Offset)
	}

	v, err := jspec.ParseString(ctx, base.Lenient(), in)
	if err != nil {
		t.Fatalf("lenient: %v", err)
	}
	if got := encode(t, v); got != `{"a":1}` {
		t.Fatalf("lenient: got %s", got)
	}

	v, err = jspec.ParseString(ctx, base.Passthrough(), `{"a":1,"extra":{"x":[1]}}`)
	if err != nil {
		t.Fatalf("passthrough: %v", err)
	}
	if got := encode(t, v); got != `{"a":1,"extra":{"x":[1]}}` {
		t.Fatalf("passthrough: got %s", got)
	}
}

func TestParse_ArraySize(t *testing.T) {
	ctx := context.Background()
	s := spec.ArrayOf(spec.String()).Size(1, 2)
	cases := []struct {
		in   string
		code jspec.ErrorCode
		path string
	}{
		{`[]`, jspec.CodeArrayTooSmall, "/"},
		{`["a","b","c"]`, jspec.CodeArrayTooBig, "/"},
		{`["a",1]`, jspec.CodeStringExpected, "/1"},
		{`{"a":1}`, jspec.CodeArrayExpected, "/"},
	}
	for _, tc := range cases {
		_, err := jspec.ParseString(ctx, s, tc.in)
		pe := parseErr(t, err)
		if pe.Code != tc.code || pe.Path.String() != tc.path {
			t.Fatalf("%s: got %s at %s, want %s at %s", tc.in, pe.Code, pe.Path, tc.code, tc.path)
		}
	}
	if _, err := jspec.ParseString(ctx, s, `["a","b"]`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParse_TypeMismatchOffsetAndValue(t *testing.T) {
	_, err := jspec.ParseString(context.Background(), spec.ArrayOf(spec.String()), `["a",1]`)
	pe := parseErr(t, err)
	if pe.Offset != 5 {
		t.Fatalf("offset: got %d, want 5", pe.Offset)
	}
	if !value.Equal(pe.Value, value.Int32(1)) {
		t.Fatalf("value: got %v", pe.Value)
	}
}

func TestParse_Numbers(t *testing.T) {
	ctx := context.Background()
	v, err := jspec.ParseString(ctx, spec.Int32(), `1000E3`)
	if err != nil || v != value.Int32(1000000) {
		t.Fatalf("int32 1000E3: %v, %v", v, err)
	}

	_, err = jspec.ParseString(ctx, spec.Int32(), `1.5`)
	if pe := parseErr(t, err); pe.Code != jspec.CodeInt32Expected {
		t.Fatalf("fraction: got %s", pe.Code)
	}
	_, err = jspec.ParseString(ctx, spec.Int32(), `3000000000`)
	if pe := parseErr(t, err); pe.Code != jspec.CodeOverflow {
		t.Fatalf("overflow: got %s", pe.Code)
	}

	v, err = jspec.ParseString(ctx, spec.BigDecimal(), `-0.01`)
	if err != nil || encode(t, v) != "-0.01" {
		t.Fatalf("bigdecimal: %v, %v", v, err)
	}

	_, err = jspec.ParseString(ctx, spec.String(), `12`)
	if pe := parseErr(t, err); pe.Code != jspec.CodeStringExpected {
		t.Fatalf("string for number: got %s", pe.Code)
	}
}

func TestParseReader_LongLiteralSmallBuffer(t *testing.T) {
	digits := strings.Repeat("9", 600)
	v, err := jspec.ParseReader(context.Background(), spec.Object(spec.Req("n", spec.BigInt())),
		strings.NewReader(`{"n":`+digits+`}`), jspec.ParseOpt{BufferSize: 16})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	n, _ := v.(value.Object).Get("n")
	want, _ := new(big.Int).SetString(digits, 10)
	if n.(value.BigInt).Int().Cmp(want) != 0 {
		t.Fatalf("bigint mismatch")
	}
}

func TestParse_TruncatedVersusTrailing(t *testing.T) {
	ctx := context.Background()
	s := spec.Object(spec.Req("a", spec.Int32()))

	_, err := jspec.ParseString(ctx, s, `{"a":1`)
	pe := parseErr(t, err)
	if pe.Code != jspec.CodeSyntaxError || !jspec.IsTruncated(err) {
		t.Fatalf("truncated: got %s truncated=%v", pe.Code, jspec.IsTruncated(err))
	}
	var se *jspec.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected SyntaxError cause")
	}

	_, err = jspec.ParseString(ctx, s, `{"a":1} x`)
	pe = parseErr(t, err)
	if pe.Code != jspec.CodeSyntaxError || jspec.IsTruncated(err) || pe.Offset != 8 {
		t.Fatalf("trailing: got %s offset %d truncated=%v", pe.Code, pe.Offset, jspec.IsTruncated(err))
	}
}

func TestParse_Objects(t *testing.T) {
	ctx := context.Background()
	s := spec.Object(
		spec.Req("id", spec.Int64()),
		spec.Opt("name", spec.String()).OrNull().WithAliases("title"),
		spec.Opt("tags", spec.ArrayOf(spec.String())).WithDefault(value.NewArray()),
	)
	v, err := jspec.ParseString(ctx, s, `{"title":"x","id":7}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := encode(t, v); got != `{"name":"x","id":7,"tags":[]}` {
		t.Fatalf("got %s", got)
	}

	v, err = jspec.ParseString(ctx, s, `{"id":7,"name":null}`)
	if err != nil {
		t.Fatalf("nullable: %v", err)
	}
	if got := encode(t, v); got != `{"id":7,"name":null,"tags":[]}` {
		t.Fatalf("got %s", got)
	}

	_, err = jspec.ParseString(ctx, s, `{"name":"x"}`)
	if pe := parseErr(t, err); pe.Code != jspec.CodeRequired || pe.Path.String() != "/id" || pe.Value != nil {
		t.Fatalf("required: got %s at %s", pe.Code, pe.Path)
	}

	_, err = jspec.ParseString(ctx, s, `{"id":null}`)
	if pe := parseErr(t, err); pe.Code != jspec.CodeNullNotExpected || pe.Path.String() != "/id" {
		t.Fatalf("null: got %s at %s", pe.Code, pe.Path)
	}
}

func TestParse_ObjectSizeAndPredicate(t *testing.T) {
	ctx := context.Background()
	s := spec.MapOf(spec.Int32()).Size(1, 2)
	if _, err := jspec.ParseString(ctx, s, `{}`); parseErr(t, err).Code != jspec.CodeObjectTooSmall {
		t.Fatalf("expected object_too_small, got %v", err)
	}
	sum := spec.Object(spec.Req("lo", spec.Int32()), spec.Req("hi", spec.Int32())).
		SuchThat("ordered", func(v value.Value) bool {
			o := v.(value.Object)
			lo, _ := o.Get("lo")
			hi, _ := o.Get("hi")
			return lo.(value.Int32) <= hi.(value.Int32)
		})
	_, err := jspec.ParseString(ctx, sum, `{"lo":3,"hi":1}`)
	if pe := parseErr(t, err); pe.Code != jspec.CodeObjectCondition || !pe.Path.IsRoot() {
		t.Fatalf("got %s at %s", pe.Code, pe.Path)
	}
}

func TestParse_OneOf(t *testing.T) {
	ctx := context.Background()
	s := spec.Object(spec.Req("c", spec.OneOf(spec.Bool(), spec.Int32())))
	v, err := jspec.ParseString(ctx, s, `{"c":5}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c, _ := v.(value.Object).Get("c")
	if c != value.Int32(5) {
		t.Fatalf("got %#v", c)
	}

	_, err = jspec.ParseString(ctx, s, `{"c":"x"}`)
	pe := parseErr(t, err)
	if pe.Code != jspec.CodeBoolExpected || pe.Path.String() != "/c" || len(pe.Details) != 1 {
		t.Fatalf("got %s at %s details %v", pe.Code, pe.Path, pe.Details)
	}
}

func TestParse_OneOfObjectAlternatives(t *testing.T) {
	ctx := context.Background()
	narrow := spec.Object(spec.Req("a", spec.Int32()), spec.Req("b", spec.String())).Strict()
	wide := spec.Object(
		spec.Req("a", spec.Int32()),
		spec.Req("b", spec.String()),
		spec.Req("c", spec.OneOf(spec.Bool(), spec.Int32())),
	)
	s := spec.OneOf(narrow, wide)

	v, err := jspec.ParseString(ctx, s, `{"a":1,"b":"x","c":5}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []value.Member{
		{Key: "a", Value: value.Int32(1)},
		{Key: "b", Value: value.String("x")},
		{Key: "c", Value: value.Int32(5)},
	}
	if diff := cmp.Diff(want, v.(value.Object).Members()); diff != "" {
		t.Fatalf("typed value mismatch (-want +got):\n%s", diff)
	}

	v, err = jspec.ParseString(ctx, s, `{"a":1,"b":"x"}`)
	if err != nil {
		t.Fatalf("narrow: %v", err)
	}
	if got := encode(t, v); got != `{"a":1,"b":"x"}` {
		t.Fatalf("got %s", got)
	}

	_, err = jspec.ParseString(ctx, s, `{"a":1,"b":"x","c":"y"}`)
	pe := parseErr(t, err)
	if pe.Code != jspec.CodeSpecMissing || pe.Path.String() != "/c" {
		t.Fatalf("got %s at %s", pe.Code, pe.Path)
	}
}

func TestParse_ConstantAndEnum(t *testing.T) {
	ctx := context.Background()
	if _, err := jspec.ParseString(ctx, spec.Constant(value.Int32(1)), `1.0`); err != nil {
		t.Fatalf("1.0 equals 1: %v", err)
	}
	enum := spec.OneValueOf(value.String("red"), value.String("green"))
	_, err := jspec.ParseString(ctx, enum, `"blue"`)
	if pe := parseErr(t, err); pe.Code != jspec.CodeConstantCondition {
		t.Fatalf("got %s", pe.Code)
	}
}

func TestParse_TimestampAndBinary(t *testing.T) {
	ctx := context.Background()
	s := spec.Tuple(spec.Timestamp(), spec.Binary())
	v, err := jspec.ParseString(ctx, s, `["2025-01-01T00:00:00Z","AAE="]`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	arr := v.(value.Array)
	if _, ok := arr.At(0).(value.Timestamp); !ok {
		t.Fatalf("expected timestamp, got %T", arr.At(0))
	}
	if diff := cmp.Diff([]byte{0, 1}, arr.At(1).(value.Binary).Bytes()); diff != "" {
		t.Fatalf("binary (-want +got):\n%s", diff)
	}

	_, err = jspec.ParseString(ctx, s, `["2025-01-01","AAE="]`)
	if pe := parseErr(t, err); pe.Code != jspec.CodeTimestampExpected || pe.Path.String() != "/0" {
		t.Fatalf("got %s at %s", pe.Code, pe.Path)
	}
	_, err = jspec.ParseString(ctx, s, `["2025-01-01T00:00:00Z"]`)
	if pe := parseErr(t, err); pe.Code != jspec.CodeTupleSize {
		t.Fatalf("got %s", pe.Code)
	}
}

func TestParse_DuplicateKeys(t *testing.T) {
	ctx := context.Background()
	s := spec.Object(spec.Req("a", spec.Int32()))
	in := `{"a":1,"a":2}`

	v, err := jspec.ParseString(ctx, s, in)
	if err != nil || encode(t, v) != `{"a":2}` {
		t.Fatalf("last wins: %v, %v", v, err)
	}

	_, err = jspec.ParseString(ctx, s, in, jspec.ParseOpt{Strictness: jspec.Strictness{OnDuplicateKey: jspec.Error}})
	if pe := parseErr(t, err); pe.Code != jspec.CodeDuplicateKey || pe.Path.String() != "/a" {
		t.Fatalf("got %s at %s", pe.Code, pe.Path)
	}

	var warned []jspec.ValidationError
	opt := jspec.ParseOpt{
		Strictness: jspec.Strictness{OnDuplicateKey: jspec.Warn},
		OnWarning:  func(e jspec.ValidationError) { warned = append(warned, e) },
	}
	if _, err := jspec.ParseString(ctx, s, in, opt); err != nil {
		t.Fatalf("warn: %v", err)
	}
	if len(warned) != 1 || warned[0].Code != jspec.CodeDuplicateKey || warned[0].Path.String() != "/a" {
		t.Fatalf("warnings: %v", warned)
	}
}

func TestParse_Limits(t *testing.T) {
	ctx := context.Background()
	_, err := jspec.DecodeBytes(ctx, []byte(`{"a":{"b":{"c":1}}}`), jspec.ParseOpt{MaxDepth: 2})
	if pe := parseErr(t, err); pe.Code != jspec.CodeLimitExceeded || pe.Path.String() != "/a/b" {
		t.Fatalf("depth: got %s at %s", pe.Code, pe.Path)
	}
	data := `["` + strings.Repeat("x", 1024) + `"]`
	_, err = jspec.ParseReader(ctx, spec.Any(), strings.NewReader(data), jspec.ParseOpt{MaxBytes: 64})
	if pe := parseErr(t, err); pe.Code != jspec.CodeLimitExceeded {
		t.Fatalf("bytes: got %s", pe.Code)
	}
}

func TestParse_SyntaxErrorInsideGenericValue(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		s    spec.Spec
		in   string
		path string
	}{
		{"any array", spec.Any(), `[1, 1.]`, "/1"},
		{"any nested", spec.Any(), `{"a":[0,{"b":tru}]}`, "/a/1/b"},
		{"passthrough", spec.Object(spec.Req("a", spec.Int32())).Passthrough(), `{"a":1,"x":{"y":[2,-]}}`, "/x/y/1"},
		{"lenient skip", spec.Object(spec.Req("a", spec.Int32())).Lenient(), `{"a":1,"x":[1,{"y":nul}]}`, "/x/1/y"},
		{"lenient skip key", spec.Object(spec.Req("a", spec.Int32())).Lenient(), `{"a":1,"x":{"y":1,2}}`, "/x"},
	}
	for _, c := range cases {
		_, err := jspec.ParseString(ctx, c.s, c.in)
		pe := parseErr(t, err)
		if pe.Code != jspec.CodeSyntaxError || pe.Path.String() != c.path {
			t.Fatalf("%s: got %s at %s, want syntax_error at %s", c.name, pe.Code, pe.Path, c.path)
		}
		var se *jspec.SyntaxError
		if !errors.As(err, &se) {
			t.Fatalf("%s: expected SyntaxError cause, got %v", c.name, err)
		}
	}
	_, err := jspec.ParseString(ctx, spec.Any(), `[1,[2,`)
	if pe := parseErr(t, err); !jspec.IsTruncated(err) || pe.Path.String() != "/1/1" {
		t.Fatalf("truncated: got %s at %s", pe.Code, pe.Path)
	}
}

type fillByte byte

func (b fillByte) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(b)
	}
	return len(p), nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func TestParseReader_MaxBytesStopsReading(t *testing.T) {
	const limit = 1 << 20
	body := io.MultiReader(strings.NewReader(`{"name":"`), io.LimitReader(fillByte('x'), 64<<20), strings.NewReader(`"}`))
	cr := &countingReader{r: body}
	s := spec.Object(spec.Req("name", spec.String()))
	_, err := jspec.ParseReader(context.Background(), s, cr, jspec.ParseOpt{MaxBytes: limit})
	pe := parseErr(t, err)
	if pe.Code != jspec.CodeLimitExceeded || pe.Path.String() != "/name" {
		t.Fatalf("got %s at %s", pe.Code, pe.Path)
	}
	if cr.n > limit+1 {
		t.Fatalf("read %d bytes past a %d byte limit", cr.n, limit)
	}
	if pe.Offset != limit+1 {
		t.Fatalf("offset = %d", pe.Offset)
	}

	exact := `["xx"]`
	v, err := jspec.ParseReader(context.Background(), spec.Any(), strings.NewReader(exact), jspec.ParseOpt{MaxBytes: int64(len(exact)), BufferSize: 16})
	if err != nil {
		t.Fatalf("input of exactly the limit: %v", err)
	}
	if got := encode(t, v); got != exact {
		t.Fatalf("got %s", got)
	}
}

func tree() *spec.NamedSpec {
	return spec.Named("tree", spec.Object(
		spec.Req("v", spec.Int32()),
		spec.Opt("kids", spec.ArrayOf(spec.Ref("tree"))),
	))
}

func TestParse_RecursiveSpec(t *testing.T) {
	ctx := context.Background()
	in := `{"v":1,"kids":[{"v":2},{"v":3,"kids":[]}]}`
	v, err := jspec.ParseString(ctx, tree(), in)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := encode(t, v); got != in {
		t.Fatalf("got %s", got)
	}

	_, err = jspec.ParseString(ctx, tree(), `{"v":1,"kids":[{"v":2,"kids":[{"v":"x"}]}]}`)
	if pe := parseErr(t, err); pe.Code != jspec.CodeInt32Expected || pe.Path.String() != "/kids/0/kids/0/v" {
		t.Fatalf("got %s at %s", pe.Code, pe.Path)
	}
}

func TestParse_RegistryRefs(t *testing.T) {
	ctx := context.Background()
	reg, err := spec.NewRegistry(spec.Named("id", spec.Int64().Min(value.Int32(1))))
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	s := spec.ArrayOf(spec.Ref("id"))
	if _, err := jspec.ParseString(ctx, s, `[1,2]`, jspec.ParseOpt{Registry: reg}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = jspec.ParseString(ctx, s, `[1,0]`, jspec.ParseOpt{Registry: reg})
	if pe := parseErr(t, err); pe.Code != jspec.CodeInt64Condition || pe.Path.String() != "/1" {
		t.Fatalf("got %s at %s", pe.Code, pe.Path)
	}
	_, err = jspec.ParseString(ctx, s, `[1]`)
	if pe := parseErr(t, err); pe.Code != jspec.CodeUnresolvedRef {
		t.Fatalf("got %s", pe.Code)
	}
}

func TestParse_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := jspec.ParseString(ctx, spec.ArrayOf(spec.Int32()), `[1,2,3]`)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDecode_Generic(t *testing.T) {
	v, err := jspec.Decode(context.Background(), jspec.JSONString(`{"a":[1,1.5,12345678901,true,null]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	a, _ := v.(value.Object).Get("a")
	var kinds []value.Kind
	for _, e := range a.(value.Array).Elems() {
		kinds = append(kinds, e.Kind())
	}
	want := []value.Kind{value.KindInt32, value.KindBigDecimal, value.KindInt64, value.KindBool, value.KindNull}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("kinds (-want +got):\n%s", diff)
	}
}
