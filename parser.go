package jspec

import (
	"context"
	"strconv"

	"github.com/reoring/jspec/codec"
	eng "github.com/reoring/jspec/internal/engine"
	"github.com/reoring/jspec/number"
	"github.com/reoring/jspec/spec"
	"github.com/reoring/jspec/value"
)

// parser drives a token source through a spec. Every method receives the
// first token of the value it handles and consumes exactly that value.
type parser struct {
	ctx   context.Context
	src   eng.TokenSource
	reg   *spec.Registry
	scope []*spec.NamedSpec
}

func (ps *parser) fail(p Path, code ErrorCode, v value.Value, off int64, data map[string]string) error {
	return &ParseError{ValidationError: newError(p, code, v, data), Offset: off}
}

func (ps *parser) failWith(e ValidationError, off int64) error {
	return &ParseError{ValidationError: e, Offset: off}
}

// generic materializes the value at tok without a spec.
func (ps *parser) generic(tok Token, p Path) (value.Value, error) {
	v, err := eng.DecodeValue(ps.src, tok)
	if err != nil {
		return nil, ps.sourceError(p, err)
	}
	return v, nil
}

// offending decodes the value at tok for an error report. It has to consume
// the value anyway; failures just leave the value out.
func (ps *parser) offending(tok Token) value.Value {
	v, err := eng.DecodeValue(ps.src, tok)
	if err != nil {
		return nil
	}
	return v
}

func (ps *parser) value(s spec.Spec, tok Token, p Path) (value.Value, error) {
	if tok.Kind == TokenEOF {
		return nil, syntaxParseError(p, &SyntaxError{Offset: tok.Offset, Msg: "unexpected end of input"})
	}
	switch n := s.(type) {
	case *spec.AnySpec:
		v, err := ps.generic(tok, p)
		if err != nil {
			return nil, err
		}
		if errs := predicateErrors(n.Predicates(), CodeAnyCondition, v, p); len(errs) > 0 {
			return nil, ps.failWith(errs[0], tok.Offset)
		}
		return v, nil
	case *spec.ConstantSpec:
		v, err := ps.generic(tok, p)
		if err != nil {
			return nil, err
		}
		if !value.Equal(v, n.Value()) {
			return nil, ps.fail(p, CodeConstantCondition, v, tok.Offset, map[string]string{"expected": value.Text(n.Value())})
		}
		return v, nil
	case *spec.OneValueOfSpec:
		v, err := ps.generic(tok, p)
		if err != nil {
			return nil, err
		}
		for _, c := range n.Values() {
			if value.Equal(v, c) {
				return v, nil
			}
		}
		return nil, ps.fail(p, CodeConstantCondition, v, tok.Offset, map[string]string{"expected": oneValueText(n.Values())})
	case *spec.PrimitiveSpec:
		return ps.primitive(n, tok, p)
	case *spec.TupleSpec:
		return ps.tuple(n, tok, p)
	case *spec.ArraySpec:
		return ps.array(n, tok, p)
	case *spec.ObjectSpec:
		return ps.object(n, tok, p)
	case *spec.MapSpec:
		return ps.mapOf(n, tok, p)
	case *spec.OneOfSpec:
		return ps.oneOf(n, tok, p)
	case *spec.NullableSpec:
		if tok.Kind == TokenNull {
			return value.Null, nil
		}
		return ps.value(n.Inner(), tok, p)
	case *spec.NamedSpec:
		ps.scope = append(ps.scope, n)
		v, err := ps.value(n.Inner(), tok, p)
		ps.scope = ps.scope[:len(ps.scope)-1]
		return v, err
	case *spec.RefSpec:
		target, ok := resolveRef(n.Name(), ps.scope, ps.reg)
		if !ok {
			return nil, ps.fail(p, CodeUnresolvedRef, nil, tok.Offset, map[string]string{"name": n.Name()})
		}
		return ps.value(target, tok, p)
	}
	return nil, ps.fail(p, CodeUnresolvedRef, nil, tok.Offset, map[string]string{"name": s.Kind().String()})
}

func (ps *parser) primitive(s *spec.PrimitiveSpec, tok Token, p Path) (value.Value, error) {
	t := s.Type()
	var v value.Value
	switch tok.Kind {
	case TokenNull:
		return nil, ps.fail(p, CodeNullNotExpected, value.Null, tok.Offset, map[string]string{"expected": t.String()})
	case TokenString:
		switch t {
		case spec.TypeString:
			v = value.String(tok.String)
		case spec.TypeTimestamp:
			ts, err := codec.TimeRFC3339().Decode(tok.String)
			if err != nil {
				return nil, ps.fail(p, CodeTimestampExpected, value.String(tok.String), tok.Offset, map[string]string{"expected": t.String()})
			}
			v = ts
		case spec.TypeBinary:
			b, err := codec.Base64().Decode(tok.String)
			if err != nil {
				return nil, ps.fail(p, CodeBinaryExpected, value.String(tok.String), tok.Offset, map[string]string{"expected": t.String()})
			}
			v = b
		}
	case TokenNumber:
		if k, ok := numberKinds[t]; ok {
			n, err := number.ConvertAs(tok.Number, tok.Num, k)
			if err != nil {
				found, _ := eng.NumberValue(tok)
				return nil, &ParseError{
					ValidationError: newError(p, numericCode(t, err), found, map[string]string{"expected": t.String(), "detail": err.Error()}),
					Offset:          tok.Offset,
					Cause:           err,
				}
			}
			v = numberToValue(n)
		}
	case TokenBool:
		if t == spec.TypeBool {
			v = value.Bool(tok.Bool)
		}
	}
	if v == nil {
		return nil, ps.fail(p, ExpectedCode(t), ps.offending(tok), tok.Offset, map[string]string{"expected": t.String()})
	}
	if errs := primitiveErrors(s, v, p); len(errs) > 0 {
		return nil, ps.failWith(errs[0], tok.Offset)
	}
	return v, nil
}

func (ps *parser) tuple(s *spec.TupleSpec, tok Token, p Path) (value.Value, error) {
	if tok.Kind != TokenBeginArray {
		return nil, ps.fail(p, CodeArrayExpected, ps.offending(tok), tok.Offset, nil)
	}
	items := s.Items()
	elems := make([]value.Value, 0, len(items))
	sizeData := map[string]string{"expected": strconv.Itoa(len(items))}
	for i, item := range items {
		if err := ps.ctx.Err(); err != nil {
			return nil, err
		}
		et, err := ps.next(p.Index(i))
		if err != nil {
			return nil, err
		}
		if et.Kind == TokenEndArray {
			return nil, ps.fail(p, CodeTupleSize, value.NewArray(elems...), et.Offset, sizeData)
		}
		v, err := ps.value(item, et, p.Index(i))
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	et, err := ps.next(p)
	if err != nil {
		return nil, err
	}
	if et.Kind != TokenEndArray {
		return nil, ps.fail(p.Index(len(items)), CodeTupleSize, ps.offending(et), et.Offset, sizeData)
	}
	arr := value.NewArray(elems...)
	if errs := predicateErrors(s.Predicates(), CodeArrayCondition, arr, p); len(errs) > 0 {
		return nil, ps.failWith(errs[0], tok.Offset)
	}
	return arr, nil
}

func (ps *parser) array(s *spec.ArraySpec, tok Token, p Path) (value.Value, error) {
	if tok.Kind != TokenBeginArray {
		return nil, ps.fail(p, CodeArrayExpected, ps.offending(tok), tok.Offset, nil)
	}
	elem := s.Elem()
	var elems []value.Value
	for {
		if err := ps.ctx.Err(); err != nil {
			return nil, err
		}
		at := p.Index(len(elems))
		et, err := ps.next(at)
		if err != nil {
			return nil, err
		}
		if et.Kind == TokenEndArray {
			break
		}
		v, err := ps.value(elem, et, at)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	arr := value.NewArray(elems...)
	if min, max, ok := s.SizeBounds(); ok {
		if e, bad := sizeError(min, max, arr.Len(), CodeArrayTooSmall, CodeArrayTooBig, arr, p); bad {
			return nil, ps.failWith(e, tok.Offset)
		}
	}
	if errs := predicateErrors(s.Predicates(), CodeArrayCondition, arr, p); len(errs) > 0 {
		return nil, ps.failWith(errs[0], tok.Offset)
	}
	return arr, nil
}

func (ps *parser) object(s *spec.ObjectSpec, tok Token, p Path) (value.Value, error) {
	if tok.Kind != TokenBeginObject {
		return nil, ps.fail(p, CodeObjectExpected, ps.offending(tok), tok.Offset, nil)
	}
	var b value.ObjectBuilder
	for {
		if err := ps.ctx.Err(); err != nil {
			return nil, err
		}
		kt, err := ps.next(p)
		if err != nil {
			return nil, err
		}
		if kt.Kind == TokenEndObject {
			break
		}
		key := kt.String
		at := p.Key(key)
		vt, err := ps.next(at)
		if err != nil {
			return nil, err
		}
		f, known := s.Resolve(key)
		if !known {
			switch s.Mode() {
			case spec.ModeLenient:
				if err := eng.Skip(ps.src, vt); err != nil {
					return nil, ps.sourceError(at, err)
				}
			case spec.ModePassthrough:
				v, err := ps.generic(vt, at)
				if err != nil {
					return nil, err
				}
				b.Set(key, v)
			default:
				return nil, ps.fail(at, CodeSpecMissing, ps.offending(vt), kt.Offset, map[string]string{"key": key})
			}
			continue
		}
		if vt.Kind == TokenNull && f.Nullable {
			b.Set(f.Name, value.Null)
			continue
		}
		v, err := ps.value(f.Spec, vt, at)
		if err != nil {
			return nil, err
		}
		b.Set(f.Name, v)
	}
	applyDefaults(s, &b)
	for _, f := range s.Fields() {
		if f.Required && !b.Has(f.Name) {
			return nil, ps.fail(p.Key(f.Name), CodeRequired, nil, tok.Offset, map[string]string{"key": f.Name})
		}
	}
	obj := b.Build()
	if min, max, ok := s.SizeBounds(); ok {
		if e, bad := sizeError(min, max, obj.Len(), CodeObjectTooSmall, CodeObjectTooBig, obj, p); bad {
			return nil, ps.failWith(e, tok.Offset)
		}
	}
	if errs := predicateErrors(s.Predicates(), CodeObjectCondition, obj, p); len(errs) > 0 {
		return nil, ps.failWith(errs[0], tok.Offset)
	}
	return obj, nil
}

func applyDefaults(s *spec.ObjectSpec, b *value.ObjectBuilder) {
	for _, f := range s.Fields() {
		if !f.Required && f.Default != nil && !b.Has(f.Name) {
			b.Set(f.Name, f.Default)
		}
	}
}

func (ps *parser) mapOf(s *spec.MapSpec, tok Token, p Path) (value.Value, error) {
	if tok.Kind != TokenBeginObject {
		return nil, ps.fail(p, CodeObjectExpected, ps.offending(tok), tok.Offset, nil)
	}
	var b value.ObjectBuilder
	for {
		if err := ps.ctx.Err(); err != nil {
			return nil, err
		}
		kt, err := ps.next(p)
		if err != nil {
			return nil, err
		}
		if kt.Kind == TokenEndObject {
			break
		}
		at := p.Key(kt.String)
		vt, err := ps.next(at)
		if err != nil {
			return nil, err
		}
		v, err := ps.value(s.Value(), vt, at)
		if err != nil {
			return nil, err
		}
		b.Set(kt.String, v)
	}
	obj := b.Build()
	if min, max, ok := s.SizeBounds(); ok {
		if e, bad := sizeError(min, max, obj.Len(), CodeObjectTooSmall, CodeObjectTooBig, obj, p); bad {
			return nil, ps.failWith(e, tok.Offset)
		}
	}
	if errs := predicateErrors(s.Predicates(), CodeMapCondition, obj, p); len(errs) > 0 {
		return nil, ps.failWith(errs[0], tok.Offset)
	}
	return obj, nil
}

// oneOf buffers the value and tries each alternative in declaration order.
// The first that accepts it wins; when none does, the error of the first
// alternative is reported with all of that alternative's errors attached.
func (ps *parser) oneOf(s *spec.OneOfSpec, tok Token, p Path) (value.Value, error) {
	v, err := ps.generic(tok, p)
	if err != nil {
		return nil, err
	}
	var first Errors
	for i, alt := range s.Alternatives() {
		c := &checker{ctx: ps.ctx, reg: ps.reg, scope: append([]*spec.NamedSpec(nil), ps.scope...)}
		typed := c.check(alt, v, p)
		if len(c.errs) == 0 {
			return typed, nil
		}
		if i == 0 {
			first = c.errs
		}
	}
	if len(first) == 0 {
		return nil, ps.fail(p, CodeConstantCondition, v, tok.Offset, map[string]string{"expected": "one of 0 alternatives"})
	}
	return nil, &ParseError{ValidationError: first[0], Offset: tok.Offset, Details: first}
}

func oneValueText(vs []value.Value) string {
	out := make([]byte, 0, 16*len(vs))
	for i, v := range vs {
		if i > 0 {
			out = append(out, ", "...)
		}
		out = append(out, value.Text(v)...)
	}
	return string(out)
}
