package jspec

import (
	"context"
	"strconv"

	"github.com/reoring/jspec/spec"
	"github.com/reoring/jspec/value"
)

// Test validates an in-memory value against s and returns every violation
// it finds, ordered by traversal. A nil result means v conforms.
//
// Unlike Parse, Test accepts generic representations: any numeric kind that
// converts to the target without loss, RFC 3339 strings for timestamps and
// base64 strings for binaries.
func Test(ctx context.Context, s spec.Spec, v value.Value, opts ...ParseOpt) Errors {
	_, errs := conform(ctx, s, v, opts)
	return errs
}

// Validate is Test returning an error: Errors when v does not conform, or
// the context error when ctx ended before the check completed.
func Validate(ctx context.Context, s spec.Spec, v value.Value, opts ...ParseOpt) error {
	_, errs := conform(ctx, s, v, opts)
	if len(errs) > 0 {
		return errs
	}
	return ctx.Err()
}

// Is reports whether v conforms to s.
func Is(ctx context.Context, s spec.Spec, v value.Value, opts ...ParseOpt) bool {
	return len(Test(ctx, s, v, opts...)) == 0 && ctx.Err() == nil
}

// Conform validates v and returns it converted to the representations s
// asks for, with object defaults applied and unknown keys of lenient objects
// dropped. The error is Errors when v does not conform.
func Conform(ctx context.Context, s spec.Spec, v value.Value, opts ...ParseOpt) (value.Value, error) {
	out, errs := conform(ctx, s, v, opts)
	if len(errs) > 0 {
		return nil, errs
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func conform(ctx context.Context, s spec.Spec, v value.Value, opts []ParseOpt) (value.Value, Errors) {
	c := &checker{ctx: ctx, reg: lastOpt(opts).Registry}
	out := c.check(s, v, Root())
	return out, c.errs
}

// checker walks a value and a spec together, collecting every violation.
type checker struct {
	ctx   context.Context
	reg   *spec.Registry
	scope []*spec.NamedSpec
	errs  Errors
}

func (c *checker) add(e ...ValidationError) { c.errs = append(c.errs, e...) }

func (c *checker) done() bool { return c.ctx.Err() != nil }

// check returns v in the representation s asks for. The result is only
// meaningful when no error was added.
func (c *checker) check(s spec.Spec, v value.Value, p Path) value.Value {
	if v == nil {
		v = value.Null
	}
	switch n := s.(type) {
	case *spec.AnySpec:
		c.add(predicateErrors(n.Predicates(), CodeAnyCondition, v, p)...)
		return v
	case *spec.ConstantSpec:
		if !value.Equal(v, n.Value()) {
			c.add(newError(p, CodeConstantCondition, v, map[string]string{"expected": value.Text(n.Value())}))
		}
		return v
	case *spec.OneValueOfSpec:
		for _, x := range n.Values() {
			if value.Equal(v, x) {
				return v
			}
		}
		c.add(newError(p, CodeConstantCondition, v, map[string]string{"expected": oneValueText(n.Values())}))
		return v
	case *spec.PrimitiveSpec:
		return c.primitive(n, v, p)
	case *spec.TupleSpec:
		return c.tuple(n, v, p)
	case *spec.ArraySpec:
		return c.array(n, v, p)
	case *spec.ObjectSpec:
		return c.object(n, v, p)
	case *spec.MapSpec:
		return c.mapOf(n, v, p)
	case *spec.OneOfSpec:
		var first Errors
		for i, alt := range n.Alternatives() {
			sub := &checker{ctx: c.ctx, reg: c.reg, scope: append([]*spec.NamedSpec(nil), c.scope...)}
			out := sub.check(alt, v, p)
			if len(sub.errs) == 0 {
				return out
			}
			if i == 0 {
				first = sub.errs
			}
		}
		if len(first) == 0 {
			c.add(newError(p, CodeConstantCondition, v, map[string]string{"expected": "one of 0 alternatives"}))
		}
		c.add(first...)
		return v
	case *spec.NullableSpec:
		if value.IsNull(v) {
			return value.Null
		}
		return c.check(n.Inner(), v, p)
	case *spec.NamedSpec:
		c.scope = append(c.scope, n)
		out := c.check(n.Inner(), v, p)
		c.scope = c.scope[:len(c.scope)-1]
		return out
	case *spec.RefSpec:
		target, ok := resolveRef(n.Name(), c.scope, c.reg)
		if !ok {
			c.add(newError(p, CodeUnresolvedRef, nil, map[string]string{"name": n.Name()}))
			return v
		}
		return c.check(target, v, p)
	}
	c.add(newError(p, CodeUnresolvedRef, nil, map[string]string{"name": s.Kind().String()}))
	return v
}

func (c *checker) primitive(s *spec.PrimitiveSpec, v value.Value, p Path) value.Value {
	t := s.Type()
	if value.IsNull(v) {
		c.add(newError(p, CodeNullNotExpected, v, map[string]string{"expected": t.String()}))
		return v
	}
	out, code, ok := coerce(t, v)
	if !ok {
		c.add(newError(p, code, v, map[string]string{"expected": t.String()}))
		return v
	}
	c.add(primitiveErrors(s, out, p)...)
	return out
}

func (c *checker) tuple(s *spec.TupleSpec, v value.Value, p Path) value.Value {
	arr, ok := v.(value.Array)
	if !ok {
		c.add(newError(p, CodeArrayExpected, v, nil))
		return v
	}
	mark := len(c.errs)
	items := s.Items()
	if arr.Len() != len(items) {
		c.add(newError(p, CodeTupleSize, v, map[string]string{"expected": itoa(len(items)), "got": itoa(arr.Len())}))
	}
	out := make([]value.Value, 0, len(items))
	for i, item := range items {
		if i >= arr.Len() || c.done() {
			break
		}
		out = append(out, c.check(item, arr.At(i), p.Index(i)))
	}
	typed := value.NewArray(out...)
	if len(c.errs) == mark {
		c.add(predicateErrors(s.Predicates(), CodeArrayCondition, typed, p)...)
	}
	return typed
}

func (c *checker) array(s *spec.ArraySpec, v value.Value, p Path) value.Value {
	arr, ok := v.(value.Array)
	if !ok {
		c.add(newError(p, CodeArrayExpected, v, nil))
		return v
	}
	mark := len(c.errs)
	if min, max, ok := s.SizeBounds(); ok {
		if e, bad := sizeError(min, max, arr.Len(), CodeArrayTooSmall, CodeArrayTooBig, v, p); bad {
			c.add(e)
		}
	}
	out := make([]value.Value, 0, arr.Len())
	for i, e := range arr.Elems() {
		if c.done() {
			break
		}
		out = append(out, c.check(s.Elem(), e, p.Index(i)))
	}
	typed := value.NewArray(out...)
	if len(c.errs) == mark {
		c.add(predicateErrors(s.Predicates(), CodeArrayCondition, typed, p)...)
	}
	return typed
}

func (c *checker) object(s *spec.ObjectSpec, v value.Value, p Path) value.Value {
	obj, ok := v.(value.Object)
	if !ok {
		c.add(newError(p, CodeObjectExpected, v, nil))
		return v
	}
	mark := len(c.errs)
	var b value.ObjectBuilder
	obj.Range(func(key string, mv value.Value) bool {
		if c.done() {
			return false
		}
		at := p.Key(key)
		f, known := s.Resolve(key)
		if !known {
			switch s.Mode() {
			case spec.ModeLenient:
			case spec.ModePassthrough:
				b.Set(key, mv)
			default:
				c.add(newError(at, CodeSpecMissing, mv, map[string]string{"key": key}))
			}
			return true
		}
		if f.Nullable && value.IsNull(mv) {
			b.Set(f.Name, value.Null)
			return true
		}
		b.Set(f.Name, c.check(f.Spec, mv, at))
		return true
	})
	applyDefaults(s, &b)
	for _, f := range s.Fields() {
		if f.Required && !b.Has(f.Name) {
			c.add(newError(p.Key(f.Name), CodeRequired, nil, map[string]string{"key": f.Name}))
		}
	}
	typed := b.Build()
	if min, max, ok := s.SizeBounds(); ok {
		if e, bad := sizeError(min, max, typed.Len(), CodeObjectTooSmall, CodeObjectTooBig, v, p); bad {
			c.add(e)
		}
	}
	if len(c.errs) == mark {
		c.add(predicateErrors(s.Predicates(), CodeObjectCondition, typed, p)...)
	}
	return typed
}

func (c *checker) mapOf(s *spec.MapSpec, v value.Value, p Path) value.Value {
	obj, ok := v.(value.Object)
	if !ok {
		c.add(newError(p, CodeObjectExpected, v, nil))
		return v
	}
	mark := len(c.errs)
	if min, max, ok := s.SizeBounds(); ok {
		if e, bad := sizeError(min, max, obj.Len(), CodeObjectTooSmall, CodeObjectTooBig, v, p); bad {
			c.add(e)
		}
	}
	var b value.ObjectBuilder
	obj.Range(func(key string, mv value.Value) bool {
		if c.done() {
			return false
		}
		b.Set(key, c.check(s.Value(), mv, p.Key(key)))
		return true
	})
	typed := b.Build()
	if len(c.errs) == mark {
		c.add(predicateErrors(s.Predicates(), CodeMapCondition, typed, p)...)
	}
	return typed
}

func itoa(n int) string { return strconv.Itoa(n) }
