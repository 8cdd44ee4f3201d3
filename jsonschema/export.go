package jsonschema

import (
	"errors"
	"fmt"
	"math"

	"github.com/reoring/jspec/spec"
	"github.com/reoring/jspec/value"
)

// ErrUnresolvedRef reports a Ref that names neither an enclosing Named spec
// nor a registry entry.
var ErrUnresolvedRef = errors.New("jsonschema: unresolved ref")

// FromSpec exports s as a JSON Schema document. Named specs become $defs
// entries referenced by $ref; reg resolves Refs that no enclosing Named
// binds. Predicates cannot be expressed and are listed by name under
// x-predicates.
func FromSpec(s spec.Spec, reg *spec.Registry) (*Schema, error) {
	x := &exporter{reg: reg, defs: map[string]*Schema{}}
	root, err := x.convert(s)
	if err != nil {
		return nil, err
	}
	if len(x.defs) > 0 {
		root.Defs = x.defs
	}
	root.Schema = Draft
	return root, nil
}

type exporter struct {
	reg   *spec.Registry
	scope []*spec.NamedSpec
	defs  map[string]*Schema
}

func defRef(name string) string { return "#/$defs/" + name }

func intp(n int) *int { return &n }

func predicateNames(ps []spec.Predicate) []string {
	var out []string
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func raw(v value.Value) (Raw, error) {
	b, err := value.Encode(v)
	if err != nil {
		return nil, err
	}
	return Raw(b), nil
}

func (x *exporter) convert(s spec.Spec) (*Schema, error) {
	switch n := s.(type) {
	case *spec.AnySpec:
		return &Schema{Predicates: predicateNames(n.Predicates())}, nil
	case *spec.ConstantSpec:
		r, err := raw(n.Value())
		if err != nil {
			return nil, err
		}
		return &Schema{Const: r}, nil
	case *spec.OneValueOfSpec:
		out := &Schema{}
		for _, v := range n.Values() {
			r, err := raw(v)
			if err != nil {
				return nil, err
			}
			out.Enum = append(out.Enum, r)
		}
		return out, nil
	case *spec.PrimitiveSpec:
		return primitive(n), nil
	case *spec.TupleSpec:
		out := &Schema{Type: "array", Items: false, MinItems: intp(n.Len()), MaxItems: intp(n.Len()), Predicates: predicateNames(n.Predicates())}
		for _, it := range n.Items() {
			c, err := x.convert(it)
			if err != nil {
				return nil, err
			}
			out.PrefixItems = append(out.PrefixItems, c)
		}
		return out, nil
	case *spec.ArraySpec:
		items, err := x.convert(n.Elem())
		if err != nil {
			return nil, err
		}
		out := &Schema{Type: "array", Items: items, Predicates: predicateNames(n.Predicates())}
		if min, max, ok := n.SizeBounds(); ok {
			out.MinItems, out.MaxItems = bounds(min, max)
		}
		return out, nil
	case *spec.ObjectSpec:
		return x.object(n)
	case *spec.MapSpec:
		vs, err := x.convert(n.Value())
		if err != nil {
			return nil, err
		}
		out := &Schema{Type: "object", AdditionalProperties: vs, Predicates: predicateNames(n.Predicates())}
		if min, max, ok := n.SizeBounds(); ok {
			out.MinProperties, out.MaxProperties = bounds(min, max)
		}
		return out, nil
	case *spec.OneOfSpec:
		// The first matching alternative wins, so overlap is fine: anyOf.
		out := &Schema{}
		for _, alt := range n.Alternatives() {
			c, err := x.convert(alt)
			if err != nil {
				return nil, err
			}
			out.AnyOf = append(out.AnyOf, c)
		}
		return out, nil
	case *spec.NullableSpec:
		inner, err := x.convert(n.Inner())
		if err != nil {
			return nil, err
		}
		return orNull(inner), nil
	case *spec.NamedSpec:
		if err := x.define(n); err != nil {
			return nil, err
		}
		return &Schema{Ref: defRef(n.Name())}, nil
	case *spec.RefSpec:
		for i := len(x.scope) - 1; i >= 0; i-- {
			if x.scope[i].Name() == n.Name() {
				return &Schema{Ref: defRef(n.Name())}, nil
			}
		}
		target, ok := x.reg.Lookup(n.Name())
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnresolvedRef, n.Name())
		}
		if err := x.define(target); err != nil {
			return nil, err
		}
		return &Schema{Ref: defRef(n.Name())}, nil
	}
	return nil, fmt.Errorf("jsonschema: unsupported spec kind %s", s.Kind())
}

// define converts n into $defs once. The entry is reserved before its body
// is converted so recursive references terminate.
func (x *exporter) define(n *spec.NamedSpec) error {
	if _, done := x.defs[n.Name()]; done {
		return nil
	}
	x.defs[n.Name()] = &Schema{}
	x.scope = append(x.scope, n)
	body, err := x.convert(n.Inner())
	x.scope = x.scope[:len(x.scope)-1]
	if err != nil {
		return err
	}
	x.defs[n.Name()] = body
	return nil
}

func orNull(s *Schema) *Schema {
	return &Schema{AnyOf: []*Schema{s, {Type: "null"}}}
}

func bounds(min, max int) (lo, hi *int) {
	if min > 0 {
		lo = intp(min)
	}
	if max >= 0 {
		hi = intp(max)
	}
	return lo, hi
}

func (x *exporter) object(n *spec.ObjectSpec) (*Schema, error) {
	out := &Schema{Type: "object", Properties: map[string]*Schema{}, Predicates: predicateNames(n.Predicates())}
	for _, f := range n.Fields() {
		fs, err := x.convert(f.Spec)
		if err != nil {
			return nil, err
		}
		if f.Nullable {
			fs = orNull(fs)
		}
		if f.Default != nil {
			r, err := raw(f.Default)
			if err != nil {
				return nil, err
			}
			fs.Default = r
		}
		out.Properties[f.Name] = fs
		for _, a := range f.Aliases {
			out.Properties[a] = fs
		}
		if !f.Required {
			continue
		}
		if len(f.Aliases) == 0 {
			out.Required = append(out.Required, f.Name)
			continue
		}
		// Any one spelling satisfies a required field.
		either := &Schema{}
		for _, k := range append([]string{f.Name}, f.Aliases...) {
			either.AnyOf = append(either.AnyOf, &Schema{Required: []string{k}})
		}
		out.AllOf = append(out.AllOf, either)
	}
	if n.Mode() == spec.ModeStrict {
		out.AdditionalProperties = false
	}
	if min, max, ok := n.SizeBounds(); ok {
		out.MinProperties, out.MaxProperties = bounds(min, max)
	}
	return out, nil
}

var intRanges = map[spec.Type][2]value.Value{
	spec.TypeInt32: {value.Int32(math.MinInt32), value.Int32(math.MaxInt32)},
	spec.TypeInt64: {value.Int64(math.MinInt64), value.Int64(math.MaxInt64)},
}

func primitive(n *spec.PrimitiveSpec) *Schema {
	t := n.Type()
	out := &Schema{Predicates: predicateNames(n.Predicates())}
	switch t {
	case spec.TypeString:
		out.Type = "string"
		if min, max, ok := n.LengthBounds(); ok {
			out.MinLength, out.MaxLength = bounds(min, max)
		}
		if re := n.PatternRegexp(); re != nil {
			out.Pattern = re.String()
		}
	case spec.TypeInt32, spec.TypeInt64, spec.TypeBigInt:
		out.Type = "integer"
		if t != spec.TypeBigInt {
			out.Format = t.String()
		}
	case spec.TypeBigDecimal:
		out.Type = "number"
	case spec.TypeDouble:
		out.Type = "number"
		out.Format = "double"
	case spec.TypeBool:
		out.Type = "boolean"
	case spec.TypeTimestamp:
		out.Type = "string"
		out.Format = "date-time"
	case spec.TypeBinary:
		out.Type = "string"
		out.ContentEncoding = "base64"
	}
	if t.Numeric() {
		min, max := n.Range()
		if r, ok := intRanges[t]; ok {
			min, max = tighter(min, r[0], 1), tighter(max, r[1], -1)
		}
		if min != nil {
			out.Minimum = Number(value.Text(min))
		}
		if max != nil {
			out.Maximum = Number(value.Text(max))
		}
	}
	return out
}

// tighter returns whichever bound is more restrictive; dir is 1 for lower
// bounds and -1 for upper bounds.
func tighter(explicit, implied value.Value, dir int) value.Value {
	if explicit == nil {
		return implied
	}
	if c, ok := value.Compare(explicit, implied); ok && c*dir < 0 {
		return implied
	}
	return explicit
}
