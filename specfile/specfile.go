// Package specfile loads spec trees from YAML (or JSON) documents.
//
// A document declares named definitions and a root:
//
//	root: order
//	definitions:
//	  money:
//	    type: bigdecimal
//	    min: 0
//	  order:
//	    type: object
//	    fields:
//	      id:    {type: int64, required: true}
//	      total: {ref: money, required: true}
//	      note:  {type: string, nullable: true, aliases: [comment]}
//	    where: ["self.total >= 0"]
//
// Field order in the document is the declaration order of the spec.
package specfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reoring/jspec"
	"github.com/reoring/jspec/celpred"
	"github.com/reoring/jspec/number"
	"github.com/reoring/jspec/spec"
	"github.com/reoring/jspec/value"
)

// File is a loaded spec document.
type File struct {
	// Root is the spec documents are checked against.
	Root spec.Spec
	// Registry holds every definition; pass it in jspec.ParseOpt so Refs
	// resolve.
	Registry *spec.Registry
}

// Options returns parse options that resolve the file's definitions.
func (f *File) Options() jspec.ParseOpt { return jspec.ParseOpt{Registry: f.Registry} }

// Error locates a problem in a spec document.
type Error struct {
	Line, Col int
	Msg       string
	Err       error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("specfile: %d:%d: %s", e.Line, e.Col, e.Msg)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func errAt(n *yaml.Node, err error, format string, args ...any) error {
	return &Error{Line: n.Line, Col: n.Column, Msg: fmt.Sprintf(format, args...), Err: err}
}

// LoadFile reads and parses the document at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Load reads a document from r.
func Load(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse builds a File from one YAML document.
func Parse(data []byte) (*File, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("specfile: empty document")
		}
		return nil, fmt.Errorf("specfile: %w", err)
	}
	top := doc.Content[0]
	m, err := mapping(top, "root", "definitions")
	if err != nil {
		return nil, err
	}
	l := &loader{}
	var named []*spec.NamedSpec
	if defs := m.get("definitions"); defs != nil {
		dm, err := mapping(defs)
		if err != nil {
			return nil, err
		}
		for _, kv := range dm.pairs {
			s, err := l.build(kv.val)
			if err != nil {
				return nil, err
			}
			named = append(named, spec.Named(kv.key.Value, s))
		}
	}
	reg, err := spec.NewRegistry(named...)
	if err != nil {
		return nil, fmt.Errorf("specfile: %w", err)
	}
	f := &File{Registry: reg}
	rn := m.get("root")
	switch {
	case rn == nil:
		return nil, errAt(top, nil, "missing root")
	case rn.Kind == yaml.ScalarNode:
		target, ok := reg.Lookup(rn.Value)
		if !ok {
			return nil, errAt(rn, nil, "root names unknown definition %q", rn.Value)
		}
		f.Root = target
	default:
		if f.Root, err = l.build(rn); err != nil {
			return nil, err
		}
	}
	for _, d := range l.defaults {
		if err := jspec.Validate(context.Background(), d.spec, d.value, f.Options()); err != nil {
			return nil, errAt(d.node, err, "default does not match its field")
		}
	}
	return f, nil
}

// loader carries state across one document.
type loader struct {
	// defaults are checked once every definition is known.
	defaults []pendingDefault
}

type pendingDefault struct {
	node  *yaml.Node
	spec  spec.Spec
	value value.Value
}

type pair struct{ key, val *yaml.Node }

type mappingNode struct {
	node  *yaml.Node
	pairs []pair
}

func (m mappingNode) get(k string) *yaml.Node {
	for _, p := range m.pairs {
		if p.key.Value == k {
			return p.val
		}
	}
	return nil
}

// mapping reads a YAML mapping, rejecting duplicate keys and, when allowed
// is non-empty, keys outside it.
func mapping(n *yaml.Node, allowed ...string) (mappingNode, error) {
	if n.Kind != yaml.MappingNode {
		return mappingNode{}, errAt(n, nil, "expected a mapping")
	}
	out := mappingNode{node: n}
	seen := map[string]*yaml.Node{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if first, dup := seen[k.Value]; dup {
			return mappingNode{}, errAt(k, nil, "duplicate key %q (first at %d:%d)", k.Value, first.Line, first.Column)
		}
		seen[k.Value] = k
		if len(allowed) > 0 && !contains(allowed, k.Value) {
			return mappingNode{}, errAt(k, nil, "unknown key %q", k.Value)
		}
		out.pairs = append(out.pairs, pair{k, v})
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

var nodeKeys = []string{
	"type", "ref", "nullable", "length", "pattern", "min", "max", "items", "values",
	"fields", "mode", "size", "of", "const", "enum", "where",
}

var fieldKeys = append([]string{"required", "default", "aliases"}, nodeKeys...)

// build converts one spec node.
func (l *loader) build(n *yaml.Node) (spec.Spec, error) {
	if n.Kind == yaml.ScalarNode {
		// Shorthand: a bare type name or a definition name.
		return l.buildMapping(n, mappingNode{node: n, pairs: []pair{{&yaml.Node{Value: shorthandKey(n.Value)}, n}}})
	}
	m, err := mapping(n, nodeKeys...)
	if err != nil {
		return nil, err
	}
	return l.buildMapping(n, m)
}

func shorthandKey(name string) string {
	if _, ok := spec.ParseType(name); ok {
		return "type"
	}
	switch name {
	case "any", "array", "tuple", "object", "map", "oneOf":
		return "type"
	}
	return "ref"
}

func (l *loader) buildMapping(n *yaml.Node, m mappingNode) (spec.Spec, error) {
	s, err := l.base(n, m)
	if err != nil {
		return nil, err
	}
	if w := m.get("where"); w != nil {
		if s, err = l.addPredicates(s, w); err != nil {
			return nil, err
		}
	}
	if nb := m.get("nullable"); nb != nil {
		var on bool
		if err := nb.Decode(&on); err != nil {
			return nil, errAt(nb, err, "nullable")
		}
		if on {
			s = spec.Nullable(s)
		}
	}
	return s, nil
}

func (l *loader) base(n *yaml.Node, m mappingNode) (spec.Spec, error) {
	if r := m.get("ref"); r != nil {
		return spec.Ref(r.Value), nil
	}
	if c := m.get("const"); c != nil {
		v, err := toValue(c)
		if err != nil {
			return nil, err
		}
		return spec.Constant(v), nil
	}
	if e := m.get("enum"); e != nil {
		if e.Kind != yaml.SequenceNode {
			return nil, errAt(e, nil, "enum must be a sequence")
		}
		var vs []value.Value
		for _, item := range e.Content {
			v, err := toValue(item)
			if err != nil {
				return nil, err
			}
			vs = append(vs, v)
		}
		return spec.OneValueOf(vs...), nil
	}
	tn := m.get("type")
	if tn == nil {
		return nil, errAt(n, nil, "node needs one of type, ref, const or enum")
	}
	switch tn.Value {
	case "any":
		return spec.Any(), nil
	case "array":
		items := m.get("items")
		if items == nil {
			return nil, errAt(n, nil, "array needs items")
		}
		elem, err := l.build(items)
		if err != nil {
			return nil, err
		}
		a := spec.ArrayOf(elem)
		if sz := m.get("size"); sz != nil {
			lo, hi, err := rangeOf(sz)
			if err != nil {
				return nil, err
			}
			a = a.Size(lo, hi)
		}
		return a, nil
	case "tuple":
		items := m.get("items")
		if items == nil || items.Kind != yaml.SequenceNode {
			return nil, errAt(n, nil, "tuple needs a sequence of items")
		}
		specs, err := l.buildAll(items.Content)
		if err != nil {
			return nil, err
		}
		return spec.Tuple(specs...), nil
	case "oneOf":
		of := m.get("of")
		if of == nil || of.Kind != yaml.SequenceNode {
			return nil, errAt(n, nil, "oneOf needs a sequence under of")
		}
		specs, err := l.buildAll(of.Content)
		if err != nil {
			return nil, err
		}
		return spec.OneOf(specs...), nil
	case "map":
		vn := m.get("values")
		if vn == nil {
			return nil, errAt(n, nil, "map needs values")
		}
		vs, err := l.build(vn)
		if err != nil {
			return nil, err
		}
		ms := spec.MapOf(vs)
		if sz := m.get("size"); sz != nil {
			lo, hi, err := rangeOf(sz)
			if err != nil {
				return nil, err
			}
			ms = ms.Size(lo, hi)
		}
		return ms, nil
	case "object":
		return l.object(n, m)
	}
	t, ok := spec.ParseType(tn.Value)
	if !ok {
		return nil, errAt(tn, nil, "unknown type %q", tn.Value)
	}
	return primitive(t, m)
}

func (l *loader) buildAll(nodes []*yaml.Node) ([]spec.Spec, error) {
	out := make([]spec.Spec, 0, len(nodes))
	for _, c := range nodes {
		s, err := l.build(c)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func primitive(t spec.Type, m mappingNode) (spec.Spec, error) {
	p := spec.Primitive(t)
	if ln := m.get("length"); ln != nil {
		lo, hi, err := rangeOf(ln)
		if err != nil {
			return nil, err
		}
		p = p.Length(lo, hi)
	}
	if pn := m.get("pattern"); pn != nil {
		re, err := regexp.Compile(pn.Value)
		if err != nil {
			return nil, errAt(pn, err, "pattern")
		}
		p = p.Pattern(re)
	}
	for _, k := range []string{"min", "max"} {
		bn := m.get(k)
		if bn == nil {
			continue
		}
		v, err := bound(t, bn)
		if err != nil {
			return nil, err
		}
		if k == "min" {
			p = p.Min(v)
		} else {
			p = p.Max(v)
		}
	}
	return p, nil
}

// bound reads a min/max scalar: a number, or an RFC 3339 string for
// timestamps.
func bound(t spec.Type, n *yaml.Node) (value.Value, error) {
	v, err := toValue(n)
	if err != nil {
		return nil, err
	}
	if t == spec.TypeTimestamp {
		typed, err := jspec.Conform(context.Background(), spec.Timestamp(), v)
		if err != nil {
			return nil, errAt(n, err, "timestamp bound")
		}
		return typed, nil
	}
	if !value.IsNumber(v) {
		return nil, errAt(n, nil, "bound must be a number")
	}
	return v, nil
}

// rangeOf reads [min, max]; a missing or null max is unbounded.
func rangeOf(n *yaml.Node) (int, int, error) {
	if n.Kind != yaml.SequenceNode || len(n.Content) == 0 || len(n.Content) > 2 {
		return 0, 0, errAt(n, nil, "expected [min, max]")
	}
	var lo int
	if err := n.Content[0].Decode(&lo); err != nil {
		return 0, 0, errAt(n, err, "min")
	}
	hi := spec.Unbounded
	if len(n.Content) == 2 && n.Content[1].Tag != "!!null" {
		if err := n.Content[1].Decode(&hi); err != nil {
			return 0, 0, errAt(n, err, "max")
		}
	}
	if lo < 0 || (hi != spec.Unbounded && hi < lo) {
		return 0, 0, errAt(n, nil, "invalid range [%d, %d]", lo, hi)
	}
	return lo, hi, nil
}

func (l *loader) object(n *yaml.Node, m mappingNode) (spec.Spec, error) {
	var fields []spec.Field
	if fn := m.get("fields"); fn != nil {
		fm, err := mapping(fn)
		if err != nil {
			return nil, err
		}
		for _, kv := range fm.pairs {
			f, err := l.field(kv.key.Value, kv.val)
			if err != nil {
				return nil, err
			}
			fields = append(fields, f)
		}
	}
	o := spec.Object(fields...)
	if mn := m.get("mode"); mn != nil {
		switch mn.Value {
		case "strict":
			o = o.Strict()
		case "lenient":
			o = o.Lenient()
		case "passthrough":
			o = o.Passthrough()
		default:
			return nil, errAt(mn, nil, "unknown mode %q", mn.Value)
		}
	}
	if sz := m.get("size"); sz != nil {
		lo, hi, err := rangeOf(sz)
		if err != nil {
			return nil, err
		}
		o = o.Size(lo, hi)
	}
	return o, nil
}

func (l *loader) field(name string, n *yaml.Node) (spec.Field, error) {
	if n.Kind == yaml.ScalarNode {
		s, err := l.build(n)
		if err != nil {
			return spec.Field{}, err
		}
		return spec.Opt(name, s), nil
	}
	m, err := mapping(n, fieldKeys...)
	if err != nil {
		return spec.Field{}, err
	}
	// nullable on a field marks the field, not its spec.
	inner := mappingNode{node: m.node}
	for _, p := range m.pairs {
		switch p.key.Value {
		case "required", "default", "aliases", "nullable":
		default:
			inner.pairs = append(inner.pairs, p)
		}
	}
	s, err := l.buildMapping(n, inner)
	if err != nil {
		return spec.Field{}, err
	}
	f := spec.Opt(name, s)
	if rn := m.get("required"); rn != nil {
		if err := rn.Decode(&f.Required); err != nil {
			return spec.Field{}, errAt(rn, err, "required")
		}
	}
	if nn := m.get("nullable"); nn != nil {
		if err := nn.Decode(&f.Nullable); err != nil {
			return spec.Field{}, errAt(nn, err, "nullable")
		}
	}
	if an := m.get("aliases"); an != nil {
		if err := an.Decode(&f.Aliases); err != nil {
			return spec.Field{}, errAt(an, err, "aliases")
		}
	}
	if dn := m.get("default"); dn != nil {
		if f.Required {
			return spec.Field{}, errAt(dn, nil, "required field %q cannot have a default", name)
		}
		v, err := toValue(dn)
		if err != nil {
			return spec.Field{}, err
		}
		f.Default = v
		if !(f.Nullable && value.IsNull(v)) {
			l.defaults = append(l.defaults, pendingDefault{node: dn, spec: s, value: v})
		}
	}
	return f, nil
}

// addPredicates compiles where: entries, either expression strings or
// {name, expr} mappings.
func (l *loader) addPredicates(s spec.Spec, n *yaml.Node) (spec.Spec, error) {
	items := []*yaml.Node{n}
	if n.Kind == yaml.SequenceNode {
		items = n.Content
	}
	for _, it := range items {
		name, expr := "", it.Value
		if it.Kind == yaml.MappingNode {
			m, err := mapping(it, "name", "expr")
			if err != nil {
				return nil, err
			}
			if e := m.get("expr"); e != nil {
				expr = e.Value
			}
			if nm := m.get("name"); nm != nil {
				name = nm.Value
			}
		}
		if name == "" {
			name = expr
		}
		p, err := celpred.CompileNamed(name, expr)
		if err != nil {
			return nil, errAt(it, err, "where")
		}
		if s, err = spec.WithPredicate(s, p); err != nil {
			return nil, errAt(it, err, "where")
		}
	}
	return s, nil
}

// toValue converts a YAML node to a value. Numbers must follow the JSON
// number grammar and keep their exact value.
func toValue(n *yaml.Node) (value.Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return toValue(n.Alias)
	case yaml.SequenceNode:
		elems := make([]value.Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := toValue(c)
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
		}
		return value.NewArray(elems...), nil
	case yaml.MappingNode:
		m, err := mapping(n)
		if err != nil {
			return nil, err
		}
		var b value.ObjectBuilder
		for _, kv := range m.pairs {
			v, err := toValue(kv.val)
			if err != nil {
				return nil, err
			}
			b.Set(kv.key.Value, v)
		}
		return b.Build(), nil
	}
	switch n.Tag {
	case "!!null":
		return value.Null, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, errAt(n, err, "bool")
		}
		return value.Bool(b), nil
	case "!!int", "!!float":
		x, err := number.ParseExact([]byte(strings.TrimPrefix(n.Value, "+")))
		if err != nil {
			return nil, errAt(n, err, "number %q", n.Value)
		}
		return value.FromGo(x)
	}
	return value.String(n.Value), nil
}
