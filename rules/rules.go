// Package rules builds cross-field predicates for container specs.
//
// Paths are JSON Pointers relative to the value the predicate is attached
// to. A path that does not resolve makes a condition false.
package rules

import (
	"fmt"
	"strings"

	"github.com/reoring/jspec"
	"github.com/reoring/jspec/spec"
	"github.com/reoring/jspec/value"
)

// Op defines simple comparison operators for If(...).Then(...)
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

func (o Op) String() string {
	switch o {
	case Eq:
		return "=="
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Conditional selects the values a group of predicates applies to.
type Conditional struct {
	path jspec.Path
	raw  string
	op   Op
	want value.Value
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If builds a conditional that compares the value at path against want.
// It panics on a malformed pointer.
func If(path string, op Op, want value.Value) Conditional {
	p, err := jspec.ParsePointer(path)
	if err != nil {
		panic("rules: " + err.Error())
	}
	return Conditional{path: p, raw: path, op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

func (c Conditional) String() string {
	join := func(cs []Conditional, sep string) string {
		parts := make([]string, len(cs))
		for i, x := range cs {
			parts[i] = x.String()
		}
		return "(" + strings.Join(parts, sep) + ")"
	}
	switch {
	case c.all != nil:
		return join(c.all, " && ")
	case c.any != nil:
		return join(c.any, " || ")
	}
	return c.raw + " " + c.op.String() + " " + value.Text(c.want)
}

func (c Conditional) eval(v value.Value) bool {
	switch {
	case c.all != nil:
		for _, x := range c.all {
			if !x.eval(v) {
				return false
			}
		}
		return true
	case c.any != nil:
		for _, x := range c.any {
			if x.eval(v) {
				return true
			}
		}
		return false
	}
	cur, ok := At(v, c.path)
	return ok && compare(cur, c.op, c.want)
}

// Then returns a predicate that checks every rule when the condition holds
// and passes otherwise.
func (c Conditional) Then(rules ...spec.Predicate) spec.Predicate {
	return spec.Predicate{
		Name: "if " + c.String() + " then " + names(rules),
		Fn: func(v value.Value) bool {
			if !c.eval(v) {
				return true
			}
			for _, r := range rules {
				if !r.Check(v) {
					return false
				}
			}
			return true
		},
	}
}

func names(ps []spec.Predicate) string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return strings.Join(out, ", ")
}

// AtLeastOne ensures the array at collectionPath has at least one element.
func AtLeastOne(collectionPath string) spec.Predicate {
	p := mustPointer(collectionPath)
	return spec.Predicate{
		Name: "at_least_one " + collectionPath,
		Fn: func(v value.Value) bool {
			arr, ok := At(v, p)
			a, isArr := arr.(value.Array)
			return ok && isArr && a.Len() > 0
		},
	}
}

// UniqueBy ensures no two elements of the array at collectionPath share the
// value at keyPath (relative to each element). Elements without a key are
// ignored.
func UniqueBy(collectionPath, keyPath string) spec.Predicate {
	cp, kp := mustPointer(collectionPath), mustPointer(keyPath)
	return spec.Predicate{
		Name: "unique_by " + collectionPath + " " + keyPath,
		Fn: func(v value.Value) bool {
			coll, ok := At(v, cp)
			arr, isArr := coll.(value.Array)
			if !ok || !isArr {
				return true
			}
			var seen []value.Value
			for _, el := range arr.Elems() {
				k, ok := At(el, kp)
				if !ok {
					continue
				}
				for _, s := range seen {
					if value.Equal(s, k) {
						return false
					}
				}
				seen = append(seen, k)
			}
			return true
		},
	}
}

// And holds when every predicate holds.
func And(name string, ps ...spec.Predicate) spec.Predicate {
	return spec.Predicate{Name: name, Fn: func(v value.Value) bool {
		for _, p := range ps {
			if !p.Check(v) {
				return false
			}
		}
		return true
	}}
}

// Or holds when any predicate holds.
func Or(name string, ps ...spec.Predicate) spec.Predicate {
	return spec.Predicate{Name: name, Fn: func(v value.Value) bool {
		for _, p := range ps {
			if p.Check(v) {
				return true
			}
		}
		return false
	}}
}

func mustPointer(s string) jspec.Path {
	p, err := jspec.ParsePointer(s)
	if err != nil {
		panic("rules: " + err.Error())
	}
	return p
}

// At walks p from v.
func At(v value.Value, p jspec.Path) (value.Value, bool) {
	cur := v
	for _, seg := range p.Segments() {
		switch c := cur.(type) {
		case value.Object:
			key := seg.Key
			if seg.IsIndex {
				key = seg.String()
			}
			next, ok := c.Get(key)
			if !ok {
				return nil, false
			}
			cur = next
		case value.Array:
			if !seg.IsIndex || seg.Index < 0 || seg.Index >= c.Len() {
				return nil, false
			}
			cur = c.At(seg.Index)
		default:
			return nil, false
		}
	}
	return cur, true
}

func compare(cur value.Value, op Op, want value.Value) bool {
	switch op {
	case Eq:
		return value.Equal(cur, want)
	case Ne:
		return !value.Equal(cur, want)
	}
	c, ok := order(cur, want)
	if !ok {
		return false
	}
	switch op {
	case Lt:
		return c < 0
	case Le:
		return c <= 0
	case Gt:
		return c > 0
	case Ge:
		return c >= 0
	}
	return false
}

// order compares numbers by value, strings lexically and timestamps as
// instants.
func order(a, b value.Value) (int, bool) {
	if value.IsNumber(a) && value.IsNumber(b) {
		return value.Compare(a, b)
	}
	switch x := a.(type) {
	case value.String:
		y, ok := b.(value.String)
		if !ok {
			return 0, false
		}
		return strings.Compare(string(x), string(y)), true
	case value.Timestamp:
		y, ok := b.(value.Timestamp)
		if !ok {
			return 0, false
		}
		return x.Time().Compare(y.Time()), true
	}
	return 0, false
}
