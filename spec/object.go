package spec

import (
	"fmt"

	"github.com/reoring/jspec/value"
)

// Mode controls how undeclared object keys are handled.
type Mode int

const (
	// ModeStrict rejects undeclared keys.
	ModeStrict Mode = iota
	// ModeLenient skips undeclared keys; they do not appear in the result.
	ModeLenient
	// ModePassthrough keeps undeclared keys in the result without
	// validating them.
	ModePassthrough
)

func (m Mode) String() string {
	switch m {
	case ModeStrict:
		return "strict"
	case ModeLenient:
		return "lenient"
	case ModePassthrough:
		return "passthrough"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Field is one entry of an object's field table.
type Field struct {
	Name     string
	Spec     Spec
	Required bool
	// Nullable admits null for this field even when Spec does not.
	Nullable bool
	// Default is substituted when an optional field is absent; nil means
	// no default.
	Default value.Value
	// Aliases are alternate input names resolving to this field.
	Aliases []string
}

// Req declares a required field.
func Req(name string, s Spec) Field { return Field{Name: name, Spec: s, Required: true} }

// Opt declares an optional field.
func Opt(name string, s Spec) Field { return Field{Name: name, Spec: s} }

// OrNull returns a copy of f that also admits null.
func (f Field) OrNull() Field {
	f.Nullable = true
	return f
}

// WithDefault returns a copy of f with a default value.
func (f Field) WithDefault(v value.Value) Field {
	f.Default = v
	return f
}

// WithAliases returns a copy of f with additional input names.
func (f Field) WithAliases(alts ...string) Field {
	f.Aliases = append(append([]string(nil), f.Aliases...), alts...)
	return f
}

func (f Field) sameAs(g Field) bool {
	if f.Spec != g.Spec || f.Required != g.Required || f.Nullable != g.Nullable {
		return false
	}
	if (f.Default == nil) != (g.Default == nil) {
		return false
	}
	if f.Default != nil && !value.Equal(f.Default, g.Default) {
		return false
	}
	return true
}

// ObjectSpec is an object with a declared field table.
type ObjectSpec struct {
	fields  []Field
	index   map[string]int
	aliases map[string]string
	mode    Mode
	size    bounds
	preds   []Predicate
}

func (*ObjectSpec) Kind() Kind { return KindObject }
func (*ObjectSpec) isSpec()    {}

// Object returns a strict object with the given fields. A repeated name
// replaces the earlier declaration in place.
func Object(fields ...Field) *ObjectSpec {
	s := &ObjectSpec{size: noBounds()}
	for _, f := range fields {
		s.put(f)
	}
	s.reindex()
	return s
}

func (s *ObjectSpec) put(f Field) {
	f.Aliases = append([]string(nil), f.Aliases...)
	for i := range s.fields {
		if s.fields[i].Name == f.Name {
			s.fields[i] = f
			return
		}
	}
	s.fields = append(s.fields, f)
}

func (s *ObjectSpec) reindex() {
	s.index = make(map[string]int, len(s.fields))
	s.aliases = make(map[string]string)
	for i, f := range s.fields {
		s.index[f.Name] = i
	}
	for _, f := range s.fields {
		for _, a := range f.Aliases {
			if _, isField := s.index[a]; isField {
				continue
			}
			s.aliases[a] = f.Name
		}
	}
}

func (s *ObjectSpec) clone() *ObjectSpec {
	cp := &ObjectSpec{
		fields: make([]Field, len(s.fields)),
		mode:   s.mode,
		size:   s.size,
		preds:  clonePreds(s.preds),
	}
	copy(cp.fields, s.fields)
	cp.reindex()
	return cp
}

func (s *ObjectSpec) update(name string, fn func(*Field)) *ObjectSpec {
	cp := s.clone()
	if i, ok := cp.index[name]; ok {
		fn(&cp.fields[i])
		cp.reindex()
	}
	return cp
}

// Fields returns a copy of the field table in declaration order.
func (s *ObjectSpec) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field returns the field declared under name.
func (s *ObjectSpec) Field(name string) (Field, bool) {
	if i, ok := s.index[name]; ok {
		return s.fields[i], true
	}
	return Field{}, false
}

// Resolve maps an input key to its field, by name first and then by alias.
func (s *ObjectSpec) Resolve(key string) (Field, bool) {
	if i, ok := s.index[key]; ok {
		return s.fields[i], true
	}
	if name, ok := s.aliases[key]; ok {
		return s.fields[s.index[name]], true
	}
	return Field{}, false
}

// Mode returns how undeclared keys are handled.
func (s *ObjectSpec) Mode() Mode { return s.mode }

func (s *ObjectSpec) withMode(m Mode) *ObjectSpec {
	cp := s.clone()
	cp.mode = m
	return cp
}

// Strict returns a copy that rejects undeclared keys.
func (s *ObjectSpec) Strict() *ObjectSpec { return s.withMode(ModeStrict) }

// Lenient returns a copy that skips undeclared keys.
func (s *ObjectSpec) Lenient() *ObjectSpec { return s.withMode(ModeLenient) }

// Passthrough returns a copy that keeps undeclared keys unvalidated.
func (s *ObjectSpec) Passthrough() *ObjectSpec { return s.withMode(ModePassthrough) }

// WithReqKeys returns a copy with the named fields required. Unknown names
// are ignored.
func (s *ObjectSpec) WithReqKeys(names ...string) *ObjectSpec {
	return s.setRequired(true, names)
}

// WithOptKeys returns a copy with the named fields optional. Unknown names
// are ignored.
func (s *ObjectSpec) WithOptKeys(names ...string) *ObjectSpec {
	return s.setRequired(false, names)
}

func (s *ObjectSpec) setRequired(req bool, names []string) *ObjectSpec {
	cp := s.clone()
	for _, n := range names {
		if i, ok := cp.index[n]; ok {
			cp.fields[i].Required = req
		}
	}
	return cp
}

// WithFields returns a copy with fields added or replaced.
func (s *ObjectSpec) WithFields(fields ...Field) *ObjectSpec {
	cp := s.clone()
	for _, f := range fields {
		cp.put(f)
	}
	cp.reindex()
	return cp
}

// Alias returns a copy where each of alts is accepted as an input name for
// field. Aliases never shadow declared field names.
func (s *ObjectSpec) Alias(field string, alts ...string) *ObjectSpec {
	return s.update(field, func(f *Field) {
		f.Aliases = append(append([]string(nil), f.Aliases...), alts...)
	})
}

// Default returns a copy where v is substituted for field when the field is
// optional and absent from the input.
func (s *ObjectSpec) Default(field string, v value.Value) *ObjectSpec {
	return s.update(field, func(f *Field) { f.Default = v })
}

// Size bounds the number of members, inclusive.
func (s *ObjectSpec) Size(min, max int) *ObjectSpec {
	cp := s.clone()
	cp.size = bounds{min: min, max: max}
	return cp
}

// SizeBounds returns the member count range and whether one was set.
func (s *ObjectSpec) SizeBounds() (min, max int, ok bool) {
	return s.size.min, s.size.max, s.size.set()
}

// Predicates returns a copy of the attached predicates.
func (s *ObjectSpec) Predicates() []Predicate { return clonePreds(s.preds) }

// SuchThat returns a copy with an additional whole-object predicate.
func (s *ObjectSpec) SuchThat(name string, fn func(value.Value) bool) *ObjectSpec {
	cp := s.clone()
	cp.preds = appendPred(s.preds, Predicate{Name: name, Fn: fn})
	return cp
}

// Concat merges the field tables of a and b. A field declared by both must
// be declared identically (same spec node, requiredness, nullability and
// default), otherwise ErrFieldConflict is returned. Specs compare by
// identity: declare the shared field's spec once and pass the same value to
// both objects, since two separately built but equal specs conflict. An alias that would
// resolve to two fields, or that names a field, yields ErrAliasConflict.
// Mode and size bounds come from a, falling back to b's bounds when a has
// none; predicates of both apply.
func Concat(a, b *ObjectSpec) (*ObjectSpec, error) {
	out := a.clone()
	for _, f := range b.fields {
		if i, ok := out.index[f.Name]; ok {
			if !out.fields[i].sameAs(f) {
				return nil, fmt.Errorf("%w: %q", ErrFieldConflict, f.Name)
			}
			merged := out.fields[i]
			merged.Aliases = append(append([]string(nil), merged.Aliases...), f.Aliases...)
			out.fields[i] = merged
			continue
		}
		out.put(f)
	}
	out.reindex()

	owner := make(map[string]string)
	for _, f := range out.fields {
		for _, alt := range f.Aliases {
			if _, isField := out.index[alt]; isField {
				return nil, fmt.Errorf("%w: %q is a field name", ErrAliasConflict, alt)
			}
			if prev, ok := owner[alt]; ok && prev != f.Name {
				return nil, fmt.Errorf("%w: %q maps to %q and %q", ErrAliasConflict, alt, prev, f.Name)
			}
			owner[alt] = f.Name
		}
	}
	if !out.size.set() {
		out.size = b.size
	}
	out.preds = append(out.preds, b.preds...)
	return out, nil
}
