package value

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value Value
}

// Object is an ordered set of members with unique keys. Iteration order is
// the order in which keys were first set.
type Object struct {
	members []Member
	index   map[string]int
}

// NewObject builds an object from members. A repeated key keeps its first
// position and its last value.
func NewObject(members ...Member) Object {
	var b ObjectBuilder
	for _, m := range members {
		b.Set(m.Key, m.Value)
	}
	return b.Build()
}

// Len returns the number of members.
func (o Object) Len() int { return len(o.members) }

// Get returns the value stored under key.
func (o Object) Get(key string) (Value, bool) {
	if i, ok := o.index[key]; ok {
		return o.members[i].Value, true
	}
	return nil, false
}

// Has reports whether key is present.
func (o Object) Has(key string) bool {
	_, ok := o.index[key]
	return ok
}

// Keys returns the keys in order.
func (o Object) Keys() []string {
	out := make([]string, len(o.members))
	for i, m := range o.members {
		out[i] = m.Key
	}
	return out
}

// Members returns a copy of the members in order.
func (o Object) Members() []Member { return append([]Member(nil), o.members...) }

// Range calls fn for each member in order until fn returns false.
func (o Object) Range(fn func(key string, v Value) bool) {
	for _, m := range o.members {
		if !fn(m.Key, m.Value) {
			return
		}
	}
}

// With returns a copy of o with key set to v.
func (o Object) With(key string, v Value) Object {
	b := ObjectBuilder{members: make([]Member, len(o.members), len(o.members)+1), index: make(map[string]int, len(o.members)+1)}
	copy(b.members, o.members)
	for k, i := range o.index {
		b.index[k] = i
	}
	b.Set(key, v)
	return b.Build()
}

// Without returns a copy of o without key.
func (o Object) Without(key string) Object {
	if !o.Has(key) {
		return o
	}
	var b ObjectBuilder
	for _, m := range o.members {
		if m.Key != key {
			b.Set(m.Key, m.Value)
		}
	}
	return b.Build()
}

// ObjectBuilder accumulates members for an Object. The zero value is ready
// to use; a builder must not be reused after Build.
type ObjectBuilder struct {
	members []Member
	index   map[string]int
}

// Set stores v under key, replacing an earlier value in place.
func (b *ObjectBuilder) Set(key string, v Value) {
	if b.index == nil {
		b.index = make(map[string]int)
	}
	if i, ok := b.index[key]; ok {
		b.members[i].Value = v
		return
	}
	b.index[key] = len(b.members)
	b.members = append(b.members, Member{Key: key, Value: v})
}

// Has reports whether key has been set.
func (b *ObjectBuilder) Has(key string) bool {
	_, ok := b.index[key]
	return ok
}

// Len returns the number of members set so far.
func (b *ObjectBuilder) Len() int { return len(b.members) }

// Build returns the object. The builder hands over its storage.
func (b *ObjectBuilder) Build() Object {
	o := Object{members: b.members, index: b.index}
	b.members, b.index = nil, nil
	return o
}
