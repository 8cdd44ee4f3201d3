package jspec

import (
	"errors"
	"strconv"
	"strings"
)

// Segment is one step of a Path: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// String renders the segment as a JSON Pointer reference token.
func (s Segment) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return escapePointerToken(s.Key)
}

type pathNode struct {
	parent *pathNode
	seg    Segment
	depth  int
}

// Path locates a value inside a document. The zero value is the root.
// Paths are immutable: Key and Index return new paths that share their
// parent, so handing one to an error never copies the chain.
type Path struct{ last *pathNode }

// Root returns the empty path.
func Root() Path { return Path{} }

// Key returns p extended with an object key.
func (p Path) Key(k string) Path {
	return Path{last: &pathNode{parent: p.last, seg: Segment{Key: k}, depth: p.Len() + 1}}
}

// Index returns p extended with an array index.
func (p Path) Index(i int) Path {
	return Path{last: &pathNode{parent: p.last, seg: Segment{Index: i, IsIndex: true}, depth: p.Len() + 1}}
}

// Len returns the number of segments.
func (p Path) Len() int {
	if p.last == nil {
		return 0
	}
	return p.last.depth
}

// IsRoot reports whether p has no segments.
func (p Path) IsRoot() bool { return p.last == nil }

// Last returns the final segment; ok is false at the root.
func (p Path) Last() (seg Segment, ok bool) {
	if p.last == nil {
		return Segment{}, false
	}
	return p.last.seg, true
}

// Parent returns p without its final segment. The root is its own parent.
func (p Path) Parent() Path {
	if p.last == nil {
		return p
	}
	return Path{last: p.last.parent}
}

// Segments returns the segments from the root outwards.
func (p Path) Segments() []Segment {
	out := make([]Segment, p.Len())
	for n := p.last; n != nil; n = n.parent {
		out[n.depth-1] = n.seg
	}
	return out
}

// String renders p as a JSON Pointer; the root renders as "/".
func (p Path) String() string {
	if p.last == nil {
		return "/"
	}
	var b strings.Builder
	for _, s := range p.Segments() {
		b.WriteByte('/')
		b.WriteString(s.String())
	}
	return b.String()
}

// Equal reports whether p and q have the same segments.
func (p Path) Equal(q Path) bool {
	if p.Len() != q.Len() {
		return false
	}
	for a, b := p.last, q.last; a != nil; a, b = a.parent, b.parent {
		if a == b {
			return true
		}
		if a.seg != b.seg {
			return false
		}
	}
	return true
}

// Concat appends the segments of q to p.
func (p Path) Concat(q Path) Path {
	for _, s := range q.Segments() {
		if s.IsIndex {
			p = p.Index(s.Index)
		} else {
			p = p.Key(s.Key)
		}
	}
	return p
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")
var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

func escapePointerToken(s string) string { return pointerEscaper.Replace(s) }

// ParsePointer parses a JSON Pointer. "" and "/" denote the root. Tokens
// that are canonical non-negative integers become index segments.
func ParsePointer(s string) (Path, error) {
	if s == "" || s == "/" {
		return Root(), nil
	}
	if s[0] != '/' {
		return Path{}, errors.New("jspec: JSON Pointer must start with '/'")
	}
	var p Path
	for _, tok := range strings.Split(s[1:], "/") {
		if isIndexToken(tok) {
			i, err := strconv.Atoi(tok)
			if err == nil {
				p = p.Index(i)
				continue
			}
		}
		p = p.Key(pointerUnescaper.Replace(tok))
	}
	return p, nil
}

func isIndexToken(s string) bool {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
