// Package gojson adapts goccy/go-json's streaming decoder to jspec.Source.
//
// The decoder does not expose token offsets, so every token and error
// reports offset -1. Use jspec.JSONReader when offsets matter.
package gojson

import (
	"bytes"
	"errors"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	"github.com/reoring/jspec"
	"github.com/reoring/jspec/number"
)

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	expectingKey bool
}

type source struct {
	dec   *j.Decoder
	stack []frame
	done  bool
}

// NewReader returns a Source reading one JSON document from r.
func NewReader(r io.Reader) jspec.Source {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return &source{dec: dec}
}

// NewBytes returns a Source over b.
func NewBytes(b []byte) jspec.Source { return NewReader(bytes.NewReader(b)) }

func syntaxError(msg string, err error) error {
	return &jspec.SyntaxError{Offset: -1, Msg: msg, Err: err}
}

func (s *source) NextToken() (jspec.Token, error) {
	tok, err := s.dec.Token()
	if s.done {
		if errors.Is(err, io.EOF) {
			return jspec.Token{Kind: jspec.TokenEOF, Offset: -1}, nil
		}
		return jspec.Token{}, syntaxError("unexpected data after top-level value", nil)
	}
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return jspec.Token{}, syntaxError("unexpected end of input", io.ErrUnexpectedEOF)
		}
		return jspec.Token{}, syntaxError(err.Error(), err)
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{kind: kindObject, expectingKey: true})
			return jspec.Token{Kind: jspec.TokenBeginObject, Offset: -1}, nil
		case '[':
			s.stack = append(s.stack, frame{kind: kindArray})
			return jspec.Token{Kind: jspec.TokenBeginArray, Offset: -1}, nil
		case '}':
			s.pop()
			return jspec.Token{Kind: jspec.TokenEndObject, Offset: -1}, nil
		case ']':
			s.pop()
			return jspec.Token{Kind: jspec.TokenEndArray, Offset: -1}, nil
		}
	case string:
		if n := len(s.stack); n > 0 && s.stack[n-1].kind == kindObject && s.stack[n-1].expectingKey {
			s.stack[n-1].expectingKey = false
			return jspec.Token{Kind: jspec.TokenKey, String: v, Offset: -1}, nil
		}
		s.scalar()
		return jspec.Token{Kind: jspec.TokenString, String: v, Offset: -1}, nil
	case bool:
		s.scalar()
		return jspec.Token{Kind: jspec.TokenBool, Bool: v, Offset: -1}, nil
	case j.Number:
		s.scalar()
		return numberToken([]byte(v))
	case float64:
		s.scalar()
		return numberToken([]byte(strconv.FormatFloat(v, 'g', -1, 64)))
	case nil:
		s.scalar()
		return jspec.Token{Kind: jspec.TokenNull, Offset: -1}, nil
	}
	return jspec.Token{}, syntaxError("unexpected token", nil)
}

func numberToken(b []byte) (jspec.Token, error) {
	lit, err := number.Scan(b)
	if err != nil {
		return jspec.Token{}, syntaxError("invalid number literal", err)
	}
	return jspec.Token{Kind: jspec.TokenNumber, Number: b, Num: lit, Offset: -1}, nil
}

// scalar records that a value completed in the current container.
func (s *source) scalar() {
	n := len(s.stack)
	if n == 0 {
		s.done = true
		return
	}
	if s.stack[n-1].kind == kindObject {
		s.stack[n-1].expectingKey = true
	}
}

func (s *source) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
	s.scalar()
}

func (s *source) Location() int64 { return -1 }
