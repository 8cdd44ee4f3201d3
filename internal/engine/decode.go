package engine

import (
	"errors"
	"strconv"

	"github.com/reoring/jspec/number"
	"github.com/reoring/jspec/value"
)

// DecodeError reports a failure inside a decoded or skipped value: a number
// whose exponent exceeds every representation, or a *SyntaxError met below
// the first token. Segments locates it relative to that value: string keys
// and int indices.
type DecodeError struct {
	Segments []any
	Offset   int64
	Err      error
}

func (e *DecodeError) Error() string {
	return "decode at offset " + strconv.FormatInt(e.Offset, 10) + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) prepend(seg any) *DecodeError {
	e.Segments = append([]any{seg}, e.Segments...)
	return e
}

// within locates err under seg. Syntax errors become a *DecodeError; other
// errors carry their own location or none.
func within(seg any, err error) error {
	if de, ok := err.(*DecodeError); ok {
		return de.prepend(seg)
	}
	var se *SyntaxError
	if errors.As(err, &se) {
		return &DecodeError{Segments: []any{seg}, Offset: se.Offset, Err: err}
	}
	return err
}

// DecodeAnyFromSource builds a value from the next value in src. Numbers
// get their exact representation; repeated keys keep the last value.
func DecodeAnyFromSource(src TokenSource) (value.Value, error) {
	tok, err := src.NextToken()
	if err != nil {
		return nil, err
	}
	return DecodeValue(src, tok)
}

// DecodeValue builds a value starting at the already-read token tok.
func DecodeValue(src TokenSource, tok Token) (value.Value, error) {
	switch tok.Kind {
	case KindBeginObject:
		return decodeObject(src)
	case KindBeginArray:
		return decodeArray(src)
	case KindString:
		return value.String(tok.String), nil
	case KindNumber:
		return NumberValue(tok)
	case KindBool:
		return value.Bool(tok.Bool), nil
	case KindNull:
		return value.Null, nil
	}
	return nil, unexpected(tok, "value")
}

// NumberValue converts a number token to its exact value.
func NumberValue(tok Token) (value.Value, error) {
	n, err := number.ConvertAs(tok.Number, tok.Num, number.Exact)
	if err != nil {
		return nil, &DecodeError{Offset: tok.Offset, Err: err}
	}
	v, err := value.FromGo(n)
	if err != nil {
		return nil, &DecodeError{Offset: tok.Offset, Err: err}
	}
	return v, nil
}

func decodeObject(src TokenSource) (value.Value, error) {
	var b value.ObjectBuilder
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEndObject {
			return b.Build(), nil
		}
		if tok.Kind != KindKey {
			return nil, unexpected(tok, "object key")
		}
		key := tok.String
		vt, err := src.NextToken()
		if err != nil {
			return nil, within(key, err)
		}
		v, err := DecodeValue(src, vt)
		if err != nil {
			return nil, within(key, err)
		}
		b.Set(key, v)
	}
}

func decodeArray(src TokenSource) (value.Value, error) {
	var elems []value.Value
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, within(len(elems), err)
		}
		if tok.Kind == KindEndArray {
			return value.NewArray(elems...), nil
		}
		v, err := DecodeValue(src, tok)
		if err != nil {
			return nil, within(len(elems), err)
		}
		elems = append(elems, v)
	}
}

type skipFrame struct {
	array   bool
	n       int // values started, for arrays
	key     string
	pending bool // a key was read and its value is not done
}

// Skip consumes the rest of the value that starts at tok without building
// it. A syntax error inside the value comes back as a *DecodeError.
func Skip(src TokenSource, tok Token) error {
	var stack []skipFrame
	for {
		if n := len(stack); n > 0 {
			top := &stack[n-1]
			switch tok.Kind {
			case KindKey:
				top.key, top.pending = tok.String, true
			case KindEndObject, KindEndArray:
			default:
				if top.array {
					top.n++
				}
			}
		}
		switch tok.Kind {
		case KindBeginObject:
			stack = append(stack, skipFrame{})
		case KindBeginArray:
			stack = append(stack, skipFrame{array: true})
		case KindEndObject, KindEndArray:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			valueDone(stack)
		case KindString, KindNumber, KindBool, KindNull:
			valueDone(stack)
		case KindEOF:
			return unexpected(tok, "value")
		}
		if len(stack) == 0 {
			return nil
		}
		var err error
		if tok, err = src.NextToken(); err != nil {
			return skipError(stack, err)
		}
	}
}

func valueDone(stack []skipFrame) {
	if n := len(stack); n > 0 && !stack[n-1].array {
		stack[n-1].pending = false
	}
}

func skipError(stack []skipFrame, err error) error {
	var se *SyntaxError
	if !errors.As(err, &se) {
		return err
	}
	de := &DecodeError{Offset: se.Offset, Err: err}
	for i, f := range stack {
		inner := i == len(stack)-1
		switch {
		case f.array && inner:
			de.Segments = append(de.Segments, f.n)
		case f.array:
			de.Segments = append(de.Segments, f.n-1)
		case !inner || f.pending:
			de.Segments = append(de.Segments, f.key)
		}
	}
	return de
}

func unexpected(tok Token, want string) error {
	return &SyntaxError{Offset: tok.Offset, Msg: "unexpected " + tok.Kind.String() + ", expecting " + want}
}
