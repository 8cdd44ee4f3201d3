package jspec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	eng "github.com/reoring/jspec/internal/engine"
	"github.com/reoring/jspec/number"
	"github.com/reoring/jspec/spec"
	"github.com/reoring/jspec/value"
)

// Parse reads one JSON document from src and validates it against s while
// tokens arrive. It stops at the first violation and returns it as a
// *ParseError; the returned value holds every number in the representation
// its spec asks for.
//
// Anything but whitespace after the document is a syntax error.
func Parse(ctx context.Context, s spec.Spec, src Source, opts ...ParseOpt) (value.Value, error) {
	opt := lastOpt(opts)
	ps := newParser(ctx, src, opt)
	tok, err := ps.next(Root())
	if err != nil {
		return nil, err
	}
	v, err := ps.value(s, tok, Root())
	if err != nil {
		return nil, err
	}
	if err := ps.end(); err != nil {
		return nil, err
	}
	return v, nil
}

// ParseBytes parses b against s.
func ParseBytes(ctx context.Context, s spec.Spec, b []byte, opts ...ParseOpt) (value.Value, error) {
	return Parse(ctx, s, JSONBytes(b), opts...)
}

// ParseString parses str against s.
func ParseString(ctx context.Context, s spec.Spec, str string, opts ...ParseOpt) (value.Value, error) {
	return Parse(ctx, s, JSONString(str), opts...)
}

// ParseReader parses r against s using the BufferSize of the options.
func ParseReader(ctx context.Context, s spec.Spec, r io.Reader, opts ...ParseOpt) (value.Value, error) {
	size := lastOpt(opts).BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}
	return Parse(ctx, s, JSONReaderSize(r, size), opts...)
}

// Decode reads one JSON document without a spec. Numbers get the narrowest
// exact representation and repeated keys keep their last value.
func Decode(ctx context.Context, src Source, opts ...ParseOpt) (value.Value, error) {
	return Parse(ctx, spec.Any(), src, opts...)
}

// DecodeBytes is Decode over b.
func DecodeBytes(ctx context.Context, b []byte, opts ...ParseOpt) (value.Value, error) {
	return Decode(ctx, JSONBytes(b), opts...)
}

func newParser(ctx context.Context, src Source, opt ParseOpt) *parser {
	var ts eng.TokenSource = src
	if l, ok := src.(interface{ SetLimit(int64) }); ok && opt.MaxBytes > 0 {
		l.SetLimit(opt.MaxBytes)
	}
	if eo := opt.enforceOptions(); eo.Active() {
		ts = eng.WrapWithEnforcement(src, eo)
	}
	return &parser{ctx: ctx, src: ts, reg: opt.Registry}
}

// next reads a token and turns source failures into a *ParseError located
// at p. I/O errors of the reader pass through wrapped.
func (ps *parser) next(p Path) (Token, error) {
	tok, err := ps.src.NextToken()
	if err != nil {
		return Token{}, ps.sourceError(p, err)
	}
	return tok, nil
}

func (ps *parser) end() error {
	tok, err := ps.next(Root())
	if err != nil {
		return err
	}
	if tok.Kind != TokenEOF {
		se := &SyntaxError{Offset: tok.Offset, Msg: "trailing data after top-level value"}
		return syntaxParseError(Root(), se)
	}
	return nil
}

func (ps *parser) sourceError(p Path, err error) error {
	var de *eng.DecodeError
	if errors.As(err, &de) {
		at := p
		for _, seg := range de.Segments {
			switch s := seg.(type) {
			case string:
				at = at.Key(s)
			case int:
				at = at.Index(s)
			}
		}
		var se *SyntaxError
		if errors.As(de.Err, &se) {
			return syntaxParseError(at, se)
		}
		code := CodeOverflow
		if !isOverflow(de.Err) {
			code = CodeSyntaxError
		}
		return &ParseError{
			ValidationError: newError(at, code, nil, map[string]string{"detail": de.Err.Error()}),
			Offset:          de.Offset,
			Cause:           de.Err,
		}
	}
	var se *SyntaxError
	if errors.As(err, &se) {
		return syntaxParseError(p, se)
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		ip, perr := ParsePointer(ie.Path)
		if perr != nil {
			ip = p
		}
		return &ParseError{
			ValidationError: newError(ip, ErrorCode(ie.Code), nil, map[string]string{"detail": ie.Message}),
			Offset:          ie.Offset,
			Cause:           ie,
		}
	}
	return fmt.Errorf("jspec: read input: %w", err)
}

func syntaxParseError(p Path, se *SyntaxError) *ParseError {
	return &ParseError{
		ValidationError: newError(p, CodeSyntaxError, nil, map[string]string{"detail": se.Msg}),
		Offset:          se.Offset,
		Cause:           se,
	}
}

func isOverflow(err error) bool { return errors.Is(err, number.ErrOverflow) }

// IsTruncated reports whether err was caused by input that ended inside a
// value.
func IsTruncated(err error) bool { return errors.Is(err, io.ErrUnexpectedEOF) }

// MustParseString is ParseString for tests and package-level fixtures; it
// panics on error.
func MustParseString(s spec.Spec, str string, opts ...ParseOpt) value.Value {
	v, err := ParseString(context.Background(), s, str, opts...)
	if err != nil {
		panic("jspec: " + strings.TrimSpace(err.Error()))
	}
	return v
}
