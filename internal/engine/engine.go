package engine

import (
	"strconv"

	"github.com/reoring/jspec/number"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
	// KindEOF marks the clean end of a document.
	KindEOF
)

func (k Kind) String() string {
	switch k {
	case KindBeginObject:
		return "'{'"
	case KindEndObject:
		return "'}'"
	case KindBeginArray:
		return "'['"
	case KindEndArray:
		return "']'"
	case KindKey:
		return "key"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindEOF:
		return "EOF"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Token is one lexical unit with the input offset it starts at (-1 when the
// source cannot tell).
type Token struct {
	Kind Kind
	// String holds the unescaped text of keys and strings.
	String string
	// Number is the raw literal of a number token. It may alias the
	// source's buffer and is only valid until the next call to NextToken.
	Number []byte
	// Num is the lexical breakdown of Number.
	Num    number.Literal
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// SyntaxError reports malformed input. Err is io.ErrUnexpectedEOF when the
// input ended inside a value, or the *number.NumError of a bad literal.
type SyntaxError struct {
	Offset int64
	Msg    string
	Err    error
}

func (e *SyntaxError) Error() string {
	return "syntax error at offset " + strconv.FormatInt(e.Offset, 10) + ": " + e.Msg
}

func (e *SyntaxError) Unwrap() error { return e.Err }
