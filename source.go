package jspec

import (
	"io"

	eng "github.com/reoring/jspec/internal/engine"
)

// Token describes a token in the input stream. Offset records the byte
// position when known (-1 otherwise). Number aliases the source's buffer and
// is only valid until the next NextToken call.
type Token = eng.Token

// TokenKind enumerates JSON token kinds.
type TokenKind = eng.Kind

const (
	TokenBeginObject TokenKind = eng.KindBeginObject
	TokenEndObject   TokenKind = eng.KindEndObject
	TokenBeginArray  TokenKind = eng.KindBeginArray
	TokenEndArray    TokenKind = eng.KindEndArray
	TokenKey         TokenKind = eng.KindKey
	TokenString      TokenKind = eng.KindString
	TokenNumber      TokenKind = eng.KindNumber
	TokenBool        TokenKind = eng.KindBool
	TokenNull        TokenKind = eng.KindNull
	TokenEOF         TokenKind = eng.KindEOF
)

// Source abstracts over token producers. After the root value a Source
// returns one TokenEOF token, or an error if anything but whitespace
// follows.
type Source interface {
	NextToken() (Token, error)
	Location() int64 // byte offset; -1 if unknown
}

// DefaultBufferSize is the working buffer used by JSONReader.
const DefaultBufferSize = eng.DefaultBufferSize

// JSONBytes tokenizes b in place.
func JSONBytes(b []byte) Source { return eng.NewBytesTokenizer(b) }

// JSONString tokenizes s.
func JSONString(s string) Source { return eng.NewBytesTokenizer([]byte(s)) }

// JSONReader tokenizes r through a DefaultBufferSize working buffer.
func JSONReader(r io.Reader) Source { return eng.NewReaderTokenizer(r, DefaultBufferSize) }

// JSONReaderSize tokenizes r through a working buffer of size bytes (at
// least 16). Tokens longer than the buffer grow it.
func JSONReaderSize(r io.Reader, size int) Source { return eng.NewReaderTokenizer(r, size) }
