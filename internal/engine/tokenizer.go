package engine

import (
	"errors"
	"io"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/reoring/jspec/number"
)

const (
	// DefaultBufferSize is the working buffer size for reader input.
	DefaultBufferSize = 4096
	// MinBufferSize is the smallest accepted working buffer.
	MinBufferSize = 16
)

type lexState int

const (
	stValue           lexState = iota // a value is required
	stFirstValueOrEnd                 // right after '['
	stFirstKeyOrEnd                   // right after '{'
	stKey                             // after ',' in an object
	stColon                           // after a key
	stCommaOrEnd                      // after a value inside a container
	stEnd                             // root value complete
)

// Tokenizer turns JSON text into tokens. Over a reader it keeps a working
// buffer that is refilled on demand; a token that does not fit is made
// contiguous by compacting and, if needed, growing the buffer.
type Tokenizer struct {
	r    io.Reader
	buf  []byte
	pos  int   // next unread byte
	base int64 // input offset of buf[0]
	eof  bool
	rerr error
	// limit caps the bytes read from r; zero means unbounded.
	limit int64

	state lexState
	stack []byte

	numSpan []byte
	scratch []byte
}

// NewBytesTokenizer tokenizes b in place.
func NewBytesTokenizer(b []byte) *Tokenizer {
	return &Tokenizer{buf: b, eof: true}
}

// NewReaderTokenizer tokenizes r through a working buffer of size bytes.
// Sizes below MinBufferSize are raised to it; zero selects
// DefaultBufferSize.
func NewReaderTokenizer(r io.Reader, size int) *Tokenizer {
	if size == 0 {
		size = DefaultBufferSize
	}
	if size < MinBufferSize {
		size = MinBufferSize
	}
	return &Tokenizer{r: r, buf: make([]byte, 0, size)}
}

// Location returns the input offset of the next unread byte.
func (t *Tokenizer) Location() int64 { return t.base + int64(t.pos) }

// SetLimit stops reading from the underlying reader once n bytes of input
// have been seen. A read that would cross n fails with a *LimitError.
func (t *Tokenizer) SetLimit(n int64) { t.limit = n }

// LimitError reports input longer than the limit set with SetLimit.
type LimitError struct {
	Limit  int64
	Offset int64
}

func (e *LimitError) Error() string {
	return "input exceeds " + strconv.FormatInt(e.Limit, 10) + " bytes"
}

// BufferCap reports the current working buffer capacity.
func (t *Tokenizer) BufferCap() int { return cap(t.buf) }

// NumberSpan returns the raw bytes of the most recent number token.
func (t *Tokenizer) NumberSpan() []byte { return t.numSpan }

// fill compacts unread bytes to the front of the buffer, grows it when it is
// full and reads more input. It reports whether any bytes were added.
func (t *Tokenizer) fill() bool {
	if t.eof || t.rerr != nil {
		return false
	}
	if t.pos > 0 {
		n := copy(t.buf, t.buf[t.pos:])
		t.buf = t.buf[:n]
		t.base += int64(t.pos)
		t.pos = 0
	}
	if t.limit > 0 && t.base+int64(len(t.buf)) > t.limit {
		t.rerr = &LimitError{Limit: t.limit, Offset: t.base + int64(len(t.buf))}
		return false
	}
	if len(t.buf) == cap(t.buf) {
		grown := make([]byte, len(t.buf), 2*cap(t.buf))
		copy(grown, t.buf)
		t.buf = grown
	}
	// One byte past the limit is read so that input of exactly limit
	// bytes still reaches EOF.
	want := cap(t.buf)
	if t.limit > 0 {
		if room := t.limit + 1 - t.base - int64(len(t.buf)); room < int64(want-len(t.buf)) {
			want = len(t.buf) + int(room)
		}
	}
	for {
		n, err := t.r.Read(t.buf[len(t.buf):want])
		t.buf = t.buf[:len(t.buf)+n]
		if err != nil {
			if errors.Is(err, io.EOF) {
				t.eof = true
			} else {
				t.rerr = err
			}
			return n > 0
		}
		if n > 0 {
			return true
		}
	}
}

// byteAt returns the byte i positions past pos, refilling as needed.
// Offsets relative to pos stay valid across refills.
func (t *Tokenizer) byteAt(i int) (byte, bool) {
	for t.pos+i >= len(t.buf) {
		if !t.fill() {
			return 0, false
		}
	}
	return t.buf[t.pos+i], true
}

func (t *Tokenizer) skipSpace() (byte, bool) {
	for {
		c, ok := t.byteAt(0)
		if !ok {
			return 0, false
		}
		switch c {
		case ' ', '\t', '\n', '\r':
			t.pos++
		default:
			return c, true
		}
	}
}

func (t *Tokenizer) syntaxErr(rel int, msg string) error {
	return &SyntaxError{Offset: t.Location() + int64(rel), Msg: msg}
}

func (t *Tokenizer) eofErr(rel int, what string) error {
	if t.rerr != nil {
		return t.rerr
	}
	return &SyntaxError{Offset: t.Location() + int64(rel), Msg: "unexpected end of input " + what, Err: io.ErrUnexpectedEOF}
}

func (t *Tokenizer) afterValue() {
	if len(t.stack) == 0 {
		t.state = stEnd
	} else {
		t.state = stCommaOrEnd
	}
}

// NextToken returns the next token. After the root value it returns a
// KindEOF token once only whitespace remains.
func (t *Tokenizer) NextToken() (Token, error) {
	for {
		c, ok := t.skipSpace()
		if t.state == stEnd {
			if !ok {
				if t.rerr != nil {
					return Token{}, t.rerr
				}
				return Token{Kind: KindEOF, Offset: t.Location()}, nil
			}
			return Token{}, t.syntaxErr(0, "trailing data after top-level value")
		}
		if !ok {
			return Token{}, t.eofErr(0, t.expecting())
		}
		switch t.state {
		case stColon:
			if c != ':' {
				return Token{}, t.syntaxErr(0, "expected ':' after object key, found "+quoteByte(c))
			}
			t.pos++
			t.state = stValue
			continue
		case stCommaOrEnd:
			top := t.stack[len(t.stack)-1]
			switch {
			case c == ',':
				t.pos++
				if top == '{' {
					t.state = stKey
				} else {
					t.state = stValue
				}
				continue
			case c == '}' && top == '{', c == ']' && top == '[':
				return t.endContainer(c), nil
			}
			if top == '{' {
				return Token{}, t.syntaxErr(0, "expected ',' or '}' after object member, found "+quoteByte(c))
			}
			return Token{}, t.syntaxErr(0, "expected ',' or ']' after array element, found "+quoteByte(c))
		case stFirstKeyOrEnd:
			if c == '}' {
				return t.endContainer(c), nil
			}
			t.state = stKey
			continue
		case stKey:
			if c != '"' {
				return Token{}, t.syntaxErr(0, "expected string for object key, found "+quoteByte(c))
			}
			off := t.Location()
			s, err := t.readString()
			if err != nil {
				return Token{}, err
			}
			t.state = stColon
			return Token{Kind: KindKey, String: s, Offset: off}, nil
		case stFirstValueOrEnd:
			if c == ']' {
				return t.endContainer(c), nil
			}
			t.state = stValue
			continue
		}
		return t.readValue(c)
	}
}

func (t *Tokenizer) expecting() string {
	switch t.state {
	case stColon:
		return "(expecting ':')"
	case stCommaOrEnd:
		return "(expecting ',' or container end)"
	case stKey, stFirstKeyOrEnd:
		return "(expecting object key)"
	}
	return "(expecting value)"
}

func (t *Tokenizer) endContainer(c byte) Token {
	off := t.Location()
	t.pos++
	t.stack = t.stack[:len(t.stack)-1]
	t.afterValue()
	if c == '}' {
		return Token{Kind: KindEndObject, Offset: off}
	}
	return Token{Kind: KindEndArray, Offset: off}
}

func (t *Tokenizer) readValue(c byte) (Token, error) {
	off := t.Location()
	switch c {
	case '{':
		t.pos++
		t.stack = append(t.stack, '{')
		t.state = stFirstKeyOrEnd
		return Token{Kind: KindBeginObject, Offset: off}, nil
	case '[':
		t.pos++
		t.stack = append(t.stack, '[')
		t.state = stFirstValueOrEnd
		return Token{Kind: KindBeginArray, Offset: off}, nil
	case '"':
		s, err := t.readString()
		if err != nil {
			return Token{}, err
		}
		t.afterValue()
		return Token{Kind: KindString, String: s, Offset: off}, nil
	case 't':
		if err := t.readLiteral("true"); err != nil {
			return Token{}, err
		}
		t.afterValue()
		return Token{Kind: KindBool, Bool: true, Offset: off}, nil
	case 'f':
		if err := t.readLiteral("false"); err != nil {
			return Token{}, err
		}
		t.afterValue()
		return Token{Kind: KindBool, Offset: off}, nil
	case 'n':
		if err := t.readLiteral("null"); err != nil {
			return Token{}, err
		}
		t.afterValue()
		return Token{Kind: KindNull, Offset: off}, nil
	}
	if c == '-' || (c >= '0' && c <= '9') {
		span, lit, err := t.readNumber()
		if err != nil {
			return Token{}, err
		}
		t.afterValue()
		return Token{Kind: KindNumber, Number: span, Num: lit, Offset: off}, nil
	}
	return Token{}, t.syntaxErr(0, "unexpected "+quoteByte(c)+" looking for beginning of value")
}

func (t *Tokenizer) readLiteral(lit string) error {
	for i := 1; i < len(lit); i++ {
		c, ok := t.byteAt(i)
		if !ok {
			return t.eofErr(i, "in literal "+lit)
		}
		if c != lit[i] {
			return t.syntaxErr(i, "invalid character "+quoteByte(c)+" in literal "+lit)
		}
	}
	t.pos += len(lit)
	return nil
}

// readNumber makes the whole literal contiguous in the buffer before
// validating it, however many refills that takes.
func (t *Tokenizer) readNumber() ([]byte, number.Literal, error) {
	n := 0
	for {
		c, ok := t.byteAt(n)
		if !ok || !number.IsNumberByte(c) {
			break
		}
		n++
	}
	if t.rerr != nil {
		return nil, number.Literal{}, t.rerr
	}
	span := t.buf[t.pos : t.pos+n]
	lit, err := number.Scan(span)
	if err != nil {
		return nil, number.Literal{}, &SyntaxError{Offset: t.Location(), Msg: "invalid number literal " + strconv.Quote(truncate(span)), Err: err}
	}
	t.numSpan = span
	t.pos += n
	return span, lit, nil
}

// readString consumes a string starting at the opening quote and returns
// its unescaped contents.
func (t *Tokenizer) readString() (string, error) {
	i := 1
	escaped := false
	for {
		c, ok := t.byteAt(i)
		if !ok {
			return "", t.eofErr(i, "in string")
		}
		if c < 0x20 {
			return "", t.syntaxErr(i, "invalid control character "+quoteByte(c)+" in string")
		}
		if c == '\\' {
			escaped = true
			if _, ok := t.byteAt(i + 1); !ok {
				return "", t.eofErr(i+1, "in string escape")
			}
			i += 2
			continue
		}
		if c == '"' {
			break
		}
		i++
	}
	raw := t.buf[t.pos+1 : t.pos+i]
	if !escaped && utf8.Valid(raw) {
		t.pos += i + 1
		return string(raw), nil
	}
	s, rel, err := t.unescape(raw)
	if err != nil {
		return "", t.syntaxErr(1+rel, err.Error())
	}
	t.pos += i + 1
	return s, nil
}

type escapeError string

func (e escapeError) Error() string { return string(e) }

// unescape decodes escapes in raw. Invalid UTF-8 and unpaired surrogates
// become U+FFFD. On error it returns the offset of the bad escape in raw.
func (t *Tokenizer) unescape(raw []byte) (string, int, error) {
	out := t.scratch[:0]
	for i := 0; i < len(raw); {
		c := raw[i]
		if c != '\\' {
			if c < utf8.RuneSelf {
				out = append(out, c)
				i++
				continue
			}
			r, size := utf8.DecodeRune(raw[i:])
			out = utf8.AppendRune(out, r)
			i += size
			continue
		}
		switch raw[i+1] {
		case '"', '\\', '/':
			out = append(out, raw[i+1])
			i += 2
		case 'b':
			out = append(out, '\b')
			i += 2
		case 'f':
			out = append(out, '\f')
			i += 2
		case 'n':
			out = append(out, '\n')
			i += 2
		case 'r':
			out = append(out, '\r')
			i += 2
		case 't':
			out = append(out, '\t')
			i += 2
		case 'u':
			r, ok := hex4(raw[i+2:])
			if !ok {
				return "", i, escapeError("invalid \\u escape in string")
			}
			i += 6
			if utf16.IsSurrogate(r) {
				r2 := utf8.RuneError
				if i+6 <= len(raw) && raw[i] == '\\' && raw[i+1] == 'u' {
					if lo, ok := hex4(raw[i+2:]); ok {
						if dec := utf16.DecodeRune(r, lo); dec != utf8.RuneError {
							r2 = dec
							i += 6
						}
					}
				}
				r = r2
			}
			out = utf8.AppendRune(out, r)
		default:
			return "", i, escapeError("invalid escape " + quoteByte(raw[i+1]) + " in string")
		}
	}
	t.scratch = out
	return string(out), 0, nil
}

func hex4(b []byte) (rune, bool) {
	if len(b) < 4 {
		return 0, false
	}
	var r rune
	for _, c := range b[:4] {
		r <<= 4
		switch {
		case c >= '0' && c <= '9':
			r |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			r |= rune(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			r |= rune(c - 'A' + 10)
		default:
			return 0, false
		}
	}
	return r, true
}

func quoteByte(c byte) string {
	if c < utf8.RuneSelf {
		return strconv.QuoteRune(rune(c))
	}
	return "0x" + strconv.FormatUint(uint64(c), 16)
}

func truncate(b []byte) string {
	if len(b) > 32 {
		return string(b[:29]) + "..."
	}
	return string(b)
}
