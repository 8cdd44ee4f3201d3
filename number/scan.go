package number

import "strconv"

// Literal is the lexical breakdown of a JSON number. The byte slices alias
// the scanned input and are only valid as long as that input is.
type Literal struct {
	Neg    bool
	Int    []byte // integer digits, never empty for a valid literal
	Frac   []byte // fraction digits; nil when there is no '.'
	Exp    []byte // exponent digits without sign; nil when there is no 'e'/'E'
	ExpNeg bool
}

// HasFrac reports whether the literal contains a '.' part.
func (l Literal) HasFrac() bool { return l.Frac != nil }

// HasExp reports whether the literal contains an exponent part.
func (l Literal) HasExp() bool { return l.Exp != nil }

// Digits returns the number of mantissa digits (integer plus fraction).
func (l Literal) Digits() int { return len(l.Int) + len(l.Frac) }

// IsNumberByte reports whether c can appear inside a number literal. The
// tokenizer uses it to find the end of a number span before delegating the
// grammar check to Scan.
func IsNumberByte(c byte) bool {
	switch c {
	case '-', '+', '.', 'e', 'E', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return true
	}
	return false
}

// SpanLen returns the length of the longest prefix of b made of number bytes.
func SpanLen(b []byte) int {
	for i, c := range b {
		if !IsNumberByte(c) {
			return i
		}
	}
	return len(b)
}

// Scan validates b against the JSON number grammar:
//
//	number = [ "-" ] int [ frac ] [ exp ]
//	int    = "0" / ( digit1-9 *digit )
//	frac   = "." 1*digit
//	exp    = ( "e" / "E" ) [ "-" / "+" ] 1*digit
func Scan(b []byte) (Literal, error) {
	var l Literal
	i := 0
	if i < len(b) && b[i] == '-' {
		l.Neg = true
		i++
	}
	start := i
	switch {
	case i < len(b) && b[i] == '0':
		i++
	case i < len(b) && b[i] >= '1' && b[i] <= '9':
		for i < len(b) && isDigit(b[i]) {
			i++
		}
	default:
		return Literal{}, syntaxErr(b, i, "expected digit")
	}
	l.Int = b[start:i]
	if i < len(b) && isDigit(b[i]) {
		return Literal{}, syntaxErr(b, i, "leading zero")
	}
	if i < len(b) && b[i] == '.' {
		i++
		start = i
		for i < len(b) && isDigit(b[i]) {
			i++
		}
		if i == start {
			return Literal{}, syntaxErr(b, i, "expected digit after '.'")
		}
		l.Frac = b[start:i]
	}
	if i < len(b) && (b[i] == 'e' || b[i] == 'E') {
		i++
		if i < len(b) && (b[i] == '+' || b[i] == '-') {
			l.ExpNeg = b[i] == '-'
			i++
		}
		start = i
		for i < len(b) && isDigit(b[i]) {
			i++
		}
		if i == start {
			return Literal{}, syntaxErr(b, i, "expected digit in exponent")
		}
		l.Exp = b[start:i]
	}
	if i != len(b) {
		return Literal{}, syntaxErr(b, i, "unexpected "+strconv.QuoteRune(rune(b[i])))
	}
	return l, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func syntaxErr(b []byte, pos int, msg string) error {
	return &NumError{Literal: string(b), Target: Exact, Err: ErrSyntax, Detail: msg + " at " + strconv.Itoa(pos)}
}

// expLimit saturates exponents well before int64 arithmetic on them could
// overflow; anything that large overflows every target anyway.
const expLimit = 1 << 40

// exponent returns the signed exponent value, saturated at ±expLimit.
func (l Literal) exponent() int64 {
	var e int64
	for _, c := range l.Exp {
		e = e*10 + int64(c-'0')
		if e > expLimit {
			e = expLimit
			break
		}
	}
	if l.ExpNeg {
		return -e
	}
	return e
}

// reduced describes the literal's exact value as coeff × 10^exp, where coeff
// has neither leading nor trailing zeros. zero is set when the value is 0.
type reduced struct {
	coeff []byte
	exp   int64
	zero  bool
}

func (l Literal) reduce() reduced {
	digits := make([]byte, 0, len(l.Int)+len(l.Frac))
	digits = append(digits, l.Int...)
	digits = append(digits, l.Frac...)
	i := 0
	for i < len(digits) && digits[i] == '0' {
		i++
	}
	digits = digits[i:]
	if len(digits) == 0 {
		return reduced{zero: true}
	}
	exp := l.exponent() - int64(len(l.Frac))
	j := len(digits)
	for j > 0 && digits[j-1] == '0' {
		j--
	}
	exp += int64(len(digits) - j)
	return reduced{coeff: digits[:j], exp: exp}
}

// integral reports whether the reduced value has no fractional part.
func (r reduced) integral() bool { return r.zero || r.exp >= 0 }

// intDigits returns the number of decimal digits of the integral value.
func (r reduced) intDigits() int64 {
	if r.zero {
		return 1
	}
	return int64(len(r.coeff)) + r.exp
}

// intText renders an integral reduced value as plain decimal digits.
func (r reduced) intText(neg bool) string {
	if r.zero {
		return "0"
	}
	n := int(r.exp)
	buf := make([]byte, 0, len(r.coeff)+n+1)
	if neg {
		buf = append(buf, '-')
	}
	buf = append(buf, r.coeff...)
	for k := 0; k < n; k++ {
		buf = append(buf, '0')
	}
	return string(buf)
}
