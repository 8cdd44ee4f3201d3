package jspec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/jspec/i18n"
	eng "github.com/reoring/jspec/internal/engine"
	"github.com/reoring/jspec/spec"
	"github.com/reoring/jspec/value"
)

// ErrorCode classifies a violation. The set is closed.
type ErrorCode string

// Type expectation codes, one per target kind.
const (
	CodeStringExpected     ErrorCode = "string_expected"
	CodeInt32Expected      ErrorCode = "int32_expected"
	CodeInt64Expected      ErrorCode = "int64_expected"
	CodeBigIntExpected     ErrorCode = "bigint_expected"
	CodeBigDecimalExpected ErrorCode = "bigdecimal_expected"
	CodeDoubleExpected     ErrorCode = "double_expected"
	CodeBoolExpected       ErrorCode = "bool_expected"
	CodeTimestampExpected  ErrorCode = "timestamp_expected"
	CodeBinaryExpected     ErrorCode = "binary_expected"
	CodeArrayExpected      ErrorCode = "array_expected"
	CodeObjectExpected     ErrorCode = "object_expected"
)

// Predicate and bound failure codes, one per predicate site.
const (
	CodeAnyCondition        ErrorCode = "any_condition"
	CodeStringCondition     ErrorCode = "string_condition"
	CodeInt32Condition      ErrorCode = "int32_condition"
	CodeInt64Condition      ErrorCode = "int64_condition"
	CodeBigIntCondition     ErrorCode = "bigint_condition"
	CodeBigDecimalCondition ErrorCode = "bigdecimal_condition"
	CodeDoubleCondition     ErrorCode = "double_condition"
	CodeBoolCondition       ErrorCode = "bool_condition"
	CodeTimestampCondition  ErrorCode = "timestamp_condition"
	CodeBinaryCondition     ErrorCode = "binary_condition"
	CodeArrayCondition      ErrorCode = "array_condition"
	CodeObjectCondition     ErrorCode = "object_condition"
	CodeMapCondition        ErrorCode = "map_condition"
)

// Structural codes.
const (
	CodeRequired          ErrorCode = "required"
	CodeSpecMissing       ErrorCode = "spec_missing"
	CodeNullNotExpected   ErrorCode = "null_not_expected"
	CodeConstantCondition ErrorCode = "constant_condition"
)

// Size and bound codes.
const (
	CodeArrayTooSmall  ErrorCode = "array_too_small"
	CodeArrayTooBig    ErrorCode = "array_too_big"
	CodeTupleSize      ErrorCode = "tuple_size"
	CodeStringTooShort ErrorCode = "string_too_short"
	CodeStringTooLong  ErrorCode = "string_too_long"
	CodeObjectTooSmall ErrorCode = "object_too_small"
	CodeObjectTooBig   ErrorCode = "object_too_big"
)

// Input codes.
const (
	// CodeOverflow reports an integral number wider than its target.
	CodeOverflow      ErrorCode = "overflow"
	CodeSyntaxError   ErrorCode = "syntax_error"
	CodeDuplicateKey  ErrorCode = ErrorCode(eng.CodeDuplicateKey)
	CodeLimitExceeded ErrorCode = ErrorCode(eng.CodeLimitExceeded)
	CodeUnresolvedRef ErrorCode = "unresolved_ref"
)

var expectedCodes = [...]ErrorCode{
	spec.TypeString:     CodeStringExpected,
	spec.TypeInt32:      CodeInt32Expected,
	spec.TypeInt64:      CodeInt64Expected,
	spec.TypeBigInt:     CodeBigIntExpected,
	spec.TypeBigDecimal: CodeBigDecimalExpected,
	spec.TypeDouble:     CodeDoubleExpected,
	spec.TypeBool:       CodeBoolExpected,
	spec.TypeTimestamp:  CodeTimestampExpected,
	spec.TypeBinary:     CodeBinaryExpected,
}

var conditionCodes = [...]ErrorCode{
	spec.TypeString:     CodeStringCondition,
	spec.TypeInt32:      CodeInt32Condition,
	spec.TypeInt64:      CodeInt64Condition,
	spec.TypeBigInt:     CodeBigIntCondition,
	spec.TypeBigDecimal: CodeBigDecimalCondition,
	spec.TypeDouble:     CodeDoubleCondition,
	spec.TypeBool:       CodeBoolCondition,
	spec.TypeTimestamp:  CodeTimestampCondition,
	spec.TypeBinary:     CodeBinaryCondition,
}

// ExpectedCode returns the type mismatch code for a primitive type.
func ExpectedCode(t spec.Type) ErrorCode { return expectedCodes[t] }

// ConditionCode returns the predicate failure code for a primitive type.
func ConditionCode(t spec.Type) ErrorCode { return conditionCodes[t] }

// ValidationError is one violation at one location.
type ValidationError struct {
	Path  Path
	Code  ErrorCode
	Value value.Value // offending value; nil when absent (e.g. required)
	// Message is a human readable description (see i18n).
	Message string
}

func (e ValidationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s at %s", e.Code, e.Path)
	}
	return fmt.Sprintf("%s at %s: %s", e.Code, e.Path, e.Message)
}

// Errors is a collection of validation errors that implements error.
type Errors []ValidationError

// Error summarizes the first few errors.
func (es Errors) Error() string {
	if len(es) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(es)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", es[i].Code, es[i].Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// ParseError is the single violation that aborted a parse.
type ParseError struct {
	ValidationError
	// Offset is the input byte offset of the offending token (-1 if unknown).
	Offset int64
	// Cause is the underlying *SyntaxError or *number.NumError, if any.
	Cause error
	// Details holds every error of the first alternative when a OneOf
	// matched none of its alternatives.
	Details Errors
}

func (e *ParseError) Error() string {
	msg := e.ValidationError.Error()
	if e.Offset >= 0 {
		msg += fmt.Sprintf(" (offset %d)", e.Offset)
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Cause }

// SyntaxError reports malformed input. errors.Is(err, io.ErrUnexpectedEOF)
// distinguishes truncated input from other syntax errors.
type SyntaxError = eng.SyntaxError

// AsErrors extracts validation errors from err. A *ParseError yields its
// single error.
func AsErrors(err error) (Errors, bool) {
	if err == nil {
		return nil, false
	}
	var es Errors
	if errors.As(err, &es) {
		return es, true
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return Errors{pe.ValidationError}, true
	}
	return nil, false
}

func newError(p Path, code ErrorCode, v value.Value, data map[string]string) ValidationError {
	return ValidationError{Path: p, Code: code, Value: v, Message: i18n.T(string(code), data)}
}
