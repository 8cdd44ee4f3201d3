// Package codec converts the string form a JSON document carries into the
// typed values of timestamp and binary specs. The reverse direction is
// value.Encode.
package codec

import (
	"errors"

	"github.com/reoring/jspec/value"
)

// ErrInvalidFormat reports a wire string the codec cannot decode.
var ErrInvalidFormat = errors.New("codec: invalid format")

// Codec maps a wire string to a value.
type Codec interface {
	Decode(s string) (value.Value, error)
}
