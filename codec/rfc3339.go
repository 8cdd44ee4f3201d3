package codec

import (
	"fmt"
	"time"

	"github.com/reoring/jspec/value"
)

// TimeRFC3339 returns a Codec that converts RFC 3339 strings to timestamps.
// The offset of the string is kept.
func TimeRFC3339() Codec { return rfc3339Codec{} }

type rfc3339Codec struct{}

func (rfc3339Codec) Decode(s string) (value.Value, error) {
	t, err := parseRFC3339(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not an RFC 3339 time: %v", ErrInvalidFormat, s, err)
	}
	return value.NewTimestamp(t), nil
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}
