package codec

import (
	"encoding/base64"
	"fmt"

	"github.com/reoring/jspec/value"
)

// Base64 returns a Codec for binaries carried as standard, padded base64.
func Base64() Codec { return base64Codec{} }

type base64Codec struct{}

func (base64Codec) Decode(s string) (value.Value, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return value.NewBinary(b), nil
}
