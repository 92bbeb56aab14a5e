package codec

import "fmt"

// Limit wraps another codec and refuses to decode payloads larger than
// MaxDecode bytes. MaxDecode <= 0 disables the check.
type Limit struct {
	Inner     Codec
	MaxDecode int // bytes
}

var _ Codec = Limit{}

func (c Limit) Name() string                   { return c.Inner.Name() }
func (c Limit) Encode(v Value) ([]byte, error) { return c.Inner.Encode(v) }
func (c Limit) Decode(b []byte) (Value, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		return nil, fmt.Errorf("payload too large: %d > %d", len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
