package codec

import "github.com/vmihailenco/msgpack/v5"

// Msgpack serializes values using vmihailenco/msgpack/v5.
// The zero value is ready to use.
type Msgpack struct{}

var _ Codec = Msgpack{}

func (Msgpack) Name() string { return "msgpack" }

func (Msgpack) Encode(v Value) ([]byte, error) {
	n, err := Normalize(v)
	if err != nil {
		return nil, err
	}
	b, err := msgpack.Marshal(n)
	if err != nil {
		return nil, &SerializationError{Err: err}
	}
	return b, nil
}

// Decode widens msgpack's compact integer types back to int64.
func (Msgpack) Decode(b []byte) (Value, error) {
	var v interface{}
	if err := msgpack.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return Normalize(v)
}
