package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// CBOR is the default codec. Maps are encoded with sorted keys (RFC 8949
// core deterministic encoding) so equal values produce equal bytes.
// The zero value is NOT ready to use. Construct with NewCBOR or MustCBOR.
type CBOR struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec = CBOR{}

func NewCBOR() (CBOR, error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return CBOR{}, err
	}
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]interface{}(nil)),
		IntDec:         cbor.IntDecConvertSigned,
	}.DecMode()
	if err != nil {
		return CBOR{}, err
	}
	return CBOR{enc: em, dec: dm}, nil
}

// MustCBOR is like NewCBOR but panics on error.
func MustCBOR() CBOR {
	c, err := NewCBOR()
	if err != nil {
		panic(err)
	}
	return c
}

func (CBOR) Name() string { return "cbor" }

func (c CBOR) Encode(v Value) ([]byte, error) {
	n, err := Normalize(v)
	if err != nil {
		return nil, err
	}
	b, err := c.enc.Marshal(n)
	if err != nil {
		return nil, &SerializationError{Err: err}
	}
	return b, nil
}

func (c CBOR) Decode(b []byte) (Value, error) {
	var v interface{}
	if err := c.dec.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return Normalize(v)
}
