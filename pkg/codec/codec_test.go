package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allCodecs(t *testing.T) []Codec {
	var out []Codec
	for _, name := range Names() {
		c, err := ByName(name)
		require.NoError(t, err)
		out = append(out, c)
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	values := []Value{
		"asdf",
		[]interface{}{1, 2, 3},
		map[string]interface{}{"1": 2, "3": 4},
		5,
		-12,
		2.5,
		3.0,
		true,
		nil,
		"",
		[]interface{}{},
		map[string]interface{}{
			"name": "bananas",
			"tags": []string{"yellow", "fruit"},
			"nested": map[string]interface{}{
				"count": int64(1) << 40,
				"ok":    false,
				"none":  nil,
			},
		},
	}

	for _, c := range allCodecs(t) {
		for _, v := range values {
			want, err := Normalize(v)
			require.NoError(t, err)

			b, err := c.Encode(v)
			require.NoError(t, err, "%s encode %#v", c.Name(), v)

			got, err := c.Decode(b)
			require.NoError(t, err, "%s decode %#v", c.Name(), v)
			assert.Equal(t, want, got, "%s round trip", c.Name())
		}
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize(map[string]int{"apples": 5, "bananas": 2})
	require.NoError(t, err)
	assert.Equal(t, map[string]Value{"apples": int64(5), "bananas": int64(2)}, got)

	got, err = Normalize([]float32{1.5})
	require.NoError(t, err)
	assert.Equal(t, []Value{float64(1.5)}, got)

	got, err = Normalize(uint8(7))
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)
}

func TestNormalizeRejects(t *testing.T) {
	type point struct{ X, Y int }

	bad := []interface{}{
		point{1, 2},
		map[int]string{1: "one"},
		[]byte("raw"),
		uint64(1) << 63,
		func() {},
		map[string]interface{}{"inner": []interface{}{make(chan int)}},
	}
	for _, v := range bad {
		_, err := Normalize(v)
		require.Error(t, err, "%#v", v)
		_, ok := err.(*SerializationError)
		assert.True(t, ok, "%T", err)
	}

	_, err := Normalize(map[string]interface{}{"inner": []interface{}{make(chan int)}})
	assert.Contains(t, err.Error(), "$.inner[0]")
}

func TestEncodeRejectsUnsupported(t *testing.T) {
	for _, c := range allCodecs(t) {
		_, err := c.Encode(struct{}{})
		assert.Error(t, err, c.Name())
	}
}

func TestDecodeGarbage(t *testing.T) {
	for _, c := range allCodecs(t) {
		_, err := c.Decode([]byte{0xc1})
		assert.Error(t, err, c.Name())
	}
}

func TestCBORIsDeterministic(t *testing.T) {
	c := MustCBOR()
	a, err := c.Encode(map[string]interface{}{"b": 1, "a": 2, "c": 3})
	require.NoError(t, err)
	b, err := c.Encode(map[string]interface{}{"c": 3, "a": 2, "b": 1})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLimit(t *testing.T) {
	c := Limit{Inner: Msgpack{}, MaxDecode: 8}
	small, err := c.Encode("hi")
	require.NoError(t, err)
	v, err := c.Decode(small)
	require.NoError(t, err)
	assert.Equal(t, "hi", v)

	big, err := c.Encode("a string longer than eight bytes")
	require.NoError(t, err)
	_, err = c.Decode(big)
	assert.Error(t, err)
	assert.Equal(t, "msgpack", c.Name())
}

func TestByName(t *testing.T) {
	c, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, DefaultName, c.Name())

	c, err = ByName("MsgPack")
	require.NoError(t, err)
	assert.Equal(t, "msgpack", c.Name())

	_, err = ByName("pickle")
	assert.Error(t, err)
}
