package codec

import (
	"fmt"
	"math"
	"reflect"
	"sort"
)

// Value is anything a Codec can store. After Normalize it is exactly one of:
//
//	nil, bool, int64, float64, string, []Value, map[string]Value
//
// with the container shapes nesting arbitrarily.
type Value = interface{}

// SerializationError reports a value outside the supported shapes, or a
// failure of the underlying encoder.
type SerializationError struct {
	Path   string
	Reason string
	Err    error
}

func (e *SerializationError) Error() string {
	msg := "cannot serialize value"
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SerializationError) Unwrap() error { return e.Err }

// Normalize converts v into canonical Value shapes. Other integer and float
// kinds are widened to int64 and float64, typed slices and string-keyed maps
// are converted element by element. Anything else is rejected with a
// *SerializationError.
func Normalize(v interface{}) (Value, error) {
	return normalize(v, "$")
}

func normalize(v interface{}, path string) (Value, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case bool, int64, float64, string:
		return x, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint:
		return uintToInt64(uint64(x), path)
	case uint64:
		return uintToInt64(x, path)
	case float32:
		return float64(x), nil
	case []interface{}:
		out := make([]Value, len(x))
		for i, e := range x {
			n, err := normalize(e, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]interface{}:
		out := make(map[string]Value, len(x))
		for k, e := range x {
			n, err := normalize(e, path+"."+k)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[interface{}]interface{}:
		out := make(map[string]Value, len(x))
		for k, e := range x {
			ks, ok := k.(string)
			if !ok {
				return nil, &SerializationError{Path: path, Reason: fmt.Sprintf("map key %v is %T, not string", k, k)}
			}
			n, err := normalize(e, path+"."+ks)
			if err != nil {
				return nil, err
			}
			out[ks] = n
		}
		return out, nil
	}
	return normalizeReflect(reflect.ValueOf(v), path)
}

func uintToInt64(u uint64, path string) (Value, error) {
	if u > math.MaxInt64 {
		return nil, &SerializationError{Path: path, Reason: fmt.Sprintf("integer %d overflows int64", u)}
	}
	return int64(u), nil
}

// normalizeReflect handles typed containers such as []int or map[string]bool.
func normalizeReflect(rv reflect.Value, path string) (Value, error) {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, &SerializationError{Path: path, Reason: "byte slices are not supported, use a string"}
		}
		out := make([]Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			n, err := normalize(rv.Index(i).Interface(), fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, &SerializationError{Path: path, Reason: fmt.Sprintf("map keys must be strings, got %s", rv.Type().Key())}
		}
		out := make(map[string]Value, rv.Len())
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		for _, k := range keys {
			n, err := normalize(rv.MapIndex(k).Interface(), path+"."+k.String())
			if err != nil {
				return nil, err
			}
			out[k.String()] = n
		}
		return out, nil
	}
	return nil, &SerializationError{Path: path, Reason: fmt.Sprintf("unsupported type %s", rv.Type())}
}
