// Package codec turns Values into bytes and back.
package codec

import (
	"fmt"
	"sort"
	"strings"
)

// Codec encodes and decodes Values. Decode(Encode(v)) equals Normalize(v)
// for every supported v.
type Codec interface {
	Name() string
	Encode(Value) ([]byte, error)
	Decode([]byte) (Value, error)
}

// DefaultName is the codec used when configuration does not choose one.
const DefaultName = "cbor"

var registry = map[string]func() Codec{
	"cbor":    func() Codec { return MustCBOR() },
	"msgpack": func() Codec { return Msgpack{} },
}

// ByName returns a fresh codec by its configuration name.
func ByName(name string) (Codec, error) {
	if name == "" {
		name = DefaultName
	}
	ctor, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown codec %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return ctor(), nil
}

// Names lists the registered codec names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
