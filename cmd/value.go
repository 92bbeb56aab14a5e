// Conversion between command-line text and stored values
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/serverlessresearch/s3os/pkg/codec"
)

// parseValue reads s as JSON, falling back to the literal string so that
// `s3os put greeting hello` works without quoting. Integral JSON numbers
// become int64.
func parseValue(s string) codec.Value {
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return fromJSON(v)
}

func fromJSON(v interface{}) codec.Value {
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return int64(x)
		}
		return x
	case []interface{}:
		for i, e := range x {
			x[i] = fromJSON(e)
		}
		return x
	case map[string]interface{}:
		for k, e := range x {
			x[k] = fromJSON(e)
		}
		return x
	}
	return v
}

func printValue(w io.Writer, v codec.Value) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
