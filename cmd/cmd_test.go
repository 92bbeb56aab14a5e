package cmd

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/serverlessresearch/s3os/pkg/codec"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI against a local-backend config and returns stdout.
func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOutput(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func localConfig(t *testing.T) string {
	dir, err := ioutil.TempDir("", "s3os-cmd")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	cfg := "backend: local\nlog:\n  level: warn\nlocal:\n  dir: " + filepath.Join(dir, "data") + "\n"
	path := filepath.Join(dir, "s3os.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(cfg), 0644))
	return path
}

func TestPutGetDelete(t *testing.T) {
	cfg := localConfig(t)

	_, err := run(t, cfg, "put", "numbers", "[1, 2, 3]")
	require.NoError(t, err)

	out, err := run(t, cfg, "get", "numbers")
	require.NoError(t, err)
	assert.Equal(t, "[\n  1,\n  2,\n  3\n]\n", out)

	out, err = run(t, cfg, "list")
	require.NoError(t, err)
	assert.Equal(t, "numbers\n", out)

	_, err = run(t, cfg, "delete", "numbers")
	require.NoError(t, err)
	_, err = run(t, cfg, "delete", "numbers")
	require.NoError(t, err)

	_, err = run(t, cfg, "get", "numbers")
	assert.Error(t, err)
}

func TestDictCommands(t *testing.T) {
	cfg := localConfig(t)

	_, err := run(t, cfg, "dict", "--id", "fruit", "set", "apples", "5")
	require.NoError(t, err)
	_, err = run(t, cfg, "dict", "--id", "fruit", "set", "bananas", "2")
	require.NoError(t, err)

	out, err := run(t, cfg, "dict", "--id", "fruit", "dump")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"apples\": 5,\n  \"bananas\": 2\n}\n", out)

	_, err = run(t, cfg, "dict", "--id", "fruit", "delete", "apples")
	require.NoError(t, err)
	out, err = run(t, cfg, "dict", "--id", "fruit", "get", "bananas")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	_, err = run(t, cfg, "dict", "--id", "fruit", "clear")
	require.NoError(t, err)
	out, err = run(t, cfg, "dict", "--id", "fruit", "dump")
	require.NoError(t, err)
	assert.Equal(t, "{}\n", out)
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, "hello", parseValue("hello"))
	assert.Equal(t, int64(5), parseValue("5"))
	assert.Equal(t, 2.5, parseValue("2.5"))
	assert.Equal(t, true, parseValue("true"))
	assert.Nil(t, parseValue("null"))

	v, err := codec.Normalize(parseValue(`{"a": [1, "x"]}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]codec.Value{"a": []codec.Value{int64(1), "x"}}, v)
}
