package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func newFlagSet() *flag.FlagSet {
	return flag.NewFlagSet("test", flag.ContinueOnError)
}

func TestParse_Defaults(t *testing.T) {
	opts, err := parse(newFlagSet(), []string{"-c", ""}, envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", opts.Port)
	assert.Equal(t, DriverMemory, opts.Driver)
	assert.Equal(t, "info", opts.LogLevel)
	assert.Empty(t, opts.Token)
}

func TestParse_ConfigFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{"address":"0.0.0.0:9000","driver":"sqlite","database_dsn":"roster.db","token":"file-token"}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	opts, err := parse(newFlagSet(), []string{"-a", "localhost:1"}, envOf(map[string]string{
		"CONFIG":    path,
		"API_TOKEN": "env-token",
	}))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", opts.Port)
	assert.Equal(t, DriverSQLite, opts.Driver)
	assert.Equal(t, "roster.db", opts.DatabaseDSN)
	assert.Equal(t, "env-token", opts.Token)
}

func TestParse_EnvOverrides(t *testing.T) {
	opts, err := parse(newFlagSet(), []string{"-c", ""}, envOf(map[string]string{
		"SERVER_ADDRESS": ":7000",
		"DATABASE_DSN":   "postgres://x",
		"STORE_DRIVER":   "postgres",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":7000", opts.Port)
	assert.Equal(t, "postgres://x", opts.DatabaseDSN)
	assert.Equal(t, DriverPostgres, opts.Driver)
}

func TestParse_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))

	cases := []struct {
		name string
		args []string
	}{
		{"unknown driver", []string{"-c", "", "-driver", "mongo"}},
		{"broken config file", []string{"-c", bad}},
		{"unknown flag", []string{"-nope"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fs := newFlagSet()
			fs.SetOutput(io.Discard)
			_, err := parse(fs, tc.args, envOf(nil))
			assert.Error(t, err)
		})
	}
}
