package surrealoverlay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("OVERLAY_STORE", "")
	t.Setenv("PORT", "")

	cmd, config, err := Parse([]string{"run"})
	require.NoError(t, err)
	assert.Equal(t, "run", cmd.Name())
	assert.Equal(t, StoreSurrealDB, config.Store)
	assert.Equal(t, "8080", config.ServerPort)
	assert.False(t, config.ReadOnly)
}

func TestParseFlags(t *testing.T) {
	cmd, config, err := Parse([]string{"-store", "memory", "-port", "9000", "-read-only", "-migrate", "-log-level", "debug", "run"})
	require.NoError(t, err)
	require.IsType(t, &RunCommand{}, cmd)
	assert.True(t, cmd.(*RunCommand).Migrate)
	assert.Equal(t, StoreMemory, config.Store)
	assert.Equal(t, "9000", config.ServerPort)
	assert.True(t, config.ReadOnly)
	assert.Equal(t, "debug", config.Log.Level)
}

func TestParseMigrate(t *testing.T) {
	cmd, _, err := Parse([]string{"-store", "postgres", "migrate"})
	require.NoError(t, err)
	assert.IsType(t, &MigrateCommand{}, cmd)
}

func TestParseErrors(t *testing.T) {
	_, _, err := Parse(nil)
	assert.ErrorContains(t, err, "subcommand required")

	_, _, err = Parse([]string{"sync"})
	assert.ErrorContains(t, err, "unknown command")

	_, _, err = Parse([]string{"-store", "mongo", "run"})
	assert.ErrorContains(t, err, "invalid store")

	_, _, err = Parse([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml"), "run"})
	assert.ErrorContains(t, err, "reading config file")
}

func TestParseEnvironment(t *testing.T) {
	t.Setenv("OVERLAY_STORE", "postgres")
	t.Setenv("POSTGRES_DSN", "postgres://env")
	t.Setenv("PORT", "7000")

	_, config, err := Parse([]string{"-port", "7001", "run"})
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, config.Store)
	assert.Equal(t, "postgres://env", config.PostgresDSN)
	assert.Equal(t, "7001", config.ServerPort, "flags win over the environment")
}

func TestParseConfigFile(t *testing.T) {
	t.Setenv("OVERLAY_TEST_PASS", "s3cret")
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store: surrealdb
port: "6000"
readOnly: true
surrealdb:
  url: ws://db:8000/rpc
  namespace: studio
  password: ${OVERLAY_TEST_PASS}
log:
  format: console
`), 0o600))

	_, config, err := Parse([]string{"-config", path, "run"})
	require.NoError(t, err)
	assert.Equal(t, "6000", config.ServerPort)
	assert.True(t, config.ReadOnly)
	assert.Equal(t, "ws://db:8000/rpc", config.SurrealDB.URL)
	assert.Equal(t, "studio", config.SurrealDB.Namespace)
	assert.Equal(t, "surrealoverlay", config.SurrealDB.Database, "keys absent from the file keep defaults")
	assert.Equal(t, "s3cret", config.SurrealDB.Password)
	assert.Equal(t, "console", config.Log.Format)
}
