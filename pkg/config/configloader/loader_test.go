package configloader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Server struct {
		Port    int           `koanf:"port"`
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"server"`
	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
	Subjects []string `koanf:"subjects"`
}

func (c *testConfig) Validate() error {
	if c.Server.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func Test_LoadFiles_Priority(t *testing.T) {
	// given
	dir := t.TempDir()
	yamlFile := writeFile(t, dir, "config.yaml", `
server:
  port: 8080
  timeout: 5s
log:
  level: info
subjects:
  - a.b
`)
	envFile := writeFile(t, dir, ".env", "TESTSVC_LOG_LEVEL=warn\nOTHER_LOG_LEVEL=error\n")
	t.Setenv("TESTSVC_SERVER_PORT", "9090")

	// when
	cfg, err := LoadFiles[*testConfig]("testsvc", yamlFile, envFile)

	// then
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port, "environment overrides yaml")
	assert.Equal(t, 5*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "warn", cfg.Log.Level, ".env overrides yaml and foreign prefixes are ignored")
	assert.Equal(t, []string{"a.b"}, cfg.Subjects)
}

func Test_LoadFiles_MissingFilesAreSkipped(t *testing.T) {
	// given
	dir := t.TempDir()
	t.Setenv("TESTSVC_SERVER_PORT", "7000")

	// when
	cfg, err := LoadFiles[*testConfig]("testsvc", filepath.Join(dir, "none.yaml"), filepath.Join(dir, ".none"))

	// then
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func Test_LoadFiles_ValidationError(t *testing.T) {
	// given
	dir := t.TempDir()
	yamlFile := writeFile(t, dir, "config.yaml", "server:\n  port: 0\n")

	// when
	_, err := LoadFiles[*testConfig]("testsvc", yamlFile, filepath.Join(dir, ".none"))

	// then
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func Test_Load_ConfigFileFromEnv(t *testing.T) {
	// given
	dir := t.TempDir()
	yamlFile := writeFile(t, dir, "custom.yaml", "server:\n  port: 6000\n")
	t.Setenv("TESTSVC_CONFIG_FILE", yamlFile)
	t.Setenv("TESTSVC_ENV_FILE", filepath.Join(dir, ".none"))

	// when
	cfg, err := Load[*testConfig]("testsvc")

	// then
	require.NoError(t, err)
	assert.Equal(t, 6000, cfg.Server.Port)
}
