package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ruminaider/salon-sync/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable ApplyEnv reads. t.Setenv restores the
// previous values when the test ends.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SALON_API_URL", "SALON_ID", "SALON_TOKEN", "SALON_LOG_LEVEL",
		"HTTP_ADDR", "DB_CONN", "REDIS_ADDR", "REDIS_PASS",
		"UPLOAD_DIR", "PUBLIC_BASE_URL", "ALLOWED_ORIGINS", "MAX_UPLOAD_BYTES", "TRUST_PROXY",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestParseConfig(t *testing.T) {
	t.Run("full file", func(t *testing.T) {
		input := []byte(`version: "1"
client:
  api_url: https://salon.example.com
  salon_id: salon-1
  token: secret
server:
  addr: ":9000"
  db_conn: postgres://app:pw@db:5432/salon
  allowed_origins:
    - https://salon.example.com
  max_upload_bytes: 1024
`)
		cfg, err := config.Parse(input)
		require.NoError(t, err)
		assert.Equal(t, "https://salon.example.com", cfg.Client.APIURL)
		assert.Equal(t, "salon-1", cfg.Client.SalonID)
		assert.Equal(t, ":9000", cfg.Server.Addr)
		assert.Equal(t, []string{"https://salon.example.com"}, cfg.Server.AllowedOrigins)
		assert.Equal(t, int64(1024), cfg.Server.MaxUploadBytes)
	})

	t.Run("missing fields keep defaults", func(t *testing.T) {
		cfg, err := config.Parse([]byte("client:\n  salon_id: s\n"))
		require.NoError(t, err)
		def := config.Default()
		assert.Equal(t, def.Client.APIURL, cfg.Client.APIURL)
		assert.Equal(t, def.Server.Addr, cfg.Server.Addr)
		assert.Equal(t, "s", cfg.Client.SalonID)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := config.Parse([]byte(`{{{`))
		assert.Error(t, err)
	})
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Client.SalonID = "salon-1"

	data, err := config.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "salon_id: salon-1")
	assert.NotContains(t, string(data), "token:")

	parsed, err := config.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, parsed)
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		clearEnv(t)
		cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), "")
		require.NoError(t, err)
		assert.Equal(t, config.Default(), cfg)
	})

	t.Run("env overrides file", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("client:\n  api_url: http://file\n  salon_id: from-file\n"), 0644))

		t.Setenv("SALON_API_URL", "http://env")
		t.Setenv("ALLOWED_ORIGINS", "https://a.test, https://b.test,")
		t.Setenv("MAX_UPLOAD_BYTES", "2048")
		t.Setenv("TRUST_PROXY", "true")

		cfg, err := config.Load(path, "")
		require.NoError(t, err)
		assert.Equal(t, "http://env", cfg.Client.APIURL)
		assert.Equal(t, "from-file", cfg.Client.SalonID)
		assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.Server.AllowedOrigins)
		assert.Equal(t, int64(2048), cfg.Server.MaxUploadBytes)
		assert.True(t, cfg.Server.TrustProxy)
	})

	t.Run("dotenv fills unset variables", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		envFile := filepath.Join(dir, ".env")
		require.NoError(t, os.WriteFile(envFile, []byte("SALON_ID=from-dotenv\nSALON_TOKEN=tok\n"), 0600))
		t.Setenv("SALON_TOKEN", "from-shell")

		cfg, err := config.Load(filepath.Join(dir, "config.yaml"), envFile)
		require.NoError(t, err)
		assert.Equal(t, "from-dotenv", cfg.Client.SalonID)
		assert.Equal(t, "from-shell", cfg.Client.Token)
	})

	t.Run("bad upload size", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MAX_UPLOAD_BYTES", "lots")
		_, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"), "")
		assert.ErrorContains(t, err, "MAX_UPLOAD_BYTES")
	})

	t.Run("bad trust proxy", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("TRUST_PROXY", "maybe")
		_, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"), "")
		assert.ErrorContains(t, err, "TRUST_PROXY")
	})

	t.Run("unreadable config", func(t *testing.T) {
		clearEnv(t)
		_, err := config.Load(t.TempDir(), "")
		assert.Error(t, err)
	})
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := config.Default()
	cfg.Client.Token = "tok"
	require.NoError(t, config.Write(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	parsed, err := config.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, parsed)
}

func TestRedacted(t *testing.T) {
	cfg := config.Default()
	cfg.Client.Token = "tok"
	cfg.Server.RedisPass = "pw"
	cfg.Server.DBConn = "postgres://app:hunter2@db:5432/salon"

	r := cfg.Redacted()
	assert.Equal(t, "********", r.Client.Token)
	assert.Equal(t, "********", r.Server.RedisPass)
	assert.Equal(t, "postgres://app:********@db:5432/salon", r.Server.DBConn)
	assert.Equal(t, "tok", cfg.Client.Token)
}
