package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.HTTP.ProxyBaseURL)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Cache.RecordsTTL)
	assert.Equal(t, 30*time.Minute, cfg.Cache.MountTTL)
	assert.Equal(t, int64(512*1024), cfg.Frames.MaxBodyBytes)
	assert.Equal(t, "ed25519", cfg.Signer.Scheme)
	assert.Equal(t, "none", cfg.Telemetry.Exporter)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, []string{"/static/helm.js"}, cfg.Site.Scripts)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
http:
  addr: "0.0.0.0:9090"
  read_timeout: 3s
database:
  url: "postgres://file"
site:
  name: "Names"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	t.Setenv("PROFILE_FRAMES_DATABASE_URL", "postgres://env")
	t.Setenv("PROFILE_FRAMES_CACHE_MOUNT_TTL", "2m")
	t.Setenv("PROFILE_FRAMES_FRAMES_ALLOW_PRIVATE_HOSTS", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr)
	assert.Equal(t, "http://127.0.0.1:9090", cfg.HTTP.ProxyBaseURL)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, "postgres://env", cfg.Database.URL)
	assert.Equal(t, 2*time.Minute, cfg.Cache.MountTTL)
	assert.True(t, cfg.Frames.AllowPrivateHosts)
	assert.Equal(t, "Names", cfg.Site.Name)
}

func TestLoadRejectsUnknownExporter(t *testing.T) {
	t.Setenv("PROFILE_FRAMES_TELEMETRY_EXPORTER", "carrier-pigeon")
	_, err := Load("")
	assert.ErrorContains(t, err, "telemetry.exporter")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFormatTitle(t *testing.T) {
	s := SiteConfig{Name: "Profiles", TitleFormat: "{title} - {siteName}"}
	assert.Equal(t, "alice - Profiles", s.FormatTitle("alice"))
	assert.Equal(t, "Profiles", s.FormatTitle(""))
}
