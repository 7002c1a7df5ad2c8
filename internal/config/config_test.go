package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Options{Dirs: []string{t.TempDir()}, LookupEnv: noEnv})
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig().Paths.Registry, cfg.Paths.Registry)
	assert.Equal(t, 4, cfg.Build.Workers)
	assert.True(t, cfg.Build.EmitRefWarnings)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	assert.Contains(t, cfg.Site.TitleLabelDocTypes, "White Paper")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	body := `paths:
  registry: data/docs.json
  msi: data/msi.json
build:
  workers: 8
  emitRefWarnings: false
log:
  level: debug
watch:
  debounce: 2s
site:
  name: Registry
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "refgraph.yaml"), []byte(body), 0o644))

	cfg, err := Load(Options{Dirs: []string{dir}, LookupEnv: noEnv})
	require.NoError(t, err)
	assert.Equal(t, "data/docs.json", cfg.Paths.Registry)
	assert.Equal(t, "data/msi.json", cfg.Paths.MSI)
	assert.Equal(t, 8, cfg.Build.Workers)
	assert.False(t, cfg.Build.EmitRefWarnings)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	assert.Equal(t, "Registry", cfg.Site.Name)
}

func TestExplicitFileMustExist(t *testing.T) {
	_, err := Load(Options{File: filepath.Join(t.TempDir(), "nope.yaml"), LookupEnv: noEnv})
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("REFGRAPH_PATHS_MSI", "/tmp/msi.json")
	t.Setenv("REFGRAPH_BUILD_WORKERS", "2")

	env := map[string]string{"SITE_NAME": "Staging", "SITE_CANONICAL_BASE": "https://staging.example.org"}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg, err := Load(Options{Dirs: []string{t.TempDir()}, LookupEnv: lookup})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/msi.json", cfg.Paths.MSI)
	assert.Equal(t, 2, cfg.Build.Workers)
	assert.Equal(t, "Staging", cfg.Site.Name)
	assert.Equal(t, "https://staging.example.org", cfg.Site.CanonicalBase)
}

func TestFlagsWin(t *testing.T) {
	t.Setenv("REFGRAPH_PATHS_REGISTRY", "env.json")

	fs := pflag.NewFlagSet("build", pflag.ContinueOnError)
	fs.String("registry", "", "")
	require.NoError(t, fs.Parse([]string{"--registry", "flag.json"}))

	cfg, err := Load(Options{
		Dirs:      []string{t.TempDir()},
		Flags:     fs,
		FlagKeys:  map[string]string{"registry": "paths.registry", "missing": "paths.msi"},
		LookupEnv: noEnv,
	})
	require.NoError(t, err)
	assert.Equal(t, "flag.json", cfg.Paths.Registry)
}

func TestCompressAppendsSuffix(t *testing.T) {
	t.Setenv("REFGRAPH_BUILD_COMPRESS", "true")
	cfg, err := Load(Options{Dirs: []string{t.TempDir()}, LookupEnv: noEnv})
	require.NoError(t, err)
	assert.Equal(t, "build/documents.json.zst", cfg.Paths.Output)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"no registry", func(c *Config) { c.Paths.Registry = "" }, false},
		{"zero workers", func(c *Config) { c.Build.Workers = 0 }, false},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, false},
		{"bad canonical base", func(c *Config) { c.Site.CanonicalBase = "not a url" }, false},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = -time.Second }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
