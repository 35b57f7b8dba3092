package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codingwithyou/internal/completion"
)

type testDirs struct {
	config string
	work   string
}

func newTestDirs(t *testing.T) testDirs {
	t.Helper()
	root := t.TempDir()
	dirs := testDirs{config: filepath.Join(root, "config"), work: filepath.Join(root, "work")}
	require.NoError(t, os.MkdirAll(dirs.config, 0700))
	require.NoError(t, os.MkdirAll(dirs.work, 0700))
	return dirs
}

func load(t *testing.T, v *viper.Viper, dirs testDirs) (*Config, error) {
	t.Helper()
	loader, err := NewLoader(v, dirs.config, dirs.work)
	require.NoError(t, err)
	return loader.Load()
}

func TestLoad_Defaults(t *testing.T) {
	dirs := newTestDirs(t)

	cfg, err := load(t, viper.New(), dirs)
	require.NoError(t, err)

	assert.Equal(t, completion.DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, completion.DefaultModel, cfg.Model)
	assert.Equal(t, filepath.Join(dirs.config, "secrets.yaml"), cfg.SecretsFile)
	assert.Equal(t, SecretStoreKeyring, cfg.SecretStore)
	assert.Equal(t, filepath.Join(os.TempDir(), AppName), cfg.OutputDir)
	assert.Empty(t, cfg.Editor)
	assert.Zero(t, cfg.Timeout)
	assert.Equal(t, dirs.config, cfg.ConfigDir)
}

func TestLoad_ConfigFile(t *testing.T) {
	dirs := newTestDirs(t)
	require.NoError(t, os.WriteFile(filepath.Join(dirs.config, "config.yaml"), []byte("model: gpt-4o\ntimeout: 45s\n"), 0600))

	cfg, err := load(t, viper.New(), dirs)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
}

func TestLoad_DotEnvPriority(t *testing.T) {
	dirs := newTestDirs(t)
	require.NoError(t, os.WriteFile(filepath.Join(dirs.config, ".env"),
		[]byte("CODINGWITHYOU_MODEL=from-config-env\nCODINGWITHYOU_EDITOR=vim\nUNRELATED=1\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dirs.work, ".env"),
		[]byte("CODINGWITHYOU_MODEL=from-local-env\n"), 0600))

	cfg, err := load(t, viper.New(), dirs)
	require.NoError(t, err)
	assert.Equal(t, "from-local-env", cfg.Model)
	assert.Equal(t, "vim", cfg.Editor)
}

func TestLoad_EnvironmentBeatsDotEnv(t *testing.T) {
	dirs := newTestDirs(t)
	require.NoError(t, os.WriteFile(filepath.Join(dirs.work, ".env"),
		[]byte("CODINGWITHYOU_OUTPUT_DIR=/from/dotenv\n"), 0600))
	t.Setenv("CODINGWITHYOU_OUTPUT_DIR", "/from/env")

	cfg, err := load(t, viper.New(), dirs)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.OutputDir)
}

func TestLoad_SetOverridesEverything(t *testing.T) {
	dirs := newTestDirs(t)
	t.Setenv("CODINGWITHYOU_ENDPOINT", "http://env.local/v1/chat/completions")

	v := viper.New()
	v.Set(KeyEndpoint, "http://flag.local/v1/chat/completions")

	cfg, err := load(t, v, dirs)
	require.NoError(t, err)
	assert.Equal(t, "http://flag.local/v1/chat/completions", cfg.Endpoint)
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	dirs := newTestDirs(t)
	require.NoError(t, os.WriteFile(filepath.Join(dirs.config, "config.yaml"), []byte("model: [broken"), 0600))

	_, err := load(t, viper.New(), dirs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidEndpoint(t *testing.T) {
	dirs := newTestDirs(t)
	t.Setenv("CODINGWITHYOU_ENDPOINT", "ftp://example.com")

	_, err := load(t, viper.New(), dirs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid endpoint")
}

func TestLoad_SecretStoreFromEnv(t *testing.T) {
	dirs := newTestDirs(t)
	t.Setenv("CODINGWITHYOU_SECRET_STORE", " File ")

	cfg, err := load(t, viper.New(), dirs)
	require.NoError(t, err)
	assert.Equal(t, SecretStoreFile, cfg.SecretStore)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		Endpoint:    "https://api.openai.com/v1/chat/completions",
		Model:       "gpt-3.5-turbo",
		SecretsFile: "/tmp/s.yaml",
		SecretStore: SecretStoreFile,
		OutputDir:   "/tmp/out",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"no host", func(c *Config) { c.Endpoint = "https://" }, "invalid endpoint"},
		{"empty model", func(c *Config) { c.Model = "" }, "model cannot be empty"},
		{"empty secrets", func(c *Config) { c.SecretsFile = "" }, "secrets file"},
		{"unknown secret store", func(c *Config) { c.SecretStore = "vault" }, "invalid secret store"},
		{"empty output", func(c *Config) { c.OutputDir = "" }, "output directory"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestUserConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	dir, err := UserConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg", AppName), dir)
}
