// Package config loads codingwithyou settings from defaults, a config file, .env files, environment variables and flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"codingwithyou/internal/completion"
	"codingwithyou/internal/logger"
)

// AppName names the config directory and the default output directory.
const AppName = "codingwithyou"

// EnvPrefix is the prefix of environment variables read by the loader.
const EnvPrefix = "CODINGWITHYOU"

// Configuration keys.
const (
	KeyEndpoint    = "endpoint"
	KeyModel       = "model"
	KeySecretsFile = "secrets-file"
	KeySecretStore = "secret-store"
	KeyOutputDir   = "output-dir"
	KeyEditor      = "editor"
	KeyTimeout     = "timeout"
)

// Secret store backends.
const (
	SecretStoreKeyring = "keyring"
	SecretStoreFile    = "file"
)

// Config is the resolved configuration.
type Config struct {
	Endpoint    string
	Model       string
	SecretsFile string
	SecretStore string
	OutputDir   string
	Editor      string
	Timeout     time.Duration
	ConfigDir   string
}

// Loader resolves configuration with this priority (highest first):
// flags bound to the viper instance, environment variables, local .env, config-dir .env, config.yaml, defaults.
type Loader struct {
	v         *viper.Viper
	configDir string
	workDir   string
}

// NewLoader creates a Loader on top of v. Empty directories are resolved from the environment.
func NewLoader(v *viper.Viper, configDir, workDir string) (*Loader, error) {
	if configDir == "" {
		dir, err := UserConfigDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}
	if workDir == "" {
		dir, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		workDir = dir
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyEndpoint, completion.DefaultEndpoint)
	v.SetDefault(KeyModel, completion.DefaultModel)
	v.SetDefault(KeySecretsFile, filepath.Join(configDir, "secrets.yaml"))
	v.SetDefault(KeySecretStore, SecretStoreKeyring)
	v.SetDefault(KeyOutputDir, filepath.Join(os.TempDir(), AppName))
	v.SetDefault(KeyEditor, "")
	v.SetDefault(KeyTimeout, time.Duration(0))

	return &Loader{v: v, configDir: configDir, workDir: workDir}, nil
}

// Load reads every source and returns the validated configuration.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName("config")
	l.v.SetConfigType("yaml")
	l.v.AddConfigPath(l.configDir)
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		logger.Debug("Config file loaded", "path", l.v.ConfigFileUsed())
	}

	for _, envPath := range []string{
		filepath.Join(l.configDir, ".env"),
		filepath.Join(l.workDir, ".env"),
	} {
		if err := l.mergeDotEnv(envPath); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Endpoint:    strings.TrimSpace(l.v.GetString(KeyEndpoint)),
		Model:       strings.TrimSpace(l.v.GetString(KeyModel)),
		SecretsFile: l.v.GetString(KeySecretsFile),
		SecretStore: strings.ToLower(strings.TrimSpace(l.v.GetString(KeySecretStore))),
		OutputDir:   l.v.GetString(KeyOutputDir),
		Editor:      l.v.GetString(KeyEditor),
		Timeout:     l.v.GetDuration(KeyTimeout),
		ConfigDir:   l.configDir,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("Configuration loaded", "endpoint", cfg.Endpoint, "model", cfg.Model, "secrets", cfg.SecretsFile, "secret_store", cfg.SecretStore, "output", cfg.OutputDir, "timeout", cfg.Timeout)
	return cfg, nil
}

// mergeDotEnv merges CODINGWITHYOU_* values from a .env file. A missing file is not an error.
func (l *Loader) mergeDotEnv(envPath string) error {
	data, err := os.ReadFile(envPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read .env file %s: %w", envPath, err)
	}

	envMap, err := godotenv.Unmarshal(string(data))
	if err != nil {
		return fmt.Errorf("failed to parse .env file %s: %w", envPath, err)
	}

	values := make(map[string]interface{})
	for key, value := range envMap {
		name, ok := strings.CutPrefix(key, EnvPrefix+"_")
		if !ok {
			continue
		}
		values[strings.ReplaceAll(strings.ToLower(name), "_", "-")] = value
	}
	if len(values) == 0 {
		return nil
	}

	logger.Debug("Merging .env file", "path", envPath, "keys", len(values))
	return l.v.MergeConfigMap(values)
}

// Validate checks the values that would otherwise fail later in less obvious ways.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: must be an http(s) URL", c.Endpoint)
	}
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if c.SecretsFile == "" {
		return fmt.Errorf("secrets file path cannot be empty")
	}
	if c.SecretStore != SecretStoreKeyring && c.SecretStore != SecretStoreFile {
		return fmt.Errorf("invalid secret store %q: must be %q or %q", c.SecretStore, SecretStoreKeyring, SecretStoreFile)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	return nil
}

// UserConfigDir returns $XDG_CONFIG_HOME/codingwithyou, falling back to ~/.config/codingwithyou.
func UserConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configHome = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configHome, AppName), nil
}
