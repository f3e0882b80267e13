package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/passvault/cli/internal/utils"
)

const (
	configName = ".passvault"
	envPrefix  = "PASSVAULT"
)

// Config represents the application configuration
type Config struct {
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Auth   AuthConfig   `yaml:"auth" mapstructure:"auth"`
	Format FormatConfig `yaml:"format" mapstructure:"format"`
}

// ServerConfig contains server connection settings
type ServerConfig struct {
	URL     string `yaml:"url" mapstructure:"url"`
	Timeout string `yaml:"timeout" mapstructure:"timeout"`
}

// AuthConfig holds the persisted bearer token
type AuthConfig struct {
	Token string `yaml:"token" mapstructure:"token"`
}

// FormatConfig contains output formatting settings
type FormatConfig struct {
	Default string `yaml:"default" mapstructure:"default"`
	Colors  bool   `yaml:"colors" mapstructure:"colors"`
}

// settable lists the keys `config set` accepts
var settable = map[string]bool{
	"server.url":     true,
	"server.timeout": true,
	"format.default": true,
	"format.colors":  true,
}

var (
	mu           sync.Mutex
	v            = viper.New()
	globalConfig *Config
	debug        bool
	outputFormat string
)

// Initialize loads the configuration from file, .env and environment
func Initialize(configFile string) error {
	mu.Lock()
	defer mu.Unlock()

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not load .env: %w", err)
	}

	v = viper.New()
	path, err := resolvePath(configFile)
	if err != nil {
		return err
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults()

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefaultConfig(path); err != nil {
			return fmt.Errorf("could not create default config: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}

	globalConfig = &Config{}
	if err := v.Unmarshal(globalConfig); err != nil {
		return fmt.Errorf("could not unmarshal config: %w", err)
	}

	return nil
}

func resolvePath(configFile string) (string, error) {
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get home directory: %w", err)
	}
	return filepath.Join(home, configName+".yaml"), nil
}

// setDefaults sets default configuration values
func setDefaults() {
	v.SetDefault("server.url", "http://localhost:3000")
	v.SetDefault("server.timeout", "30s")
	v.SetDefault("auth.token", "")
	v.SetDefault("format.default", "table")
	v.SetDefault("format.colors", true)
}

// createDefaultConfig writes a default configuration file
func createDefaultConfig(path string) error {
	defaultConfig := Config{
		Server: ServerConfig{
			URL:     "http://localhost:3000",
			Timeout: "30s",
		},
		Format: FormatConfig{
			Default: "table",
			Colors:  true,
		},
	}

	data, err := yaml.Marshal(defaultConfig)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Get returns the global configuration
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if globalConfig == nil {
		globalConfig = &Config{}
	}
	return globalConfig
}

// Path returns the config file in use
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return v.ConfigFileUsed()
}

// Timeout returns the HTTP timeout, falling back to 30s on a bad value
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.Server.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// Settings returns every key except the token
func Settings() map[string]interface{} {
	mu.Lock()
	defer mu.Unlock()

	out := make(map[string]interface{})
	for _, key := range v.AllKeys() {
		if key == "auth.token" {
			continue
		}
		out[key] = v.Get(key)
	}
	return out
}

// GetValue returns one setting
func GetValue(key string) (interface{}, error) {
	mu.Lock()
	defer mu.Unlock()

	if key == "auth.token" || !v.IsSet(key) {
		return nil, fmt.Errorf("unknown configuration key: %s", key)
	}
	return v.Get(key), nil
}

// SetValue updates one setting and writes the file
func SetValue(key, value string) error {
	if !settable[key] {
		return fmt.Errorf("configuration key %s cannot be set", key)
	}

	mu.Lock()
	defer mu.Unlock()

	switch key {
	case "format.colors":
		b := value == "true" || value == "1" || value == "yes"
		v.Set(key, b)
	case "server.url":
		if err := utils.ValidateRequired(value, "url", "Server URL is required."); err != nil {
			return err
		}
		if err := utils.ValidateURL(value); err != nil {
			return err
		}
		v.Set(key, strings.TrimRight(value, "/"))
	case "server.timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", value, err)
		}
		v.Set(key, value)
	default:
		v.Set(key, value)
	}

	if globalConfig == nil {
		globalConfig = &Config{}
	}
	if err := v.Unmarshal(globalConfig); err != nil {
		return fmt.Errorf("could not unmarshal config: %w", err)
	}
	return persist(key, v.Get(key))
}

// persist writes one key into the config file. The file is reloaded on its
// own so environment and .env overrides held by v never reach the disk.
// Called with mu held.
func persist(key string, value interface{}) error {
	fv := viper.New()
	fv.SetConfigFile(v.ConfigFileUsed())
	fv.SetConfigType("yaml")
	if err := fv.ReadInConfig(); err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}

	fv.Set(key, value)
	if err := fv.WriteConfig(); err != nil {
		return fmt.Errorf("could not write config file: %w", err)
	}
	return nil
}

// SetDebug sets the debug mode
func SetDebug(enabled bool) {
	debug = enabled
}

// IsDebug returns whether debug mode is enabled
func IsDebug() bool {
	return debug
}

// SetOutputFormat sets the output format
func SetOutputFormat(format string) {
	outputFormat = format
}

// GetOutputFormat returns the current output format
func GetOutputFormat() string {
	if outputFormat != "" {
		return outputFormat
	}
	if globalConfig != nil && globalConfig.Format.Default != "" {
		return globalConfig.Format.Default
	}
	return "table"
}
