package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// NotionConfig holds the settings of the hosted database backend.
type NotionConfig struct {
	// APIKey is the integration token. When empty it is read from the
	// system keyring at startup.
	APIKey string `mapstructure:"api_key" yaml:"api_key"`

	// DatabaseID identifies the table messages are stored in.
	DatabaseID string `mapstructure:"database_id" yaml:"database_id"`

	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Version string `mapstructure:"version" yaml:"version"`

	// PageSize is how many messages are fetched per page when browsing.
	PageSize int `mapstructure:"page_size" yaml:"page_size"`

	// TimeoutSec bounds each backend call.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// MaxRetries is how often a rate limited call is retried.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Notion NotionConfig `mapstructure:"notion" yaml:"notion"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

// envKeys maps config keys to the environment variables that override them.
var envKeys = map[string]string{
	"notion.api_key":     "NOTION_API_KEY",
	"notion.database_id": "NOTION_DATABASE_ID",
	"notion.base_url":    "NOTION_BASE_URL",
	"notion.version":     "NOTION_VERSION",
	"notion.page_size":   "NOTIONMAIL_PAGE_SIZE",
	"notion.timeout_sec": "NOTIONMAIL_TIMEOUT_SEC",
	"notion.max_retries": "NOTIONMAIL_MAX_RETRIES",
	"log.level":          "NOTIONMAIL_LOG_LEVEL",
	"log.file":           "NOTIONMAIL_LOG_FILE",
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/notionmail/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "notionmail", "config.yaml")
}

// DefaultDotEnvPath is the dotenv file read from the working directory.
const DefaultDotEnvPath = ".env"

func setDefaults(v *viper.Viper) {
	v.SetDefault("notion.base_url", "https://api.notion.com")
	v.SetDefault("notion.version", "2022-06-28")
	v.SetDefault("notion.page_size", 5)
	v.SetDefault("notion.timeout_sec", 30)
	v.SetDefault("notion.max_retries", 3)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")
}

// LoadConfig resolves the configuration from, in increasing precedence:
// defaults, the YAML file at path, the dotenv file at dotenvPath, and the
// process environment. Missing files are skipped; an empty path skips
// that source.
func LoadConfig(path, dotenvPath string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if dotenvPath != "" {
		if err := mergeDotEnv(v, dotenvPath); err != nil {
			return nil, err
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// mergeDotEnv applies values from a dotenv file for every variable that is
// not already set in the process environment.
func mergeDotEnv(v *viper.Viper, path string) error {
	d := viper.New()
	d.SetConfigFile(path)
	d.SetConfigType("env")
	if err := d.ReadInConfig(); err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}

	for key, env := range envKeys {
		if _, set := os.LookupEnv(env); set {
			continue
		}
		name := strings.ToLower(env)
		if d.IsSet(name) {
			v.Set(key, d.Get(name))
		}
	}
	return nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	var pathErr *os.PathError
	return errors.As(err, &pathErr) && errors.Is(pathErr.Err, os.ErrNotExist)
}

// Validate reports missing or out of range settings.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Notion.APIKey == "" {
		errs = append(errs, errors.New("notion API key is not set (NOTION_API_KEY or `notionmail login`)"))
	}
	if c.Notion.DatabaseID == "" {
		errs = append(errs, errors.New("notion database id is not set (NOTION_DATABASE_ID)"))
	}
	if c.Notion.PageSize < 1 || c.Notion.PageSize > 100 {
		errs = append(errs, fmt.Errorf("page size %d out of range 1..100", c.Notion.PageSize))
	}
	if c.Notion.TimeoutSec < 0 {
		errs = append(errs, fmt.Errorf("timeout %ds must not be negative", c.Notion.TimeoutSec))
	}
	return errors.Join(errs...)
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed. The API key is never written.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("notion.database_id", cfg.Notion.DatabaseID)
	v.Set("notion.base_url", cfg.Notion.BaseURL)
	v.Set("notion.version", cfg.Notion.Version)
	v.Set("notion.page_size", cfg.Notion.PageSize)
	v.Set("notion.timeout_sec", cfg.Notion.TimeoutSec)
	v.Set("notion.max_retries", cfg.Notion.MaxRetries)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
