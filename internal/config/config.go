// Package config loads ox preferences from ~/.config/ox/config.toml.
// Environment variables with the OX_ prefix override file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ishibashi-futos/oxide-sub000/internal/update"
)

const (
	// DefaultRepo is the GitHub repository ox updates itself from.
	DefaultRepo = "ishibashi-futos/oxide"

	// ConfigDirEnv overrides the config directory.
	ConfigDirEnv = "OX_CONFIG_DIR"

	envPrefix = "OX"
)

// SelfUpdate holds the [self_update] table.
type SelfUpdate struct {
	Repo            string        `mapstructure:"repo"`
	AllowPrerelease bool          `mapstructure:"allow_prerelease"`
	AllowInsecure   bool          `mapstructure:"allow_insecure"`
	CAFile          string        `mapstructure:"ca_file"`
	APIURL          string        `mapstructure:"api_url"`
	CheckInterval   time.Duration `mapstructure:"check_interval"`
}

// Config holds user configuration for ox.
type Config struct {
	SelfUpdate SelfUpdate `mapstructure:"self_update"`
	CacheDir   string     `mapstructure:"cache_dir"`

	// Path of the file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// DefaultConfigDir returns ~/.config/ox, or $OX_CONFIG_DIR when set.
func DefaultConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "ox")
	}
	return filepath.Join(home, ".config", "ox")
}

// DefaultCacheDir returns the per-user cache directory for ox.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "ox-cache")
	}
	return filepath.Join(dir, "ox")
}

// Defaults returns the configuration used when no file or env is set.
func Defaults() Config {
	return Config{
		SelfUpdate: SelfUpdate{
			Repo:          DefaultRepo,
			APIURL:        update.DefaultAPIBaseURL,
			CheckInterval: update.DefaultCheckInterval,
		},
		CacheDir: DefaultCacheDir(),
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("self_update.repo", d.SelfUpdate.Repo)
	v.SetDefault("self_update.allow_prerelease", false)
	v.SetDefault("self_update.allow_insecure", false)
	v.SetDefault("self_update.ca_file", "")
	v.SetDefault("self_update.api_url", d.SelfUpdate.APIURL)
	v.SetDefault("self_update.check_interval", d.SelfUpdate.CheckInterval)
	v.SetDefault("cache_dir", d.CacheDir)
}

// Load reads configDir/config.toml and applies OX_* environment
// overrides. A missing file yields the defaults.
func Load(configDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the self-update pipeline cannot work with.
func (c *Config) Validate() error {
	repo := c.SelfUpdate.Repo
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("self_update.repo: %q is not in owner/name form", repo)
	}
	if c.SelfUpdate.CheckInterval < 0 {
		return fmt.Errorf("self_update.check_interval: must not be negative (got %s)", c.SelfUpdate.CheckInterval)
	}
	if c.SelfUpdate.CAFile != "" {
		if _, err := os.Stat(c.SelfUpdate.CAFile); err != nil {
			return fmt.Errorf("self_update.ca_file: %w", err)
		}
	}
	return nil
}

// UpdateConfig returns the request configuration for the self-update
// service.
func (c *Config) UpdateConfig() update.Config {
	return update.Config{
		Repo:            c.SelfUpdate.Repo,
		AllowPrerelease: c.SelfUpdate.AllowPrerelease,
		AllowInsecure:   c.SelfUpdate.AllowInsecure,
	}
}
