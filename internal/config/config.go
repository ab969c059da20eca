package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jeanpaul/postdeck/internal/kv"
	"github.com/jeanpaul/postdeck/internal/logging"
)

type Config struct {
	Storage           StorageConfig  `yaml:"storage" mapstructure:"storage"`
	StrictPersistence bool           `yaml:"strict_persistence" mapstructure:"strict_persistence"`
	SeedSamples       bool           `yaml:"seed_samples" mapstructure:"seed_samples"`
	Theme             string         `yaml:"theme" mapstructure:"theme"`
	Log               logging.Config `yaml:"log" mapstructure:"log"`
}

type StorageConfig struct {
	Backend string      `yaml:"backend" mapstructure:"backend"`
	Dir     string      `yaml:"dir" mapstructure:"dir"`
	Redis   RedisConfig `yaml:"redis" mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Password string `yaml:"password" mapstructure:"password"`
	DB       int    `yaml:"db" mapstructure:"db"`
	Prefix   string `yaml:"prefix" mapstructure:"prefix"`
}

func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: "file",
			Dir:     kv.DefaultDir(),
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "postdeck:",
			},
		},
		SeedSamples: true,
		Theme:       "light",
		Log: logging.Config{
			Level:  "info",
			Format: "text",
		},
	}
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "postdeck")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "postdeck")
}

// Path is where the user config file is expected.
func Path() string {
	return filepath.Join(configDir(), "config.yaml")
}

// loadDotEnvs reads .env files from the working directory. Values already in
// the environment win.
func loadDotEnvs() {
	env := os.Getenv("POSTDECK_ENV")
	if env == "" {
		env = "dev"
	}
	_ = godotenv.Load(".env." + env + ".local")
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env." + env)
	_ = godotenv.Load(".env")
}

func Load() (*Config, error) {
	return load(".", configDir())
}

func load(paths ...string) (*Config, error) {
	loadDotEnvs()
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Defaults make every key visible to AutomaticEnv.
	v.SetDefault("storage.backend", cfg.Storage.Backend)
	v.SetDefault("storage.dir", cfg.Storage.Dir)
	v.SetDefault("storage.redis.addr", cfg.Storage.Redis.Addr)
	v.SetDefault("storage.redis.password", cfg.Storage.Redis.Password)
	v.SetDefault("storage.redis.db", cfg.Storage.Redis.DB)
	v.SetDefault("storage.redis.prefix", cfg.Storage.Redis.Prefix)
	v.SetDefault("strict_persistence", cfg.StrictPersistence)
	v.SetDefault("seed_samples", cfg.SeedSamples)
	v.SetDefault("theme", cfg.Theme)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.file", cfg.Log.File)

	// Environment variables
	v.SetEnvPrefix("POSTDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error produced
			return nil, err
		}
		// Config file not found; ignore and use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.Dir = expandHome(cfg.Storage.Dir)
	cfg.Log.File = expandHome(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}

// KVOptions converts the storage section for kv.Open.
func (c *Config) KVOptions() kv.Options {
	return kv.Options{
		Backend: c.Storage.Backend,
		Dir:     c.Storage.Dir,
		Redis: kv.RedisOptions{
			Addr:     c.Storage.Redis.Addr,
			Password: c.Storage.Redis.Password,
			DB:       c.Storage.Redis.DB,
			Prefix:   c.Storage.Redis.Prefix,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "file":
		if c.Storage.Dir == "" {
			return fmt.Errorf("config: storage.dir is required for the file backend")
		}
	case "redis":
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("config: storage.redis.addr is required for the redis backend")
		}
		if c.Storage.Redis.DB < 0 {
			return fmt.Errorf("config: storage.redis.db must not be negative")
		}
	case "memory":
	default:
		return fmt.Errorf("config: storage.backend %q is invalid (must be file, redis, or memory)", c.Storage.Backend)
	}
	switch strings.ToLower(c.Theme) {
	case "light", "dark":
	default:
		return fmt.Errorf("config: theme %q is invalid (must be light or dark)", c.Theme)
	}
	return nil
}
