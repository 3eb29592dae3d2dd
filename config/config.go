package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the bot and the domain resolver
type Config struct {
	General  GeneralConfig  `mapstructure:"general"`
	Server   ServerConfig   `mapstructure:"server"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Session  SessionConfig  `mapstructure:"session"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// TelegramConfig contains the bot transport settings
type TelegramConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Token       string        `mapstructure:"token"`
	APIBaseURL  string        `mapstructure:"api_base_url"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
}

func (t TelegramConfig) Validate() error {
	if t.Enabled && t.Token == "" {
		return fmt.Errorf("telegram.token must be set when telegram is enabled")
	}
	return nil
}

// SessionConfig controls conversation session lifecycle
type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

func (s SessionConfig) Validate() error {
	if s.TTL <= 0 {
		return fmt.Errorf("session.ttl must be > 0")
	}
	if s.SweepInterval <= 0 {
		return fmt.Errorf("session.sweep_interval must be > 0")
	}
	return nil
}

// ResolverConfig controls the browser-driven domain resolution
type ResolverConfig struct {
	MaxRetries    int           `mapstructure:"max_retries"`
	RetryBackoff  time.Duration `mapstructure:"retry_backoff"`
	NavTimeout    time.Duration `mapstructure:"nav_timeout"`
	InitialSettle time.Duration `mapstructure:"initial_settle"`
	SettleTime    time.Duration `mapstructure:"settle_time"`
	ClickWait     time.Duration `mapstructure:"click_wait"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout"`
	VerifyTimeout time.Duration `mapstructure:"verify_timeout"`
	Cron          string        `mapstructure:"cron"`
	InitialDelay  time.Duration `mapstructure:"initial_delay"`
	UserAgent     string        `mapstructure:"user_agent"`
}

func (r ResolverConfig) Validate() error {
	if r.MaxRetries <= 0 {
		return fmt.Errorf("resolver.max_retries must be > 0")
	}
	if r.NavTimeout <= 0 {
		return fmt.Errorf("resolver.nav_timeout must be > 0")
	}
	return nil
}

// StorageConfig selects where resolved domains are persisted
type StorageConfig struct {
	Type        string      `mapstructure:"type"` // file or redis
	DomainsFile string      `mapstructure:"domains_file"`
	Redis       RedisConfig `mapstructure:"redis"`
}

// RedisConfig contains connection settings for the redis-backed domain store
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

func (s StorageConfig) Validate() error {
	switch s.Type {
	case "file":
		if s.DomainsFile == "" {
			return fmt.Errorf("storage.domains_file must be set for file storage")
		}
	case "redis":
		if s.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr must be set for redis storage")
		}
	default:
		return fmt.Errorf("unsupported storage.type: %s", s.Type)
	}
	return nil
}

func LoadConfig(path string) *Config {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("json")   // REQUIRED if the config file does not have the extension in the name
	setDefaults()

	if path == "" {
		viper.AddConfigPath("./config") // path to look for the config file in
		viper.AddConfigPath(".")        // optionally look for config in the working directory
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)                                // bin/
		viper.AddConfigPath(filepath.Join(exeDir, ".."))           // repo root
		viper.AddConfigPath(filepath.Join(exeDir, "..", "config")) // repo root/config
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("MOVIEBOT")
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	viper.AutomaticEnv() // read in environment variables that match (MOVIEBOT_*)

	if err := viper.ReadInConfig(); err != nil {
		// Defaults plus MOVIEBOT_* env vars cover everything except the bot
		// token, so a missing config file is not fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if err := config.Telegram.Validate(); err != nil {
		panic(err)
	}
	if err := config.Session.Validate(); err != nil {
		panic(err)
	}
	if err := config.Resolver.Validate(); err != nil {
		panic(err)
	}
	if err := config.Storage.Validate(); err != nil {
		panic(err)
	}
	return &config
}

func setDefaults() {
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("server.address", ":8000")
	viper.SetDefault("telegram.enabled", true)
	viper.SetDefault("telegram.api_base_url", "https://api.telegram.org")
	viper.SetDefault("telegram.poll_timeout", 30*time.Second)
	viper.SetDefault("telegram.send_timeout", 15*time.Second)
	viper.SetDefault("session.ttl", time.Hour)
	viper.SetDefault("session.sweep_interval", 30*time.Minute)
	viper.SetDefault("resolver.max_retries", 3)
	viper.SetDefault("resolver.retry_backoff", 2*time.Second)
	viper.SetDefault("resolver.nav_timeout", 30*time.Second)
	viper.SetDefault("resolver.initial_settle", 3*time.Second)
	viper.SetDefault("resolver.settle_time", 10*time.Second)
	viper.SetDefault("resolver.click_wait", 7*time.Second)
	viper.SetDefault("resolver.fetch_timeout", 10*time.Second)
	viper.SetDefault("resolver.verify_timeout", 10*time.Second)
	viper.SetDefault("resolver.cron", "0 */6 * * *")
	viper.SetDefault("resolver.initial_delay", 10*time.Second)
	viper.SetDefault("resolver.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36")
	viper.SetDefault("storage.type", "file")
	viper.SetDefault("storage.domains_file", "domains.json")
	viper.SetDefault("storage.redis.key", "moviebot:domains")
}
