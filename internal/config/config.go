package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName    string `mapstructure:"app_name"`
	Env        string `mapstructure:"app_env"`
	LogLevel   string `mapstructure:"log_level"`
	ListenAddr string `mapstructure:"listen_addr"`
	SitesFile  string `mapstructure:"sites_file"`

	RequestTimeoutSeconds   int64         `mapstructure:"request_timeout_seconds"`
	DateFetchTimeoutSeconds int64         `mapstructure:"date_fetch_timeout_seconds"`
	RequestDelayMs          int64         `mapstructure:"request_delay_ms"`
	RequestTimeout          time.Duration `mapstructure:"-"`
	DateFetchTimeout        time.Duration `mapstructure:"-"`
	RequestDelay            time.Duration `mapstructure:"-"`

	MaxWorkers        int    `mapstructure:"max_workers"`
	MaxPages          int    `mapstructure:"max_pages"`
	NewsPerPage       int    `mapstructure:"news_per_page"`
	DateRangeDays     int    `mapstructure:"date_range_days"`
	MaxConsecutiveOld int    `mapstructure:"max_consecutive_old"`
	UserAgent         string `mapstructure:"user_agent"`

	// ScrapeCron, when non-empty, schedules periodic background runs.
	ScrapeCron string `mapstructure:"scrape_cron"`
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "burdur-news-hub")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("sites_file", "./configs/sites.yaml")
	v.SetDefault("request_timeout_seconds", 15)
	v.SetDefault("date_fetch_timeout_seconds", 5)
	v.SetDefault("request_delay_ms", 300)
	v.SetDefault("max_workers", 10)
	v.SetDefault("max_pages", 6)
	v.SetDefault("news_per_page", 12)
	v.SetDefault("date_range_days", 1)
	v.SetDefault("max_consecutive_old", 3)
	v.SetDefault("user_agent", defaultUserAgent)
	v.SetDefault("scrape_cron", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.RequestTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	if cfg.DateFetchTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid date_fetch_timeout_seconds (must be positive seconds)")
	}
	if cfg.RequestDelayMs < 0 {
		return nil, fmt.Errorf("invalid request_delay_ms (must not be negative)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	cfg.DateFetchTimeout = time.Duration(cfg.DateFetchTimeoutSeconds) * time.Second
	cfg.RequestDelay = time.Duration(cfg.RequestDelayMs) * time.Millisecond

	if cfg.MaxWorkers <= 0 {
		return nil, fmt.Errorf("invalid max_workers (must be positive)")
	}
	if cfg.MaxPages <= 0 {
		return nil, fmt.Errorf("invalid max_pages (must be positive)")
	}
	if cfg.NewsPerPage <= 0 {
		return nil, fmt.Errorf("invalid news_per_page (must be positive)")
	}
	if cfg.DateRangeDays < 0 {
		return nil, fmt.Errorf("invalid date_range_days (must not be negative)")
	}
	if cfg.MaxConsecutiveOld <= 0 {
		return nil, fmt.Errorf("invalid max_consecutive_old (must be positive)")
	}

	return &cfg, nil
}
