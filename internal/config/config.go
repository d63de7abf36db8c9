package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file configuration.
const (
	EnvConfigPath    = "CONFIG_PATH"
	EnvDBConnection  = "DB_CONNECTION"
	EnvSessionSecret = "SESSION_SECRET"
	EnvSMTPUsername  = "SMTP_USERNAME"
	EnvSMTPPassword  = "SMTP_PASSWORD"
)

// SessionConfig holds cookie-session settings.
type SessionConfig struct {
	Secret     string `yaml:"secret"`
	CookieName string `yaml:"cookie-name"`
}

// MailConfig holds upgrade-code delivery settings.
type MailConfig struct {
	// Provider selects the delivery channel: "console" or "smtp".
	Provider string `yaml:"provider"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	FromName string `yaml:"from-name"`
}

// WeatherConfig holds upstream endpoints for the weather lookup.
type WeatherConfig struct {
	GeocodeURL  string `yaml:"geocode-url"`
	ForecastURL string `yaml:"forecast-url"`
}

// MarketConfig holds upstream endpoints for the market dashboard.
type MarketConfig struct {
	GoldURL         string `yaml:"gold-url"`
	ForexURL        string `yaml:"forex-url"`
	HistoryURL      string `yaml:"history-url"`
	DefaultCurrency string `yaml:"default-currency"`
}

// Config is the full application configuration.
type Config struct {
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	DatabaseDSN string        `yaml:"database-dsn"`
	Debug       bool          `yaml:"debug"`
	// UpstreamTimeout bounds every third-party API call.
	UpstreamTimeout time.Duration `yaml:"upstream-timeout"`
	Session         SessionConfig `yaml:"session"`
	Mail            MailConfig    `yaml:"mail"`
	Weather         WeatherConfig `yaml:"weather"`
	Market          MarketConfig  `yaml:"market"`
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// Default returns the configuration used when the config file omits fields.
func Default() Config {
	return Config{
		Port:            5003,
		DatabaseDSN:     "file:portfolio.db",
		UpstreamTimeout: 10 * time.Second,
		Session: SessionConfig{
			CookieName: "portfolio_session",
		},
		Mail: MailConfig{
			Provider: "console",
			Port:     587,
			From:     "noreply@ase-portfolio.com",
			FromName: "ASE Portfolio",
		},
		Weather: WeatherConfig{
			GeocodeURL:  "https://geocoding-api.open-meteo.com/v1/search",
			ForecastURL: "https://api.open-meteo.com/v1/forecast",
		},
		Market: MarketConfig{
			GoldURL:         "https://api.gold-api.com/price/XAU",
			ForexURL:        "https://open.er-api.com/v6/latest/USD",
			HistoryURL:      "https://api.coingecko.com/api/v3/coins/pax-gold/market_chart",
			DefaultCurrency: "AED",
		},
	}
}

// Load reads the YAML config file and applies env overrides. A missing file
// is not an error; defaults plus environment variables still apply.
func Load(configPath string) (Config, error) {
	cfg := Default()

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return Config{}, fmt.Errorf("parse config file: %w", errUnmarshal)
		}
	} else if !os.IsNotExist(errRead) {
		return Config{}, fmt.Errorf("read config file: %w", errRead)
	}

	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		cfg.DatabaseDSN = dsn
	}
	if secret := strings.TrimSpace(os.Getenv(EnvSessionSecret)); secret != "" {
		cfg.Session.Secret = secret
	}
	if username := strings.TrimSpace(os.Getenv(EnvSMTPUsername)); username != "" {
		cfg.Mail.Username = username
	}
	if password := strings.TrimSpace(os.Getenv(EnvSMTPPassword)); password != "" {
		cfg.Mail.Password = password
	}

	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = 10 * time.Second
	}
	if cfg.Port <= 0 {
		cfg.Port = 5003
	}
	if strings.TrimSpace(cfg.Session.CookieName) == "" {
		cfg.Session.CookieName = "portfolio_session"
	}
	return cfg, nil
}
