package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"crypto-price-tracker/internal/alerting"
	"crypto-price-tracker/internal/logging"
	"crypto-price-tracker/internal/rules"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Tracker   TrackerConfig   `mapstructure:"tracker"`
	CoinGecko CoinGeckoConfig `mapstructure:"coingecko"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	Chart     ChartConfig     `mapstructure:"chart"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// TrackerConfig governs the refresh loop and market view.
type TrackerConfig struct {
	QuoteCurrency string        `mapstructure:"quote_currency"`
	TopN          int           `mapstructure:"top_n"`
	Refresh       time.Duration `mapstructure:"refresh"`
}

// CoinGeckoConfig covers market data access.
type CoinGeckoConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// AlertingConfig defines alert rules and email routing.
type AlertingConfig struct {
	Email alerting.EmailConfig `mapstructure:"email"`
	Rules []RuleConfig         `mapstructure:"rules"`
}

// RuleConfig is the file/env representation of one alert rule. The operator is
// carried as its literal form (">=" or "<=").
type RuleConfig struct {
	CoinID    string  `mapstructure:"coin_id"`
	Symbol    string  `mapstructure:"symbol"`
	Op        string  `mapstructure:"op"`
	Threshold float64 `mapstructure:"threshold"`
	Email     bool    `mapstructure:"email"`
}

// ChartConfig sets chart rendering behaviour.
type ChartConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CRYPTOTRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindLegacyEnv(v)
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// bindLegacyEnv keeps the SMTP_* variable names earlier deployments used.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("alerting.email.host", "CRYPTOTRACKER_ALERTING_EMAIL_HOST", "SMTP_HOST")
	_ = v.BindEnv("alerting.email.port", "CRYPTOTRACKER_ALERTING_EMAIL_PORT", "SMTP_PORT")
	_ = v.BindEnv("alerting.email.username", "CRYPTOTRACKER_ALERTING_EMAIL_USERNAME", "SMTP_USER")
	_ = v.BindEnv("alerting.email.password", "CRYPTOTRACKER_ALERTING_EMAIL_PASSWORD", "SMTP_PASS")
	_ = v.BindEnv("alerting.email.recipient", "CRYPTOTRACKER_ALERTING_EMAIL_RECIPIENT", "ALERT_TO")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "cryptotracker")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("tracker.quote_currency", "usd")
	v.SetDefault("tracker.top_n", 100)
	v.SetDefault("tracker.refresh", "60s")

	v.SetDefault("coingecko.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("coingecko.request_timeout", "20s")
	v.SetDefault("coingecko.user_agent", "cryptotracker/1.0")

	v.SetDefault("alerting.email.port", 587)

	v.SetDefault("chart.width", 1280)
	v.SetDefault("chart.height", 720)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		// Env values arrive as strings; SMTP_PORT must still land in an int.
		dc.WeaklyTypedInput = true
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Tracker.Refresh <= 0 {
		return fmt.Errorf("tracker.refresh must be greater than zero")
	}
	if c.Tracker.TopN <= 0 {
		return fmt.Errorf("tracker.top_n must be greater than zero")
	}
	if c.Tracker.QuoteCurrency == "" {
		return fmt.Errorf("tracker.quote_currency must not be empty")
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("chart dimensions must be positive")
	}
	if _, err := c.Rules(); err != nil {
		return err
	}
	return nil
}

// Rules parses the configured alert rules. Rules are denominated in the
// tracker quote currency.
func (c *Config) Rules() ([]rules.Rule, error) {
	out := make([]rules.Rule, 0, len(c.Alerting.Rules))
	for i, rc := range c.Alerting.Rules {
		cmp, err := rules.ParseComparison(rc.Op)
		if err != nil {
			return nil, fmt.Errorf("alerting.rules[%d]: %w", i, err)
		}
		symbol := rc.Symbol
		if symbol == "" {
			symbol = rc.CoinID
		}
		rule, err := rules.New(rc.CoinID, symbol, cmp, decimal.NewFromFloat(rc.Threshold), c.Tracker.QuoteCurrency, rc.Email)
		if err != nil {
			return nil, fmt.Errorf("alerting.rules[%d]: %w", i, err)
		}
		out = append(out, rule)
	}
	return out, nil
}
