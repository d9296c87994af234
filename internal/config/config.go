package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	MarketData MarketDataConfig `mapstructure:"market_data"`
	Evaluator  EvaluatorConfig  `mapstructure:"evaluator"`
	Scanner    ScannerConfig    `mapstructure:"scanner"`
	Report     ReportConfig     `mapstructure:"report"`
	Notify     NotifyConfig     `mapstructure:"notify"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

type MarketDataConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Stream   StreamConfig  `mapstructure:"stream"`
}

type StreamConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type EvaluatorConfig struct {
	CronSpec              string `mapstructure:"cron_spec"`
	BarInterval           string `mapstructure:"bar_interval"`
	BarLimit              int    `mapstructure:"bar_limit"`
	DefaultHorizonMinutes int    `mapstructure:"default_horizon_minutes"`
}

type ScannerConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	CronSpec       string   `mapstructure:"cron_spec"`
	Symbols        []string `mapstructure:"symbols"`
	Interval       string   `mapstructure:"interval"`
	BarLimit       int      `mapstructure:"bar_limit"`
	RSIPeriod      int      `mapstructure:"rsi_period"`
	ATRPeriod      int      `mapstructure:"atr_period"`
	Oversold       float64  `mapstructure:"oversold"`
	Overbought     float64  `mapstructure:"overbought"`
	ATRMultiple    float64  `mapstructure:"atr_multiple"`
	HorizonMinutes int      `mapstructure:"horizon_minutes"`
}

type ReportConfig struct {
	CronSpec      string `mapstructure:"cron_spec"`
	WindowMinutes int    `mapstructure:"window_minutes"`
	MaxRows       int    `mapstructure:"max_rows"`
}

type NotifyConfig struct {
	TelegramToken  string        `mapstructure:"telegram_token"`
	TelegramChatID string        `mapstructure:"telegram_chat_id"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "data/sigtrack.db")
	v.SetDefault("db.max_open_conns", 1)
	v.SetDefault("db.max_idle_conns", 1)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("market_data.base_url", "https://api.binance.com")
	v.SetDefault("market_data.timeout", "15s")
	v.SetDefault("market_data.cache_ttl", "45s")
	v.SetDefault("market_data.stream.enabled", false)
	v.SetDefault("market_data.stream.url", "wss://stream.binance.com:9443/stream")
	v.SetDefault("evaluator.cron_spec", "@every 1m")
	v.SetDefault("evaluator.bar_interval", "5m")
	v.SetDefault("evaluator.bar_limit", 100)
	v.SetDefault("evaluator.default_horizon_minutes", 240)
	v.SetDefault("scanner.enabled", false)
	v.SetDefault("scanner.cron_spec", "@every 5m")
	v.SetDefault("scanner.symbols", []string{"BTCUSDT", "ETHUSDT"})
	v.SetDefault("scanner.interval", "1h")
	v.SetDefault("scanner.bar_limit", 200)
	v.SetDefault("scanner.rsi_period", 14)
	v.SetDefault("scanner.atr_period", 14)
	v.SetDefault("scanner.oversold", 30)
	v.SetDefault("scanner.overbought", 70)
	v.SetDefault("scanner.atr_multiple", 1.5)
	v.SetDefault("scanner.horizon_minutes", 240)
	v.SetDefault("report.cron_spec", "@every 1h")
	v.SetDefault("report.window_minutes", 1440)
	v.SetDefault("report.max_rows", 20)
	v.SetDefault("notify.timeout", "10s")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
