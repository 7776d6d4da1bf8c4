package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	OddsAPI     OddsAPIConfig     `yaml:"oddsapi" mapstructure:"oddsapi"`
	PrizePicks  PrizePicksConfig  `yaml:"prizepicks" mapstructure:"prizepicks"`
	Balldontlie BalldontlieConfig `yaml:"balldontlie" mapstructure:"balldontlie"`
	Pipeline    PipelineConfig    `yaml:"pipeline" mapstructure:"pipeline"`
	Alert       AlertConfig       `yaml:"alert" mapstructure:"alert"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// OddsAPIConfig holds The Odds API settings.
type OddsAPIConfig struct {
	Key     string   `yaml:"key" mapstructure:"key"`
	BaseURL string   `yaml:"base_url" mapstructure:"base_url"`
	Sport   string   `yaml:"sport" mapstructure:"sport"`
	Regions []string `yaml:"regions" mapstructure:"regions"`
	Markets []string `yaml:"markets" mapstructure:"markets"`
	// RPS throttles requests per second against the API quota.
	RPS float64 `yaml:"rps" mapstructure:"rps"`
}

// PrizePicksConfig holds PrizePicks board settings.
type PrizePicksConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	LeagueID string `yaml:"league_id" mapstructure:"league_id"`
}

// BalldontlieConfig holds the historical stats API settings.
type BalldontlieConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// CacheTTLHours bounds how long fetched game logs are reused.
	CacheTTLHours int `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// PipelineConfig configures the core run behavior.
type PipelineConfig struct {
	WindowN          int     `yaml:"window_n" mapstructure:"window_n"`
	Method           string  `yaml:"method" mapstructure:"method"`
	EdgeThreshold    float64 `yaml:"edge_threshold" mapstructure:"edge_threshold"`
	MinMatchScore    float64 `yaml:"min_match_score" mapstructure:"min_match_score"`
	FetchTimeoutSecs int     `yaml:"fetch_timeout_secs" mapstructure:"fetch_timeout_secs"`
}

// AlertConfig configures high-value prop notifications.
type AlertConfig struct {
	MinEdge        float64 `yaml:"min_edge" mapstructure:"min_edge"`
	TelegramToken  string  `yaml:"telegram_token" mapstructure:"telegram_token"`
	TelegramChatID string  `yaml:"telegram_chat_id" mapstructure:"telegram_chat_id"`
	DiscordWebhook string  `yaml:"discord_webhook" mapstructure:"discord_webhook"`
}

// StoreConfig configures the pick-log backend.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // sqlite | postgres
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// ServerConfig configures the read-only picks API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PRIMEPROP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Secrets default to empty so env-only values survive Unmarshal.
	v.SetDefault("oddsapi.key", "")
	v.SetDefault("oddsapi.base_url", "https://api.the-odds-api.com")
	v.SetDefault("oddsapi.sport", "basketball_nba")
	v.SetDefault("oddsapi.regions", []string{"us"})
	v.SetDefault("oddsapi.markets", []string{
		"player_points", "player_rebounds", "player_assists",
	})
	v.SetDefault("oddsapi.rps", 2.0)
	v.SetDefault("prizepicks.enabled", false)
	v.SetDefault("prizepicks.base_url", "https://api.prizepicks.com")
	v.SetDefault("prizepicks.league_id", "7") // NBA
	v.SetDefault("balldontlie.key", "")
	v.SetDefault("balldontlie.base_url", "https://api.balldontlie.io/v1")
	v.SetDefault("balldontlie.cache_ttl_hours", 24)
	v.SetDefault("pipeline.window_n", 10)
	v.SetDefault("pipeline.method", "weighted")
	v.SetDefault("pipeline.edge_threshold", 0.05)
	v.SetDefault("pipeline.min_match_score", 0.8)
	v.SetDefault("pipeline.fetch_timeout_secs", 15)
	v.SetDefault("alert.min_edge", 0.05)
	v.SetDefault("alert.telegram_token", "")
	v.SetDefault("alert.telegram_chat_id", "")
	v.SetDefault("alert.discord_webhook", "")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "primeprop.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
