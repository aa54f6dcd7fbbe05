package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Query    QueryConfig    `yaml:"query" mapstructure:"query"`
	Scrape   ScrapeConfig   `yaml:"scrape" mapstructure:"scrape"`
	Geocode  GeocodeConfig  `yaml:"geocode" mapstructure:"geocode"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// QueryConfig holds the static search parameters handed to every provider.
type QueryConfig struct {
	Location      string   `yaml:"location" mapstructure:"location"`
	RadiusMiles   int      `yaml:"radius_miles" mapstructure:"radius_miles"`
	MaxPrice      int64    `yaml:"max_price" mapstructure:"max_price"`
	Keywords      []string `yaml:"keywords" mapstructure:"keywords"`
	PropertyTypes []string `yaml:"property_types" mapstructure:"property_types"`
}

// ScrapeConfig configures provider fetching behavior.
type ScrapeConfig struct {
	Providers   []string `yaml:"providers" mapstructure:"providers"`
	UserAgent   string   `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int      `yaml:"max_retries" mapstructure:"max_retries"`
	CardDelayMS int      `yaml:"card_delay_ms" mapstructure:"card_delay_ms"`
	HostRPS     float64  `yaml:"host_rps" mapstructure:"host_rps"`
	Concurrency int      `yaml:"concurrency" mapstructure:"concurrency"`
}

// CardDelay returns the polite delay applied between listing cards within
// one provider.
func (c ScrapeConfig) CardDelay() time.Duration {
	return time.Duration(c.CardDelayMS) * time.Millisecond
}

// GeocodeConfig configures the Nominatim geocoder and its cache.
type GeocodeConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	RPS         float64 `yaml:"rps" mapstructure:"rps"`
	CacheDriver string  `yaml:"cache_driver" mapstructure:"cache_driver"`
	CachePath   string  `yaml:"cache_path" mapstructure:"cache_path"`
	DatabaseURL string  `yaml:"database_url" mapstructure:"database_url"`
}

// StoreConfig configures the file-backed dataset and favourites stores.
type StoreConfig struct {
	ListingsPath   string `yaml:"listings_path" mapstructure:"listings_path"`
	FavouritesPath string `yaml:"favourites_path" mapstructure:"favourites_path"`
}

// PipelineConfig configures aggregator behavior.
type PipelineConfig struct {
	// KeepOnEmpty skips replacing a non-empty dataset when every provider
	// returned zero rows. Off by default: a run's output fully replaces
	// the previous dataset.
	KeepOnEmpty bool `yaml:"keep_on_empty" mapstructure:"keep_on_empty"`
	TimeoutSecs int  `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ServerConfig configures the trigger HTTP server.
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
	v.SetEnvPrefix("LISTINGS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("query.location", "Stratford-upon-Avon, UK")
	v.SetDefault("query.radius_miles", 30)
	v.SetDefault("query.max_price", 600000)
	v.SetDefault("query.keywords", []string{"renovation", "modernisation"})
	v.SetDefault("query.property_types", []string{"houses", "land"})
	v.SetDefault("scrape.providers", []string{"rightmove", "zoopla", "onthemarket"})
	v.SetDefault("scrape.user_agent", "listings-cli/1.0")
	v.SetDefault("scrape.timeout_secs", 30)
	v.SetDefault("scrape.max_retries", 3)
	v.SetDefault("scrape.card_delay_ms", 500)
	v.SetDefault("scrape.host_rps", 2)
	v.SetDefault("scrape.concurrency", 3)
	v.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.user_agent", "listings-cli/1.0")
	v.SetDefault("geocode.rps", 1)
	v.SetDefault("geocode.cache_driver", "sqlite")
	v.SetDefault("geocode.cache_path", "geocode_cache.db")
	v.SetDefault("store.listings_path", "listings.csv")
	v.SetDefault("store.favourites_path", "favourites.csv")
	v.SetDefault("pipeline.keep_on_empty", false)
	v.SetDefault("pipeline.timeout_secs", 600)
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
