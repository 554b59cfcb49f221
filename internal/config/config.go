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
	Serper    SerperConfig    `yaml:"serper" mapstructure:"serper"`
	Tavily    TavilyConfig    `yaml:"tavily" mapstructure:"tavily"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Places    PlacesConfig    `yaml:"places" mapstructure:"places"`
	Overpass  OverpassConfig  `yaml:"overpass" mapstructure:"overpass"`
	Nominatim NominatimConfig `yaml:"nominatim" mapstructure:"nominatim"`
	Apollo    ApolloConfig    `yaml:"apollo" mapstructure:"apollo"`
	Notion    NotionConfig    `yaml:"notion" mapstructure:"notion"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Sourcing  SourcingConfig  `yaml:"sourcing" mapstructure:"sourcing"`
	Enrich    EnrichConfig    `yaml:"enrich" mapstructure:"enrich"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// SerperConfig holds Serper.dev search API settings.
type SerperConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// TavilyConfig holds Tavily search API settings.
type TavilyConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds Anthropic API settings. Models are tried in order;
// the first entry is the primary.
type AnthropicConfig struct {
	Key    string   `yaml:"key" mapstructure:"key"`
	Models []string `yaml:"models" mapstructure:"models"`
}

// PlacesConfig holds Google Places API settings.
type PlacesConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// OverpassConfig holds spatial query settings. Endpoints are mirrors tried
// round-robin on transient failure.
type OverpassConfig struct {
	Endpoints        []string `yaml:"endpoints" mapstructure:"endpoints"`
	QueryTimeoutSecs int      `yaml:"query_timeout_secs" mapstructure:"query_timeout_secs"`
	MaxParallel      int      `yaml:"max_parallel" mapstructure:"max_parallel"`
}

// NominatimConfig holds geocoder settings.
type NominatimConfig struct {
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
}

// ApolloConfig holds Apollo.io contact enrichment settings.
type ApolloConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// NotionConfig holds the Notion lead database settings.
type NotionConfig struct {
	Token  string `yaml:"token" mapstructure:"token"`
	LeadDB string `yaml:"lead_db" mapstructure:"lead_db"`
}

// StoreConfig configures the contact/company store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // sqlite | postgres
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// SourcingConfig configures the aggregator.
type SourcingConfig struct {
	CacheTTLMins     int `yaml:"cache_ttl_mins" mapstructure:"cache_ttl_mins"`
	MaxResults       int `yaml:"max_results" mapstructure:"max_results"`
	ConnectorTimeout int `yaml:"connector_timeout_secs" mapstructure:"connector_timeout_secs"`
}

// EnrichConfig configures the owner enrichment pipeline.
type EnrichConfig struct {
	SearchTimeoutSecs int `yaml:"search_timeout_secs" mapstructure:"search_timeout_secs"`
	SMTPTimeoutSecs   int `yaml:"smtp_timeout_secs" mapstructure:"smtp_timeout_secs"`
	BulkDelayMillis   int `yaml:"bulk_delay_millis" mapstructure:"bulk_delay_millis"`
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
	v.SetEnvPrefix("SOURCING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "sourcing.db")
	v.SetDefault("serper.base_url", "https://google.serper.dev")
	v.SetDefault("tavily.base_url", "https://api.tavily.com")
	v.SetDefault("anthropic.models", []string{
		"claude-sonnet-4-20250514",
		"claude-3-haiku-20240307",
	})
	v.SetDefault("places.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("places.rate_limit", 10)
	v.SetDefault("overpass.endpoints", []string{
		"https://maps.mail.ru/osm/tools/overpass/api/interpreter",
	})
	v.SetDefault("overpass.query_timeout_secs", 8)
	v.SetDefault("overpass.max_parallel", 25)
	v.SetDefault("nominatim.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("nominatim.user_agent", "sourcing-cli/1.0 (deal-sourcing)")
	v.SetDefault("apollo.base_url", "https://api.apollo.io/v1")
	v.SetDefault("sourcing.cache_ttl_mins", 30)
	v.SetDefault("sourcing.max_results", 300)
	v.SetDefault("sourcing.connector_timeout_secs", 30)
	v.SetDefault("enrich.search_timeout_secs", 15)
	v.SetDefault("enrich.smtp_timeout_secs", 5)
	v.SetDefault("enrich.bulk_delay_millis", 1500)

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
