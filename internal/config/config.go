// Package config loads service configuration from defaults, an optional YAML file
// and environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/activity_service/config.yaml",
}

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	HTTP     HTTPConfig     `koanf:"http"`
	Overpass OverpassConfig `koanf:"overpass"`
	Roads    RoadsConfig    `koanf:"roads"`
	Weather  WeatherConfig  `koanf:"weather"`
	Geocode  GeocodeConfig  `koanf:"geocode"`
	Search   SearchConfig   `koanf:"search"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// HTTPConfig is the shared outbound client policy (basic retry only).
type HTTPConfig struct {
	UserAgent    string        `koanf:"user_agent"`
	RetryMax     int           `koanf:"retry_max"`
	RetryWaitMin time.Duration `koanf:"retry_wait_min"`
	RetryWaitMax time.Duration `koanf:"retry_wait_max"`
}

type OverpassConfig struct {
	URL              string        `koanf:"url"`
	Timeout          time.Duration `koanf:"timeout"`
	MaxParallel      int           `koanf:"max_parallel"`
	MinInterval      time.Duration `koanf:"min_interval"`
	FailureThreshold uint32        `koanf:"failure_threshold"`
	BreakerTimeout   time.Duration `koanf:"breaker_timeout"`
}

// RoadsConfig selects where major-road samples come from: "overpass" or "postgis".
type RoadsConfig struct {
	Source      string `koanf:"source"`
	PostgresURL string `koanf:"postgres_url"`
}

type WeatherConfig struct {
	OWMURL    string        `koanf:"owm_url"`
	OWMAPIKey string        `koanf:"owm_api_key"`
	Timeout   time.Duration `koanf:"timeout"`
}

// GeocodeConfig selects the geocoder: "nominatim" or "google".
type GeocodeConfig struct {
	Provider     string        `koanf:"provider"`
	NominatimURL string        `koanf:"nominatim_url"`
	MapsAPIKey   string        `koanf:"maps_api_key"`
	Timeout      time.Duration `koanf:"timeout"`
}

type SearchConfig struct {
	DefaultRadiusKm float64 `koanf:"default_radius_km"`
	MinRadiusKm     float64 `koanf:"min_radius_km"`
	MaxRadiusKm     float64 `koanf:"max_radius_km"`
	DefaultLimit    int     `koanf:"default_limit"`
	MaxLimit        int     `koanf:"max_limit"`
	DefaultTimezone string  `koanf:"default_timezone"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		HTTP: HTTPConfig{
			UserAgent:    "HealthSensitiveActivityFinder/3.1 (contact: contact@example.com)",
			RetryMax:     3,
			RetryWaitMin: 500 * time.Millisecond,
			RetryWaitMax: 5 * time.Second,
		},
		Overpass: OverpassConfig{
			URL:              "https://overpass-api.de/api/interpreter",
			Timeout:          60 * time.Second,
			MaxParallel:      2,
			MinInterval:      600 * time.Millisecond,
			FailureThreshold: 5,
			BreakerTimeout:   30 * time.Second,
		},
		Roads: RoadsConfig{
			Source: "overpass",
		},
		Weather: WeatherConfig{
			OWMURL:  "https://api.openweathermap.org/data/3.0/onecall",
			Timeout: 30 * time.Second,
		},
		Geocode: GeocodeConfig{
			Provider:     "nominatim",
			NominatimURL: "https://nominatim.openstreetmap.org/search",
			Timeout:      30 * time.Second,
		},
		Search: SearchConfig{
			DefaultRadiusKm: 10,
			MinRadiusKm:     2,
			MaxRadiusKm:     30,
			DefaultLimit:    50,
			MaxLimit:        500,
			DefaultTimezone: "America/New_York",
		},
	}
}

// Load builds the configuration: defaults, then the config file, then env vars.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envMappings maps environment variables to config keys. Variables not listed are ignored.
var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"log_level":             "logging.level",
	"log_format":            "logging.format",
	"log_caller":            "logging.caller",
	"http_user_agent":       "http.user_agent",
	"http_retry_max":        "http.retry_max",
	"overpass_url":          "overpass.url",
	"overpass_timeout":      "overpass.timeout",
	"overpass_max_parallel": "overpass.max_parallel",
	"overpass_min_interval": "overpass.min_interval",
	"roads_source":          "roads.source",
	"postgres_url":          "roads.postgres_url",
	"owm_url":               "weather.owm_url",
	"owm_api_key":           "weather.owm_api_key",
	"geocode_provider":      "geocode.provider",
	"nominatim_url":         "geocode.nominatim_url",
	"maps_api_key":          "geocode.maps_api_key",
	"search_max_radius_km":  "search.max_radius_km",
	"search_max_results":    "search.max_limit",
	"default_timezone":      "search.default_timezone",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Overpass.URL == "" {
		return fmt.Errorf("overpass.url is required")
	}
	if c.Overpass.MaxParallel < 1 {
		return fmt.Errorf("overpass.max_parallel must be positive")
	}
	switch c.Roads.Source {
	case "overpass":
	case "postgis":
		if c.Roads.PostgresURL == "" {
			return fmt.Errorf("roads.postgres_url is required when roads.source is postgis")
		}
	default:
		return fmt.Errorf("roads.source must be overpass or postgis, got %q", c.Roads.Source)
	}
	switch c.Geocode.Provider {
	case "nominatim":
	case "google":
		if c.Geocode.MapsAPIKey == "" {
			return fmt.Errorf("geocode.maps_api_key is required when geocode.provider is google")
		}
	default:
		return fmt.Errorf("geocode.provider must be nominatim or google, got %q", c.Geocode.Provider)
	}
	s := c.Search
	if s.MinRadiusKm <= 0 || s.MinRadiusKm > s.MaxRadiusKm {
		return fmt.Errorf("search radius bounds are invalid: min=%g max=%g", s.MinRadiusKm, s.MaxRadiusKm)
	}
	if s.DefaultRadiusKm < s.MinRadiusKm || s.DefaultRadiusKm > s.MaxRadiusKm {
		return fmt.Errorf("search.default_radius_km must be within [%g, %g]", s.MinRadiusKm, s.MaxRadiusKm)
	}
	if s.DefaultLimit <= 0 || s.DefaultLimit > s.MaxLimit {
		return fmt.Errorf("search.default_limit must be within [1, %d]", s.MaxLimit)
	}
	if _, err := time.LoadLocation(s.DefaultTimezone); err != nil {
		return fmt.Errorf("search.default_timezone: %w", err)
	}
	return nil
}
