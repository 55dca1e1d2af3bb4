package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
)

const (
	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"

	SourcePostgres = "postgres"
	SourceSqlite   = "sqlite"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// reference timezone used to turn instants into calendar days
	Timezone string `toml:"timezone"`
	// measurement source
	MeasurementSource string `toml:"measurement_source"`
	PostgresHost      string `toml:"postgres_host"`
	PostgresPort      string `toml:"postgres_port"`
	PostgresDBName    string `toml:"postgres_db_name"`
	SqlitePath        string `toml:"sqlite_path"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// series cache
	CacheBackend   string `toml:"cache_backend"`
	CacheTTL       string `toml:"cache_ttl"`
	CacheSizeBytes int    `toml:"cache_size_bytes"`
	// overlay chart
	OverlaySpacingUnit float64  `toml:"overlay_spacing_unit"`
	OverlayMetricOrder []string `toml:"overlay_metric_order"`
	// http
	AllowedOrigins          []string `toml:"allowed_origins"`
	MeasurementsRateLimit   int      `toml:"measurements_rate_limit_per_min"`
	PrometheusMetricsHost   string   `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort   string   `toml:"prometheus_metrics_port"`
	HoneycombTracingEnabled bool     `toml:"honeycomb_tracing_enabled"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}

	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	if cfg.Environment == "" {
		cfg.Environment = strings.ToLower(env)
	}
	cfg.applyDefaults()

	return cfg, cfg.Validate()
}

// Load reads the TOML file at path and returns the section for env.
func Load(env, path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(env, string(raw))
}

func Parse(env, raw string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(raw, &t); err != nil {
		return nil, fmt.Errorf("decode toml config: %w", err)
	}
	return t.Get(env)
}

func (c *Config) applyDefaults() {
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.MeasurementSource == "" {
		c.MeasurementSource = SourcePostgres
	}
	if c.CacheBackend == "" {
		c.CacheBackend = CacheBackendMemory
	}
	if c.CacheTTL == "" {
		c.CacheTTL = "10m"
	}
	if c.CacheSizeBytes == 0 {
		c.CacheSizeBytes = 32 * 1024 * 1024
	}
	if c.OverlaySpacingUnit == 0 {
		c.OverlaySpacingUnit = 6
	}
	if len(c.OverlayMetricOrder) == 0 {
		c.OverlayMetricOrder = []string{"sleep", "energy", "mood", "stress", "soreness"}
	}
	if c.MeasurementsRateLimit == 0 {
		c.MeasurementsRateLimit = 60
	}
}

func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone [%s]: %w", c.Timezone, err)
	}
	if _, err := time.ParseDuration(c.CacheTTL); err != nil {
		return fmt.Errorf("invalid cache ttl [%s]: %w", c.CacheTTL, err)
	}
	switch c.CacheBackend {
	case CacheBackendNone, CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("unknown cache backend: %s", c.CacheBackend)
	}
	switch c.MeasurementSource {
	case SourcePostgres, SourceSqlite:
	default:
		return fmt.Errorf("unknown measurement source: %s", c.MeasurementSource)
	}
	if c.MeasurementSource == SourceSqlite && c.SqlitePath == "" {
		return fmt.Errorf("sqlite measurement source needs sqlite_path")
	}
	if c.OverlaySpacingUnit < 0 {
		return fmt.Errorf("overlay spacing unit must not be negative")
	}
	return nil
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) CacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 0
	}
	return d
}
