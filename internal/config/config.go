// Package config loads service configuration from built-in defaults, an
// optional config.yml and environment variables, in increasing precedence.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/geosmoke/geosmoke/internal/database"
)

//go:embed defaults.yml
var defaults []byte

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Geolocation providers.
const (
	GeoNone   = "none"
	GeoIPAPI  = "ipapi"
	GeoStatic = "static"
)

// Config is the service configuration.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Store       StoreConfig       `mapstructure:"store"`
	DB          DBConfig          `mapstructure:"db"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	OTel        OTelConfig        `mapstructure:"otel"`
	Geolocation GeolocationConfig `mapstructure:"geolocation"`
	PubSub      PubSubConfig      `mapstructure:"pubsub"`
	CORS        CORSConfig        `mapstructure:"cors"`
}

type AppConfig struct {
	Name       string `mapstructure:"name"`
	Env        string `mapstructure:"env"`
	Port       string `mapstructure:"port"`
	RequireTLS bool   `mapstructure:"require_tls"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver      string `mapstructure:"driver"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	SeedOnStart bool   `mapstructure:"seed_on_start"`
}

type DBConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type JWTConfig struct {
	SigningKey string `mapstructure:"signing_key"`
	Issuer     string `mapstructure:"issuer"`
	Audience   string `mapstructure:"audience"`
}

type OTelConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// GeolocationConfig selects how a caller's position is found when the
// request carries none.
type GeolocationConfig struct {
	Provider  string        `mapstructure:"provider"`
	BaseURL   string        `mapstructure:"base_url"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
	Timeout   time.Duration `mapstructure:"timeout"`
	StaticLat float64       `mapstructure:"static_lat"`
	StaticLon float64       `mapstructure:"static_lon"`
}

type PubSubConfig struct {
	ProjectID    string `mapstructure:"project_id"`
	Subscription string `mapstructure:"subscription"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// envBindings maps configuration keys to environment variables.
var envBindings = map[string]string{
	"app.name":               "APP_NAME",
	"app.env":                "APP_ENV",
	"app.port":               "APP_PORT",
	"app.require_tls":        "REQUIRE_TLS",
	"store.driver":           "STORE_DRIVER",
	"store.sqlite_path":      "SQLITE_PATH",
	"store.seed_on_start":    "SEED_ON_START",
	"db.host":                "DB_HOST",
	"db.port":                "DB_PORT",
	"db.user":                "DB_USER",
	"db.password":            "DB_PASSWORD",
	"db.name":                "DB_NAME",
	"db.sslmode":             "DB_SSLMODE",
	"db.max_conns":           "DB_MAX_CONNS",
	"db.min_conns":           "DB_MIN_CONNS",
	"db.conn_max_lifetime":   "DB_CONN_MAX_LIFETIME",
	"jwt.signing_key":        "JWT_SIGNING_KEY",
	"jwt.issuer":             "JWT_ISSUER",
	"jwt.audience":           "JWT_AUDIENCE",
	"otel.enabled":           "OTEL_ENABLED",
	"otel.endpoint":          "OTEL_EXPORTER_OTLP_ENDPOINT",
	"otel.insecure":          "OTEL_EXPORTER_OTLP_INSECURE",
	"otel.sample_ratio":      "OTEL_TRACES_SAMPLER_ARG",
	"geolocation.provider":   "GEOLOCATION_PROVIDER",
	"geolocation.base_url":   "GEOLOCATION_BASE_URL",
	"geolocation.cache_ttl":  "GEOLOCATION_CACHE_TTL",
	"geolocation.timeout":    "GEOLOCATION_TIMEOUT",
	"geolocation.static_lat": "GEOLOCATION_STATIC_LAT",
	"geolocation.static_lon": "GEOLOCATION_STATIC_LON",
	"pubsub.project_id":      "PUBSUB_PROJECT_ID",
	"pubsub.subscription":    "PUBSUB_SUBSCRIPTION",
	"cors.allowed_origins":   "CORS_ALLOWED_ORIGINS",
}

// Load reads the configuration. configDirs are searched for config.yml; a
// missing file is not an error.
func Load(configDirs ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("read default config: %w", err)
	}

	if len(configDirs) > 0 {
		v.SetConfigName("config")
		for _, dir := range configDirs {
			v.AddConfigPath(dir)
		}
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	cfg.Geolocation.Provider = strings.ToLower(strings.TrimSpace(cfg.Geolocation.Provider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDotenv loads environment variables from the given files, or .env when
// none are named. Missing files are ignored and existing variables win.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Validate checks settings that would otherwise fail late at startup.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case DriverMemory, DriverPostgres:
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}

	switch c.Geolocation.Provider {
	case GeoNone, GeoIPAPI:
	case GeoStatic:
		lat, lon := c.Geolocation.StaticLat, c.Geolocation.StaticLon
		if math.Abs(lat) > 90 || math.Abs(lon) > 180 {
			errs = append(errs, errors.New("static geolocation coordinates out of range"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown GEOLOCATION_PROVIDER %q", c.Geolocation.Provider))
	}

	if c.IsProduction() && c.JWT.SigningKey == "" {
		errs = append(errs, errors.New("JWT_SIGNING_KEY is required in production"))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Database returns the PostgreSQL connection settings.
func (c *Config) Database() database.Config {
	return database.Config{
		Host:            c.DB.Host,
		Port:            c.DB.Port,
		User:            c.DB.User,
		Password:        c.DB.Password,
		Database:        c.DB.Name,
		SSLMode:         c.DB.SSLMode,
		MaxOpenConns:    c.DB.MaxConns,
		MaxIdleConns:    c.DB.MinConns,
		ConnMaxLifetime: c.DB.ConnMaxLifetime,
	}
}
