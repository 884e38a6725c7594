package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: ROUTEYE_DATABASE_HOST sets database.host.
const EnvPrefix = "ROUTEYE"

// Config is the configuration shared by every routeye binary.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Google    GoogleConfig    `mapstructure:"google"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Editor    EditorConfig    `mapstructure:"editor"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string { return ":" + strconv.Itoa(s.Port) }

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// DSN renders a postgres URL with user and password escaped.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + strconv.Itoa(d.Port),
		Path:     "/" + d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// GoogleConfig configures the routing and geocoding clients.
type GoogleConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	RoutesURL  string        `mapstructure:"routes_url"`
	GeocodeURL string        `mapstructure:"geocode_url"`
	QPS        float64       `mapstructure:"qps"`
	Burst      int           `mapstructure:"burst"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Language   string        `mapstructure:"language"`
	Region     string        `mapstructure:"region"`
}

// TemporalConfig configures the geozone provisioning workflow.
type TemporalConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// EditorConfig tunes editing sessions and the geozone catalog.
type EditorConfig struct {
	ComputeTimeout         time.Duration `mapstructure:"compute_timeout"`
	CatalogRefreshInterval time.Duration `mapstructure:"catalog_refresh_interval"`
	MaxWaypoints           int           `mapstructure:"max_waypoints"`
	InboxSize              int           `mapstructure:"inbox_size"`
}

func defaults(service string) map[string]any {
	return map[string]any{
		"server.port":                     8080,
		"server.read_timeout":             "10s",
		"server.write_timeout":            "10s",
		"server.shutdown_timeout":         "10s",
		"log.level":                       "info",
		"log.format":                      "json",
		"database.host":                   "localhost",
		"database.port":                   5432,
		"database.user":                   "routeye",
		"database.password":               "",
		"database.dbname":                 "routeye",
		"database.sslmode":                "disable",
		"database.max_conns":              20,
		"database.min_conns":              2,
		"database.max_conn_idle_time":     "5m",
		"nats.url":                        "nats://localhost:4222",
		"valkey.addr":                     "localhost:6379",
		"telemetry.service_name":          service,
		"telemetry.tempo_addr":            "tempo:4317",
		"telemetry.enabled":               true,
		"google.api_key":                  "",
		"google.routes_url":               "https://routes.googleapis.com",
		"google.geocode_url":              "https://maps.googleapis.com",
		"google.qps":                      10.0,
		"google.burst":                    5,
		"google.timeout":                  "10s",
		"google.language":                 "en",
		"google.region":                   "",
		"temporal.enabled":                false,
		"temporal.host_port":              "localhost:7233",
		"temporal.namespace":              "default",
		"temporal.task_queue":             "geozone-provisioning",
		"editor.compute_timeout":          "15s",
		"editor.catalog_refresh_interval": "5m",
		"editor.max_waypoints":            23,
		"editor.inbox_size":               64,
	}
}

// Load merges defaults, an optional config.yaml (./ or ./configs) and
// ROUTEYE_* environment variables, then validates the result.
func Load(service string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults(service) {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validPort(p int) bool { return p > 0 && p <= 65535 }

// Validate reports every problem at once, joined.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(validPort(c.Server.Port), "server.port must be 1-65535, got %d", c.Server.Port)
	check(c.Server.ReadTimeout > 0, "server.read_timeout must be positive")
	check(c.Server.WriteTimeout > 0, "server.write_timeout must be positive")
	check(c.Database.Host != "", "database.host is required")
	check(validPort(c.Database.Port), "database.port must be 1-65535, got %d", c.Database.Port)
	check(c.Database.User != "", "database.user is required")
	check(c.Database.DBName != "", "database.dbname is required")
	check(c.Database.MinConns <= c.Database.MaxConns, "database.min_conns exceeds database.max_conns")
	check(c.NATS.URL != "", "nats.url is required")
	check(c.Valkey.Addr != "", "valkey.addr is required")
	check(c.Google.QPS > 0, "google.qps must be positive")
	check(c.Google.Burst > 0, "google.burst must be positive")
	check(!c.Temporal.Enabled || c.Temporal.TaskQueue != "", "temporal.task_queue is required when temporal is enabled")
	check(c.Editor.ComputeTimeout > 0, "editor.compute_timeout must be positive")
	check(c.Editor.MaxWaypoints >= 0, "editor.max_waypoints must not be negative")
	check(c.Editor.InboxSize > 0, "editor.inbox_size must be positive")

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
