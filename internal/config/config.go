package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Supported values of database.driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongoDB  = "mongodb"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host      string          `koanf:"host"`
	Port      int             `koanf:"port"`
	Mode      string          `koanf:"mode"`
	Timeout   string          `koanf:"timeout"`
	CORS      CORSConfig      `koanf:"cors"`
	RequestID RequestIDConfig `koanf:"request_id"`
}

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

// RequestIDConfig controls whether an incoming X-Request-ID is reused.
type RequestIDConfig struct {
	TrustUpstream bool `koanf:"trust_upstream"`
}

// DatabaseConfig selects the contact store and holds its connection settings.
type DatabaseConfig struct {
	Driver   string         `koanf:"driver"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
	MongoDB  MongoConfig    `koanf:"mongodb"`
	Pool     PoolConfig     `koanf:"pool"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// MongoConfig holds MongoDB settings.
type MongoConfig struct {
	URI            string `koanf:"uri"`
	Database       string `koanf:"database"`
	Collection     string `koanf:"collection"`
	ConnectTimeout string `koanf:"connect_timeout"`
}

// PoolConfig holds connection pool settings. MaxOpenConns doubles as the
// MongoDB client's maximum pool size.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// Load reads configuration from a YAML file and overlays environment variables.
// Environment variables use the prefix "APP__" and double-underscore as the
// hierarchy separator. Single underscores are preserved as part of the key name.
// For example, APP__DATABASE__DRIVER=mongodb overrides database.driver and
// APP__DATABASE__MONGODB__CONNECT_TIMEOUT=5s overrides database.mongodb.connect_timeout.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	// APP__SERVER__PORT -> server.port
	if err := k.Load(env.Provider("APP__", ".", func(s string) string {
		key := strings.TrimPrefix(s, "APP__")
		key = strings.ToLower(key)
		key = strings.ReplaceAll(key, "__", ".")
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints and supported values. It normalizes
// the config in place: surrounding whitespace is trimmed and defaults are
// filled for optional fields.
func (c *Config) Validate() error {
	if err := c.Server.validate(); err != nil {
		return err
	}
	if err := c.Database.validate(c.Server.Mode); err != nil {
		return err
	}
	if err := c.Log.validate(); err != nil {
		return err
	}
	return c.Metrics.validate()
}

func (s *ServerConfig) validate() error {
	mode := strings.TrimSpace(s.Mode)
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		s.Mode = mode
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", s.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}

	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", s.Port)
	}

	host := strings.TrimSpace(s.Host)
	if host == "" {
		return fmt.Errorf("server.host is required")
	}
	s.Host = host

	// Whitespace-only durations mean unset.
	s.Timeout = strings.TrimSpace(s.Timeout)
	s.CORS.MaxAge = strings.TrimSpace(s.CORS.MaxAge)

	if err := validateOptionalDuration("server.timeout", s.Timeout); err != nil {
		return err
	}
	return validateOptionalDuration("server.cors.max_age", s.CORS.MaxAge)
}

// TimeoutDuration returns the per-request deadline, or 0 when none is configured.
// It assumes Validate has succeeded.
func (s ServerConfig) TimeoutDuration() time.Duration {
	return parseDurationOr(s.Timeout, 0)
}

func (d *DatabaseConfig) validate(mode string) error {
	d.Driver = strings.ToLower(strings.TrimSpace(d.Driver))

	switch d.Driver {
	case DriverSQLite:
		path := strings.TrimSpace(d.SQLite.Path)
		if path == "" {
			return fmt.Errorf("database.sqlite.path is required when driver is sqlite")
		}
		d.SQLite.Path = path
	case DriverPostgres:
		if err := d.Postgres.validate(mode); err != nil {
			return err
		}
	case DriverMongoDB:
		if err := d.MongoDB.validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid database.driver %q: must be one of %q, %q, %q", d.Driver, DriverSQLite, DriverPostgres, DriverMongoDB)
	}

	d.Pool.ConnMaxLifetime = strings.TrimSpace(d.Pool.ConnMaxLifetime)
	return validateOptionalDuration("database.pool.conn_max_lifetime", d.Pool.ConnMaxLifetime)
}

func (p *PostgresConfig) validate(mode string) error {
	host := strings.TrimSpace(p.Host)
	if host == "" {
		return fmt.Errorf("database.postgres.host is required when driver is postgres")
	}
	if p.Port < 1 || p.Port > 65535 {
		return fmt.Errorf("invalid database.postgres.port %d: must be between 1 and 65535", p.Port)
	}
	user := strings.TrimSpace(p.User)
	if user == "" {
		return fmt.Errorf("database.postgres.user is required when driver is postgres")
	}
	dbName := strings.TrimSpace(p.DBName)
	if dbName == "" {
		return fmt.Errorf("database.postgres.dbname is required when driver is postgres")
	}

	sslMode := strings.TrimSpace(p.SSLMode)
	switch sslMode {
	case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
	default:
		return fmt.Errorf("invalid database.postgres.sslmode %q: must be one of %q, %q, %q, %q, %q, %q", p.SSLMode, "disable", "allow", "prefer", "require", "verify-ca", "verify-full")
	}
	if mode == gin.ReleaseMode {
		switch sslMode {
		case "require", "verify-ca", "verify-full":
		default:
			return fmt.Errorf("invalid database.postgres.sslmode %q for server.mode %q: must be one of %q, %q, %q", p.SSLMode, gin.ReleaseMode, "require", "verify-ca", "verify-full")
		}
	}

	p.Host = host
	p.User = user
	p.DBName = dbName
	p.SSLMode = sslMode
	return nil
}

func (m *MongoConfig) validate() error {
	uri := strings.TrimSpace(m.URI)
	if uri == "" {
		return fmt.Errorf("database.mongodb.uri is required when driver is mongodb")
	}
	if !strings.HasPrefix(uri, "mongodb://") && !strings.HasPrefix(uri, "mongodb+srv://") {
		return fmt.Errorf("invalid database.mongodb.uri: must start with %q or %q", "mongodb://", "mongodb+srv://")
	}
	database := strings.TrimSpace(m.Database)
	if database == "" {
		return fmt.Errorf("database.mongodb.database is required when driver is mongodb")
	}

	m.URI = uri
	m.Database = database
	m.Collection = strings.TrimSpace(m.Collection)
	if m.Collection == "" {
		m.Collection = "contacts"
	}
	m.ConnectTimeout = strings.TrimSpace(m.ConnectTimeout)
	return validateOptionalDuration("database.mongodb.connect_timeout", m.ConnectTimeout)
}

// ConnectTimeoutDuration returns the connect timeout, 10s when unset.
// It assumes Validate has succeeded.
func (m MongoConfig) ConnectTimeoutDuration() time.Duration {
	return parseDurationOr(m.ConnectTimeout, 10*time.Second)
}

func (l *LogConfig) validate() error {
	level := strings.ToLower(strings.TrimSpace(l.Level))
	switch level {
	case "debug", "info", "warn", "error":
		l.Level = level
	default:
		return fmt.Errorf("invalid log.level %q: must be one of %q, %q, %q, %q", l.Level, "debug", "info", "warn", "error")
	}

	format := strings.ToLower(strings.TrimSpace(l.Format))
	switch format {
	case "text", "json":
		l.Format = format
	default:
		return fmt.Errorf("invalid log.format %q: must be one of %q, %q", l.Format, "text", "json")
	}

	l.FilePath = strings.TrimSpace(l.FilePath)
	for name, v := range map[string]int{
		"log.max_size_mb":    l.MaxSizeMB,
		"log.retention_days": l.RetentionDays,
		"log.max_backups":    l.MaxBackups,
	} {
		if v < 0 {
			return fmt.Errorf("invalid %s %d: must not be negative", name, v)
		}
	}
	return nil
}

func (m *MetricsConfig) validate() error {
	m.Path = strings.TrimSpace(m.Path)
	if m.Path == "" {
		m.Path = "/metrics"
	}
	if !strings.HasPrefix(m.Path, "/") {
		return fmt.Errorf("invalid metrics.path %q: must start with '/'", m.Path)
	}
	return nil
}

// validateOptionalDuration accepts "" or a positive Go duration.
func validateOptionalDuration(name, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: must be a valid duration (e.g. \"30s\", \"1h\"): %w", name, v, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid %s %q: must be greater than 0", name, v)
	}
	return nil
}

func parseDurationOr(v string, fallback time.Duration) time.Duration {
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
