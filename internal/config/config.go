package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds every runtime setting of the service and its tools.
type Config struct {
	AppPort  string
	Database DatabaseConfig
	Session  SessionConfig
	Auth     AuthConfig
	Landmark LandmarkConfig
	RabbitMQ RabbitMQConfig
	Log      LogConfig

	// DotenvLoaded is true when a .env file was found and applied.
	DotenvLoaded bool
}

type DatabaseConfig struct {
	Driver       string
	DSN          string
	AutoMigrate  bool
	MaxOpenConns int
}

type SessionConfig struct {
	Secret     string
	TTL        time.Duration
	CookieName string
}

type AuthConfig struct {
	// EmailDomain, when set, makes an email address in that domain mandatory
	// at registration.
	EmailDomain string
}

type LandmarkConfig struct {
	Lat      float64
	Lon      float64
	RadiusKm float64
}

type RabbitMQConfig struct {
	URL string
}

// Enabled reports whether an AMQP broker is configured.
func (r RabbitMQConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type LogConfig struct {
	Level  string
	Format string
}

// New returns a viper instance with every default set and environment
// lookup enabled.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "spots.db")
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 10)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_COOKIE_NAME", "spots_session")
	v.SetDefault("AUTH_EMAIL_DOMAIN", "")
	v.SetDefault("LANDMARK_LAT", 42.374528)
	v.SetDefault("LANDMARK_LON", -71.117194)
	v.SetDefault("CLOSE_RADIUS_KM", 0.8)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.AutomaticEnv()
	return v
}

// Load applies a .env file if present and reads the configuration from the
// environment.
func Load() (*Config, error) {
	loaded := godotenv.Load() == nil
	cfg, err := FromViper(New())
	if err != nil {
		return nil, err
	}
	cfg.DotenvLoaded = loaded
	return cfg, nil
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort: v.GetString("APP_PORT"),
		Database: DatabaseConfig{
			Driver:       strings.ToLower(strings.TrimSpace(v.GetString("DATABASE_DRIVER"))),
			DSN:          v.GetString("DATABASE_DSN"),
			AutoMigrate:  v.GetBool("AUTO_MIGRATE"),
			MaxOpenConns: v.GetInt("DATABASE_MAX_OPEN_CONNS"),
		},
		Session: SessionConfig{
			Secret:     v.GetString("JWT_SECRET"),
			TTL:        v.GetDuration("SESSION_TTL"),
			CookieName: v.GetString("SESSION_COOKIE_NAME"),
		},
		Auth: AuthConfig{
			EmailDomain: strings.ToLower(strings.TrimPrefix(strings.TrimSpace(v.GetString("AUTH_EMAIL_DOMAIN")), "@")),
		},
		Landmark: LandmarkConfig{
			Lat:      v.GetFloat64("LANDMARK_LAT"),
			Lon:      v.GetFloat64("LANDMARK_LON"),
			RadiusKm: v.GetFloat64("CLOSE_RADIUS_KM"),
		},
		RabbitMQ: RabbitMQConfig{URL: v.GetString("RABBITMQ_URL")},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q (want %s or %s)", c.Database.Driver, DriverSQLite, DriverPostgres)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.Landmark.RadiusKm <= 0 {
		return fmt.Errorf("CLOSE_RADIUS_KM must be positive")
	}
	return nil
}
