package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/curriculum/planner/internal/pkg/helpers"
)

// Config structure represents the application configuration.
// Nested fields resolve env vars as SECTION_NAME first and then the bare tag name,
// so JWT_ACCESS_TOKEN_EXPIRATION and ACCESS_TOKEN_EXPIRATION both set the access TTL.
// The signing secret is read from JWT_SECRET, then JWT_SECRET_KEY, then SECRET_KEY.
// ACCESS_TOKEN_EXPIRES_MIN and REFRESH_TOKEN_EXPIRES_DAYS are accepted when the
// duration variables are unset.
type Config struct {
	Server struct {
		Host           string   `yaml:"host" envconfig:"APP_HOST"`
		Port           string   `yaml:"port" envconfig:"APP_PORT"`
		Mode           string   `yaml:"mode" envconfig:"SERVER_MODE"`
		AllowedOrigins []string `yaml:"allowed_origins" envconfig:"CORS_ALLOWED_ORIGINS"`
	} `yaml:"server"`

	Database struct {
		URL             string `yaml:"url" envconfig:"DATABASE_URL"`
		Host            string `yaml:"host" envconfig:"DB_HOST"`
		Port            string `yaml:"port" envconfig:"DB_PORT"`
		User            string `yaml:"user" envconfig:"DB_USER"`
		Password        string `yaml:"password" envconfig:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" envconfig:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" envconfig:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" envconfig:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" envconfig:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" envconfig:"SECRET_KEY"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" envconfig:"ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" envconfig:"REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" envconfig:"ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" envconfig:"LOG_LEVEL"`
		Format string `yaml:"format" envconfig:"LOG_FORMAT"`
	} `yaml:"logging"`

	Import struct {
		UploadDir string `yaml:"upload_dir" envconfig:"IMPORT_UPLOAD_DIR"`
	} `yaml:"import"`

	Seed struct {
		Enabled       bool   `yaml:"enabled" envconfig:"SEED_ENABLED"`
		AdminEmail    string `yaml:"admin_email" envconfig:"SEED_ADMIN_EMAIL"`
		AdminPassword string `yaml:"admin_password" envconfig:"SEED_ADMIN_PASSWORD"`
	} `yaml:"seed"`
}

// LoadConfig builds the configuration from defaults, an optional YAML file,
// optional dotenv files and finally the process environment.
func LoadConfig(configPath string, envFiles ...string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if configPath != "" {
		file, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(file, config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for _, envFile := range envFiles {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}
	if err := applyTokenEnv(config); err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// tokenEnv holds the token settings accepted under names outside the JWT_ prefix scheme.
type tokenEnv struct {
	Secret             string `envconfig:"JWT_SECRET"`
	AccessExpiresMin   int    `envconfig:"ACCESS_TOKEN_EXPIRES_MIN"`
	RefreshExpiresDays int    `envconfig:"REFRESH_TOKEN_EXPIRES_DAYS"`
}

func applyTokenEnv(config *Config) error {
	var env tokenEnv
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("failed to load token settings from environment: %w", err)
	}

	if env.Secret != "" {
		config.JWT.Secret = env.Secret
	}
	if env.AccessExpiresMin < 0 || env.RefreshExpiresDays < 0 {
		return fmt.Errorf("invalid configuration: token expirations must be positive")
	}
	if env.AccessExpiresMin > 0 && !envSet("JWT_ACCESS_TOKEN_EXPIRATION", "ACCESS_TOKEN_EXPIRATION") {
		config.JWT.AccessTokenExpiration = fmt.Sprintf("%dm", env.AccessExpiresMin)
	}
	if env.RefreshExpiresDays > 0 && !envSet("JWT_REFRESH_TOKEN_EXPIRATION", "REFRESH_TOKEN_EXPIRATION") {
		config.JWT.RefreshTokenExpiration = fmt.Sprintf("%dd", env.RefreshExpiresDays)
	}
	return nil
}

func envSet(keys ...string) bool {
	for _, key := range keys {
		if _, ok := os.LookupEnv(key); ok {
			return true
		}
	}
	return false
}

func setDefaults(config *Config) {
	config.Server.Host = "0.0.0.0"
	config.Server.Port = "8000"
	config.Server.Mode = "development"
	config.Server.AllowedOrigins = []string{"*"}

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "curriculum"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"

	config.JWT.AccessTokenExpiration = "15m"
	config.JWT.RefreshTokenExpiration = "168h"
	config.JWT.Issuer = "curriculum-planner"

	config.Logging.Level = "info"
	config.Logging.Format = "console"

	config.Import.UploadDir = "uploads"

	config.Seed.Enabled = false
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if config.Database.URL == "" && config.Database.Host == "" {
		return fmt.Errorf("database url or host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	access, err := helpers.ParseDurationExt(config.JWT.AccessTokenExpiration)
	if err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}
	refresh, err := helpers.ParseDurationExt(config.JWT.RefreshTokenExpiration)
	if err != nil {
		return fmt.Errorf("invalid JWT refresh token expiration format: %w", err)
	}
	if access <= 0 || refresh <= 0 {
		return fmt.Errorf("JWT expirations must be positive")
	}

	if config.Database.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("invalid database conn_max_lifetime: %w", err)
		}
	}

	if config.Seed.AdminEmail != "" && len(config.Seed.AdminPassword) < 8 {
		return fmt.Errorf("seed admin password must be at least 8 characters")
	}

	return nil
}

// GetPostgresConnectionString returns the postgres connection string. DATABASE_URL wins over
// the discrete fields.
func (c *Config) GetPostgresConnectionString() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}

	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(sslMode),
	}
	return u.String()
}

// Address returns the host:port the HTTP server listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// IsProduction reports whether the server runs in release mode.
func (c *Config) IsProduction() bool {
	mode := strings.ToLower(c.Server.Mode)
	return mode == "production" || mode == "release"
}
