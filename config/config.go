package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const defaultSecretsDir = "/run/secrets"

// Config holds all configuration for the application
type Config struct {
	Env Environment `yaml:"-"`

	// Server configuration
	ServerHost      string        `yaml:"server_host"`
	ServerPort      string        `yaml:"server_port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	LogLevel        string        `yaml:"log_level"`

	// Database configuration
	DBDriver    string `yaml:"db_driver"`
	DatabaseURL string `yaml:"database_url"`
	DBHost      string `yaml:"db_host"`
	DBPort      string `yaml:"db_port"`
	DBUser      string `yaml:"db_user"`
	DBPassword  string `yaml:"db_password"`
	DBName      string `yaml:"db_name"`
	DBSSLMode   string `yaml:"db_ssl_mode"`
	SQLitePath  string `yaml:"sqlite_path"`
	AutoMigrate bool   `yaml:"auto_migrate"`

	// Asset storage
	AssetRoot      string `yaml:"asset_root"`
	AssetURLPrefix string `yaml:"asset_url_prefix"`
	WatchAssets    bool   `yaml:"watch_assets"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`

	// Image path cache
	CacheDriver     string        `yaml:"cache_driver"`
	CacheMaxEntries int           `yaml:"cache_max_entries"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`

	// Redis configuration
	RedisURL      string `yaml:"redis_url"`
	RedisHost     string `yaml:"redis_host"`
	RedisPort     string `yaml:"redis_port"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	// S3 mirror
	S3Bucket       string `yaml:"s3_bucket"`
	S3Region       string `yaml:"s3_region"`
	S3Endpoint     string `yaml:"s3_endpoint"`
	S3UsePathStyle bool   `yaml:"s3_use_path_style"`
	S3AccessKeyID  string `yaml:"s3_access_key_id"`
	S3SecretKey    string `yaml:"s3_secret_access_key"`

	// Admin auth; empty secret leaves write routes open
	AdminJWTSecret string `yaml:"admin_jwt_secret"`

	// Rate limiting of write routes, requires Redis
	RateLimitRequests int           `yaml:"rate_limit_requests"`
	RateLimitWindow   time.Duration `yaml:"rate_limit_window"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Env:               GetEnvironment(),
		ServerHost:        "0.0.0.0",
		ServerPort:        "8080",
		ShutdownTimeout:   10 * time.Second,
		CORSOrigins:       []string{"http://localhost:3000"},
		LogLevel:          "info",
		DBDriver:          DriverSQLite,
		DBHost:            "localhost",
		DBPort:            "5432",
		DBUser:            "postgres",
		DBName:            "recepti",
		DBSSLMode:         "disable",
		SQLitePath:        "recepti.db",
		AutoMigrate:       true,
		AssetRoot:         "public",
		AssetURLPrefix:    "",
		WatchAssets:       true,
		MaxUploadBytes:    5 * 1024 * 1024,
		CacheDriver:       "memory",
		CacheMaxEntries:   4096,
		CacheTTL:          10 * time.Minute,
		RateLimitRequests: 60,
		RateLimitWindow:   time.Minute,
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML file
// named by CONFIG_FILE, a .env file outside production, environment variables
// and finally Docker secrets.
func LoadConfig() (*Config, error) {
	cfg := Default()

	if cfg.Env.loadsDotEnv() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := loadEnv(cfg); err != nil {
		return nil, err
	}
	loadSecrets(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func loadEnv(cfg *Config) error {
	setString(&cfg.ServerHost, "SERVER_HOST")
	setString(&cfg.ServerPort, "SERVER_PORT")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	setString(&cfg.DBDriver, "DB_DRIVER")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.DBHost, "DB_HOST")
	setString(&cfg.DBPort, "DB_PORT")
	setString(&cfg.DBUser, "DB_USER")
	setString(&cfg.DBPassword, "DB_PASSWORD")
	setString(&cfg.DBName, "DB_NAME")
	setString(&cfg.DBSSLMode, "DB_SSL_MODE")
	setString(&cfg.SQLitePath, "SQLITE_PATH")

	setString(&cfg.AssetRoot, "ASSET_ROOT")
	setString(&cfg.AssetURLPrefix, "ASSET_URL_PREFIX")
	setString(&cfg.CacheDriver, "CACHE_DRIVER")

	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.RedisHost, "REDIS_HOST")
	setString(&cfg.RedisPort, "REDIS_PORT")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")

	setString(&cfg.S3Bucket, "S3_BUCKET_NAME")
	setString(&cfg.S3Region, "AWS_REGION")
	setString(&cfg.S3Endpoint, "S3_ENDPOINT")
	setString(&cfg.S3AccessKeyID, "S3_ACCESS_KEY_ID")
	setString(&cfg.S3SecretKey, "S3_SECRET_ACCESS_KEY")
	setString(&cfg.AdminJWTSecret, "ADMIN_JWT_SECRET")

	var err error
	if cfg.ShutdownTimeout, err = durationEnv("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return err
	}
	if cfg.CacheTTL, err = durationEnv("CACHE_TTL", cfg.CacheTTL); err != nil {
		return err
	}
	if cfg.RateLimitWindow, err = durationEnv("RATE_LIMIT_WINDOW", cfg.RateLimitWindow); err != nil {
		return err
	}
	if cfg.CacheMaxEntries, err = intEnv("CACHE_MAX_ENTRIES", cfg.CacheMaxEntries); err != nil {
		return err
	}
	if cfg.RedisDB, err = intEnv("REDIS_DB", cfg.RedisDB); err != nil {
		return err
	}
	if cfg.RateLimitRequests, err = intEnv("RATE_LIMIT_REQUESTS", cfg.RateLimitRequests); err != nil {
		return err
	}
	maxUpload, err := intEnv("MAX_UPLOAD_BYTES", int(cfg.MaxUploadBytes))
	if err != nil {
		return err
	}
	cfg.MaxUploadBytes = int64(maxUpload)
	if cfg.AutoMigrate, err = boolEnv("AUTO_MIGRATE", cfg.AutoMigrate); err != nil {
		return err
	}
	if cfg.WatchAssets, err = boolEnv("WATCH_ASSETS", cfg.WatchAssets); err != nil {
		return err
	}
	if cfg.S3UsePathStyle, err = boolEnv("S3_USE_PATH_STYLE", cfg.S3UsePathStyle); err != nil {
		return err
	}
	return nil
}

// loadSecrets overrides sensitive values with Docker secrets when present
func loadSecrets(cfg *Config) {
	setSecret(&cfg.DBPassword, "db_password")
	setSecret(&cfg.RedisPassword, "redis_password")
	setSecret(&cfg.AdminJWTSecret, "admin_jwt_secret")
	setSecret(&cfg.DatabaseURL, "database_url")
	setSecret(&cfg.S3SecretKey, "s3_secret_access_key")
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = defaultSecretsDir
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func setSecret(dst *string, name string) {
	if v := readSecret(name); v != "" {
		*dst = v
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Address returns the host:port the HTTP server listens on
func (c *Config) Address() string {
	return c.ServerHost + ":" + c.ServerPort
}

// PostgresDSN builds a key/value DSN, preferring DATABASE_URL when set
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// RedisEnabled reports whether a Redis server has been configured
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// S3Enabled reports whether uploads should be mirrored to S3
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// AuthEnabled reports whether write routes require an admin token
func (c *Config) AuthEnabled() bool {
	return c.AdminJWTSecret != ""
}
