package config

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var logLevels = []interface{}{"debug", "info", "warn", "error"}

// Validate checks that the configuration is usable for the current environment
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.ServerPort, validation.Required, validation.Match(portPattern)),
		validation.Field(&c.LogLevel, validation.Required, validation.In(logLevels...)),
		validation.Field(&c.DBDriver, validation.Required, validation.In(DriverPostgres, DriverSQLite)),
		validation.Field(&c.SQLitePath, validation.When(c.DBDriver == DriverSQLite, validation.Required)),
		validation.Field(&c.DBHost, validation.When(c.DBDriver == DriverPostgres && c.DatabaseURL == "", validation.Required)),
		validation.Field(&c.DBName, validation.When(c.DBDriver == DriverPostgres && c.DatabaseURL == "", validation.Required)),
		validation.Field(&c.AssetRoot, validation.Required),
		validation.Field(&c.AssetURLPrefix, validation.Match(prefixPattern)),
		validation.Field(&c.MaxUploadBytes, validation.Required, validation.Min(int64(1))),
		validation.Field(&c.CacheDriver, validation.Required, validation.In("memory", "redis")),
		validation.Field(&c.CacheMaxEntries, validation.Min(0)),
		validation.Field(&c.RateLimitRequests, validation.Min(0)),
		validation.Field(&c.CORSOrigins, validation.Each(validation.Required)),
	); err != nil {
		return err
	}

	if c.CacheDriver == "redis" && !c.RedisEnabled() {
		return fmt.Errorf("cache_driver: redis requires REDIS_URL or REDIS_HOST")
	}
	if c.Env.IsProduction() && c.DBDriver == DriverPostgres && c.DatabaseURL == "" && c.DBPassword == "" {
		return fmt.Errorf("db_password: required in production")
	}
	return nil
}
