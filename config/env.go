package config

import (
	"os"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment determines the current environment
func GetEnvironment() Environment {
	// CI environment is automatically detected
	if os.Getenv("CI") == "true" {
		return CI
	}

	switch env := os.Getenv("ENV"); env {
	case "production":
		return Production
	case "test":
		return Test
	default:
		return Development
	}
}

// IsDevelopment returns true if the current environment is development
func (e Environment) IsDevelopment() bool {
	return e == Development
}

// IsProduction returns true if the current environment is production
func (e Environment) IsProduction() bool {
	return e == Production
}

// loadsDotEnv reports whether a local .env file should be consulted.
func (e Environment) loadsDotEnv() bool {
	return e == Development || e == Test
}
