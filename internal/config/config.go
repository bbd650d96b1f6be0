// Package config loads application configuration from environment
// variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Types reflect how values are used: strings for
// identifiers and secrets, ints for durations and costs.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	DBUser    string // database username
	DBPass    string // database password (optional)
	DBHost    string // database host address
	DBPort    string // database port number
	DBName    string // database name
	JWTSecret string // secret used to sign JWTs

	DBMaxOpenConns    int           // connection pool: max open connections
	DBMaxIdleConns    int           // connection pool: max idle connections
	DBConnMaxLifetime time.Duration // connection pool: max connection age

	TokenTTLHours  int    // access token time-to-live in hours
	BcryptCost     int    // bcrypt cost for password hashing
	AnthropicKey   string // API key for the Anthropic messages API
	AnthropicModel string // model used for visit-question generation
}

// Load reads configuration from environment variables. Required variables
// are enforced by must() and missing values cause the program to exit with
// a fatal log message. The token TTL and bcrypt cost fall back to sane
// defaults when unset.
func Load() Config {
	return Config{
		Env:       must("APP_ENV"),
		Port:      must("APP_PORT"),
		DBUser:    must("DB_USER"),
		DBPass:    os.Getenv("DB_PASS"), // empty allowed
		DBHost:    must("DB_HOST"),
		DBPort:    must("DB_PORT"),
		DBName:    must("DB_NAME"),
		JWTSecret: must("JWT_SECRET"),

		DBMaxOpenConns:    intOr("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    intOr("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetime: envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute),

		TokenTTLHours:  intOr("TOKEN_TTL_HOURS", 24),
		BcryptCost:     intOr("BCRYPT_COST", 10),
		AnthropicKey:   must("ANTHROPIC_API_KEY"),
		AnthropicModel: strOr("ANTHROPIC_MODEL", "claude-sonnet-4-5"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// strOr returns the variable's value or def when unset.
func strOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// intOr returns the variable parsed as an int, or def when unset. An
// unparsable value is a configuration mistake and aborts startup.
func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
