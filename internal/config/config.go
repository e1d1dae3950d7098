package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	GinMode string
	Port    string
	TZ      string

	// DBDriver is "postgres" or "sqlite". sqlite keeps local development
	// and CI free of a running database server.
	DBDriver   string
	SQLitePath string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPass     string
	DBName     string
	DBSSLMode  string

	// CoverAPIURL is the book-metadata search endpoint used for cover
	// lookups; overridable so tests can point it at a stub.
	CoverAPIURL string
}

func Load() *Config {
	// A missing .env is fine; system env vars still apply.
	_ = godotenv.Load()

	cfg := &Config{
		GinMode:     getenv("GIN_MODE", "debug"),
		Port:        getenv("PORT", "8080"),
		TZ:          getenv("TZ", "UTC"),
		DBDriver:    getenv("DB_DRIVER", "postgres"),
		SQLitePath:  getenv("SQLITE_PATH", "booktrack.db"),
		DBHost:      getenv("DB_HOST", "localhost"),
		DBPort:      getenv("DB_PORT", "5432"),
		DBUser:      getenv("DB_USER", "postgres"),
		DBPass:      getenv("DB_PASS", ""),
		DBName:      getenv("DB_NAME", "booktrack"),
		DBSSLMode:   os.Getenv("DB_SSLMODE"),
		CoverAPIURL: getenv("COVER_API_URL", ""),
	}

	if cfg.DBSSLMode == "" {
		if cfg.GinMode == "release" {
			cfg.DBSSLMode = "require"
		} else {
			cfg.DBSSLMode = "disable"
		}
	}

	return cfg
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.DBHost,
		c.DBUser,
		c.DBPass,
		c.DBName,
		c.DBPort,
		c.DBSSLMode,
		c.TZ,
	)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
