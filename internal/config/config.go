package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. The database section supports two drivers:
// "mysql" for a server deployment and "sqlite" for the embedded
// single-file database the app was originally built around.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	DBDriver     string // "mysql" or "sqlite"
	DBUser       string // database username (mysql only)
	DBPass       string // database password (mysql only, optional)
	DBHost       string // database host address (mysql only)
	DBPort       string // database port number (mysql only)
	DBName       string // database name (mysql only)
	SQLitePath   string // database file path (sqlite only)
	OMDBAPIKey   string // API key for the OMDb catalog lookup service
	OMDBBaseURL  string // OMDb endpoint override, empty selects the public API
	GeminiAPIKey string // API key for the Gemini recommendation service (optional)
	GeminiModel  string // Gemini model name used for recommendations
}

// Load reads configuration values from environment variables and returns
// a Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message. Which database
// variables are required depends on DB_DRIVER.
func Load() Config {
	cfg := Config{
		Env:          must("APP_ENV"),                          // environment (dev/test/prod)
		Port:         must("APP_PORT"),                         // port to bind the HTTP server
		DBDriver:     getenv("DB_DRIVER", "sqlite"),            // storage engine selection
		OMDBAPIKey:   must("OMDB_API_KEY"),                     // catalog lookups need a key
		OMDBBaseURL:  os.Getenv("OMDB_BASE_URL"),               // override for tests/proxies
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),              // empty disables recommendations
		GeminiModel:  getenv("GEMINI_MODEL", "gemini-flash-latest"), // free-tier compatible default
	}
	switch cfg.DBDriver {
	case "sqlite":
		cfg.SQLitePath = getenv("SQLITE_PATH", "movies.db")
	case "mysql":
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	default:
		log.Fatalf("unsupported DB_DRIVER: %q (want mysql or sqlite)", cfg.DBDriver)
	}
	return cfg
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
