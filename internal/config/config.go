package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required values are enforced by must(); the rest
// fall back to defaults suitable for local development.
type Config struct {
	Env          string   // application environment (e.g. "dev", "prod")
	Port         string   // HTTP port to listen on
	DB           DBConfig // relational store settings
	JWTSecret    string   // secret used to sign JWTs
	AccessTTLMin int      // access token time-to-live in minutes
	BcryptCost   int      // bcrypt cost for password hashing
	LogLevel     string   // debug | info | warn | error
	LogFormat    string   // json | console
	CORSOrigins  []string // allowed CORS origins; "*" allows all
	RabbitMQURL  string   // broker for report events; empty disables publishing
}

// DBConfig selects the store driver and its connection parameters.  The
// mysql driver uses the host/port/user fields; sqlite only uses Path.
type DBConfig struct {
	Driver string // "mysql" or "sqlite"
	User   string
	Pass   string
	Host   string
	Port   string
	Name   string
	Path   string // sqlite database file
}

// Load reads an optional .env file and then the process environment.  Missing
// required variables cause the program to exit with a fatal log message.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Env:          envStr("APP_ENV", "dev"),
		Port:         envStr("APP_PORT", "5000"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: envInt("ACCESS_TOKEN_TTL_MIN", 60),
		BcryptCost:   envInt("BCRYPT_COST", 12),
		LogLevel:     envStr("LOG_LEVEL", "info"),
		LogFormat:    envStr("LOG_FORMAT", "json"),
		CORSOrigins:  splitList(envStr("CORS_ALLOW_ORIGINS", "*")),
		RabbitMQURL:  os.Getenv("RABBITMQ_URL"),
	}
	cfg.DB = loadDB()
	return cfg
}

func loadDB() DBConfig {
	driver := strings.ToLower(envStr("DB_DRIVER", "mysql"))
	if driver == "sqlite" {
		return DBConfig{Driver: driver, Path: envStr("SQLITE_PATH", "data/app.db")}
	}
	return DBConfig{
		Driver: "mysql",
		User:   must("DB_USER"),
		Pass:   os.Getenv("DB_PASS"), // empty allowed
		Host:   must("DB_HOST"),
		Port:   envStr("DB_PORT", "3306"),
		Name:   must("DB_NAME"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
