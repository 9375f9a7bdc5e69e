package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values shared by the services.
// Each field corresponds to an environment variable.  The types reflect
// how the values are used: strings for identifiers and secrets, ints for
// durations and costs.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	JWTSecret    string // secret used to sign JWTs; must match across all services
	AccessTTLMin int    // access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The JWT secret and
// algorithm are configured process-wide: a mismatch between services is a
// deployment error, not something handled at runtime.
func Load() Config {
	return Config{
		Env:          must("APP_ENV"),
		Port:         must("APP_PORT"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"), // empty password allowed
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:   mustInt("BCRYPT_COST"),
	}
}

// GatewayConfig holds the addresses of the backend services the gateway
// forwards to.  Upstreams default to local ports so a developer can run
// the whole platform on one machine without extra configuration.
type GatewayConfig struct {
	Env        string // application environment
	Port       string // HTTP port for the gateway itself
	JWTSecret  string // secret used to validate tokens issued by the user service
	UserURL    string // base URL of the user service
	ParkingURL string // base URL of the parking service
	BookingURL string // base URL of the booking service
}

// LoadGateway reads gateway configuration from environment variables.
func LoadGateway() GatewayConfig {
	return GatewayConfig{
		Env:        must("APP_ENV"),
		Port:       must("APP_PORT"),
		JWTSecret:  must("JWT_SECRET"),
		UserURL:    envStr("USER_SERVICE_URL", "http://localhost:8001"),
		ParkingURL: envStr("PARKING_SERVICE_URL", "http://localhost:8002"),
		BookingURL: envStr("BOOKING_SERVICE_URL", "http://localhost:8003"),
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

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
