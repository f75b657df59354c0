package config // package config loads application configuration from environment variables

import (
    "log"
    "os"
    "strconv"
    "time"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Everything is read once at startup and
// injected into the components that need it; no package reads the
// environment afterwards.
type Config struct {
    Env  string // application environment (e.g. "dev", "prod")
    Port string // HTTP port to listen on

    HoldTTL      time.Duration // default seat hold lifetime
    HoldTTLMax   time.Duration // upper bound a caller may request
    UserMaxSeats int           // per-user seats per event; 0 = unlimited

    RabbitURL string // AMQP broker; empty disables the audit trail

    DBUser string // MySQL settings for the reservation audit archive;
    DBPass string // all optional — the archive is skipped when DBHost
    DBHost string // is unset
    DBPort string
    DBName string
}

// Load reads configuration from environment variables.  Required
// variables are enforced by must() and missing values cause the program
// to exit with a fatal log message; everything else has a default.
func Load() Config {
    return Config{
        Env:          must("APP_ENV"),
        Port:         must("APP_PORT"),
        HoldTTL:      time.Duration(envInt("HOLD_TTL_SECONDS", 60)) * time.Second,
        HoldTTLMax:   time.Duration(envInt("HOLD_TTL_MAX_SECONDS", 900)) * time.Second,
        UserMaxSeats: envInt("USER_MAX_SEATS", 0),
        RabbitURL:    os.Getenv("RABBITMQ_URL"),
        DBUser:       os.Getenv("DB_USER"),
        DBPass:       os.Getenv("DB_PASS"),
        DBHost:       os.Getenv("DB_HOST"),
        DBPort:       os.Getenv("DB_PORT"),
        DBName:       os.Getenv("DB_NAME"),
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

// Helper functions shared with ratelimit.go.
func envStr(k, d string) string {
    if v := os.Getenv(k); v != "" {
        return v
    }
    return d
}

func envInt(k string, d int) int {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return d
}

func envBool(k string, d bool) bool {
    switch os.Getenv(k) {
    case "1", "true", "TRUE", "True", "yes", "on":
        return true
    case "0", "false", "FALSE", "False", "no", "off":
        return false
    }
    return d
}

func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if dur, err := time.ParseDuration(v); err == nil {
        return dur
    }
    return d
}
