package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	CORSOrigins []string

	DBDriver string
	DBSeed   bool

	JWTSecret     string
	GatewaySecret string

	CancelGraceWindow    time.Duration
	PendingExpiry        time.Duration
	PendingSweepInterval time.Duration

	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFromName string

	ServiceName string
	LogLevel    string
	LogJSON     bool
}

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Load reads the process environment. Call godotenv.Load first if a .env file
// should be honoured.
func Load() (Config, error) {
	cfg := Config{
		Port:         envOrDefault("PORT", "8080"),
		CORSOrigins:  splitCSV(envOrDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		DBDriver:     strings.ToLower(envOrDefault("DB_DRIVER", DriverMySQL)),
		JWTSecret:    strings.TrimSpace(os.Getenv("JWT_SECRET")),
		RedisAddr:    strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		KafkaBrokers: splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "hotel.booking.events"),
		ServiceName:  envOrDefault("SERVICE_NAME", "hotel-reservation"),
		LogLevel:     envOrDefault("LOG_LEVEL", "info"),
	}
	cfg.GatewaySecret = strings.TrimSpace(os.Getenv("GATEWAY_SECRET"))

	// SMTP is optional; without it emails are only logged
	cfg.SMTPHost = strings.TrimSpace(os.Getenv("SMTP_HOST"))
	cfg.SMTPPort = envOrDefault("SMTP_PORT", "587")
	cfg.SMTPUsername = strings.TrimSpace(os.Getenv("SMTP_USERNAME"))
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.SMTPFromName = envOrDefault("SMTP_FROM_NAME", "Hotel Reservations")

	var err error
	if cfg.DBSeed, err = envBool("DB_SEED", false); err != nil {
		return cfg, err
	}
	if cfg.LogJSON, err = envBool("LOG_JSON", false); err != nil {
		return cfg, err
	}
	if cfg.CancelGraceWindow, err = envDuration("CANCEL_GRACE_WINDOW", 48*time.Hour); err != nil {
		return cfg, err
	}
	if cfg.PendingExpiry, err = envDuration("PENDING_EXPIRY", 30*time.Minute); err != nil {
		return cfg, err
	}
	if cfg.PendingSweepInterval, err = envDuration("PENDING_SWEEP_INTERVAL", time.Minute); err != nil {
		return cfg, err
	}

	switch cfg.DBDriver {
	case DriverMySQL, DriverPostgres:
	default:
		return cfg, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverMySQL, DriverPostgres, cfg.DBDriver)
	}
	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func envBool(key string, def bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
