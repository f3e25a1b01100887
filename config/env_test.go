package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "CORS_ORIGINS", "DB_DRIVER", "DB_SEED", "JWT_SECRET", "GATEWAY_SECRET",
		"CANCEL_GRACE_WINDOW", "PENDING_EXPIRY", "PENDING_SWEEP_INTERVAL",
		"REDIS_ADDR", "KAFKA_BROKERS", "KAFKA_TOPIC", "SERVICE_NAME", "LOG_LEVEL", "LOG_JSON",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "SMTP_FROM_NAME",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMySQL, cfg.DBDriver)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, 48*time.Hour, cfg.CancelGraceWindow)
	assert.Equal(t, 30*time.Minute, cfg.PendingExpiry)
	assert.Equal(t, time.Minute, cfg.PendingSweepInterval)
	assert.Equal(t, "hotel.booking.events", cfg.KafkaTopic)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Empty(t, cfg.RedisAddr)
	assert.False(t, cfg.DBSeed)
	assert.False(t, cfg.LogJSON)
	assert.Empty(t, cfg.SMTPHost)
	assert.Equal(t, "587", cfg.SMTPPort)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_SEED", "true")
	t.Setenv("CANCEL_GRACE_WINDOW", "24h")
	t.Setenv("PENDING_EXPIRY", "15m")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("CORS_ORIGINS", "*")
	t.Setenv("LOG_JSON", "1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.True(t, cfg.DBSeed)
	assert.Equal(t, 24*time.Hour, cfg.CancelGraceWindow)
	assert.Equal(t, 15*time.Minute, cfg.PendingExpiry)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.True(t, cfg.LogJSON)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret":    {},
		"unknown driver":    {"JWT_SECRET": "x", "DB_DRIVER": "oracle"},
		"bad duration":      {"JWT_SECRET": "x", "PENDING_EXPIRY": "soon"},
		"negative duration": {"JWT_SECRET": "x", "CANCEL_GRACE_WINDOW": "-1h"},
		"bad bool":          {"JWT_SECRET": "x", "DB_SEED": "maybe"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestMySQLDSNFromURL(t *testing.T) {
	dsn, err := mysqlDSNFromURL("mysql://app:pw@db.internal:3307/hotel")
	require.NoError(t, err)
	assert.Equal(t, "app:pw@tcp(db.internal:3307)/hotel?charset=utf8mb4&loc=UTC&parseTime=True", dsn)

	dsn, err = mysqlDSNFromURL("mysql://app@db/hotel?loc=Local")
	require.NoError(t, err)
	assert.Equal(t, "app:@tcp(db:3306)/hotel?charset=utf8mb4&loc=Local&parseTime=True", dsn)

	_, err = mysqlDSNFromURL("mysql://app:pw@db:3306/")
	assert.Error(t, err)
}

func TestResolveDSNs(t *testing.T) {
	t.Setenv("MYSQL_URL", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_USER", "u")
	t.Setenv("DB_PASS", "p")
	t.Setenv("DB_HOST", "h")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_NAME", "n")
	t.Setenv("DB_SSLMODE", "")

	dsn, err := resolveMySQLDSN()
	require.NoError(t, err)
	assert.Equal(t, "u:p@tcp(h:3306)/n?charset=utf8mb4&parseTime=True&loc=UTC", dsn)
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=n sslmode=disable TimeZone=UTC", resolvePostgresDSN())

	t.Setenv("DATABASE_URL", "postgres://x@y/z")
	assert.Equal(t, "postgres://x@y/z", resolvePostgresDSN())
}
