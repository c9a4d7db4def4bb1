package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.GRPCAddr())
	assert.Equal(t, ":8080", cfg.HTTPAddr())
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "microcred.events", cfg.Kafka.Topic)
	assert.Equal(t, 30, cfg.Lending.RenewalTermDays)
	assert.True(t, cfg.Lending.LateFeeRate.Equal(decimal.NewFromInt(2)))
	assert.True(t, cfg.Lending.Score.PaidInFull.Equal(decimal.NewFromInt(2)))

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("GRPC_PORT", "7001")
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("JWT_SECRET", "signing-secret")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("RENEWAL_TERM_DAYS", "15")
	t.Setenv("LATE_FEE_RATE", "1.5")
	t.Setenv("SCORE_PAID_IN_FULL", "3")
	t.Setenv("LATE_FEE_CRON", "0 3 * * *")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 7001, cfg.GRPCPort)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 15, cfg.Lending.RenewalTermDays)
	assert.True(t, cfg.Lending.LateFeeRate.Equal(decimal.RequireFromString("1.5")))
	assert.True(t, cfg.Lending.Score.PaidInFull.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, "0 3 * * *", cfg.Jobs.LateFeeSchedule)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("HTTP_PORT", "eighty")
	t.Setenv("LATE_FEE_RATE", "two")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.True(t, cfg.Lending.LateFeeRate.Equal(decimal.NewFromInt(2)))
}

func TestValidate_BadCron(t *testing.T) {
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("JWT_SECRET", "signing-secret")
	t.Setenv("OUTBOX_CRON", "every minute")

	cfg, err := Load()
	require.NoError(t, err)
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OUTBOX_CRON")
}

func TestLoad_JWTKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jwt.pub")
	require.NoError(t, os.WriteFile(path, []byte("-----BEGIN PUBLIC KEY-----"), 0o600))
	t.Setenv("JWT_PUBLIC_KEY_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "-----BEGIN PUBLIC KEY-----", cfg.JWT.PublicKeyPEM)

	t.Setenv("JWT_PUBLIC_KEY_FILE", filepath.Join(t.TempDir(), "missing"))
	_, err = Load()
	assert.Error(t, err)
}
