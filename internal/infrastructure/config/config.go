package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"github.com/bibbank/microcred/internal/domain/service"
	"github.com/bibbank/microcred/pkg/auth"
	"github.com/bibbank/microcred/pkg/kafka"
	"github.com/bibbank/microcred/pkg/observability"
	"github.com/bibbank/microcred/pkg/postgres"
	"github.com/bibbank/microcred/pkg/tlsutil"
)

type KafkaConfig struct {
	kafka.Config
	Topic string
}

type LendingConfig struct {
	RenewalTermDays    int
	SingleLoanTermDays int
	LateFeeRate        decimal.Decimal
	Score              service.ScorePolicy
}

type JobsConfig struct {
	LateFeeSchedule string
	OutboxSchedule  string
	OutboxBatchSize int
}

type Config struct {
	GRPCPort       int
	GRPCReflection bool
	HTTPPort       int
	DB             postgres.Config
	Kafka          KafkaConfig
	Lending        LendingConfig
	Jobs           JobsConfig
	JWT            auth.JWTConfig
	TLS            tlsutil.ServerConfig
	Log            observability.LogConfig
	Tracing        observability.TracingConfig
	ServiceName    string
}

const serviceName = "microcred"

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var errs []error
	if c.DB.Password == "" {
		errs = append(errs, errors.New("DB_PASSWORD environment variable is required"))
	}
	if c.JWT.Secret == "" && c.JWT.PrivateKeyPEM == "" && c.JWT.PublicKeyPEM == "" {
		errs = append(errs, errors.New("one of JWT_SECRET, JWT_PRIVATE_KEY_FILE or JWT_PUBLIC_KEY_FILE is required"))
	}
	if len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS must list at least one broker"))
	}
	if c.Lending.LateFeeRate.IsNegative() {
		errs = append(errs, errors.New("LATE_FEE_RATE must not be negative"))
	}
	for name, spec := range map[string]string{
		"LATE_FEE_CRON": c.Jobs.LateFeeSchedule,
		"OUTBOX_CRON":   c.Jobs.OutboxSchedule,
	} {
		if _, err := cron.ParseStandard(spec); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Load reads the configuration from the environment. Key files named by
// JWT_PRIVATE_KEY_FILE and JWT_PUBLIC_KEY_FILE are read here.
func Load() (Config, error) {
	cfg := Config{
		GRPCPort:       getEnvInt("GRPC_PORT", 9090),
		GRPCReflection: getEnvBool("GRPC_REFLECTION", false),
		HTTPPort:       getEnvInt("HTTP_PORT", 8080),
		DB: postgres.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "microcred"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "microcred"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
		},
		Kafka: KafkaConfig{
			Config: kafka.Config{
				Brokers:       splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
				ClientID:      getEnv("KAFKA_CLIENT_ID", serviceName),
				TLS:           getEnvBool("KAFKA_TLS", false),
				SASLEnabled:   getEnvBool("KAFKA_SASL_ENABLED", false),
				SASLMechanism: getEnv("KAFKA_SASL_MECHANISM", "PLAIN"),
				SASLUsername:  getEnv("KAFKA_SASL_USERNAME", ""),
				SASLPassword:  getEnv("KAFKA_SASL_PASSWORD", ""),
				WriteTimeout:  getEnvDuration("KAFKA_WRITE_TIMEOUT", kafka.DefaultWriteTimeout),
			},
			Topic: getEnv("EVENTS_TOPIC", "microcred.events"),
		},
		Lending: LendingConfig{
			RenewalTermDays:    getEnvInt("RENEWAL_TERM_DAYS", service.DefaultRenewalTermDays),
			SingleLoanTermDays: getEnvInt("SINGLE_LOAN_TERM_DAYS", 30),
			LateFeeRate:        getEnvDecimal("LATE_FEE_RATE", decimal.NewFromInt(2)),
			Score:              loadScorePolicy(),
		},
		Jobs: JobsConfig{
			LateFeeSchedule: getEnv("LATE_FEE_CRON", "5 0 * * *"),
			OutboxSchedule:  getEnv("OUTBOX_CRON", "* * * * *"),
			OutboxBatchSize: getEnvInt("OUTBOX_BATCH_SIZE", 100),
		},
		JWT: auth.JWTConfig{
			Secret:     getEnv("JWT_SECRET", ""),
			Issuer:     getEnv("JWT_ISSUER", serviceName),
			Expiration: getEnvDuration("JWT_EXPIRATION", 12*time.Hour),
		},
		TLS: tlsutil.ServerConfig{
			CertFile:     getEnv("TLS_CERT_FILE", ""),
			KeyFile:      getEnv("TLS_KEY_FILE", ""),
			ClientCAFile: getEnv("TLS_CLIENT_CA_FILE", ""),
		},
		Log: observability.LogConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Format:  getEnv("LOG_FORMAT", "json"),
			Service: serviceName,
		},
		Tracing: observability.TracingConfig{
			ServiceName: serviceName,
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure:    getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
			SampleRatio: getEnvFloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
		ServiceName: serviceName,
	}

	if path := getEnv("JWT_PRIVATE_KEY_FILE", ""); path != "" {
		pem, err := auth.LoadKeyFromFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("load JWT private key: %w", err)
		}
		cfg.JWT.PrivateKeyPEM = string(pem)
	}
	if path := getEnv("JWT_PUBLIC_KEY_FILE", ""); path != "" {
		pem, err := auth.LoadKeyFromFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("load JWT public key: %w", err)
		}
		cfg.JWT.PublicKeyPEM = string(pem)
	}
	return cfg, nil
}

func loadScorePolicy() service.ScorePolicy {
	def := service.DefaultScorePolicy()
	return service.ScorePolicy{
		RenewedOnTime:      getEnvDecimal("SCORE_RENEWED_ON_TIME", def.RenewedOnTime),
		PaidInFull:         getEnvDecimal("SCORE_PAID_IN_FULL", def.PaidInFull),
		PartialPayment:     getEnvDecimal("SCORE_PARTIAL_PAYMENT", def.PartialPayment),
		InstallmentCleared: getEnvDecimal("SCORE_INSTALLMENT_CLEARED", def.InstallmentCleared),
		LatePenaltyPerDay:  getEnvDecimal("SCORE_LATE_PENALTY_PER_DAY", def.LatePenaltyPerDay),
		LatePenaltyCap:     getEnvDecimal("SCORE_LATE_PENALTY_CAP", def.LatePenaltyCap),
	}
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
