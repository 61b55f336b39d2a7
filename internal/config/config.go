// internal/config/config.go
package config

import (
	"math"
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisAddr     string
	RedisPassword string

	PaystackSecretKey     string
	PaystackBaseURL       string
	PaystackWebhookSecret string

	Fees   FeeSchedule
	Limits WithdrawalLimits

	Reconciler ReconcilerConfig
}

// FeeSchedule drives withdrawal fees: min(base + amount*percent, cap).
// Values are naira major units.
type FeeSchedule struct {
	Base    int64
	Percent float64
	Cap     int64
}

// Calculate returns the fee for a gross withdrawal amount.
func (f FeeSchedule) Calculate(amount int64) int64 {
	fee := f.Base + int64(math.Round(float64(amount)*f.Percent))
	if fee > f.Cap {
		return f.Cap
	}
	return fee
}

// WithdrawalLimits caps a single withdrawal. The maximum depends on the
// user's verification tier.
type WithdrawalLimits struct {
	Min         int64
	MaxStandard int64
	MaxVerified int64
}

func (l WithdrawalLimits) Max(verified bool) int64 {
	if verified {
		return l.MaxVerified
	}
	return l.MaxStandard
}

type ReconcilerConfig struct {
	StatusInterval  time.Duration // verify sweep over processing withdrawals
	PendingInterval time.Duration // re-process sweep over stuck pending requests
	PendingMinAge   time.Duration // how long a pending request sits before re-processing
	SweepLimit      int
}

func Load() *Config {
	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8084"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "giftwallet"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		PaystackSecretKey:     getEnv("PAYSTACK_SECRET_KEY", ""),
		PaystackBaseURL:       getEnv("PAYSTACK_BASE_URL", ""),
		PaystackWebhookSecret: getEnv("PAYSTACK_WEBHOOK_SECRET", ""),

		Fees: FeeSchedule{
			Base:    getEnvInt64("WITHDRAWAL_FEE_BASE", 10),
			Percent: getEnvFloat("WITHDRAWAL_FEE_PERCENT", 0.005),
			Cap:     getEnvInt64("WITHDRAWAL_FEE_CAP", 50),
		},
		Limits: WithdrawalLimits{
			Min:         getEnvInt64("WITHDRAWAL_MIN", 1000),
			MaxStandard: getEnvInt64("WITHDRAWAL_MAX", 50000),
			MaxVerified: getEnvInt64("WITHDRAWAL_MAX_VERIFIED", 500000),
		},
		Reconciler: ReconcilerConfig{
			StatusInterval:  getEnvDuration("RECONCILER_STATUS_INTERVAL", time.Minute),
			PendingInterval: getEnvDuration("RECONCILER_PENDING_INTERVAL", 5*time.Minute),
			PendingMinAge:   getEnvDuration("RECONCILER_PENDING_MIN_AGE", 2*time.Minute),
			SweepLimit:      100,
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
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
