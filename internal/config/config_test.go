package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeeSchedule(t *testing.T) {
	fees := FeeSchedule{Base: 10, Percent: 0.005, Cap: 50}

	// base + 0.5%, capped
	assert.Equal(t, int64(15), fees.Calculate(1000))
	assert.Equal(t, int64(35), fees.Calculate(5000))
	assert.Equal(t, int64(50), fees.Calculate(10000)) // 60 before the cap
	assert.Equal(t, int64(50), fees.Calculate(500000))
}

func TestWithdrawalLimits(t *testing.T) {
	limits := WithdrawalLimits{Min: 1000, MaxStandard: 50000, MaxVerified: 500000}

	assert.Equal(t, int64(50000), limits.Max(false))
	assert.Equal(t, int64(500000), limits.Max(true))
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8084", cfg.HTTPAddr)
	assert.Equal(t, int64(10), cfg.Fees.Base)
	assert.Equal(t, 0.005, cfg.Fees.Percent)
	assert.Equal(t, int64(50), cfg.Fees.Cap)
	assert.Equal(t, int64(1000), cfg.Limits.Min)
	assert.Equal(t, int64(50000), cfg.Limits.MaxStandard)
	assert.Equal(t, int64(500000), cfg.Limits.MaxVerified)
	assert.Equal(t, 100, cfg.Reconciler.SweepLimit)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WITHDRAWAL_FEE_CAP", "100")
	t.Setenv("WITHDRAWAL_MIN", "2000")
	t.Setenv("RECONCILER_STATUS_INTERVAL", "30s")

	cfg := Load()

	assert.Equal(t, int64(100), cfg.Fees.Cap)
	assert.Equal(t, int64(2000), cfg.Limits.Min)
	assert.Equal(t, "30s", cfg.Reconciler.StatusInterval.String())
}
