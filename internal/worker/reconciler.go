// internal/worker/reconciler.go
package worker

import (
	"context"
	"time"

	"giftwallet-service/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// WithdrawalReconciler is the slice of the withdrawal usecase the sweeps need.
type WithdrawalReconciler interface {
	ReconcileProcessing(ctx context.Context, limit int) error
	ReprocessStuckPending(ctx context.Context, minAge time.Duration, limit int) error
}

// Reconciler periodically settles withdrawals the event path missed: in-flight
// transfers whose webhook never arrived, and debited requests that never
// reached the provider. Each sweep takes a short redis lock so overlapping
// instances don't double-poll the gateway.
type Reconciler struct {
	withdrawals WithdrawalReconciler
	rdb         *redis.Client
	cfg         config.ReconcilerConfig
	logger      *zap.Logger
}

func NewReconciler(withdrawals WithdrawalReconciler, rdb *redis.Client, cfg config.ReconcilerConfig, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		withdrawals: withdrawals,
		rdb:         rdb,
		cfg:         cfg,
		logger:      logger,
	}
}

// Run blocks until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	statusTicker := time.NewTicker(r.cfg.StatusInterval)
	pendingTicker := time.NewTicker(r.cfg.PendingInterval)
	defer statusTicker.Stop()
	defer pendingTicker.Stop()

	r.logger.Info("reconciler started",
		zap.Duration("status_interval", r.cfg.StatusInterval),
		zap.Duration("pending_interval", r.cfg.PendingInterval))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-statusTicker.C:
			r.withLock(ctx, "reconciler:status", r.cfg.StatusInterval, func() {
				if err := r.withdrawals.ReconcileProcessing(ctx, r.cfg.SweepLimit); err != nil {
					r.logger.Error("status sweep failed", zap.Error(err))
				}
			})
		case <-pendingTicker.C:
			r.withLock(ctx, "reconciler:pending", r.cfg.PendingInterval, func() {
				if err := r.withdrawals.ReprocessStuckPending(ctx, r.cfg.PendingMinAge, r.cfg.SweepLimit); err != nil {
					r.logger.Error("pending sweep failed", zap.Error(err))
				}
			})
		}
	}
}

// withLock runs fn only if this instance wins the lock. The lock expires on
// its own; a sweep is safe to repeat, so crashes need no explicit release.
func (r *Reconciler) withLock(ctx context.Context, key string, ttl time.Duration, fn func()) {
	ok, err := r.rdb.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		// Redis being down shouldn't stop reconciliation; every transition
		// downstream is guarded by conditional updates anyway.
		r.logger.Warn("sweep lock unavailable, running unlocked", zap.Error(err), zap.String("key", key))
		fn()
		return
	}
	if !ok {
		return
	}
	defer r.rdb.Del(ctx, key)
	fn()
}
