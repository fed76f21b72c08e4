package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/amyangfei/redlock-go/v3/redlock"
	"go.uber.org/zap"

	"github.com/finpulse/monitor/pkg/logger"
)

// CycleLock guards the monitoring loop so that only one replica runs cycles
// at a time. Built on the Redlock algorithm with automatic renewal.
type CycleLock struct {
	lockManager *redlock.RedLock
	lockName    string
	ttl         time.Duration
	locked      bool
}

// NewCycleLock creates new cycle-runner lock
func NewCycleLock(lockManager *redlock.RedLock) *CycleLock {
	return &CycleLock{
		lockManager: lockManager,
		lockName:    "monitor:cycle-runner",
		ttl:         30 * time.Second,
		locked:      false,
	}
}

// TryAcquire attempts to acquire the cycle-runner lock.
// Returns true if this replica won, false if another replica holds it.
func (cl *CycleLock) TryAcquire(ctx context.Context) (bool, error) {
	expiry, err := cl.lockManager.Lock(ctx, cl.lockName, cl.ttl)
	if err != nil {
		logger.Debug("cycle lock already held by another replica",
			zap.String("lock_name", cl.lockName),
		)
		return false, nil
	}

	if expiry <= 0 {
		return false, fmt.Errorf("failed to acquire lock: invalid expiry %v", expiry)
	}

	cl.locked = true

	logger.Info("cycle-runner lock acquired",
		zap.String("lock_name", cl.lockName),
		zap.Duration("ttl", cl.ttl),
	)

	go cl.renewLock(ctx)

	return true, nil
}

// Release releases the cycle-runner lock.
func (cl *CycleLock) Release(ctx context.Context) error {
	if !cl.locked {
		return nil
	}

	if err := cl.lockManager.UnLock(ctx, cl.lockName); err != nil {
		logger.Warn("failed to release cycle lock (may have already expired)",
			zap.String("lock_name", cl.lockName),
			zap.Error(err),
		)
	} else {
		logger.Info("cycle-runner lock released",
			zap.String("lock_name", cl.lockName),
		)
	}

	cl.locked = false
	return nil
}

// renewLock extends the lock before it expires. Redlock-go has no built-in
// renewal, so extension is release+acquire at 2/3 of the TTL.
func (cl *CycleLock) renewLock(ctx context.Context) {
	renewInterval := (cl.ttl * 2) / 3
	ticker := time.NewTicker(renewInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if !cl.locked {
				return
			}

			if err := cl.lockManager.UnLock(ctx, cl.lockName); err != nil {
				logger.Error("cycle lock renewal failed (unlock)",
					zap.Error(err),
				)
				cl.locked = false
				return
			}

			expiry, err := cl.lockManager.Lock(ctx, cl.lockName, cl.ttl)
			if err != nil || expiry <= 0 {
				logger.Error("cycle lock lost - another replica may have taken over",
					zap.String("lock_name", cl.lockName),
					zap.Error(err),
				)
				cl.locked = false
				return
			}

			logger.Debug("cycle lock renewed",
				zap.Duration("expiry", expiry),
			)
		}
	}
}
