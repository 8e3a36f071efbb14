// Package xsync provides a mutex that reports locks held for too long.
package xsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/facebookincubator/go-belt/tool/experimental/errmon"
	"github.com/facebookincubator/go-belt/tool/logger"
)

// DeadlockTimeout is how long a lock may be held before it is reported.
var DeadlockTimeout = time.Minute

func fixCtx(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}

type Mutex struct {
	mutex sync.Mutex

	cancelFunc       context.CancelFunc
	deadlockNotifier *time.Timer
}

func (m *Mutex) ManualLock(ctx context.Context) {
	ctx = fixCtx(ctx)
	noLogging := IsNoLogging(ctx)
	if !noLogging {
		logger.Tracef(ctx, "locking")
	}
	m.mutex.Lock()

	ctx, m.cancelFunc = context.WithCancel(ctx)
	deadlockNotifier := time.NewTimer(DeadlockTimeout)
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-deadlockNotifier.C:
		}
		errmon.ObserveErrorCtx(ctx, fmt.Errorf("the lock is held for more than %v", DeadlockTimeout))
	}()
	m.deadlockNotifier = deadlockNotifier

	if !noLogging {
		logger.Tracef(ctx, "locked")
	}
}

func (m *Mutex) ManualUnlock(ctx context.Context) {
	ctx = fixCtx(ctx)
	noLogging := IsNoLogging(ctx)
	if !noLogging {
		logger.Tracef(ctx, "unlocking")
	}

	m.deadlockNotifier.Stop()
	m.cancelFunc()
	m.deadlockNotifier, m.cancelFunc = nil, nil

	m.mutex.Unlock()
	if !noLogging {
		logger.Tracef(ctx, "unlocked")
	}
}

func (m *Mutex) Do(
	ctx context.Context,
	fn func(),
) {
	m.ManualLock(ctx)
	defer m.ManualUnlock(ctx)
	fn()
}

func DoR1[R0 any](
	ctx context.Context,
	m *Mutex,
	fn func() R0,
) R0 {
	var r0 R0
	m.Do(ctx, func() {
		r0 = fn()
	})
	return r0
}

func DoA1R1[A0, R0 any](
	ctx context.Context,
	m *Mutex,
	fn func(A0) R0,
	a0 A0,
) R0 {
	var r0 R0
	m.Do(ctx, func() {
		r0 = fn(a0)
	})
	return r0
}
