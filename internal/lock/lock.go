package lock

import "context"

// Locker serializes work across processes sharing one backend.
type Locker interface {
	Acquire(ctx context.Context, lockID int64) error
	Release(ctx context.Context, lockID int64) error
}

// WithLock runs fn while holding lockID.
func WithLock(ctx context.Context, l Locker, lockID int64, fn func() error) (err error) {
	if err := l.Acquire(ctx, lockID); err != nil {
		return err
	}
	defer func() {
		if relErr := l.Release(context.WithoutCancel(ctx), lockID); relErr != nil && err == nil {
			err = relErr
		}
	}()
	return fn()
}
