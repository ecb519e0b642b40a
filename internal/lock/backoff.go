package lock

import (
	"context"
	"time"
)

// maxAttempts is the bounded-attempt ceiling of spec.md §4.3: attempts
// n = 1..10, sleeping n seconds between attempts.
const maxAttempts = 10

// BoundedAcquirer wraps a DistributedLock with the linear-backoff,
// bounded-attempt acquire of spec.md §4.3.
type BoundedAcquirer struct {
	lock  DistributedLock
	sleep func(time.Duration)
}

func NewBoundedAcquirer(l DistributedLock) *BoundedAcquirer {
	return &BoundedAcquirer{lock: l, sleep: time.Sleep}
}

// AcquireBounded attempts up to maxAttempts acquires of id, sleeping n
// seconds between the n-th and (n+1)-th attempt. Returns true as soon
// as an attempt succeeds, false once attempts are exhausted.
func (b *BoundedAcquirer) AcquireBounded(ctx context.Context, id string) (bool, error) {
	for n := 1; n <= maxAttempts; n++ {
		ok, err := b.lock.Acquire(ctx, id)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		if n == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}
		b.sleep(time.Duration(n) * time.Second)
	}
	return false, nil
}

// Release delegates to the wrapped lock.
func (b *BoundedAcquirer) Release(ctx context.Context, id string) error {
	return b.lock.Release(ctx, id)
}
