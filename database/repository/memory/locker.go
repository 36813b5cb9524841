package memoryRepo

import (
	"context"
	"sync"
	"time"

	"mentorly/utils"
)

// Locker is the in-process counterpart of utils.RedisLocker.
type Locker struct {
	mu   sync.Mutex
	held map[string]time.Time
}

func NewLocker() *Locker {
	return &Locker{held: make(map[string]time.Time)}
}

func (l *Locker) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if exp, ok := l.held[key]; ok && time.Now().Before(exp) {
		return nil, utils.ErrLockHeld
	}
	l.held[key] = time.Now().Add(ttl)
	return func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}, nil
}
