// Package lock serializes work on one withdrawal request at a time.
package lock

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var (
	// ErrEmptyKey is returned for a blank lock key.
	ErrEmptyKey = errors.New("lock key cannot be empty")
	// ErrNilFn is returned when there is nothing to run under the lock.
	ErrNilFn = errors.New("lock function is nil")
)

// Manager runs fn while holding the lock named key. The error returned by fn
// is passed through unchanged.
type Manager interface {
	WithLock(ctx context.Context, key string, fn func(context.Context) error) error
}

// WithdrawalKey is the lock key guarding one withdrawal request.
func WithdrawalKey(requestID string) string {
	return "lock:withdrawal:" + requestID
}

// Local is an in-process keyed mutex for single-instance deployments.
type Local struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

// NewLocal creates an in-process lock manager.
func NewLocal() *Local {
	return &Local{locks: make(map[string]*entry)}
}

// WithLock waits for key, honouring ctx cancellation while queued.
func (l *Local) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	if fn == nil {
		return ErrNilFn
	}
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}

	e := l.acquireRef(key)
	defer l.releaseRef(key, e)

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-e.ch }()

	return fn(ctx)
}

func (l *Local) acquireRef(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	return e
}

// releaseRef drops the entry once nobody holds or waits on it.
func (l *Local) releaseRef(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}
