package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrLockTimeout is returned when a session lock could not be acquired before
// the context ended.
var ErrLockTimeout = errors.New("session is busy")

// SessionLocker serializes mutations of one consultation. The returned unlock
// func must be called exactly once.
type SessionLocker interface {
	Lock(ctx context.Context, sessionID uuid.UUID) (unlock func(), err error)
}

type localSessionLocker struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

// NewLocalSessionLocker locks within this process only. Use the redis locker
// when several replicas serve the same database.
func NewLocalSessionLocker() SessionLocker {
	return &localSessionLocker{slots: make(map[uuid.UUID]*lockSlot)}
}

func (l *localSessionLocker) Lock(ctx context.Context, sessionID uuid.UUID) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[sessionID]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[sessionID] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(sessionID, slot)
		return nil, ErrLockTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.ch
			l.release(sessionID, slot)
		})
	}, nil
}

func (l *localSessionLocker) release(sessionID uuid.UUID, slot *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, sessionID)
	}
}
