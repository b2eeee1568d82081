package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hanok-stay/service-booking/pkg/domain"
)

type roomSlot struct {
	sem  chan struct{}
	refs int
}

// MemoryRoomLocker is a per-room semaphore for a single process.
type MemoryRoomLocker struct {
	timeout time.Duration

	mu    sync.Mutex
	slots map[uuid.UUID]*roomSlot
}

// NewMemoryRoomLocker creates a locker that gives up after timeout.
func NewMemoryRoomLocker(timeout time.Duration) *MemoryRoomLocker {
	return &MemoryRoomLocker{
		timeout: timeout,
		slots:   make(map[uuid.UUID]*roomSlot),
	}
}

// Lock acquires the room's slot.
func (l *MemoryRoomLocker) Lock(ctx context.Context, roomID uuid.UUID) (Unlock, error) {
	slot := l.acquireSlot(roomID)

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	select {
	case slot.sem <- struct{}{}:
	case <-ctx.Done():
		l.releaseSlot(roomID)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, domain.NewBusyError("room is busy, please retry")
		}
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.sem
			l.releaseSlot(roomID)
		})
	}, nil
}

// Held returns the number of rooms with a holder or waiter.
func (l *MemoryRoomLocker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

func (l *MemoryRoomLocker) acquireSlot(roomID uuid.UUID) *roomSlot {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.slots[roomID]
	if !ok {
		slot = &roomSlot{sem: make(chan struct{}, 1)}
		l.slots[roomID] = slot
	}
	slot.refs++
	return slot
}

func (l *MemoryRoomLocker) releaseSlot(roomID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.slots[roomID]
	if !ok {
		return
	}
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, roomID)
	}
}
