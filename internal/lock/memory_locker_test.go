package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanok-stay/service-booking/pkg/domain"
)

func TestMemoryRoomLocker_Exclusive(t *testing.T) {
	l := NewMemoryRoomLocker(5 * time.Second)
	roomID := uuid.New()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), roomID)
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, l.Held())
}

func TestMemoryRoomLocker_TimeoutIsBusy(t *testing.T) {
	l := NewMemoryRoomLocker(20 * time.Millisecond)
	roomID := uuid.New()

	unlock, err := l.Lock(context.Background(), roomID)
	require.NoError(t, err)
	defer unlock()

	_, err = l.Lock(context.Background(), roomID)
	assert.ErrorIs(t, err, domain.ErrBusy)
	assert.Equal(t, 1, l.Held())
}

func TestMemoryRoomLocker_RoomsAreIndependent(t *testing.T) {
	l := NewMemoryRoomLocker(20 * time.Millisecond)

	unlockA, err := l.Lock(context.Background(), uuid.New())
	require.NoError(t, err)
	defer unlockA()

	unlockB, err := l.Lock(context.Background(), uuid.New())
	require.NoError(t, err)
	unlockB()
	unlockB()
}

func TestMemoryRoomLocker_ContextCancelled(t *testing.T) {
	l := NewMemoryRoomLocker(time.Second)
	roomID := uuid.New()

	unlock, err := l.Lock(context.Background(), roomID)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Lock(ctx, roomID)
	assert.ErrorIs(t, err, context.Canceled)
}
