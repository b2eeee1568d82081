// Package lock serializes admission for a single room. A lock never covers
// more than one room and acquisition is always bounded.
package lock

import (
	"context"

	"github.com/google/uuid"
)

// Unlock releases a held room lock. It is safe to call more than once.
type Unlock func()

// RoomLocker grants exclusive, time-bounded access to one room.
type RoomLocker interface {
	// Lock blocks until the room is held, the configured timeout elapses or
	// ctx is done. A timeout is reported as a BUSY domain error.
	Lock(ctx context.Context, roomID uuid.UUID) (Unlock, error)
}
