// Package lock provides per-resource serialization for the scheduling
// service. A booking or reschedule locks the doctor and room it touches,
// so conflicting operations on the same resource run one at a time while
// operations on disjoint resources proceed in parallel.
package lock

import (
	"context"
	"errors"
	"strconv"
)

// ErrNotAcquired is returned when a key is already held. Callers surface
// this as a prompt conflict rather than queuing behind the holder.
var ErrNotAcquired = errors.New("resource lock not acquired")

// Locker runs fn while holding every key in keys. Keys are acquired in a
// deterministic order so that two holders wanting overlapping sets cannot
// deadlock. If any key is contended, nothing is held and ErrNotAcquired
// is returned.
type Locker interface {
	WithLocks(ctx context.Context, keys []string, fn func(ctx context.Context) error) error
}

// DoctorKey and RoomKey name the two resource families the scheduler
// serializes on.
func DoctorKey(id string) string { return "lock:doctor:" + id }

func RoomKey(room int) string { return "lock:room:" + strconv.Itoa(room) }
