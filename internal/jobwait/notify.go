// Package jobwait provides the wake-up mechanism behind the shell's
// foreground wait. It is adapted from the teacher's watch.ModWatcher,
// which let callers block until a file was modified by maintaining a
// map of per-waiter channels and broadcasting to all of them on change;
// here the "modification" is a job-table transition (a CHLD-triggered
// delete, an INT/TSTP-triggered state change) rather than a filesystem
// event, but the listener bookkeeping is the same shape.
//
// spec.md describes the foreground wait as a one-second polling loop
// and explicitly permits "a stricter implementation may use a
// suspend-with-mask primitive" instead (see DESIGN.md's Open
// Question decisions on this point). internal/shell uses Notifier for exactly
// that: a goroutine parked in Wait wakes as soon as internal/sigctl
// calls Broadcast, rather than sleeping up to a full second past the
// event.
package jobwait

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// NewNotifier creates an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{
		listeners: make(map[uuid.UUID]chan struct{}),
	}
}

// Notifier lets any number of goroutines block until the next
// Broadcast call.
type Notifier struct {
	mutex     sync.Mutex
	listeners map[uuid.UUID]chan struct{}
}

// Wait blocks until Broadcast is called at least once after Wait was
// entered, or ctx is canceled.
func (n *Notifier) Wait(ctx context.Context) error {
	id := uuid.New()
	ch := make(chan struct{}, 1)

	n.mutex.Lock()
	n.listeners[id] = ch
	n.mutex.Unlock()

	defer func() {
		n.mutex.Lock()
		delete(n.listeners, id)
		n.mutex.Unlock()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}

// Broadcast wakes every goroutine currently blocked in Wait.
func (n *Notifier) Broadcast() {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	for _, ch := range n.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
