package ticket

import (
	"context"
	"sync"

	"github.com/oakrp/warden/pkg/entities"
)

// Mutator applies a pure transformation to a ticket record. It receives a copy
// of the stored record; returning an error aborts the update without persisting.
type Mutator func(t *entities.Ticket) error

// Store is the durable mapping from channel ID to ticket record. It must
// survive process restarts; mutations on the same channel are serialized.
type Store interface {
	// Create persists a new ticket. It fails with ErrConflict if a non-deleted
	// record already exists for the ticket's channel.
	Create(ctx context.Context, t *entities.Ticket) error

	// Get returns the ticket for the channel, or ErrNotFound.
	Get(ctx context.Context, channelID string) (*entities.Ticket, error)

	// Update applies the mutator to the stored record and persists the result
	// atomically with respect to concurrent updates on the same channel. It
	// returns the updated record, or ErrNotFound.
	Update(ctx context.Context, channelID string, mutate Mutator) (*entities.Ticket, error)

	// Delete removes the ticket for the channel, or returns ErrNotFound.
	Delete(ctx context.Context, channelID string) error

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// keyedMutex serializes work per channel ID so concurrent transitions on the
// same ticket cannot lose updates, while different channels proceed in parallel.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock locks the mutex for the key and returns the unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = new(sync.Mutex)
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Forget drops the lock for a key once its ticket is gone.
func (k *keyedMutex) Forget(key string) {
	k.mu.Lock()
	delete(k.locks, key)
	k.mu.Unlock()
}
