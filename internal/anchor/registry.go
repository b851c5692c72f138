// internal/anchor/registry.go
package anchor

import (
	"github.com/google/uuid"

	"github.com/xkilldash9x/anchor-cli/api/schemas"
)

// Registry maps element hashes to the descriptors they were computed from.
// It is scoped to a single demonstration session: created when the session
// starts, populated by the capture pipeline as elements are interacted with,
// read during selector back-fill, and discarded once the tool definition is
// finalized. Only the hash survives in the persisted artifact.
//
// The registry is written by a single producer during authoring and is
// read-only afterwards, so it carries no locking.
type Registry struct {
	sessionID string
	entries   map[string]schemas.ElementDescriptor
	order     []string
}

// NewRegistry creates an empty registry for a new demonstration session.
func NewRegistry() *Registry {
	return &Registry{
		sessionID: uuid.NewString(),
		entries:   make(map[string]schemas.ElementDescriptor),
	}
}

// SessionID identifies the demonstration session the registry belongs to.
func (r *Registry) SessionID() string { return r.sessionID }

// Register computes the hash for a descriptor, records the mapping, and
// returns the hash. A colliding hash overwrites the previous descriptor
// (last writer wins); with a 40-bit digest a collision within one session is
// vanishingly unlikely and not worth failing the capture over.
func (r *Registry) Register(desc schemas.ElementDescriptor, positionalIndex int) string {
	h := HashOrFallback(desc, positionalIndex)
	if _, exists := r.entries[h]; !exists {
		r.order = append(r.order, h)
	}
	r.entries[h] = desc
	return h
}

// Lookup returns the descriptor for a hash, if the session captured one.
func (r *Registry) Lookup(hash string) (schemas.ElementDescriptor, bool) {
	d, ok := r.entries[hash]
	return d, ok
}

// Len returns the number of distinct hashes captured this session.
func (r *Registry) Len() int { return len(r.entries) }

// Hashes returns the captured hashes in first-seen order.
func (r *Registry) Hashes() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
