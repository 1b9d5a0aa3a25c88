// Package ledger owns the in-memory collections of filament spools and
// printer units. Every mutation is optimistic: the collection changes first,
// the persistence call follows, and a failed call restores the pre-mutation
// snapshot. Each ledger serializes its mutations behind its own mutex, so the
// snapshot/restore cycle of one operation can never be clobbered by another.
package ledger

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// provisionalPrefix marks client-assigned ids that the store has never seen.
const provisionalPrefix = "local-"

// NewProvisionalID returns a fresh client-side id for a record that has not
// been persisted yet. It is stripped before the persist call so the store
// assigns the canonical id.
func NewProvisionalID() string {
	return provisionalPrefix + uuid.NewString()
}

// IsProvisional reports whether id was assigned client-side.
func IsProvisional(id string) bool {
	return strings.HasPrefix(id, provisionalPrefix)
}

// applyOptimistic is the shared transactional-mutation cycle: snapshot the
// collection, apply the local change, run the persist call, and restore the
// snapshot when persistence fails. The caller must hold the ledger mutex for
// the whole call.
func applyOptimistic[T any](ctx context.Context, collection *[]T, clone func([]T) []T,
	apply func(), persist func(context.Context) error) error {
	backup := clone(*collection)
	apply()
	if err := persist(ctx); err != nil {
		*collection = backup
		return err
	}
	return nil
}
