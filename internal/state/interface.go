package state

import (
	"context"

	"github.com/cristianxmm/tv-signage-system/internal/domain"
)

// Store is the last-known-state cache: the record of what is currently
// assigned to each target. Writes are whole-descriptor replacements;
// entries are never deleted during the process lifetime.
type Store interface {
	// Set records the descriptor as the current content for its target,
	// overwriting any previous entry.
	Set(ctx context.Context, desc *domain.ContentDescriptor) error

	// Get returns the entry for exactly this target, or nil if absent.
	Get(ctx context.Context, target string) (*domain.ContentDescriptor, error)

	// Resolve returns the content a display joining the zone should show:
	// the zone's own entry if present, else the "all" entry, else nil.
	// A per-zone assignment always wins over a broadcast-to-all one.
	Resolve(ctx context.Context, zone string) (*domain.ContentDescriptor, error)
}
