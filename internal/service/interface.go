package service

import (
	"context"

	"github.com/cristianxmm/tv-signage-system/internal/domain"
	"github.com/cristianxmm/tv-signage-system/internal/hub"
)

// DispatchService is the publish/subscribe core: it fans published content
// out to the right displays and brings (re)connecting displays back to the
// content they should currently show.
type DispatchService interface {
	// Publish records the descriptor as the current content for its
	// target and delivers it to every matching display.
	Publish(ctx context.Context, desc *domain.ContentDescriptor) error

	// HandleJoin subscribes the display to a zone, replacing any previous
	// membership, and replays the zone's current content to that display
	// alone.
	HandleJoin(ctx context.Context, client *hub.Client, zone string) error

	// HandleDisconnect drops the display's membership. Content assignment
	// outlives the session.
	HandleDisconnect(ctx context.Context, client *hub.Client) error

	// CurrentState returns what a display joining the zone right now
	// would be shown, or nil when nothing is assigned.
	CurrentState(ctx context.Context, zone string) (*domain.ContentDescriptor, error)

	Stop() error
}
