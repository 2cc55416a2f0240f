package events

import (
	"context"

	"github.com/cristianxmm/tv-signage-system/internal/domain"
)

// Producer emits content-published events for downstream consumers
// (reporting, archival). Event delivery is best effort and never affects
// the publish itself.
type Producer interface {
	ContentPublished(ctx context.Context, desc *domain.ContentDescriptor) error
	Close() error
}

// NoopProducer is used when the event stream is disabled.
type NoopProducer struct{}

func (NoopProducer) ContentPublished(ctx context.Context, desc *domain.ContentDescriptor) error {
	return nil
}

func (NoopProducer) Close() error { return nil }
