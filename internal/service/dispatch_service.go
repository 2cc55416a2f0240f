package service

import (
	"context"
	"fmt"

	"github.com/cristianxmm/tv-signage-system/internal/audit"
	"github.com/cristianxmm/tv-signage-system/internal/domain"
	"github.com/cristianxmm/tv-signage-system/internal/events"
	"github.com/cristianxmm/tv-signage-system/internal/hub"
	"github.com/cristianxmm/tv-signage-system/internal/log"
	"github.com/cristianxmm/tv-signage-system/internal/metrics"
	"github.com/cristianxmm/tv-signage-system/internal/state"
)

type dispatchService struct {
	hub      *hub.Hub
	state    state.Store
	producer events.Producer
}

func NewDispatchService(h *hub.Hub, store state.Store, producer events.Producer) DispatchService {
	if producer == nil {
		producer = events.NoopProducer{}
	}
	return &dispatchService{
		hub:      h,
		state:    store,
		producer: producer,
	}
}

// Publish validates the descriptor, records it as the last known state for
// its target, and fans it out. The cache write and the fan-out are not
// atomic with respect to concurrent publishes to the same target: the
// cache reflects whichever publish completes last, which is fine because
// every publish is an independent operator action.
func (s *dispatchService) Publish(ctx context.Context, desc *domain.ContentDescriptor) error {
	if err := desc.Validate(); err != nil {
		return err
	}

	if err := s.state.Set(ctx, desc); err != nil {
		return fmt.Errorf("failed to record content state: %w", err)
	}

	// Fan-out is fire-and-forget: a closed or slow connection is dropped
	// by the hub, never surfaced to the publisher.
	var err error
	if desc.Target == domain.TargetAll {
		err = s.hub.BroadcastAll(desc)
	} else {
		err = s.hub.BroadcastToZone(desc.Target, desc)
	}
	if err != nil {
		return fmt.Errorf("failed to broadcast content: %w", err)
	}

	metrics.PublishesTotal.WithLabelValues(string(desc.Type)).Inc()
	audit.LogWithDetail(ctx, audit.ActionPublish, "", desc.Target, "content published")

	if err := s.producer.ContentPublished(ctx, desc); err != nil {
		// Best effort only; the displays already have the update.
		lw := log.Ctx(ctx)
		lw.Warn().Err(err).Msg("failed to emit published event")
	}

	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldTarget, desc.Target).
		Str(log.FieldContentType, string(desc.Type)).
		Msg("content dispatched")

	return nil
}

// HandleJoin subscribes the client to the zone and unicasts the current
// content for it. The join takes effect before the replay lookup, so an
// update published in between is not lost: the client receives it either
// as the replay or as a live broadcast.
func (s *dispatchService) HandleJoin(ctx context.Context, client *hub.Client, zone string) error {
	s.hub.JoinZone(client, zone)
	metrics.ZoneJoinsTotal.Inc()
	audit.LogWithDetail(ctx, audit.ActionJoinZone, client.ID, zone, "display joined zone")

	if err := client.SendMessage(&domain.ZoneJoinedMessage{
		Type: domain.MsgTypeZoneJoined,
		Zone: zone,
	}); err != nil {
		return err
	}

	desc, err := s.state.Resolve(ctx, zone)
	if err != nil {
		return fmt.Errorf("failed to resolve current state: %w", err)
	}
	if desc == nil {
		// Nothing assigned: the display keeps whatever it was showing.
		return nil
	}

	metrics.ReplaysTotal.Inc()
	l := log.Ctx(ctx)
	l.Debug().
		Str(log.FieldClientID, client.ID).
		Str(log.FieldZone, zone).
		Str(log.FieldContentType, string(desc.Type)).
		Msg("replayed current content")

	return client.SendMessage(desc)
}

// HandleDisconnect is invoked by the transport when a connection closes.
// The hub drops the membership on unregister; the last-state cache is
// deliberately untouched.
func (s *dispatchService) HandleDisconnect(ctx context.Context, client *hub.Client) error {
	audit.Log(ctx, audit.ActionDisconnect, client.ID, "display disconnected")
	return nil
}

// CurrentState mirrors the replay lookup for the inspection API.
func (s *dispatchService) CurrentState(ctx context.Context, zone string) (*domain.ContentDescriptor, error) {
	return s.state.Resolve(ctx, zone)
}

func (s *dispatchService) Stop() error {
	if err := s.producer.Close(); err != nil {
		return fmt.Errorf("failed to close event producer: %w", err)
	}
	return nil
}
