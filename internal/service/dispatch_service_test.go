package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cristianxmm/tv-signage-system/internal/config"
	"github.com/cristianxmm/tv-signage-system/internal/domain"
	"github.com/cristianxmm/tv-signage-system/internal/hub"
	"github.com/cristianxmm/tv-signage-system/internal/state"
)

func testWSConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		PingInterval:   30 * time.Second,
		PongWait:       60 * time.Second,
		WriteWait:      10 * time.Second,
		MaxMessageSize: 4096,
	}
}

type fixture struct {
	hub   *hub.Hub
	store *state.MemoryStore
	svc   DispatchService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	h := hub.NewHub(testWSConfig())
	go h.Run()
	store := state.NewMemoryStore()
	return &fixture{
		hub:   h,
		store: store,
		svc:   NewDispatchService(h, store, nil),
	}
}

func (f *fixture) connect(t *testing.T, id string) *hub.Client {
	t.Helper()
	before := f.hub.ClientCount()
	c := hub.NewClient(id, f.hub, nil, testWSConfig())
	f.hub.Register(c)
	deadline := time.Now().Add(time.Second)
	for f.hub.ClientCount() <= before && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if f.hub.ClientCount() <= before {
		t.Fatal("client was not registered in time")
	}
	return c
}

func recvDescriptor(t *testing.T, c *hub.Client) *domain.ContentDescriptor {
	t.Helper()
	raw := recvRaw(t, c)
	var desc domain.ContentDescriptor
	if err := json.Unmarshal(raw, &desc); err != nil {
		t.Fatalf("unmarshal descriptor: %v (raw: %s)", err, raw)
	}
	return &desc
}

func recvRaw(t *testing.T, c *hub.Client) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

// drainJoinAck consumes the zone_joined acknowledgement sent on every join.
func drainJoinAck(t *testing.T, c *hub.Client) {
	t.Helper()
	raw := recvRaw(t, c)
	var base domain.BaseMessage
	if err := json.Unmarshal(raw, &base); err != nil || base.Type != domain.MsgTypeZoneJoined {
		t.Fatalf("expected zone_joined ack, got: %s", raw)
	}
}

func expectSilence(t *testing.T, c *hub.Client) {
	t.Helper()
	select {
	case msg := <-c.Send:
		t.Fatalf("unexpected message: %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishRejectsInvalidDescriptor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		desc *domain.ContentDescriptor
		want error
	}{
		{"missing target", &domain.ContentDescriptor{Type: domain.ContentImage, URL: "/uploads/a.jpg"}, domain.ErrMissingTarget},
		{"empty payload", &domain.ContentDescriptor{Target: "recepcion", Type: domain.ContentImage}, domain.ErrEmptyContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.Publish(ctx, tt.desc)
			if !errors.Is(err, tt.want) {
				t.Errorf("Publish() = %v, want %v", err, tt.want)
			}
		})
	}

	// Nothing reached the cache.
	if desc, _ := f.store.Resolve(ctx, "recepcion"); desc != nil {
		t.Errorf("rejected publish reached the cache: %+v", desc)
	}
}

func TestPublishToZoneIsExclusive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sales := f.connect(t, "sales-1")
	warehouse := f.connect(t, "warehouse-1")
	f.svc.HandleJoin(ctx, sales, "sales")
	drainJoinAck(t, sales)
	f.svc.HandleJoin(ctx, warehouse, "warehouse")
	drainJoinAck(t, warehouse)

	err := f.svc.Publish(ctx, &domain.ContentDescriptor{
		Target: "sales", Type: domain.ContentImage, URL: "/uploads/a.jpg",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	got := recvDescriptor(t, sales)
	if got.URL != "/uploads/a.jpg" || got.Target != "sales" {
		t.Errorf("sales received %+v", got)
	}
	expectSilence(t, warehouse)
}

func TestPublishAllReachesEveryConnection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	joined := f.connect(t, "d1")
	f.svc.HandleJoin(ctx, joined, "recepcion")
	drainJoinAck(t, joined)
	neverJoined := f.connect(t, "d2")

	err := f.svc.Publish(ctx, &domain.ContentDescriptor{
		Target: domain.TargetAll, Type: domain.ContentImage, URL: "/uploads/a.jpg",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	recvDescriptor(t, joined)
	recvDescriptor(t, neverJoined)
}

func TestJoinReplaysCachedState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	gallery := &domain.ContentDescriptor{
		Target:  "sales",
		Type:    domain.ContentGallery,
		URLs:    []string{"/uploads/a.jpg", "/uploads/b.jpg"},
		Options: &domain.DisplayOptions{AutoPlay: true, DurationSeconds: 10},
	}
	if err := f.svc.Publish(ctx, gallery); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	// Both displays connect after the publish; only the joiner gets replay.
	joiner := f.connect(t, "d1")
	bystander := f.connect(t, "d2")

	if err := f.svc.HandleJoin(ctx, joiner, "sales"); err != nil {
		t.Fatalf("HandleJoin: %v", err)
	}
	drainJoinAck(t, joiner)

	got := recvDescriptor(t, joiner)
	if got.Type != domain.ContentGallery || len(got.URLs) != 2 {
		t.Errorf("replay = %+v, want the cached gallery", got)
	}
	if got.Options == nil || got.Options.DurationSeconds != 10 {
		t.Errorf("replay options = %+v", got.Options)
	}
	expectSilence(t, joiner)
	expectSilence(t, bystander)
}

func TestJoinWithNoStateReplaysNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.connect(t, "d1")
	if err := f.svc.HandleJoin(ctx, c, "recepcion"); err != nil {
		t.Fatalf("HandleJoin: %v", err)
	}
	drainJoinAck(t, c)
	expectSilence(t, c)
}

func TestDoublePublishDeliversTwiceCacheUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.connect(t, "d1")
	f.svc.HandleJoin(ctx, c, "recepcion")
	drainJoinAck(t, c)

	desc := &domain.ContentDescriptor{
		Target: "recepcion", Type: domain.ContentImage, URL: "/uploads/a.jpg",
	}
	f.svc.Publish(ctx, desc)
	f.svc.Publish(ctx, desc)

	// Broadcast is not deduplicated.
	recvDescriptor(t, c)
	recvDescriptor(t, c)

	got, _ := f.store.Resolve(ctx, "recepcion")
	if got == nil || got.URL != "/uploads/a.jpg" {
		t.Errorf("Resolve after double publish = %+v", got)
	}
}

// TestGlobalThenZoneOverrideScenario walks the full operator flow: a global
// image, a display joining after it, a zone video override, and a second
// display joining after the override.
func TestGlobalThenZoneOverrideScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Publish {target: all, image a.jpg} with no one connected.
	f.svc.Publish(ctx, &domain.ContentDescriptor{
		Target: domain.TargetAll, Type: domain.ContentImage, URL: "/uploads/a.jpg",
	})

	// D1 connects and joins "recepcion": replay of the global image.
	d1 := f.connect(t, "d1")
	f.svc.HandleJoin(ctx, d1, "recepcion")
	drainJoinAck(t, d1)
	got := recvDescriptor(t, d1)
	if got.Target != domain.TargetAll || got.URL != "/uploads/a.jpg" {
		t.Fatalf("D1 replay = %+v, want the global image", got)
	}

	// A video published to "recepcion" arrives live.
	f.svc.Publish(ctx, &domain.ContentDescriptor{
		Target: "recepcion", Type: domain.ContentVideo, URL: "/uploads/b.mp4",
	})
	got = recvDescriptor(t, d1)
	if got.Type != domain.ContentVideo || got.URL != "/uploads/b.mp4" {
		t.Fatalf("D1 live update = %+v, want the zone video", got)
	}

	// D2 joins "recepcion" afterwards: the zone override wins, not the
	// older global image.
	d2 := f.connect(t, "d2")
	f.svc.HandleJoin(ctx, d2, "recepcion")
	drainJoinAck(t, d2)
	got = recvDescriptor(t, d2)
	if got.Target != "recepcion" || got.URL != "/uploads/b.mp4" {
		t.Fatalf("D2 replay = %+v, want the zone video", got)
	}
}

func TestDisconnectLeavesCacheIntact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.connect(t, "d1")
	f.svc.HandleJoin(ctx, c, "recepcion")
	drainJoinAck(t, c)

	f.svc.Publish(ctx, &domain.ContentDescriptor{
		Target: "recepcion", Type: domain.ContentImage, URL: "/uploads/a.jpg",
	})
	recvDescriptor(t, c)

	f.svc.HandleDisconnect(ctx, c)
	f.hub.Unregister(c)

	desc, err := f.svc.CurrentState(ctx, "recepcion")
	if err != nil {
		t.Fatalf("CurrentState: %v", err)
	}
	if desc == nil || desc.URL != "/uploads/a.jpg" {
		t.Errorf("content assignment did not survive disconnect: %+v", desc)
	}
}
