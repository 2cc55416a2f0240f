package state

import (
	"context"
	"testing"

	"github.com/cristianxmm/tv-signage-system/internal/domain"
)

func imageDesc(target, url string) *domain.ContentDescriptor {
	return &domain.ContentDescriptor{Target: target, Type: domain.ContentImage, URL: url}
}

func TestResolveFallsBackToAll(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Set(ctx, imageDesc(domain.TargetAll, "/uploads/global.jpg")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	desc, err := store.Resolve(ctx, "recepcion")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if desc == nil || desc.URL != "/uploads/global.jpg" {
		t.Errorf("Resolve(recepcion) = %+v, want the all entry", desc)
	}
}

func TestResolveZoneOverridesAll(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Set(ctx, imageDesc(domain.TargetAll, "/uploads/global.jpg")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, imageDesc("recepcion", "/uploads/zone.jpg")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	desc, err := store.Resolve(ctx, "recepcion")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if desc == nil || desc.URL != "/uploads/zone.jpg" {
		t.Errorf("Resolve(recepcion) = %+v, want the zone entry", desc)
	}

	// A later global push must not clobber the zone override.
	if err := store.Set(ctx, imageDesc(domain.TargetAll, "/uploads/global2.jpg")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	desc, err = store.Resolve(ctx, "recepcion")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if desc == nil || desc.URL != "/uploads/zone.jpg" {
		t.Errorf("Resolve(recepcion) after global push = %+v, want the zone entry", desc)
	}
}

func TestResolveEmptyStore(t *testing.T) {
	store := NewMemoryStore()

	desc, err := store.Resolve(context.Background(), "recepcion")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if desc != nil {
		t.Errorf("Resolve on empty store = %+v, want nil", desc)
	}
}

func TestSetDoesNotAffectOtherZones(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.Set(ctx, imageDesc("recepcion", "/uploads/a.jpg"))
	store.Set(ctx, imageDesc("almacen", "/uploads/b.jpg"))

	desc, _ := store.Get(ctx, "recepcion")
	if desc == nil || desc.URL != "/uploads/a.jpg" {
		t.Errorf("Get(recepcion) = %+v, want the original entry", desc)
	}
}

func TestSetIsIdempotentForReads(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	desc := imageDesc("recepcion", "/uploads/a.jpg")

	store.Set(ctx, desc)
	first, _ := store.Resolve(ctx, "recepcion")
	store.Set(ctx, desc)
	second, _ := store.Resolve(ctx, "recepcion")

	if first.URL != second.URL || first.Target != second.Target {
		t.Errorf("repeated Set changed the resolved state: %+v vs %+v", first, second)
	}
}

func TestStoredDescriptorIsIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	desc := &domain.ContentDescriptor{
		Target: "recepcion",
		Type:   domain.ContentGallery,
		URLs:   []string{"/uploads/a.jpg"},
	}
	store.Set(ctx, desc)

	// Mutating the caller's copy must not change the cache.
	desc.URLs[0] = "/uploads/mutated.jpg"

	got, _ := store.Get(ctx, "recepcion")
	if got.URLs[0] != "/uploads/a.jpg" {
		t.Errorf("cache entry mutated through caller slice: %v", got.URLs)
	}
}
