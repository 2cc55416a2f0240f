package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSweepRemovesOnlyStaleUploads(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	for _, key := range []string{"old.jpg", "fresh.jpg"} {
		if err := s.Write(ctx, key, strings.NewReader("x"), 1, "image/jpeg"); err != nil {
			t.Fatalf("Write(%s): %v", key, err)
		}
	}

	// Backdate one file past the retention window.
	stale := time.Now().Add(-40 * 24 * time.Hour)
	if err := os.Chtimes(filepath.Join(s.BasePath(), "old.jpg"), stale, stale); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	c := NewCleaner(s, 30, time.Hour)
	removed, err := c.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	files, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(files) != 1 || files[0].Key != "fresh.jpg" {
		t.Errorf("List = %+v, want only fresh.jpg", files)
	}
}

func TestSweepEmptyStore(t *testing.T) {
	s := newTestLocal(t)

	c := NewCleaner(s, 30, time.Hour)
	removed, err := c.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}

func TestTriggerCausesSweep(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	if err := s.Write(ctx, "old.jpg", strings.NewReader("x"), 1, "image/jpeg"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	stale := time.Now().Add(-40 * 24 * time.Hour)
	if err := os.Chtimes(filepath.Join(s.BasePath(), "old.jpg"), stale, stale); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	c := NewCleaner(s, 30, time.Hour)
	c.Start()
	defer c.Stop()

	c.Trigger()

	deadline := time.After(2 * time.Second)
	for {
		files, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(files) == 0 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("stale upload still present after trigger: %+v", files)
		case <-time.After(10 * time.Millisecond):
		}
	}
}
