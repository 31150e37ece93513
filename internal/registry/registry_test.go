package registry

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"cratekeeper/internal/services"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "registry.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRegisterAndList(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first, err := store.Register(ctx, "user-1", "/music/main.nml", "Main crate")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected generated id")
	}
	if first.DisplayName != "Main crate" {
		t.Fatalf("unexpected display name %q", first.DisplayName)
	}

	if _, err := store.Register(ctx, "user-1", "/music/festival.nml", ""); err != nil {
		t.Fatalf("register second: %v", err)
	}
	// Another user's sources must not leak into the listing.
	if _, err := store.Register(ctx, "user-2", "/music/main.nml", ""); err != nil {
		t.Fatalf("register other user: %v", err)
	}

	sources, err := store.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].Locator != "/music/main.nml" || sources[1].Locator != "/music/festival.nml" {
		t.Fatalf("unexpected order: %q, %q", sources[0].Locator, sources[1].Locator)
	}
	// Display name falls back to the locator.
	if sources[1].DisplayName != "/music/festival.nml" {
		t.Fatalf("unexpected fallback display name %q", sources[1].DisplayName)
	}
}

func TestRegisterDuplicateLocator(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if _, err := store.Register(ctx, "user-1", "/music/main.nml", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := store.Register(ctx, "user-1", "/music/main.nml", "again")
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	store := openStore(t)
	if _, err := store.Register(context.Background(), "user-1", "  ", ""); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	source, err := store.Register(ctx, "user-1", "/music/main.nml", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := store.Delete(ctx, "user-1", source.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "user-1", source.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := store.Get(ctx, "user-1", source.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteScopedToUser(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	source, err := store.Register(ctx, "user-1", "/music/main.nml", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := store.Delete(ctx, "user-2", source.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
}

func TestTouchLoaded(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	source, err := store.Register(ctx, "user-1", "/music/main.nml", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if source.LastLoadedAt != nil {
		t.Fatal("expected unloaded source")
	}

	store.RecordLoad(ctx, "user-1", "/music/main.nml", 42)

	reloaded, err := store.Get(ctx, "user-1", source.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reloaded.LastLoadedAt == nil {
		t.Fatal("expected last_loaded_at to be set")
	}
	if reloaded.TrackCount != 42 {
		t.Fatalf("expected track count 42, got %d", reloaded.TrackCount)
	}

	// Loads of unregistered sources are silently ignored.
	store.RecordLoad(ctx, "user-1", "/music/unknown.nml", 7)
}

func TestReopenKeepsSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")
	ctx := context.Background()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := store.Register(ctx, "user-1", "/music/main.nml", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	sources, err := reopened.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("expected 1 source after reopen, got %d", len(sources))
	}
}
