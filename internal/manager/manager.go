package manager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"cratekeeper/internal/collection"
	"cratekeeper/internal/services"
)

// Loader fetches the raw bytes of a backing collection document.
type Loader interface {
	Load(ctx context.Context, locator string) ([]byte, error)
}

// Persister writes a serialized collection document back to its source.
type Persister interface {
	Persist(ctx context.Context, locator string, data []byte) error
}

// Recorder observes document lifecycle events. The source registry implements
// it; a nil recorder disables the callbacks.
type Recorder interface {
	RecordLoad(ctx context.Context, userID, locator string, trackCount int)
}

type entryKey struct {
	userID  string
	locator string
}

// entry is one cached document. The RWMutex serializes mutations per
// (user, locator) while letting reads share the last-persisted snapshot.
type entry struct {
	mu  sync.RWMutex
	doc *collection.Document
}

// Manager caches one collection document per (user, source) pair and owns the
// load-mutate-persist discipline around it. Every mutation is synchronous: it
// either fully lands in the backing source before Mutate returns, or the
// cache entry is dropped so the next access reloads the last known-good
// state.
type Manager struct {
	loader    Loader
	persister Persister
	recorder  Recorder
	logger    *slog.Logger

	mu      sync.Mutex
	entries map[entryKey]*entry
}

// Option customizes a Manager.
type Option func(*Manager)

// WithRecorder attaches a lifecycle recorder.
func WithRecorder(recorder Recorder) Option {
	return func(m *Manager) { m.recorder = recorder }
}

// New constructs a Manager around a loader/persister pair.
func New(loader Loader, persister Persister, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		loader:    loader,
		persister: persister,
		logger:    logger,
		entries:   make(map[entryKey]*entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// View runs fn against the cached document under a shared lock. The document
// must not be mutated through this path.
func (m *Manager) View(ctx context.Context, userID, locator string, fn func(*collection.Document) error) error {
	ent := m.entry(userID, locator)
	ent.mu.RLock()
	loaded := ent.doc != nil
	ent.mu.RUnlock()

	if !loaded {
		// Upgrade to an exclusive lock to load.
		ent.mu.Lock()
		if ent.doc == nil {
			if err := m.load(ctx, userID, locator, ent); err != nil {
				ent.mu.Unlock()
				return err
			}
		}
		ent.mu.Unlock()
	}

	ent.mu.RLock()
	defer ent.mu.RUnlock()
	if ent.doc == nil {
		return services.Wrap(services.ErrNotFound, "manager", "view", "document dropped mid-read", nil)
	}
	return fn(ent.doc)
}

// Mutate runs fn against the document under the entry's exclusive lock and,
// on success, persists the whole document back to its source before
// returning. If fn or the persist fails the cached document is dropped so no
// reader can observe memory that disagrees with the backing store.
func (m *Manager) Mutate(ctx context.Context, userID, locator string, fn func(*collection.Document) error) error {
	ent := m.entry(userID, locator)
	ent.mu.Lock()
	defer ent.mu.Unlock()

	if ent.doc == nil {
		if err := m.load(ctx, userID, locator, ent); err != nil {
			return err
		}
	}

	if err := fn(ent.doc); err != nil {
		// The operation may have partially mutated memory before failing;
		// force a reload on next access.
		ent.doc = nil
		return err
	}

	data, err := ent.doc.Serialize()
	if err != nil {
		ent.doc = nil
		return err
	}
	if err := m.persister.Persist(ctx, locator, data); err != nil {
		ent.doc = nil
		return services.Wrap(services.ErrExternal, "manager", "persist",
			fmt.Sprintf("source %q", locator), err)
	}
	return nil
}

// Invalidate drops every cached document belonging to userID, forcing a
// reparse on next access. Called after the backing source changes outside the
// engine or after deletion.
func (m *Manager) Invalidate(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if key.userID == userID {
			delete(m.entries, key)
		}
	}
	m.logger.Debug("cache invalidated", slog.String("user", userID))
}

// InvalidateSource drops the cached document for one (user, source) pair.
func (m *Manager) InvalidateSource(userID, locator string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, entryKey{userID: userID, locator: locator})
}

func (m *Manager) entry(userID, locator string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := entryKey{userID: userID, locator: locator}
	ent, ok := m.entries[key]
	if !ok {
		ent = &entry{}
		m.entries[key] = ent
	}
	return ent
}

// load parses the backing source into a fresh document. Callers hold the
// entry's exclusive lock.
func (m *Manager) load(ctx context.Context, userID, locator string, ent *entry) error {
	data, err := m.loader.Load(ctx, locator)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "manager", "load",
			fmt.Sprintf("source %q", locator), err)
	}
	doc, err := collection.Load(data)
	if err != nil {
		return err
	}
	ent.doc = doc
	m.logger.Info("collection loaded",
		slog.String("user", userID),
		slog.String("source", locator),
		slog.Int("tracks", doc.Tracks().Len()))
	if m.recorder != nil {
		m.recorder.RecordLoad(ctx, userID, locator, doc.Tracks().Len())
	}
	return nil
}
