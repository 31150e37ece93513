package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cratekeeper/internal/services"
)

// Source is one registered collection source for a user.
type Source struct {
	ID           string
	UserID       string
	Locator      string
	DisplayName  string
	RegisteredAt time.Time
	LastLoadedAt *time.Time
	TrackCount   int
}

// Register adds a source for userID. Registering the same locator twice for
// one user is a conflict.
func (s *Store) Register(ctx context.Context, userID, locator, displayName string) (*Source, error) {
	userID = strings.TrimSpace(userID)
	locator = strings.TrimSpace(locator)
	if userID == "" || locator == "" {
		return nil, services.Wrap(services.ErrValidation, "registry", "register",
			"user id and locator are required", nil)
	}
	if strings.TrimSpace(displayName) == "" {
		displayName = locator
	}

	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(ctx,
		`INSERT INTO sources (id, user_id, locator, display_name, registered_at)
         VALUES (?, ?, ?, ?, ?)`,
		id, userID, locator, displayName, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, services.Wrap(services.ErrConflict, "registry", "register",
				fmt.Sprintf("source %q already registered for user %q", locator, userID), nil)
		}
		return nil, fmt.Errorf("insert source: %w", err)
	}

	return s.Get(ctx, userID, id)
}

// Get returns one source by id, scoped to userID.
func (s *Store) Get(ctx context.Context, userID, id string) (*Source, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, locator, display_name, registered_at, last_loaded_at, track_count
         FROM sources WHERE user_id = ? AND id = ?`, userID, id)
	source, err := scanSource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "registry", "get",
			fmt.Sprintf("source %q for user %q", id, userID), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("query source: %w", err)
	}
	return source, nil
}

// List returns the user's sources in registration order.
func (s *Store) List(ctx context.Context, userID string) ([]*Source, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, locator, display_name, registered_at, last_loaded_at, track_count
         FROM sources WHERE user_id = ? ORDER BY registered_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var sources []*Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

// Delete removes a source by id, scoped to userID.
func (s *Store) Delete(ctx context.Context, userID, id string) error {
	res, err := s.execWithRetry(ctx, `DELETE FROM sources WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "registry", "delete",
			fmt.Sprintf("source %q for user %q", id, userID), nil)
	}
	return nil
}

// TouchLoaded stamps a source's last load time and track count.
func (s *Store) TouchLoaded(ctx context.Context, userID, locator string, trackCount int) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(ctx,
		`UPDATE sources SET last_loaded_at = ?, track_count = ?
         WHERE user_id = ? AND locator = ?`,
		now, trackCount, userID, locator)
	if err != nil {
		return fmt.Errorf("touch source: %w", err)
	}
	return nil
}

// RecordLoad satisfies the manager's load recorder. Loads of sources that
// were never registered are not an error and leave the catalog untouched.
func (s *Store) RecordLoad(ctx context.Context, userID, locator string, trackCount int) {
	_ = s.TouchLoaded(ctx, userID, locator, trackCount)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*Source, error) {
	var (
		source     Source
		registered string
		loaded     sql.NullString
	)
	if err := row.Scan(&source.ID, &source.UserID, &source.Locator, &source.DisplayName,
		&registered, &loaded, &source.TrackCount); err != nil {
		return nil, err
	}
	ts, err := time.Parse(time.RFC3339Nano, registered)
	if err != nil {
		return nil, fmt.Errorf("parse registered_at: %w", err)
	}
	source.RegisteredAt = ts
	if loaded.Valid {
		ts, err := time.Parse(time.RFC3339Nano, loaded.String)
		if err != nil {
			return nil, fmt.Errorf("parse last_loaded_at: %w", err)
		}
		source.LastLoadedAt = &ts
	}
	return &source, nil
}
