// Package sqlite provides a read-through profile cache backed by an
// embedded SQLite database. The backend stays authoritative; the cache
// only shaves repeat lookups inside its TTL and survives restarts,
// which an in-memory map would not.
//
// modernc.org/sqlite is a pure Go driver — no CGo, so cross-compiling
// the client stays trivial. Use ":memory:" as the path in tests.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/chymezy/decentra-client/internal/apperror"
	"github.com/chymezy/decentra-client/internal/model"
)

// DefaultTTL is how long a cached profile is served before a fresh
// backend read is forced.
const DefaultTTL = 5 * time.Minute

// ProfileCache stores profiles keyed by user id, each stamped with its
// fetch time.
type ProfileCache struct {
	conn *sql.DB
	ttl  time.Duration
	now  func() time.Time
}

// New opens (or creates) the cache database at path and runs migrations.
func New(path string, ttl time.Duration) (*ProfileCache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: setting WAL mode: %w", err)
	}

	c := &ProfileCache{conn: conn, ttl: ttl, now: time.Now}
	if err := c.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: running migrations: %w", err)
	}
	return c, nil
}

// Close closes the underlying connection pool.
func (c *ProfileCache) Close() error {
	return c.conn.Close()
}

func (c *ProfileCache) migrate() error {
	_, err := c.conn.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			user_id    TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			fetched_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating profiles table: %w", err)
	}
	return nil
}

// Get returns the cached profile for id, or a not-found error when the
// entry is absent or older than the TTL. Stale rows are left in place;
// Put overwrites them on the next successful fetch.
func (c *ProfileCache) Get(ctx context.Context, id model.UserID) (*model.Profile, error) {
	var (
		payload   string
		fetchedAt int64
	)
	err := c.conn.QueryRowContext(ctx,
		"SELECT payload, fetched_at FROM profiles WHERE user_id = ?", string(id),
	).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound("cached profile", string(id))
	}
	if err != nil {
		return nil, fmt.Errorf("cache: reading profile %s: %w", id, err)
	}

	if c.now().Sub(time.Unix(fetchedAt, 0)) > c.ttl {
		return nil, apperror.NotFound("cached profile", string(id))
	}

	var p model.Profile
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, fmt.Errorf("cache: decoding profile %s: %w", id, err)
	}
	return &p, nil
}

// Put stores or replaces the profile, stamping it with the current time.
func (c *ProfileCache) Put(ctx context.Context, p *model.Profile) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("cache: encoding profile %s: %w", p.ID, err)
	}
	_, err = c.conn.ExecContext(ctx, `
		INSERT INTO profiles (user_id, payload, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at
	`, string(p.ID), string(payload), c.now().Unix())
	if err != nil {
		return fmt.Errorf("cache: writing profile %s: %w", p.ID, err)
	}
	return nil
}

// Invalidate drops a single entry, used after the owner edits their
// profile so the next read goes to the backend.
func (c *ProfileCache) Invalidate(ctx context.Context, id model.UserID) error {
	if _, err := c.conn.ExecContext(ctx, "DELETE FROM profiles WHERE user_id = ?", string(id)); err != nil {
		return fmt.Errorf("cache: invalidating profile %s: %w", id, err)
	}
	return nil
}
