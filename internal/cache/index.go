package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/llehouerou/reels/internal/db"
)

const (
	appName    = "reels"
	dbFileName = "cache.db"
)

// Entry is one cached media file.
type Entry struct {
	RemoteURI  string
	LocalURI   string
	Size       int64
	StoredAt   time.Time
	AccessedAt time.Time
}

// Index is the persistent remote to local URI map of the media cache.
type Index struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the index at path, or in the XDG data directory when path is
// empty.
func Open(path string) (*Index, error) {
	if path == "" {
		p, err := xdg.DataFile(filepath.Join(appName, dbFileName))
		if err != nil {
			return nil, err
		}
		path = p
	}

	conn, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	idx, err := newIndex(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return idx, nil
}

func newIndex(conn *sql.DB) (*Index, error) {
	if err := initSchema(conn); err != nil {
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &Index{db: conn, now: time.Now}, nil
}

// Close closes the database.
func (i *Index) Close() error {
	return i.db.Close()
}

// ResolvePlayableURI returns the local copy of remote and marks it as used.
// It returns ErrMiss when remote is not cached.
func (i *Index) ResolvePlayableURI(ctx context.Context, remote string) (string, error) {
	var local string
	err := i.db.QueryRowContext(ctx,
		`SELECT local_uri FROM media_cache WHERE remote_uri = ?`, remote,
	).Scan(&local)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrMiss
	}
	if err != nil {
		return "", fmt.Errorf("lookup %q: %w", remote, err)
	}

	_, err = i.db.ExecContext(ctx,
		`UPDATE media_cache SET accessed_at = ? WHERE remote_uri = ?`,
		i.now().UnixNano(), remote,
	)
	if err != nil {
		return "", fmt.Errorf("touch %q: %w", remote, err)
	}
	return local, nil
}

// Contains reports whether remote is cached.
func (i *Index) Contains(ctx context.Context, remote string) (bool, error) {
	var n int
	err := i.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM media_cache WHERE remote_uri = ?`, remote,
	).Scan(&n)
	return n > 0, err
}

// Put records that remote is available at local.
func (i *Index) Put(ctx context.Context, remote, local string, size int64) error {
	now := i.now().UnixNano()
	_, err := i.db.ExecContext(ctx, `
		INSERT INTO media_cache (remote_uri, local_uri, size, stored_at, accessed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(remote_uri) DO UPDATE SET
			local_uri = excluded.local_uri,
			size = excluded.size,
			stored_at = excluded.stored_at,
			accessed_at = excluded.accessed_at
	`, remote, local, size, now, now)
	if err != nil {
		return fmt.Errorf("store %q: %w", remote, err)
	}
	return nil
}

// Remove forgets remote.
func (i *Index) Remove(ctx context.Context, remote string) error {
	_, err := i.db.ExecContext(ctx, `DELETE FROM media_cache WHERE remote_uri = ?`, remote)
	return err
}

// Entries returns every entry, most recently used first.
func (i *Index) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := i.db.QueryContext(ctx, `
		SELECT remote_uri, local_uri, size, stored_at, accessed_at
		FROM media_cache
		ORDER BY accessed_at DESC, remote_uri
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var stored, accessed int64
		if err := rows.Scan(&e.RemoteURI, &e.LocalURI, &e.Size, &stored, &accessed); err != nil {
			return nil, err
		}
		e.StoredAt = time.Unix(0, stored)
		e.AccessedAt = time.Unix(0, accessed)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Size returns the total size of the cached files in bytes.
func (i *Index) Size(ctx context.Context) (int64, error) {
	var total sql.NullInt64
	err := i.db.QueryRowContext(ctx, `SELECT SUM(size) FROM media_cache`).Scan(&total)
	return db.NullInt64Value(total), err
}

// Trim evicts the least recently used entries until at most maxBytes are
// cached. It returns the evicted entries so their files can be deleted.
func (i *Index) Trim(ctx context.Context, maxBytes int64) ([]Entry, error) {
	var evicted []Entry
	err := db.WithTx(ctx, i.db, func(tx *sql.Tx) error {
		var total sql.NullInt64
		if err := tx.QueryRowContext(ctx, `SELECT SUM(size) FROM media_cache`).Scan(&total); err != nil {
			return err
		}
		size := db.NullInt64Value(total)
		if size <= maxBytes {
			return nil
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT remote_uri, local_uri, size
			FROM media_cache
			ORDER BY accessed_at ASC, remote_uri
		`)
		if err != nil {
			return err
		}
		for rows.Next() && size > maxBytes {
			var e Entry
			if err := rows.Scan(&e.RemoteURI, &e.LocalURI, &e.Size); err != nil {
				rows.Close()
				return err
			}
			evicted = append(evicted, e)
			size -= e.Size
		}
		if err := rows.Close(); err != nil {
			return err
		}

		for _, e := range evicted {
			if _, err := tx.ExecContext(ctx, `DELETE FROM media_cache WHERE remote_uri = ?`, e.RemoteURI); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("trim cache: %w", err)
	}
	return evicted, nil
}
