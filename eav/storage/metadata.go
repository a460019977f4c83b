package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/teranos/eavto/errors"
)

// Well-known metadata keys.
const (
	MetaSchemaVersion       = "schema_version"
	MetaOntologyInitialized = "ontology_initialized"
)

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func getMetadata(ctx context.Context, q queryer, key string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", errors.Wrapf(errors.ErrNotFound, "metadata %q", key)
	}
	if err != nil {
		return "", errors.Wrapf(err, "read metadata %q", key)
	}
	return value, nil
}

func setMetadata(ctx context.Context, e execer, key, value string, at time.Time) error {
	if key == "" {
		return errors.NewInvalidRequestError("metadata key is empty")
	}
	_, err := e.ExecContext(ctx, `
		INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, at)
	return errors.Wrapf(err, "write metadata %q", key)
}

// Metadata returns the value of key, or errors.ErrNotFound.
func (s *Store) Metadata(ctx context.Context, key string) (string, error) {
	return getMetadata(ctx, s.db, key)
}

// SetMetadata upserts key in its own write.
func (s *Store) SetMetadata(ctx context.Context, key, value string) error {
	w, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer w.Rollback()
	if err := w.SetMetadata(ctx, key, value); err != nil {
		return err
	}
	return w.Commit()
}

// AllMetadata returns every metadata entry.
func (s *Store) AllMetadata(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM metadata ORDER BY key")
	if err != nil {
		return nil, errors.Wrap(err, "list metadata")
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, errors.Wrap(err, "scan metadata")
		}
		out[k] = v
	}
	return out, errors.Wrap(rows.Err(), "iterate metadata")
}
