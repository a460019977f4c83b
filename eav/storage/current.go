package storage

import (
	"context"
	"database/sql"

	"github.com/teranos/eavto/eav/types"
	"github.com/teranos/eavto/errors"
)

const (
	currentValueQuery = `
		SELECT ` + factColumns + ` FROM facts
		WHERE subject = ? AND predicate = ? AND origin = ? AND retracted = 0
		ORDER BY id DESC LIMIT 1`

	// one row per (predicate, origin): the active fact with the greatest id
	currentValuesQuery = `
		SELECT ` + factColumns + ` FROM facts f
		WHERE f.subject = ? AND f.retracted = 0
		AND f.id = (
			SELECT MAX(g.id) FROM facts g
			WHERE g.subject = f.subject AND g.predicate = f.predicate
			AND g.origin = f.origin AND g.retracted = 0
		)
		ORDER BY f.predicate, f.origin`

	latestAnyOriginQuery = `
		SELECT ` + factColumns + ` FROM facts
		WHERE subject = ? AND predicate = ? AND retracted = 0
		ORDER BY id DESC LIMIT 1`
)

// CurrentValue returns the active fact with the greatest sequence number
// for (subject, predicate, origin), or errors.ErrNotFound.
func (s *Store) CurrentValue(ctx context.Context, subject, predicate, origin string) (*types.Fact, error) {
	f, err := scanFact(s.db.QueryRowContext(ctx, currentValueQuery, subject, predicate, origin))
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrNotFound, "no current value for %s %s by %s", subject, predicate, origin)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read current value")
	}
	return &f, nil
}

// Latest returns the most recent active fact for (subject, predicate) across
// all origins, or errors.ErrNotFound.
func (s *Store) Latest(ctx context.Context, subject, predicate string) (*types.Fact, error) {
	f, err := scanFact(s.db.QueryRowContext(ctx, latestAnyOriginQuery, subject, predicate))
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrNotFound, "no value for %s %s", subject, predicate)
	}
	if err != nil {
		return nil, errors.Wrap(err, "read latest value")
	}
	return &f, nil
}

// CurrentValues returns the current fact of every (predicate, origin) pair
// of subject, ordered by predicate then origin.
func (s *Store) CurrentValues(ctx context.Context, subject string) ([]types.Fact, error) {
	rows, err := s.db.QueryContext(ctx, currentValuesQuery, subject)
	if err != nil {
		return nil, errors.Wrap(err, "read current values")
	}
	defer rows.Close()

	var out []types.Fact
	for rows.Next() {
		f, err := scanFact(rows)
		if err != nil {
			return nil, errors.Wrap(err, "decode fact")
		}
		out = append(out, f)
	}
	return out, errors.Wrap(rows.Err(), "iterate current values")
}
