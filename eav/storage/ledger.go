package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/teranos/eavto/eav/types"
	"github.com/teranos/eavto/errors"
)

const (
	ledgerInsertQuery = `INSERT INTO transactions (origin, kind, note, created_at) VALUES (?, ?, ?, ?)`

	ledgerSelectColumns = `
		t.id, t.origin, t.kind, t.note, t.created_at,
		(SELECT COUNT(*) FROM facts f WHERE f.tx = t.id)`
)

// beginEntry creates a ledger entry inside tx before any fact referencing it.
// AUTOINCREMENT guarantees the id exceeds every id ever committed.
func beginEntry(ctx context.Context, tx *sql.Tx, origin string, kind types.TxKind, note string, at time.Time) (int64, error) {
	if origin == "" {
		return 0, errors.NewInvalidRequestError("ledger entry requires an origin")
	}
	res, err := tx.ExecContext(ctx, ledgerInsertQuery, origin, string(kind), note, at)
	if err != nil {
		return 0, errors.Wrapf(err, "create %s ledger entry for %s", kind, origin)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "read ledger entry id")
	}
	return id, nil
}

func scanTransaction(row interface{ Scan(...interface{}) error }) (*types.Transaction, error) {
	var t types.Transaction
	var kind string
	if err := row.Scan(&t.ID, &t.Origin, &kind, &t.Note, &t.CreatedAt, &t.FactCount); err != nil {
		return nil, err
	}
	t.Kind = types.TxKind(kind)
	if t.Kind == types.TxRetract {
		// retract entries introduce no facts; report how many they flipped
		var note retractNote
		if err := json.Unmarshal([]byte(t.Note), &note); err == nil {
			t.FactCount = int64(note.Count)
		}
	}
	return &t, nil
}

// Transaction returns one ledger entry.
func (s *Store) Transaction(ctx context.Context, id int64) (*types.Transaction, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+ledgerSelectColumns+" FROM transactions t WHERE t.id = ?", id)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrNotFound, "transaction %d", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read transaction %d", id)
	}
	return t, nil
}

// TransactionFilter narrows a ledger listing.
type TransactionFilter struct {
	Origin string
	Kind   types.TxKind
	Limit  int // newest first; 0 means 100
}

// Transactions lists ledger entries newest first.
func (s *Store) Transactions(ctx context.Context, filter TransactionFilter) ([]*types.Transaction, error) {
	query := "SELECT " + ledgerSelectColumns + " FROM transactions t WHERE 1 = 1"
	var args []interface{}
	if filter.Origin != "" {
		query += " AND t.origin = ?"
		args = append(args, filter.Origin)
	}
	if filter.Kind != "" {
		query += " AND t.kind = ?"
		args = append(args, string(filter.Kind))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " ORDER BY t.id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list transactions")
	}
	defer rows.Close()

	var out []*types.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan transaction")
		}
		out = append(out, t)
	}
	return out, errors.Wrap(rows.Err(), "iterate transactions")
}

// CheckIntegrity verifies ledger invariants that the schema makes
// impossible by construction. Any violation is an assertion failure.
func (s *Store) CheckIntegrity(ctx context.Context) error {
	var dangling int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM facts f
		LEFT JOIN transactions t ON t.id = f.tx
		WHERE t.id IS NULL`).Scan(&dangling)
	if err != nil {
		return errors.Wrap(err, "check dangling facts")
	}
	if dangling > 0 {
		return errors.AssertionFailedf("%d facts reference a missing ledger entry", dangling)
	}

	var mismatched int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM facts f
		JOIN transactions t ON t.id = f.tx
		WHERE t.kind <> 'assert' OR t.origin <> f.origin`).Scan(&mismatched)
	if err != nil {
		return errors.Wrap(err, "check fact entries")
	}
	if mismatched > 0 {
		return errors.AssertionFailedf("%d facts reference a ledger entry of another batch", mismatched)
	}
	return nil
}
