// Package storage provides the SQLite fact store: append-only facts, the
// transaction ledger, index-backed scans and the metadata table.
package storage

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/eavto/eav"
	"github.com/teranos/eavto/eav/types"
	"github.com/teranos/eavto/errors"
	"github.com/teranos/eavto/logger"
	"github.com/teranos/eavto/sym"
)

// CommitEvent describes one committed storage transaction.
type CommitEvent struct {
	Generation uint64
	Entries    []int64 // ledger entries created, in order
	Appended   int
	Retracted  int
}

// Store implements eav.Store on SQLite.
//
// All writes go through a Writer holding the store's write lock, so there is
// one writer at a time per process. Readers use their own pooled connections
// and under WAL see either all or none of a committed batch.
type Store struct {
	db     *sql.DB
	logger *zap.SugaredLogger
	now    func() time.Time

	writeMu    sync.Mutex
	generation atomic.Uint64

	hooksMu sync.RWMutex
	hooks   []func(CommitEvent)
}

var _ eav.Store = (*Store)(nil)

// NewStore creates a fact store over an already migrated database.
func NewStore(db *sql.DB, log *zap.SugaredLogger) *Store {
	return &Store{
		db:     db,
		logger: logger.OrNop(log),
		now:    time.Now,
	}
}

// DB returns the underlying connection pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Generation returns a counter bumped after every successful commit.
func (s *Store) Generation() uint64 {
	return s.generation.Load()
}

// OnCommit registers fn to run after every successful commit.
// Hooks run synchronously on the committing goroutine after the write lock is released.
func (s *Store) OnCommit(fn func(CommitEvent)) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.hooks = append(s.hooks, fn)
}

func (s *Store) fireCommit(ev CommitEvent) {
	s.hooksMu.RLock()
	hooks := append([]func(CommitEvent){}, s.hooks...)
	s.hooksMu.RUnlock()
	for _, fn := range hooks {
		fn(ev)
	}
}

// Append validates and commits one batch under a single ledger entry.
// Nothing is written when any fact is invalid.
func (s *Store) Append(ctx context.Context, origin string, facts []types.Fact) (*eav.AppendResult, error) {
	rows, err := prepareBatch(origin, facts)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &eav.AppendResult{}, nil
	}

	w, err := s.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer w.Rollback()

	res, err := w.appendRows(ctx, origin, rows)
	if err != nil {
		return nil, err
	}
	if err := w.Commit(); err != nil {
		return nil, err
	}
	return res, nil
}

// Retract flips every active fact matching filter and records the
// retraction as its own ledger entry. Nothing is recorded when no fact matches.
func (s *Store) Retract(ctx context.Context, filter eav.RetractFilter) (*eav.RetractResult, error) {
	if err := checkRetractFilter(filter); err != nil {
		return nil, err
	}

	w, err := s.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer w.Rollback()

	res, err := w.Retract(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := w.Commit(); err != nil {
		return nil, err
	}
	return res, nil
}

// Begin opens a multi-step write. The caller must Commit or Rollback.
// Begin blocks while another Writer is open.
func (s *Store) Begin(ctx context.Context) (*Writer, error) {
	s.writeMu.Lock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.writeMu.Unlock()
		return nil, errors.Wrap(err, "begin write transaction")
	}
	return &Writer{store: s, tx: tx}, nil
}

// checkRetractFilter enforces the origin rules for retraction. The reserved
// core origin may only be retracted for a tracked source's bookkeeping subject.
func checkRetractFilter(filter eav.RetractFilter) error {
	if filter.Origin == "" {
		return errors.NewInvalidRequestError("retract filter requires an origin")
	}
	if filter.Origin == eav.CoreOrigin && !eav.IsSourceSubject(filter.Subject) {
		err := errors.Wrapf(errors.ErrReservedOrigin, "cannot retract origin %q", eav.CoreOrigin)
		return errors.WithHint(err, "the core origin is cleared only by resetting the database")
	}
	return nil
}

func (s *Store) logCommit(ev CommitEvent) {
	s.logger.Debugw("Committed write",
		logger.FieldSymbol, sym.DB,
		"generation", ev.Generation,
		"entries", ev.Entries,
		"appended", ev.Appended,
		"retracted", ev.Retracted,
	)
}
