package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/teranos/eavto/db"
	"github.com/teranos/eavto/eav"
	"github.com/teranos/eavto/eav/types"
	"github.com/teranos/eavto/errors"
	"github.com/teranos/eavto/logger"
	"github.com/teranos/eavto/sym"
)

const factInsertQuery = `
	INSERT INTO facts (
		subject, predicate, object_kind, object_value, datatype, lang,
		num_value, int_value, time_value, tx, origin, retracted, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`

// Writer groups several ledger entries into one storage transaction.
// Nothing it writes is visible to readers until Commit.
type Writer struct {
	store *Store
	tx    *sql.Tx

	entries   []int64
	appended  int
	retracted int
	closed    bool
}

// factRow is a validated fact ready for insertion.
type factRow struct {
	fact types.Fact
	proj types.Projection
}

// prepareBatch validates the whole batch before any storage work.
func prepareBatch(origin string, facts []types.Fact) ([]factRow, error) {
	if origin == "" {
		return nil, errors.NewInvalidRequestError("append requires an origin")
	}
	rows := make([]factRow, len(facts))
	for i, f := range facts {
		f.Object = f.Object.Normalized()
		if err := f.Validate(); err != nil {
			return nil, &errors.ValidationError{
				Position:  i,
				Subject:   f.Subject,
				Predicate: f.Predicate,
				Reason:    err.Error(),
			}
		}
		proj, err := types.Project(f.Object)
		if err != nil {
			return nil, &errors.ValidationError{Position: i, Subject: f.Subject, Predicate: f.Predicate, Reason: err.Error()}
		}
		rows[i] = factRow{fact: f, proj: proj}
	}
	return rows, nil
}

// Append validates facts and inserts them under one new assert entry.
// An empty batch creates no entry.
func (w *Writer) Append(ctx context.Context, origin string, facts []types.Fact) (*eav.AppendResult, error) {
	if w.closed {
		return nil, errors.New("writer is closed")
	}
	rows, err := prepareBatch(origin, facts)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &eav.AppendResult{}, nil
	}
	return w.appendRows(ctx, origin, rows)
}

func (w *Writer) appendRows(ctx context.Context, origin string, rows []factRow) (*eav.AppendResult, error) {
	now := w.store.now().UTC()

	txID, err := beginEntry(ctx, w.tx, origin, types.TxAssert, "", now)
	if err != nil {
		return nil, err
	}

	stmt, err := w.tx.PrepareContext(ctx, factInsertQuery)
	if err != nil {
		return nil, errors.Wrap(err, "prepare fact insert")
	}
	defer stmt.Close()

	res := &eav.AppendResult{Tx: txID, Count: len(rows)}
	for i, r := range rows {
		f := r.fact
		var timeValue *int64
		if r.proj.Time != nil {
			ms := r.proj.Time.UnixMilli()
			timeValue = &ms
		}
		out, err := stmt.ExecContext(ctx,
			f.Subject, f.Predicate, string(f.Object.Kind), f.Object.Value,
			f.Object.Datatype, f.Object.Lang,
			r.proj.Num, r.proj.Int, timeValue,
			txID, origin, now,
		)
		if err != nil {
			if db.IsConstraintViolation(err) && strings.Contains(err.Error(), "FOREIGN KEY") {
				return nil, errors.NewAssertionErrorWithWrappedErrf(err, "fact %d references missing ledger entry %d", i, txID)
			}
			return nil, errors.Wrapf(err, "insert fact %d (%s %s)", i, f.Subject, f.Predicate)
		}
		seq, err := out.LastInsertId()
		if err != nil {
			return nil, errors.Wrap(err, "read fact sequence")
		}
		if i == 0 {
			res.FirstSeq = seq
		}
		res.LastSeq = seq
	}

	w.entries = append(w.entries, txID)
	w.appended += len(rows)

	w.store.logger.Debugw("Appended batch",
		logger.FieldSymbol, sym.AS,
		logger.FieldOrigin, origin,
		logger.FieldTx, txID,
		logger.FieldCount, len(rows),
	)
	return res, nil
}

// retractNote is stored as the note of a retract entry.
type retractNote struct {
	Filter eav.RetractFilter `json:"filter"`
	Count  int               `json:"count"`
}

func retractWhere(filter eav.RetractFilter) (string, []interface{}) {
	conds := []string{"origin = ?", "retracted = 0"}
	args := []interface{}{filter.Origin}
	if filter.Subject != "" {
		conds = append(conds, "subject = ?")
		args = append(args, filter.Subject)
	}
	if filter.Predicate != "" {
		conds = append(conds, "predicate = ?")
		args = append(args, filter.Predicate)
	}
	return strings.Join(conds, " AND "), args
}

// Retract flips matching active facts under one new retract entry.
// When nothing matches no entry is created and Tx is 0.
func (w *Writer) Retract(ctx context.Context, filter eav.RetractFilter) (*eav.RetractResult, error) {
	if w.closed {
		return nil, errors.New("writer is closed")
	}
	if err := checkRetractFilter(filter); err != nil {
		return nil, err
	}

	where, args := retractWhere(filter)

	var matching int
	if err := w.tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM facts WHERE "+where, args...).Scan(&matching); err != nil {
		return nil, errors.Wrap(err, "count facts to retract")
	}
	if matching == 0 {
		return &eav.RetractResult{}, nil
	}

	note, err := json.Marshal(retractNote{Filter: filter, Count: matching})
	if err != nil {
		return nil, errors.Wrap(err, "encode retract note")
	}
	txID, err := beginEntry(ctx, w.tx, filter.Origin, types.TxRetract, string(note), w.store.now().UTC())
	if err != nil {
		return nil, err
	}

	out, err := w.tx.ExecContext(ctx, "UPDATE facts SET retracted = 1 WHERE "+where, args...)
	if err != nil {
		return nil, errors.Wrap(err, "retract facts")
	}
	affected, err := out.RowsAffected()
	if err != nil {
		return nil, errors.Wrap(err, "read retracted count")
	}
	if int(affected) != matching {
		return nil, errors.AssertionFailedf("retract matched %d facts but flipped %d", matching, affected)
	}

	w.entries = append(w.entries, txID)
	w.retracted += matching

	w.store.logger.Debugw("Retracted facts",
		logger.FieldSymbol, sym.RX,
		logger.FieldOrigin, filter.Origin,
		logger.FieldSubject, filter.Subject,
		logger.FieldTx, txID,
		logger.FieldCount, matching,
	)
	return &eav.RetractResult{Tx: txID, Count: matching}, nil
}

// SetMetadata upserts a metadata key inside the write.
func (w *Writer) SetMetadata(ctx context.Context, key, value string) error {
	if w.closed {
		return errors.New("writer is closed")
	}
	return setMetadata(ctx, w.tx, key, value, w.store.now().UTC())
}

// Metadata reads a metadata key as seen by this write.
func (w *Writer) Metadata(ctx context.Context, key string) (string, error) {
	return getMetadata(ctx, w.tx, key)
}

// Entries returns the ledger entries created so far.
func (w *Writer) Entries() []int64 {
	return append([]int64(nil), w.entries...)
}

// Commit makes every entry of the write visible at once and releases the
// write lock. A cancelled context fails the commit and nothing is applied.
func (w *Writer) Commit() error {
	if w.closed {
		return errors.New("writer is closed")
	}
	w.closed = true
	err := w.tx.Commit()
	w.store.writeMu.Unlock()
	if err != nil {
		return errors.Wrap(err, "commit write transaction")
	}

	ev := CommitEvent{
		Generation: w.store.generation.Add(1),
		Entries:    w.Entries(),
		Appended:   w.appended,
		Retracted:  w.retracted,
	}
	w.store.logCommit(ev)
	w.store.fireCommit(ev)
	return nil
}

// Rollback discards the write. Safe to call after Commit.
func (w *Writer) Rollback() error {
	if w.closed {
		return nil
	}
	w.closed = true
	err := w.tx.Rollback()
	w.store.writeMu.Unlock()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return errors.Wrap(err, "rollback write transaction")
	}
	return nil
}

// setClock pins the store clock in tests.
func (s *Store) setClock(now func() time.Time) {
	s.now = now
}
