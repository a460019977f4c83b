package storage

import (
	"context"
	"database/sql"
	"iter"
	"strings"
	"time"

	"github.com/teranos/eavto/eav"
	"github.com/teranos/eavto/eav/types"
	"github.com/teranos/eavto/errors"
)

const factColumns = `id, subject, predicate, object_kind, object_value, datatype, lang,
	num_value, int_value, time_value, tx, origin, retracted, created_at`

// Index names, one per access pattern.
const (
	IndexSubject         = "idx_facts_spo"
	IndexPredicate       = "idx_facts_pso"
	IndexPredicateObject = "idx_facts_pos"
	IndexReference       = "idx_facts_ref"
	IndexOrigin          = "idx_facts_origin"
)

// refCondition is written exactly as the partial index predicate of idx_facts_ref.
const refCondition = "object_kind IN ('iri', 'blank')"

// IndexFor names the index whose leading columns match the bound fields of p,
// or "" for a full scan.
func IndexFor(p eav.Pattern) string {
	switch {
	case p.Subject != "":
		return IndexSubject
	case p.Predicate != "" && p.Object != nil:
		return IndexPredicateObject
	case p.Object != nil && p.Object.IsReference():
		return IndexReference
	case p.Predicate != "":
		return IndexPredicate
	case p.Origin != "":
		return IndexOrigin
	}
	return ""
}

func buildScan(p eav.Pattern) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if p.Subject != "" {
		conds = append(conds, "subject = ?")
		args = append(args, p.Subject)
	}
	if p.Predicate != "" {
		conds = append(conds, "predicate = ?")
		args = append(args, p.Predicate)
	}
	if p.Object != nil {
		o := *p.Object
		conds = append(conds, "object_value = ?", "object_kind = ?")
		args = append(args, o.Value, string(o.Kind))
		if o.Kind == types.KindLiteral && o.Datatype != "" {
			conds = append(conds, "datatype = ?")
			args = append(args, o.Datatype)
		}
		if o.IsReference() {
			conds = append(conds, refCondition)
		}
	}
	if p.Origin != "" {
		conds = append(conds, "origin = ?")
		args = append(args, p.Origin)
	}
	if p.ReferencesOnly && (p.Object == nil || !p.Object.IsReference()) {
		conds = append(conds, refCondition)
	}
	if !p.IncludeRetracted {
		conds = append(conds, "retracted = 0")
	}

	query := "SELECT " + factColumns + " FROM facts"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"
	if p.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, p.Limit)
	}
	return query, args
}

func scanFact(row interface{ Scan(...interface{}) error }) (types.Fact, error) {
	var f types.Fact
	var kind string
	var num sql.NullFloat64
	var integer, timeMS sql.NullInt64
	err := row.Scan(
		&f.Seq, &f.Subject, &f.Predicate, &kind, &f.Object.Value,
		&f.Object.Datatype, &f.Object.Lang,
		&num, &integer, &timeMS,
		&f.Tx, &f.Origin, &f.Retracted, &f.CreatedAt,
	)
	if err != nil {
		return types.Fact{}, err
	}
	f.Object.Kind = types.ObjectKind(kind)
	if num.Valid {
		v := num.Float64
		f.Num = &v
	}
	if integer.Valid {
		v := integer.Int64
		f.Int = &v
	}
	if timeMS.Valid {
		v := time.UnixMilli(timeMS.Int64).UTC()
		f.Time = &v
	}
	return f, nil
}

// Scan streams facts matching p in sequence order. Breaking out of the
// loop closes the underlying cursor.
func (s *Store) Scan(ctx context.Context, p eav.Pattern) iter.Seq2[types.Fact, error] {
	return func(yield func(types.Fact, error) bool) {
		query, args := buildScan(p)
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			yield(types.Fact{}, errors.Wrap(err, "scan facts"))
			return
		}
		defer rows.Close()

		for rows.Next() {
			f, err := scanFact(rows)
			if err != nil {
				yield(types.Fact{}, errors.Wrap(err, "decode fact"))
				return
			}
			if !yield(f, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(types.Fact{}, errors.Wrap(err, "iterate facts"))
		}
	}
}

// Collect drains a scan into a slice.
func Collect(seq iter.Seq2[types.Fact, error]) ([]types.Fact, error) {
	var out []types.Fact
	for f, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Explain returns SQLite's query plan for the scan of p.
func (s *Store) Explain(ctx context.Context, p eav.Pattern) (string, error) {
	query, args := buildScan(p)
	rows, err := s.db.QueryContext(ctx, "EXPLAIN QUERY PLAN "+query, args...)
	if err != nil {
		return "", errors.Wrap(err, "explain scan")
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var id, parent, notused int
		var detail string
		if err := rows.Scan(&id, &parent, &notused, &detail); err != nil {
			return "", errors.Wrap(err, "read plan")
		}
		lines = append(lines, detail)
	}
	return strings.Join(lines, "\n"), errors.Wrap(rows.Err(), "iterate plan")
}

// ScanRange returns active facts of q.Predicate whose typed projection lies
// within [Min, Max], ordered by value. Served by the partial range indices.
func (s *Store) ScanRange(ctx context.Context, q eav.RangeQuery) ([]types.Fact, error) {
	var column string
	switch q.Family {
	case types.FamilyNumeric:
		column = "num_value"
	case types.FamilyInteger:
		column = "int_value"
	case types.FamilyTemporal:
		column = "time_value"
	default:
		return nil, errors.NewInvalidRequestError("range queries need a numeric, integer or temporal family, got " + q.Family.String())
	}
	if q.Predicate == "" {
		return nil, errors.NewInvalidRequestError("range query requires a predicate")
	}

	query := "SELECT " + factColumns + " FROM facts WHERE predicate = ? AND retracted = 0 AND " + column + " IS NOT NULL"
	args := []interface{}{q.Predicate}
	if q.Min != nil {
		query += " AND " + column + " >= ?"
		args = append(args, *q.Min)
	}
	if q.Max != nil {
		query += " AND " + column + " <= ?"
		args = append(args, *q.Max)
	}
	query += " ORDER BY " + column + ", id"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "range scan")
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
	return out, errors.Wrap(rows.Err(), "iterate range")
}
