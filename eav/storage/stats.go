package storage

import (
	"context"

	"github.com/teranos/eavto/errors"
)

// OriginStats counts the facts of one origin.
type OriginStats struct {
	Origin    string `json:"origin"`
	Active    int64  `json:"active"`
	Retracted int64  `json:"retracted"`
}

// Stats summarizes the store.
type Stats struct {
	Facts        int64         `json:"facts"`
	Active       int64         `json:"active"`
	Retracted    int64         `json:"retracted"`
	Transactions int64         `json:"transactions"`
	Subjects     int64         `json:"subjects"`
	Origins      []OriginStats `json:"origins"`
	Generation   uint64        `json:"generation"`
}

// Stats returns fact and ledger totals.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{Generation: s.Generation()}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(retracted), 0), COUNT(DISTINCT subject) FROM facts`).
		Scan(&st.Facts, &st.Retracted, &st.Subjects)
	if err != nil {
		return nil, errors.Wrap(err, "count facts")
	}
	st.Active = st.Facts - st.Retracted

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&st.Transactions); err != nil {
		return nil, errors.Wrap(err, "count transactions")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT origin, SUM(1 - retracted), SUM(retracted)
		FROM facts GROUP BY origin ORDER BY origin`)
	if err != nil {
		return nil, errors.Wrap(err, "count origins")
	}
	defer rows.Close()
	for rows.Next() {
		var o OriginStats
		if err := rows.Scan(&o.Origin, &o.Active, &o.Retracted); err != nil {
			return nil, errors.Wrap(err, "scan origin stats")
		}
		st.Origins = append(st.Origins, o)
	}
	return st, errors.Wrap(rows.Err(), "iterate origin stats")
}

// ActiveCount returns the number of active facts under origin.
func (s *Store) ActiveCount(ctx context.Context, origin string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM facts WHERE origin = ? AND retracted = 0", origin).Scan(&n)
	return n, errors.Wrapf(err, "count active facts of %s", origin)
}
