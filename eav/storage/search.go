package storage

import (
	"context"
	"sort"
	"strings"

	"github.com/teranos/eavto/errors"
	"github.com/teranos/eavto/ontology/vocab"
)

// Match weights for label text. Comment matches score half.
const (
	ScoreExact    = 100
	ScorePrefix   = 50
	ScoreContains = 25
)

// SearchQuery is a ranked text lookup over label and comment facts.
type SearchQuery struct {
	Text  string
	Limit int

	// Defaults to rdfs:label and rdfs:comment when empty.
	LabelPredicates   []string
	CommentPredicates []string
}

// SearchMatch is one ranked subject.
type SearchMatch struct {
	Subject   string `json:"subject"`
	Label     string `json:"label,omitempty"`
	Matched   string `json:"matched"`   // text that matched
	Predicate string `json:"predicate"` // predicate of the matched fact
	Score     int    `json:"score"`
}

func scoreText(text, needle string) int {
	t := strings.ToLower(strings.TrimSpace(text))
	switch {
	case t == needle:
		return ScoreExact
	case strings.HasPrefix(t, needle):
		return ScorePrefix
	case strings.Contains(t, needle):
		return ScoreContains
	}
	return 0
}

// Search ranks subjects whose active label or comment facts contain the
// query text, case-insensitively. Each subject keeps its best score; ties
// sort by subject id.
func (s *Store) Search(ctx context.Context, q SearchQuery) ([]SearchMatch, error) {
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	if needle == "" {
		return nil, errors.NewInvalidRequestError("search text is empty")
	}
	labels := q.LabelPredicates
	if len(labels) == 0 {
		labels = []string{vocab.RDFSLabel}
	}
	comments := q.CommentPredicates
	if len(comments) == 0 {
		comments = []string{vocab.RDFSComment}
	}

	weight := make(map[string]int)
	var placeholders []string
	var args []interface{}
	for _, p := range labels {
		weight[p] = 2
		placeholders = append(placeholders, "?")
		args = append(args, p)
	}
	for _, p := range comments {
		if _, dup := weight[p]; !dup {
			weight[p] = 1
			placeholders = append(placeholders, "?")
			args = append(args, p)
		}
	}

	// Matching happens in Go: SQLite LIKE and lower() fold only ASCII.
	rows, err := s.db.QueryContext(ctx, `
		SELECT subject, predicate, object_value FROM facts
		WHERE predicate IN (`+strings.Join(placeholders, ", ")+`)
		AND object_kind = 'literal' AND retracted = 0
		ORDER BY id`, args...)
	if err != nil {
		return nil, errors.Wrap(err, "search facts")
	}
	defer rows.Close()

	best := make(map[string]*SearchMatch)
	labelOf := make(map[string]string)
	for rows.Next() {
		var subject, predicate, value string
		if err := rows.Scan(&subject, &predicate, &value); err != nil {
			return nil, errors.Wrap(err, "scan search row")
		}
		score := scoreText(value, needle)
		if weight[predicate] == 1 {
			score /= 2
		}
		if weight[predicate] == 2 {
			// the latest label wins as display label
			labelOf[subject] = value
		}
		if score == 0 {
			continue
		}
		if m, ok := best[subject]; !ok || score > m.Score {
			best[subject] = &SearchMatch{Subject: subject, Matched: value, Predicate: predicate, Score: score}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate search rows")
	}

	out := make([]SearchMatch, 0, len(best))
	for subject, m := range best {
		m.Label = labelOf[subject]
		if m.Label == "" {
			if f, err := s.Latest(ctx, subject, labels[0]); err == nil {
				m.Label = f.Object.Value
			}
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Subject < out[j].Subject
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}
