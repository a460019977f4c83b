package eav

import (
	"context"
	"iter"
	"strings"
	"time"

	"github.com/teranos/eavto/eav/types"
)

// CoreOrigin is the reserved origin of the meta-vocabulary and of tracked
// source bookkeeping.
const CoreOrigin = "core"

// FileOriginPrefix prefixes the origin of facts imported from a definition source.
const FileOriginPrefix = "file:"

// SourceSubjectPrefix prefixes the subject carrying a tracked source's bookkeeping facts.
const SourceSubjectPrefix = "urn:eavto:source:"

// FileOrigin returns the origin used for facts parsed from the named source.
func FileOrigin(name string) string {
	return FileOriginPrefix + name
}

// SourceSubject returns the bookkeeping subject of the named source.
func SourceSubject(name string) string {
	return SourceSubjectPrefix + name
}

// IsSourceSubject reports whether subject is a tracked source's bookkeeping subject.
func IsSourceSubject(subject string) bool {
	return strings.HasPrefix(subject, SourceSubjectPrefix) && len(subject) > len(SourceSubjectPrefix)
}

// Pattern selects facts for Scan. Empty fields are unbound.
type Pattern struct {
	Subject   string
	Predicate string
	Object    *types.Object // matched on kind and value; datatype too when set
	Origin    string

	ReferencesOnly   bool // only iri/blank objects
	IncludeRetracted bool
	Limit            int // 0 means unbounded
}

// RetractFilter selects the active facts a retraction flips. Origin is required.
type RetractFilter struct {
	Origin    string `json:"origin"`
	Subject   string `json:"subject,omitempty"`
	Predicate string `json:"predicate,omitempty"`
}

// RangeQuery compares one typed projection of a predicate's active facts.
// Bounds are inclusive. Temporal bounds are unix milliseconds (see TimeBound).
type RangeQuery struct {
	Predicate string
	Family    types.Family
	Min       *float64
	Max       *float64
	Limit     int
}

// TimeBound converts t to a RangeQuery bound.
func TimeBound(t time.Time) *float64 {
	v := float64(t.UnixMilli())
	return &v
}

// AppendResult reports a committed append batch.
type AppendResult struct {
	Tx       int64 `json:"tx"`
	Count    int   `json:"count"`
	FirstSeq int64 `json:"first_seq"`
	LastSeq  int64 `json:"last_seq"`
}

// RetractResult reports a retraction. Tx is 0 when nothing matched.
type RetractResult struct {
	Tx    int64 `json:"tx"`
	Count int   `json:"count"`
}

// Reader is the read side of the fact store.
type Reader interface {
	// Scan streams facts matching p in sequence order.
	Scan(ctx context.Context, p Pattern) iter.Seq2[types.Fact, error]

	// CurrentValue returns the latest active fact for the triple, or errors.ErrNotFound.
	CurrentValue(ctx context.Context, subject, predicate, origin string) (*types.Fact, error)

	// Generation changes after every committed write.
	Generation() uint64
}

// Writer is the single-batch write side of the fact store.
type Writer interface {
	Append(ctx context.Context, origin string, facts []types.Fact) (*AppendResult, error)
	Retract(ctx context.Context, filter RetractFilter) (*RetractResult, error)
}

// Store combines both sides.
type Store interface {
	Reader
	Writer
}
