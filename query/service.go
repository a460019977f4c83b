// Package query is the read and ingest surface the presentation layer
// talks to. It composes the fact store, the hierarchy resolver and the
// incremental syncer behind a small set of operations.
package query

import (
	"context"

	"go.uber.org/zap"

	"github.com/teranos/eavto/eav/storage"
	"github.com/teranos/eavto/errors"
	"github.com/teranos/eavto/hierarchy"
	"github.com/teranos/eavto/logger"
	"github.com/teranos/eavto/ontology"
	"github.com/teranos/eavto/sym"
)

// Config tunes the service. Zero values take the defaults.
type Config struct {
	SearchLimit     int      // used when a search asks for no limit
	MaxSearchLimit  int      // hard cap on any search
	CacheSize       int      // entity views kept per session
	BacklinkExclude []string // nil keeps the presentational defaults
}

// Defaults.
const (
	DefaultSearchLimit    = 20
	DefaultMaxSearchLimit = 200
)

func (c Config) withDefaults() Config {
	if c.SearchLimit <= 0 {
		c.SearchLimit = DefaultSearchLimit
	}
	if c.MaxSearchLimit <= 0 {
		c.MaxSearchLimit = DefaultMaxSearchLimit
	}
	if c.SearchLimit > c.MaxSearchLimit {
		c.SearchLimit = c.MaxSearchLimit
	}
	if c.CacheSize <= 0 {
		c.CacheSize = hierarchy.DefaultCacheSize
	}
	return c
}

// SearchResult is a ranked search reply.
type SearchResult struct {
	Query   string                `json:"query"`
	Limit   int                   `json:"limit"`
	Matches []storage.SearchMatch `json:"matches"`
}

// IconResult is the resolved icon of an entity.
type IconResult struct {
	ID   string `json:"id"`
	Icon string `json:"icon"`
	From string `json:"from,omitempty"`
}

// Service answers presentation-layer queries.
type Service struct {
	store    *storage.Store
	resolver *hierarchy.Resolver
	session  *hierarchy.Session
	syncer   *ontology.Syncer
	cfg      Config
	logger   *zap.SugaredLogger
}

// NewService wires a service over store.
func NewService(store *storage.Store, cfg Config, log *zap.SugaredLogger) (*Service, error) {
	log = logger.OrNop(log)
	cfg = cfg.withDefaults()

	resolver := hierarchy.NewResolver(store, hierarchy.Options{BacklinkExclude: cfg.BacklinkExclude}, log.Named("hierarchy"))
	session, err := resolver.NewSession(cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{
		store:    store,
		resolver: resolver,
		session:  session,
		syncer:   ontology.NewSyncer(store, log.Named("ontology")),
		cfg:      cfg,
		logger:   log,
	}, nil
}

// Store returns the underlying fact store.
func (s *Service) Store() *storage.Store {
	return s.store
}

// Syncer returns the syncer ingestion goes through.
func (s *Service) Syncer() *ontology.Syncer {
	return s.syncer
}

// Session returns the entity-view cache.
func (s *Service) Session() *hierarchy.Session {
	return s.session
}

// ResolveEntity returns the hierarchy view of id.
func (s *Service) ResolveEntity(ctx context.Context, id string) (*hierarchy.EntityView, error) {
	return s.session.ResolveEntity(ctx, id)
}

// Search ranks entities by label and comment text. A limit of zero or
// less uses the configured default; larger limits are capped.
func (s *Service) Search(ctx context.Context, text string, limit int) (*SearchResult, error) {
	if limit <= 0 {
		limit = s.cfg.SearchLimit
	}
	if limit > s.cfg.MaxSearchLimit {
		limit = s.cfg.MaxSearchLimit
	}
	matches, err := s.store.Search(ctx, storage.SearchQuery{Text: text, Limit: limit})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx, s.logger).Debugw("Search",
		logger.FieldSymbol, sym.SE,
		logger.FieldQuery, text,
		logger.FieldCount, len(matches),
	)
	return &SearchResult{Query: text, Limit: limit, Matches: matches}, nil
}

// GetIcon returns the icon of id, inherited from its nearest typed
// ancestor when the entity has none. Icon is empty when nothing on the
// chain carries one.
func (s *Service) GetIcon(ctx context.Context, id string) (*IconResult, error) {
	if id == "" {
		return nil, errors.NewInvalidRequestError("entity id is empty")
	}
	icon, from, err := s.resolver.Icon(ctx, id)
	if err != nil {
		return nil, err
	}
	return &IconResult{ID: id, Icon: icon, From: from}, nil
}

// ListBacklinks returns the structural references pointing at id.
func (s *Service) ListBacklinks(ctx context.Context, id string) ([]hierarchy.Backlink, error) {
	if id == "" {
		return nil, errors.NewInvalidRequestError("entity id is empty")
	}
	return s.resolver.Backlinks(ctx, id)
}

// Ingest syncs one definition source. The report is returned even when
// the source fails; the error is then the source's failure.
func (s *Service) Ingest(ctx context.Context, name string, content []byte) (*ontology.SyncReport, error) {
	if name == "" {
		return nil, errors.NewInvalidRequestError("source name is empty")
	}
	report, err := s.syncer.Sync(ctx, []ontology.Source{{Name: name, Content: content}})
	if err != nil {
		return report, err
	}
	if len(report.Failed) > 0 {
		return report, report.Failed[0].Error
	}
	return report, nil
}

// Stats summarizes the store.
func (s *Service) Stats(ctx context.Context) (*storage.Stats, error) {
	return s.store.Stats(ctx)
}
