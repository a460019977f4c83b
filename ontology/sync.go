package ontology

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/eavto/eav"
	"github.com/teranos/eavto/eav/storage"
	"github.com/teranos/eavto/errors"
	"github.com/teranos/eavto/logger"
	"github.com/teranos/eavto/ontology/vocab"
	"github.com/teranos/eavto/sym"
)

// SyncReport is the outcome of one Sync. Each source lands in exactly one
// of Updated, Skipped or Failed.
type SyncReport struct {
	JobID    string         `json:"job_id"`
	Updated  []SourceResult `json:"updated"`
	Skipped  []string       `json:"skipped"`
	Failed   []SourceResult `json:"failed"`
	Order    []string       `json:"order,omitempty"`
	Warnings []Warning      `json:"warnings,omitempty"`
}

// Changed reports whether the sync committed anything.
func (r *SyncReport) Changed() bool {
	return len(r.Updated) > 0
}

// Syncer re-imports sources whose content changed since their last import.
type Syncer struct {
	importer *Importer
	store    *storage.Store
	logger   *zap.SugaredLogger
}

// NewSyncer creates a syncer over store.
func NewSyncer(store *storage.Store, log *zap.SugaredLogger) *Syncer {
	log = logger.OrNop(log)
	return &Syncer{
		importer: NewImporter(store, log),
		store:    store,
		logger:   log,
	}
}

// Importer returns the importer the syncer commits through.
func (s *Syncer) Importer() *Importer {
	return s.importer
}

// StoredFingerprint returns the fingerprint recorded for the source's last
// import, or "" if it was never imported.
func (s *Syncer) StoredFingerprint(ctx context.Context, name string) (string, error) {
	f, err := s.store.CurrentValue(ctx, eav.SourceSubject(name), vocab.CoreFingerprint, eav.CoreOrigin)
	if errors.IsNotFoundError(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return f.Object.Value, nil
}

// Sync compares every source against its stored fingerprint and re-imports
// the changed ones in dependency order. Each changed source is replaced in
// a single storage transaction: its previous facts are retracted and the
// re-parsed facts appended, so readers see either the old set or the new.
// A source that fails to parse is reported and its previous facts stay
// active. Cancelling ctx stops before the next commit.
func (s *Syncer) Sync(ctx context.Context, sources []Source) (*SyncReport, error) {
	report := &SyncReport{JobID: uuid.NewString(), Skipped: []string{}}
	ctx = logger.WithJobID(ctx, report.JobID)
	log := logger.FromContext(ctx, s.logger)

	if _, err := s.importer.EnsureMeta(ctx); err != nil {
		return nil, err
	}

	var changed []Source
	seen := make(map[string]bool)
	for _, src := range sources {
		if seen[src.Name] {
			report.Warnings = append(report.Warnings, Warning{
				Kind:    WarnDuplicateSource,
				Message: "source " + src.Name + " listed more than once; later copies ignored",
				Sources: []string{src.Name},
			})
			continue
		}
		seen[src.Name] = true

		stored, err := s.StoredFingerprint(ctx, src.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "read fingerprint of %s", src.Name)
		}
		if stored != "" && stored == Fingerprint(src.Content) {
			report.Skipped = append(report.Skipped, src.Name)
			continue
		}
		changed = append(changed, src)
	}

	parsed, failed, _ := parseAll(ctx, changed)
	report.Failed = append(report.Failed, failed...)
	for _, f := range failed {
		log.Warnw("Source failed to parse; keeping previous facts",
			logger.FieldSymbol, sym.IX,
			logger.FieldSource, f.Name,
			logger.FieldError, f.Error,
		)
	}

	order, warnings := ResolveOrder(parsed)
	report.Order = order
	report.Warnings = append(report.Warnings, warnings...)

	byName := make(map[string]*Parsed, len(parsed))
	for _, p := range parsed {
		byName[p.Source.Name] = p
	}
	for i, name := range order {
		if err := ctx.Err(); err != nil {
			report.Skipped = append(report.Skipped, order[i:]...)
			return report, errors.Wrap(err, "sync cancelled")
		}
		p := byName[name]
		res, err := s.importer.commit(ctx, p)
		if err != nil {
			res = &SourceResult{Name: name, Origin: OriginFor(p.Source), Fingerprint: p.Fingerprint}
			res.fail(err)
			report.Failed = append(report.Failed, *res)
			if ctx.Err() != nil {
				report.Skipped = append(report.Skipped, order[i+1:]...)
				return report, errors.Wrap(ctx.Err(), "sync cancelled")
			}
			log.Warnw("Source re-import failed", logger.FieldSource, name, logger.FieldError, err)
			continue
		}
		report.Updated = append(report.Updated, *res)
	}

	log.Infow("Sync complete",
		logger.FieldSymbol, sym.IX,
		"updated", len(report.Updated),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
	)
	return report, nil
}
