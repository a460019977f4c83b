// Package ontology turns class and property definition sources into facts.
//
// Sources are N-Triples files. Each is parsed completely in memory, then
// committed in one storage transaction under its own origin ("file:<name>")
// together with bookkeeping facts about the source under the core origin.
// The built-in meta-vocabulary is imported once, before anything else.
package ontology

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/eavto/eav"
	"github.com/teranos/eavto/eav/storage"
	"github.com/teranos/eavto/eav/types"
	"github.com/teranos/eavto/errors"
	"github.com/teranos/eavto/logger"
	"github.com/teranos/eavto/ontology/meta"
	"github.com/teranos/eavto/ontology/vocab"
	"github.com/teranos/eavto/sym"
)

// SourceResult reports what happened to one source.
type SourceResult struct {
	Name      string `json:"name"`
	Origin    string `json:"origin"`
	Facts     int    `json:"facts"`               // active facts after import
	Tx        int64  `json:"tx,omitempty"`        // assert entry
	Retracted int    `json:"retracted,omitempty"` // previous facts retracted
	RetractTx int64  `json:"retract_tx,omitempty"`

	Fingerprint string `json:"fingerprint,omitempty"`
	Error       error  `json:"-"`
	ErrorText   string `json:"error,omitempty"`
}

func (r *SourceResult) fail(err error) {
	r.Error = err
	r.ErrorText = err.Error()
}

// ImportReport is the ordered outcome of ImportAll.
type ImportReport struct {
	JobID        string         `json:"job_id"`
	MetaImported bool           `json:"meta_imported"`
	Order        []string       `json:"order"`
	Results      []SourceResult `json:"results"`
	Warnings     []Warning      `json:"warnings,omitempty"`
}

// Failed returns the results carrying an error.
func (r *ImportReport) Failed() []SourceResult {
	var out []SourceResult
	for _, res := range r.Results {
		if res.Error != nil {
			out = append(out, res)
		}
	}
	return out
}

// Importer commits parsed sources to the fact store.
type Importer struct {
	store  *storage.Store
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewImporter creates an importer writing to store.
func NewImporter(store *storage.Store, log *zap.SugaredLogger) *Importer {
	return &Importer{store: store, logger: logger.OrNop(log), now: time.Now}
}

// OriginFor returns the origin of a source's facts.
func OriginFor(src Source) string {
	if src.Origin != "" {
		return src.Origin
	}
	return eav.FileOrigin(src.Name)
}

// EnsureMeta imports the meta-vocabulary under the core origin in one
// ledger entry if it has not been imported yet. Reports whether it ran.
func (im *Importer) EnsureMeta(ctx context.Context) (bool, error) {
	parsed, err := Parse(ctx, Source{Name: meta.Name, Content: meta.Source()})
	if errors.IsParseError(err) {
		return false, errors.NewAssertionErrorWithWrappedErrf(err, "embedded meta-vocabulary does not parse")
	}
	if err != nil {
		return false, err
	}

	w, err := im.store.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer w.Rollback()

	done, err := w.Metadata(ctx, storage.MetaOntologyInitialized)
	if err != nil && !errors.IsNotFoundError(err) {
		return false, err
	}
	if done == "true" {
		return false, nil
	}

	res, err := w.Append(ctx, eav.CoreOrigin, parsed.Facts)
	if err != nil {
		return false, errors.Wrap(err, "append meta-vocabulary")
	}
	if err := w.SetMetadata(ctx, storage.MetaOntologyInitialized, "true"); err != nil {
		return false, err
	}
	if err := w.Commit(); err != nil {
		return false, err
	}

	im.logger.Infow("Imported meta-vocabulary",
		logger.FieldSymbol, sym.IX,
		logger.FieldOrigin, eav.CoreOrigin,
		logger.FieldTx, res.Tx,
		logger.FieldCount, res.Count,
	)
	return true, nil
}

// Import parses src and commits it, replacing any facts a previous import
// of the same source left active. Parse failures commit nothing.
func (im *Importer) Import(ctx context.Context, src Source) (*SourceResult, error) {
	if _, err := im.EnsureMeta(ctx); err != nil {
		return nil, err
	}
	parsed, err := Parse(ctx, src)
	if err != nil {
		return nil, err
	}
	return im.commit(ctx, parsed)
}

// ImportAll imports the meta-vocabulary if needed, then every source in
// dependency order. A source that fails to parse or commit is reported in
// its result; the others proceed.
func (im *Importer) ImportAll(ctx context.Context, sources []Source) (*ImportReport, error) {
	report := &ImportReport{JobID: uuid.NewString()}
	log := im.logger.With(logger.FieldJobID, report.JobID)

	ran, err := im.EnsureMeta(ctx)
	if err != nil {
		return nil, err
	}
	report.MetaImported = ran

	parsed, failed, warnings := parseAll(ctx, sources)
	report.Warnings = append(report.Warnings, warnings...)

	order, orderWarnings := ResolveOrder(parsed)
	report.Order = order
	report.Warnings = append(report.Warnings, orderWarnings...)
	for _, w := range orderWarnings {
		log.Warnw("Import order fallback", logger.FieldSymbol, sym.IX, "kind", w.Kind, "sources", w.Sources)
	}

	byName := make(map[string]*Parsed, len(parsed))
	for _, p := range parsed {
		byName[p.Source.Name] = p
	}
	for _, name := range order {
		res, err := im.commit(ctx, byName[name])
		if err != nil {
			res = &SourceResult{Name: name, Origin: OriginFor(byName[name].Source)}
			res.fail(err)
			log.Warnw("Source import failed", logger.FieldSource, name, logger.FieldError, err)
		}
		report.Results = append(report.Results, *res)
	}
	report.Results = append(report.Results, failed...)

	if err := ctx.Err(); err != nil {
		return report, errors.Wrap(err, "import cancelled")
	}
	return report, nil
}

// parseAll parses every source, keeping the first of duplicate names.
func parseAll(ctx context.Context, sources []Source) ([]*Parsed, []SourceResult, []Warning) {
	var parsed []*Parsed
	var failed []SourceResult
	var warnings []Warning
	seen := make(map[string]bool)

	for _, src := range sources {
		if seen[src.Name] {
			warnings = append(warnings, Warning{
				Kind:    WarnDuplicateSource,
				Message: "source " + src.Name + " listed more than once; later copies ignored",
				Sources: []string{src.Name},
			})
			continue
		}
		seen[src.Name] = true

		p, err := Parse(ctx, src)
		if err != nil {
			res := SourceResult{Name: src.Name, Origin: OriginFor(src), Fingerprint: Fingerprint(src.Content)}
			res.fail(err)
			failed = append(failed, res)
			continue
		}
		parsed = append(parsed, p)
	}
	return parsed, failed, warnings
}

// commit writes one parsed source in a single storage transaction:
// retract the previous facts of its origin, append the new ones, then
// retract and reassert its bookkeeping facts.
func (im *Importer) commit(ctx context.Context, p *Parsed) (*SourceResult, error) {
	origin := OriginFor(p.Source)
	if origin == eav.CoreOrigin {
		return nil, errors.Wrapf(errors.ErrReservedOrigin, "source %s", p.Source.Name)
	}
	res := &SourceResult{Name: p.Source.Name, Origin: origin, Fingerprint: p.Fingerprint}

	w, err := im.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer w.Rollback()

	rr, err := w.Retract(ctx, eav.RetractFilter{Origin: origin})
	if err != nil {
		return nil, errors.Wrapf(err, "retract previous facts of %s", p.Source.Name)
	}
	res.Retracted, res.RetractTx = rr.Count, rr.Tx

	ar, err := w.Append(ctx, origin, p.Facts)
	if err != nil {
		return nil, errors.Wrapf(err, "append facts of %s", p.Source.Name)
	}
	res.Facts, res.Tx = ar.Count, ar.Tx

	subject := eav.SourceSubject(p.Source.Name)
	if _, err := w.Retract(ctx, eav.RetractFilter{Origin: eav.CoreOrigin, Subject: subject}); err != nil {
		return nil, errors.Wrapf(err, "retract tracking facts of %s", p.Source.Name)
	}
	if _, err := w.Append(ctx, eav.CoreOrigin, im.trackingFacts(p)); err != nil {
		return nil, errors.Wrapf(err, "record tracking facts of %s", p.Source.Name)
	}

	if err := w.Commit(); err != nil {
		return nil, errors.Wrapf(err, "commit %s", p.Source.Name)
	}

	im.logger.Infow("Imported source",
		logger.FieldSymbol, sym.IX,
		logger.FieldSource, p.Source.Name,
		logger.FieldOrigin, origin,
		logger.FieldTx, res.Tx,
		logger.FieldCount, res.Facts,
		"retracted", res.Retracted,
	)
	return res, nil
}

func (im *Importer) trackingFacts(p *Parsed) []types.Fact {
	now := im.now().UTC()
	modified := p.Source.ModifiedAt
	if modified.IsZero() {
		modified = now
	}
	subject := eav.SourceSubject(p.Source.Name)
	return []types.Fact{
		types.NewFact(subject, vocab.RDFType, types.IRI(vocab.CoreSourceFile)),
		types.NewFact(subject, vocab.CoreSourceName, types.String(p.Source.Name)),
		types.NewFact(subject, vocab.CoreModifiedAt, types.Typed(modified.UTC().Format(time.RFC3339Nano), vocab.XSDDateTime)),
		types.NewFact(subject, vocab.CoreFingerprint, types.String(p.Fingerprint)),
		types.NewFact(subject, vocab.CoreImportedAt, types.Typed(now.Format(time.RFC3339Nano), vocab.XSDDateTime)),
		types.NewFact(subject, vocab.CoreTripleCount, types.Typed(strconv.Itoa(len(p.Facts)), vocab.XSDInteger)),
	}
}
