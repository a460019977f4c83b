package hierarchy

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/eavto/eav"
	"github.com/teranos/eavto/eav/types"
	"github.com/teranos/eavto/errors"
	"github.com/teranos/eavto/logger"
	"github.com/teranos/eavto/ontology/vocab"
	"github.com/teranos/eavto/sym"
)

// InheritedGroup holds the properties an entity inherits from one class.
type InheritedGroup struct {
	Class      string   `json:"class"`
	Properties []string `json:"properties"`
}

// Value is one current value of an entity's predicate.
type Value struct {
	Object types.Object `json:"object"`
	Origin string       `json:"origin"`
	Seq    int64        `json:"seq"`
	Tx     int64        `json:"tx"`
}

// Backlink is a reference fact pointing at the entity.
type Backlink struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Origin    string `json:"origin"`
	Seq       int64  `json:"seq"`
}

// EntityView is the resolved view of one entity.
type EntityView struct {
	ID         string `json:"id"`
	IsClass    bool   `json:"is_class"`
	IsProperty bool   `json:"is_property"`

	Types            []string `json:"types"`
	MostSpecificType string   `json:"most_specific_type,omitempty"`
	Superclasses     []string `json:"superclasses"`

	OwnProperties        []string         `json:"own_properties"`
	InheritedProperties  []InheritedGroup `json:"inherited_properties"`
	ApplicableProperties []string         `json:"applicable_properties"`

	Values    map[string][]Value `json:"values"`
	Backlinks []Backlink         `json:"backlinks"`

	Label    string `json:"label,omitempty"`
	Comment  string `json:"comment,omitempty"`
	Icon     string `json:"icon,omitempty"`
	IconFrom string `json:"icon_from,omitempty"` // entity or class the icon was found on

	Generation uint64 `json:"generation"`
}

// Options configures a Resolver.
type Options struct {
	// BacklinkExclude lists presentational predicates left out of backlinks.
	// Nil means vocab.DefaultPresentational.
	BacklinkExclude []string
}

// Resolver computes entity views over a fact reader.
type Resolver struct {
	reader  eav.Reader
	exclude map[string]bool
	logger  *zap.SugaredLogger
}

// NewResolver creates a resolver over r.
func NewResolver(r eav.Reader, opts Options, log *zap.SugaredLogger) *Resolver {
	exclude := opts.BacklinkExclude
	if exclude == nil {
		exclude = vocab.DefaultPresentational
	}
	set := make(map[string]bool, len(exclude))
	for _, p := range exclude {
		set[vocab.Expand(p)] = true
	}
	return &Resolver{reader: r, exclude: set, logger: logger.OrNop(log)}
}

// Reader returns the underlying fact reader.
func (r *Resolver) Reader() eav.Reader {
	return r.reader
}

// Types returns the entity's declared types, sorted.
func (r *Resolver) Types(ctx context.Context, id string) ([]string, error) {
	return activeObjects(ctx, r.reader, id, vocab.RDFType)
}

// Superclasses returns every ancestor of class along rdfs:subClassOf, nearest first.
func (r *Resolver) Superclasses(ctx context.Context, class string) ([]string, error) {
	return ancestors(ctx, r.reader, vocab.RDFSSubClassOf, []string{class})
}

// Superproperties returns every ancestor of property along rdfs:subPropertyOf, nearest first.
func (r *Resolver) Superproperties(ctx context.Context, property string) ([]string, error) {
	return ancestors(ctx, r.reader, vocab.RDFSSubPropertyOf, []string{property})
}

// PropertiesOf returns the properties whose rdfs:domain is class, sorted.
func (r *Resolver) PropertiesOf(ctx context.Context, class string) ([]string, error) {
	return activeSubjects(ctx, r.reader, vocab.RDFSDomain, class)
}

// MostSpecific returns the declared type that is not an ancestor of any
// other declared type. Ties go to the lexically smallest.
func (r *Resolver) MostSpecific(ctx context.Context, declared []string) (string, error) {
	if len(declared) == 0 {
		return "", nil
	}
	general := make(map[string]bool)
	for _, t := range declared {
		up, err := r.Superclasses(ctx, t)
		if err != nil {
			return "", err
		}
		for _, a := range up {
			if a != t {
				general[a] = true
			}
		}
	}
	candidates := make([]string, 0, len(declared))
	for _, t := range declared {
		if !general[t] {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		// Every declared type is above another one: a cycle among them.
		candidates = declared
	}
	sort.Strings(candidates)
	return candidates[0], nil
}

// Backlinks returns the active reference facts pointing at id, minus the
// excluded presentational predicates, in sequence order.
func (r *Resolver) Backlinks(ctx context.Context, id string) ([]Backlink, error) {
	obj := types.Ref(id)
	out := []Backlink{}
	for f, err := range r.reader.Scan(ctx, eav.Pattern{Object: &obj, ReferencesOnly: true}) {
		if err != nil {
			return nil, err
		}
		if r.exclude[f.Predicate] {
			continue
		}
		out = append(out, Backlink{Subject: f.Subject, Predicate: f.Predicate, Origin: f.Origin, Seq: f.Seq})
	}
	return out, nil
}

// Icon returns the entity's own core:icon, else the icon of its nearest
// declared type or ancestor class. Reports where the icon was found.
func (r *Resolver) Icon(ctx context.Context, id string) (icon, from string, err error) {
	lineage, err := r.lineage(ctx, id)
	if err != nil {
		return "", "", err
	}
	return r.iconAlong(ctx, append([]string{id}, lineage.classes...))
}

func (r *Resolver) iconAlong(ctx context.Context, chain []string) (string, string, error) {
	seen := make(map[string]bool, len(chain))
	for _, node := range chain {
		if seen[node] {
			continue
		}
		seen[node] = true
		f, err := latest(ctx, r.reader, node, vocab.CoreIcon)
		if err != nil {
			return "", "", err
		}
		if f != nil {
			return f.Object.Value, node, nil
		}
	}
	return "", "", nil
}

// lineage is the ordered class chain an entity's properties come from.
type lineage struct {
	types        []string
	isClass      bool
	isProperty   bool
	anchor       string   // own properties have this domain
	mostSpecific string   // "" for classes
	superclasses []string // nearest first, starts excluded
	classes      []string // anchor, other declared types, superclasses
}

func (r *Resolver) lineage(ctx context.Context, id string) (*lineage, error) {
	declared, err := r.Types(ctx, id)
	if err != nil {
		return nil, err
	}
	l := &lineage{types: declared}

	// Property meta-types stay in the walk: a property's catalogue comes
	// from owl:ObjectProperty, rdf:Property and so on like any other type.
	var instanceTypes []string
	for _, t := range declared {
		if vocab.IsClassType(t) {
			l.isClass = true
			continue
		}
		if vocab.IsPropertyType(t) {
			l.isProperty = true
		}
		instanceTypes = append(instanceTypes, t)
	}
	if !l.isClass {
		parents, err := activeObjects(ctx, r.reader, id, vocab.RDFSSubClassOf)
		if err != nil {
			return nil, err
		}
		l.isClass = len(parents) > 0
	}

	if l.isClass {
		l.anchor = id
		l.superclasses, err = ancestors(ctx, r.reader, vocab.RDFSSubClassOf, []string{id})
		if err != nil {
			return nil, err
		}
		l.classes = append([]string{id}, l.superclasses...)
		return l, nil
	}

	l.mostSpecific, err = r.MostSpecific(ctx, instanceTypes)
	if err != nil {
		return nil, err
	}
	if l.mostSpecific == "" {
		return l, nil
	}
	l.anchor = l.mostSpecific

	starts := []string{l.mostSpecific}
	for _, t := range instanceTypes {
		if t != l.mostSpecific {
			starts = append(starts, t)
		}
	}
	l.superclasses, err = ancestors(ctx, r.reader, vocab.RDFSSubClassOf, starts)
	if err != nil {
		return nil, err
	}
	l.classes = append(append([]string{}, starts...), l.superclasses...)
	return l, nil
}

// ResolveEntity builds the full view of id from the current facts.
// Returns errors.ErrNotFound when no active fact mentions id.
func (r *Resolver) ResolveEntity(ctx context.Context, id string) (*EntityView, error) {
	if id == "" {
		return nil, errors.NewInvalidRequestError("entity id is empty")
	}
	start := time.Now()
	generation := r.reader.Generation()

	values, err := r.values(ctx, id)
	if err != nil {
		return nil, err
	}
	backlinks, err := r.Backlinks(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 && len(backlinks) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "entity %s", id)
	}

	l, err := r.lineage(ctx, id)
	if err != nil {
		return nil, err
	}

	view := &EntityView{
		ID:               id,
		IsClass:          l.isClass,
		IsProperty:       l.isProperty,
		Types:            nonNil(l.types),
		MostSpecificType: l.mostSpecific,
		Superclasses:     nonNil(l.superclasses),
		Values:           values,
		Backlinks:        backlinks,
		Generation:       generation,
	}

	if err := r.properties(ctx, l, view); err != nil {
		return nil, err
	}

	view.Label = firstValue(values[vocab.RDFSLabel])
	view.Comment = firstValue(values[vocab.RDFSComment])
	view.Icon, view.IconFrom, err = r.iconAlong(ctx, append([]string{id}, l.classes...))
	if err != nil {
		return nil, err
	}

	r.logger.Debugw("Resolved entity",
		logger.FieldSymbol, sym.AX,
		logger.FieldSubject, id,
		"types", len(view.Types),
		"superclasses", len(view.Superclasses),
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return view, nil
}

// properties fills own, inherited and applicable properties along the lineage.
func (r *Resolver) properties(ctx context.Context, l *lineage, view *EntityView) error {
	view.OwnProperties = []string{}
	view.InheritedProperties = []InheritedGroup{}
	view.ApplicableProperties = []string{}
	if l.anchor == "" {
		return nil
	}

	seen := make(map[string]bool)
	for i, class := range l.classes {
		props, err := r.PropertiesOf(ctx, class)
		if err != nil {
			return err
		}
		var fresh []string
		for _, p := range props {
			if !seen[p] {
				seen[p] = true
				fresh = append(fresh, p)
			}
		}
		if i == 0 {
			view.OwnProperties = nonNil(fresh)
		} else if len(fresh) > 0 {
			view.InheritedProperties = append(view.InheritedProperties, InheritedGroup{Class: class, Properties: fresh})
		}
		view.ApplicableProperties = append(view.ApplicableProperties, fresh...)
	}
	return nil
}

// values groups the entity's active facts by predicate. Within a predicate
// the newest value comes first.
func (r *Resolver) values(ctx context.Context, id string) (map[string][]Value, error) {
	out := make(map[string][]Value)
	for f, err := range r.reader.Scan(ctx, eav.Pattern{Subject: id}) {
		if err != nil {
			return nil, err
		}
		out[f.Predicate] = append(out[f.Predicate], Value{Object: f.Object, Origin: f.Origin, Seq: f.Seq, Tx: f.Tx})
	}
	for p, vs := range out {
		sort.Slice(vs, func(i, j int) bool { return vs[i].Seq > vs[j].Seq })
		out[p] = vs
	}
	return out, nil
}

func firstValue(vs []Value) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0].Object.Value
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
