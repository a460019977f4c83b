package ontology

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"

	"github.com/teranos/eavto/eav/types"
	"github.com/teranos/eavto/errors"
	"github.com/teranos/eavto/ontology/vocab"
)

// Source is one definition source: a stable name and its raw content.
type Source struct {
	Name       string
	Content    []byte
	Path       string    // where it was read from, if a file
	ModifiedAt time.Time // file modification time, zero if unknown
	Origin     string    // overrides the default "file:<name>" origin
}

// Parsed is a fully parsed source, ready to commit.
type Parsed struct {
	Source      Source
	Facts       []types.Fact
	Fingerprint string

	// Defines lists the classes the source declares; References lists the
	// superclasses it names that it does not declare itself. Both sorted.
	Defines    []string
	References []string
}

// Fingerprint returns the hex sha256 of content.
func Fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

var slugUnsafe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// blankScope is the per-source prefix of blank identifiers, so the same
// label in two sources never names the same node.
func blankScope(name string) string {
	slug := strings.Trim(slugUnsafe.ReplaceAllString(name, "-"), "-")
	if slug == "" {
		slug = "source"
	}
	return types.BlankPrefix + slug + "."
}

// Parse reads N-Triples (or N-Quads, graph label ignored) into facts.
// The whole source is parsed before anything is returned; any malformed
// statement fails the parse with an *errors.ParseError carrying its line.
// Lexical forms are preserved as written.
func Parse(ctx context.Context, src Source) (*Parsed, error) {
	if src.Name == "" {
		return nil, errors.NewInvalidRequestError("source has no name")
	}

	scope := blankScope(src.Name)
	p := &Parsed{Source: src, Fingerprint: Fingerprint(src.Content)}

	scanner := bufio.NewScanner(bytes.NewReader(src.Content))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "parse %s cancelled at line %d", src.Name, line)
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		q, err := nquads.NewReader(strings.NewReader(text+"\n"), true).ReadQuad()
		if err == io.EOF {
			continue
		}
		if err != nil {
			return nil, &errors.ParseError{Source: src.Name, Line: line, Reason: err.Error()}
		}

		fact, err := toFact(q, scope)
		if err != nil {
			return nil, &errors.ParseError{Source: src.Name, Line: line, Reason: err.Error()}
		}
		if err := fact.Validate(); err != nil {
			return nil, &errors.ParseError{Source: src.Name, Line: line, Reason: err.Error()}
		}
		p.Facts = append(p.Facts, fact)
	}
	if err := scanner.Err(); err != nil {
		return nil, &errors.ParseError{Source: src.Name, Line: line + 1, Reason: err.Error()}
	}

	p.Defines, p.References = classEdges(p.Facts)
	return p, nil
}

func toFact(q quad.Quad, scope string) (types.Fact, error) {
	subject, err := toSubject(q.Subject, scope)
	if err != nil {
		return types.Fact{}, errors.Wrap(err, "subject")
	}
	predicate, ok := q.Predicate.(quad.IRI)
	if !ok {
		return types.Fact{}, errors.Newf("predicate must be an IRI, got %v", q.Predicate)
	}
	object, err := toObject(q.Object, scope)
	if err != nil {
		return types.Fact{}, errors.Wrap(err, "object")
	}
	return types.NewFact(subject, string(predicate), object), nil
}

func toSubject(v quad.Value, scope string) (string, error) {
	switch t := v.(type) {
	case quad.IRI:
		return string(t), nil
	case quad.BNode:
		return scope + strings.TrimPrefix(string(t), types.BlankPrefix), nil
	}
	return "", errors.Newf("must be an IRI or blank node, got %v", v)
}

func toObject(v quad.Value, scope string) (types.Object, error) {
	switch t := v.(type) {
	case quad.IRI:
		return types.IRI(string(t)), nil
	case quad.BNode:
		return types.Blank(scope + strings.TrimPrefix(string(t), types.BlankPrefix)), nil
	case quad.String:
		return types.String(string(t)), nil
	case quad.LangString:
		return types.LangString(string(t.Value), t.Lang), nil
	case quad.TypedString:
		return types.Typed(string(t.Value), string(t.Type)), nil
	case nil:
		return types.Object{}, errors.New("missing")
	}
	return types.Object{}, errors.Newf("unsupported term %v", v)
}

// classEdges extracts declared classes and referenced superclasses.
func classEdges(facts []types.Fact) (defines, references []string) {
	defined := make(map[string]bool)
	referenced := make(map[string]bool)
	for _, f := range facts {
		switch f.Predicate {
		case vocab.RDFType:
			if vocab.IsClassType(f.Object.Value) {
				defined[f.Subject] = true
			}
		case vocab.RDFSSubClassOf:
			defined[f.Subject] = true
			if f.Object.IsReference() {
				referenced[f.Object.Value] = true
			}
		}
	}
	for c := range defined {
		defines = append(defines, c)
	}
	for c := range referenced {
		if !defined[c] {
			references = append(references, c)
		}
	}
	sort.Strings(defines)
	sort.Strings(references)
	return defines, references
}
