package types

import (
	"strings"
	"time"

	"github.com/teranos/eavto/ontology/vocab"
)

// ObjectKind discriminates the three disjoint object forms.
type ObjectKind string

const (
	KindIRI     ObjectKind = "iri"     // reference to a named subject
	KindBlank   ObjectKind = "blank"   // reference to a locally scoped subject
	KindLiteral ObjectKind = "literal" // lexical value + datatype (+ language)
)

// BlankPrefix marks locally scoped subject identifiers.
const BlankPrefix = "_:"

// Object is the value side of a fact. For references Value is the
// referenced subject; for literals it is the authoritative lexical form.
type Object struct {
	Kind     ObjectKind `json:"kind"`
	Value    string     `json:"value"`
	Datatype string     `json:"datatype,omitempty"`
	Lang     string     `json:"lang,omitempty"`
}

// IRI returns a reference object to a named subject.
func IRI(iri string) Object {
	return Object{Kind: KindIRI, Value: iri}
}

// Blank returns a reference object to a blank subject. The "_:" prefix is
// added when missing.
func Blank(id string) Object {
	if !strings.HasPrefix(id, BlankPrefix) {
		id = BlankPrefix + id
	}
	return Object{Kind: KindBlank, Value: id}
}

// Ref returns IRI or Blank depending on the identifier form.
func Ref(id string) Object {
	if IsBlank(id) {
		return Object{Kind: KindBlank, Value: id}
	}
	return IRI(id)
}

// String returns a plain xsd:string literal.
func String(value string) Object {
	return Object{Kind: KindLiteral, Value: value, Datatype: vocab.XSDString}
}

// Typed returns a literal with an explicit datatype.
func Typed(value, datatype string) Object {
	return Object{Kind: KindLiteral, Value: value, Datatype: datatype}
}

// LangString returns a language-tagged literal.
func LangString(value, lang string) Object {
	return Object{Kind: KindLiteral, Value: value, Datatype: vocab.RDFLangString, Lang: lang}
}

// IsReference reports whether the object points at another subject.
func (o Object) IsReference() bool {
	return o.Kind == KindIRI || o.Kind == KindBlank
}

// Normalized fills the default datatype of literals.
func (o Object) Normalized() Object {
	if o.Kind != KindLiteral {
		return o
	}
	if o.Lang != "" && o.Datatype == "" {
		o.Datatype = vocab.RDFLangString
	}
	if o.Datatype == "" {
		o.Datatype = vocab.XSDString
	}
	return o
}

// Fact is one immutable statement with its provenance.
type Fact struct {
	Seq       int64      `json:"seq"` // per-fact logical clock, unique and increasing
	Subject   string     `json:"subject"`
	Predicate string     `json:"predicate"`
	Object    Object     `json:"object"`
	Num       *float64   `json:"num,omitempty"`  // numeric family projection
	Int       *int64     `json:"int,omitempty"`  // integer family projection
	Time      *time.Time `json:"time,omitempty"` // temporal family projection
	Tx        int64      `json:"tx"`
	Origin    string     `json:"origin"`
	Retracted bool       `json:"retracted"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewFact builds an unsaved fact; Seq, Tx and Origin are assigned on append.
func NewFact(subject, predicate string, object Object) Fact {
	return Fact{Subject: subject, Predicate: predicate, Object: object}
}

// IsBlank reports whether id is a blank identifier.
func IsBlank(id string) bool {
	return strings.HasPrefix(id, BlankPrefix)
}

// TxKind is the kind of batch a ledger entry backs.
type TxKind string

const (
	TxAssert  TxKind = "assert"
	TxRetract TxKind = "retract"
)

// Transaction is one ledger entry.
type Transaction struct {
	ID        int64     `json:"id"`
	Origin    string    `json:"origin"`
	Kind      TxKind    `json:"kind"`
	Note      string    `json:"note,omitempty"` // retract filter as JSON
	CreatedAt time.Time `json:"created_at"`
	FactCount int64     `json:"fact_count"` // facts introduced (assert) or retracted (retract)
}
