// Package vocab holds the IRIs the store and resolver treat specially.
//
// Standard namespaces (rdf, rdfs, owl, xsd) are used verbatim. The core
// namespace carries the built-in meta-vocabulary: icons, tracked source
// bookkeeping and the SourceFile class.
package vocab

import "strings"

// Namespaces
const (
	RDF  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS = "http://www.w3.org/2000/01/rdf-schema#"
	OWL  = "http://www.w3.org/2002/07/owl#"
	XSD  = "http://www.w3.org/2001/XMLSchema#"
	Core = "urn:eavto:core#"
)

// rdf
const (
	RDFType       = RDF + "type"
	RDFProperty   = RDF + "Property"
	RDFLangString = RDF + "langString"
)

// rdfs
const (
	RDFSClass         = RDFS + "Class"
	RDFSSubClassOf    = RDFS + "subClassOf"
	RDFSSubPropertyOf = RDFS + "subPropertyOf"
	RDFSDomain        = RDFS + "domain"
	RDFSRange         = RDFS + "range"
	RDFSLabel         = RDFS + "label"
	RDFSComment       = RDFS + "comment"
	RDFSSeeAlso       = RDFS + "seeAlso"
)

// owl
const (
	OWLClass              = OWL + "Class"
	OWLObjectProperty     = OWL + "ObjectProperty"
	OWLDatatypeProperty   = OWL + "DatatypeProperty"
	OWLAnnotationProperty = OWL + "AnnotationProperty"
	OWLThing              = OWL + "Thing"
)

// xsd datatypes
const (
	XSDString             = XSD + "string"
	XSDBoolean            = XSD + "boolean"
	XSDDecimal            = XSD + "decimal"
	XSDDouble             = XSD + "double"
	XSDFloat              = XSD + "float"
	XSDInteger            = XSD + "integer"
	XSDInt                = XSD + "int"
	XSDLong               = XSD + "long"
	XSDShort              = XSD + "short"
	XSDByte               = XSD + "byte"
	XSDNonNegativeInteger = XSD + "nonNegativeInteger"
	XSDPositiveInteger    = XSD + "positiveInteger"
	XSDNonPositiveInteger = XSD + "nonPositiveInteger"
	XSDNegativeInteger    = XSD + "negativeInteger"
	XSDUnsignedLong       = XSD + "unsignedLong"
	XSDUnsignedInt        = XSD + "unsignedInt"
	XSDUnsignedShort      = XSD + "unsignedShort"
	XSDUnsignedByte       = XSD + "unsignedByte"
	XSDDateTime           = XSD + "dateTime"
	XSDDateTimeStamp      = XSD + "dateTimeStamp"
	XSDDate               = XSD + "date"
)

// core meta-vocabulary
const (
	CoreIcon        = Core + "icon"
	CoreSourceFile  = Core + "SourceFile"
	CoreSourceName  = Core + "sourceName"
	CoreModifiedAt  = Core + "modifiedAt"
	CoreFingerprint = Core + "fingerprint"
	CoreImportedAt  = Core + "importedAt"
	CoreTripleCount = Core + "tripleCount"
)

// ClassTypes are the meta-types that make a subject a class.
var ClassTypes = []string{RDFSClass, OWLClass}

// PropertyTypes are the meta-types that make a subject a property.
var PropertyTypes = []string{RDFProperty, OWLObjectProperty, OWLDatatypeProperty, OWLAnnotationProperty}

// IsClassType reports whether t is one of ClassTypes.
func IsClassType(t string) bool {
	return t == RDFSClass || t == OWLClass
}

// IsPropertyType reports whether t is one of PropertyTypes.
func IsPropertyType(t string) bool {
	for _, p := range PropertyTypes {
		if t == p {
			return true
		}
	}
	return false
}

// DefaultPresentational lists predicates excluded from backlinks unless
// configured otherwise.
var DefaultPresentational = []string{RDFSLabel, RDFSComment, RDFSSeeAlso, CoreIcon}

// Compact shortens an IRI with a well-known prefix for display.
func Compact(iri string) string {
	for _, ns := range []struct{ prefix, iri string }{
		{"rdf:", RDF}, {"rdfs:", RDFS}, {"owl:", OWL}, {"xsd:", XSD}, {"core:", Core},
	} {
		if strings.HasPrefix(iri, ns.iri) {
			return ns.prefix + strings.TrimPrefix(iri, ns.iri)
		}
	}
	return iri
}

// Expand is the inverse of Compact for the well-known prefixes.
// Anything else is returned unchanged.
func Expand(curie string) string {
	for _, ns := range []struct{ prefix, iri string }{
		{"rdf:", RDF}, {"rdfs:", RDFS}, {"owl:", OWL}, {"xsd:", XSD}, {"core:", Core},
	} {
		if strings.HasPrefix(curie, ns.prefix) {
			return ns.iri + strings.TrimPrefix(curie, ns.prefix)
		}
	}
	return curie
}
