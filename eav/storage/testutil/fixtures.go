package testutil

import (
	"github.com/teranos/eavto/eav/types"
	"github.com/teranos/eavto/ontology/vocab"
)

// Example namespace used by fixtures.
const Ex = "urn:example:"

// AnimalOntology returns the Animal ← Mammal ← Dog hierarchy with a
// hasName property on Mammal, a legs property on Animal and an instance rex.
func AnimalOntology() []types.Fact {
	return []types.Fact{
		types.NewFact(Ex+"Animal", vocab.RDFType, types.IRI(vocab.OWLClass)),
		types.NewFact(Ex+"Animal", vocab.RDFSLabel, types.String("Animal")),
		types.NewFact(Ex+"Animal", vocab.CoreIcon, types.String("paw")),
		types.NewFact(Ex+"Mammal", vocab.RDFType, types.IRI(vocab.OWLClass)),
		types.NewFact(Ex+"Mammal", vocab.RDFSSubClassOf, types.IRI(Ex+"Animal")),
		types.NewFact(Ex+"Mammal", vocab.RDFSLabel, types.String("Mammal")),
		types.NewFact(Ex+"Dog", vocab.RDFType, types.IRI(vocab.OWLClass)),
		types.NewFact(Ex+"Dog", vocab.RDFSSubClassOf, types.IRI(Ex+"Mammal")),
		types.NewFact(Ex+"Dog", vocab.RDFSLabel, types.String("Dog")),
		types.NewFact(Ex+"Dog", vocab.RDFSComment, types.String("A domesticated canine")),

		types.NewFact(Ex+"hasName", vocab.RDFType, types.IRI(vocab.OWLDatatypeProperty)),
		types.NewFact(Ex+"hasName", vocab.RDFSDomain, types.IRI(Ex+"Mammal")),
		types.NewFact(Ex+"hasName", vocab.RDFSRange, types.IRI(vocab.XSDString)),
		types.NewFact(Ex+"legs", vocab.RDFType, types.IRI(vocab.OWLDatatypeProperty)),
		types.NewFact(Ex+"legs", vocab.RDFSDomain, types.IRI(Ex+"Animal")),
		types.NewFact(Ex+"breed", vocab.RDFType, types.IRI(vocab.OWLDatatypeProperty)),
		types.NewFact(Ex+"breed", vocab.RDFSDomain, types.IRI(Ex+"Dog")),

		types.NewFact(Ex+"rex", vocab.RDFType, types.IRI(Ex+"Dog")),
		types.NewFact(Ex+"rex", Ex+"hasName", types.String("Rex")),
		types.NewFact(Ex+"rex", vocab.RDFSLabel, types.String("Rex")),
		types.NewFact(Ex+"rex", Ex+"legs", types.Typed("4", vocab.XSDInteger)),
		types.NewFact(Ex+"alice", Ex+"owns", types.IRI(Ex+"rex")),
		types.NewFact(Ex+"alice", vocab.RDFSSeeAlso, types.IRI(Ex+"rex")),
	}
}
