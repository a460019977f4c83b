// Package eav (Entity-Attribute-Value-Time-Origin) defines the fact store
// contracts shared by storage, ingestion and query layers.
//
// # Overview
//
// Every piece of data is an immutable fact:
//
//	[Subject] [Predicate] [Object] in [Tx] by [Origin]
//
// For example:
//   - urn:example:Dog rdfs:subClassOf urn:example:Mammal in tx 12 by file:animals.nt
//   - urn:example:rex rdfs:label "Rex"@en in tx 40 by user:alice
//
// # Core Concepts
//
// Facts are never updated or deleted. The only state change is retraction,
// which flips a flag from false to true and is itself recorded as a ledger
// entry. "Updating" a value means retracting the old fact and appending a
// new one; both stay visible in the timeline.
//
// The current value of a (subject, predicate, origin) triple is the
// non-retracted fact with the greatest sequence number.
//
// # Origins
//
// The origin names the actor that asserted a batch. Ontology sources use
// "file:<name>". The origin "core" is reserved for the built-in
// meta-vocabulary and the bookkeeping facts of tracked sources; ordinary
// write paths cannot retract it.
//
// # Packages
//
//   - eav/types: Fact, Object, Transaction, datatype classification
//   - eav/storage: the SQLite implementation
package eav
