// Package meta embeds the built-in meta-vocabulary: the classes and
// properties that let the store recognise classes, properties, icons and
// tracked sources. It is imported once under the core origin.
package meta

import _ "embed"

// Name is the source name of the meta-vocabulary.
const Name = "core.nt"

//go:embed core.nt
var source []byte

// Source returns the N-Triples content of the meta-vocabulary.
func Source() []byte {
	return append([]byte(nil), source...)
}
