// Package sym defines the glyphs eavto uses as stable markers in logs and CLI output.
// They are emitted as the "symbol" structured field so logs stay queryable by subsystem.
package sym

// Subsystem glyphs.
const (
	AM = "≡" // am: configuration
	IX = "⨳" // ix: ontology ingestion and re-import
	AX = "⋈" // ax: hierarchy resolution and queries
	BY = "⌬" // by: origin/provenance
	AS = "+" // as: assert a fact batch
	RX = "−" // rx: retract a fact batch
	DB = "⊔" // database/storage layer
	SE = "⊨" // se: search
)

// Label returns the subsystem name for a glyph, or "" if unknown.
func Label(glyph string) string {
	switch glyph {
	case AM:
		return "config"
	case IX:
		return "ingest"
	case AX:
		return "resolve"
	case BY:
		return "origin"
	case AS:
		return "assert"
	case RX:
		return "retract"
	case DB:
		return "storage"
	case SE:
		return "search"
	}
	return ""
}
