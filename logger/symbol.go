package logger

import "github.com/teranos/eavto/sym"

// Symbol-aware logging helpers.
// These log through the global logger with the subsystem glyph as a structured
// field, not in the message, so logs stay queryable by symbol.
//
// Usage:
//
//	// Instead of:
//	logger.Infow(sym.IX + " Synced ontology", "count", n)
//
//	// Use:
//	logger.IxInfow("Synced ontology", logger.FieldCount, n)

func withSymbol(glyph string, keysAndValues []interface{}) []interface{} {
	return append([]interface{}{FieldSymbol, glyph}, keysAndValues...)
}

// IxInfow logs an info message with the ix symbol (⨳)
func IxInfow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Infow(msg, withSymbol(sym.IX, keysAndValues)...)
	}
}

// IxWarnw logs a warning message with the ix symbol (⨳)
func IxWarnw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Warnw(msg, withSymbol(sym.IX, keysAndValues)...)
	}
}

// AxInfow logs an info message with the ax symbol (⋈)
// Used for server lifecycle
func AxInfow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Infow(msg, withSymbol(sym.AX, keysAndValues)...)
	}
}
