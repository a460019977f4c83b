// Package hierarchy resolves entities against the class graph stored as
// facts: effective types, ancestors, own and inherited properties, and
// backlinks. Every resolution is computed from the current facts; Session
// adds a per-read-session cache that is dropped whenever the store commits.
package hierarchy
