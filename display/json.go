// Package display renders command results for terminals and scripts.
package display

import (
	"encoding/json"
	"os"
)

// EnvOutput selects the default output format ("json" or "text") when no flag is given
const EnvOutput = "EAVTO_OUTPUT"

// MarshalJSON marshals v indented for humans, or compact when
// EAVTO_OUTPUT=json-compact.
func MarshalJSON(v interface{}) ([]byte, error) {
	if os.Getenv(EnvOutput) == "json-compact" {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}
