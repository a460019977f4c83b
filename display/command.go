package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/eavto/errors"
)

// ShouldOutputJSON determines if a command should output JSON based on its
// --json flag, falling back to EAVTO_OUTPUT.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd != nil {
		if f := cmd.Flags().Lookup("json"); f != nil && f.Changed {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			return jsonFlag
		}
	}
	return strings.HasPrefix(os.Getenv(EnvOutput), "json")
}

// OutputJSON marshals v with MarshalJSON and writes it to w
func OutputJSON(w io.Writer, v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return errors.Wrap(err, "failed to marshal JSON")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
