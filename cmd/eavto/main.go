package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teranos/eavto/am"
	"github.com/teranos/eavto/cmd/eavto/commands"
	"github.com/teranos/eavto/errors"
	"github.com/teranos/eavto/logger"
)

var rootCmd = &cobra.Command{
	Use:   "eavto",
	Short: "eavto - provenance-tagged fact store with an ontology layer",
	Long: `eavto - Entity-Attribute-Value-Time-Origin fact store.

Every datum is an immutable fact tagged with the origin that asserted it.
Ontology sources (N-Triples) are imported in dependency order, re-imported
when their content changes, and queried with inheritance-aware resolution.

Available commands:
  am     - Manage configuration ("I am")
  db     - Inspect the fact store and its ledger
  ix     - Import ontology sources
  sync   - Re-import changed ontology sources (optionally watching)
  ax     - Resolve an entity through the class hierarchy
  search - Search entities by label and comment
  server - Serve the query surface over HTTP and WebSocket

Examples:
  eavto am show              # Show current configuration
  eavto ix ./ontology        # Import every source under ./ontology
  eavto sync --watch         # Keep the store in step with ontology.dir
  eavto ax urn:example:rex   # Resolve an entity
  eavto server               # Start the server`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs := false
		if cfg, err := am.Load(); err == nil {
			jsonLogs = cfg.Log.JSON
		}
		if err := logger.InitializeWithLevel(jsonLogs, logger.VerbosityToLevel(verbosity)); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().String("db-path", "", "Database path (overrides database.path)")

	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.AxCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.IxCmd)
	rootCmd.AddCommand(commands.SearchCmd)
	rootCmd.AddCommand(commands.ServerCmd)
	rootCmd.AddCommand(commands.SyncCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logger.Cleanup()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
