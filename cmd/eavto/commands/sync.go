package commands

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/eavto/am"
	"github.com/teranos/eavto/display"
	"github.com/teranos/eavto/errors"
	"github.com/teranos/eavto/logger"
	"github.com/teranos/eavto/ontology"
	"github.com/teranos/eavto/sym"
)

// SyncCmd re-imports changed ontology sources
var SyncCmd = &cobra.Command{
	Use:   "sync [dir]",
	Short: sym.IX + " Re-import ontology sources whose content changed",
	Long: sym.IX + ` sync — Re-import changed ontology sources

Sources whose fingerprint matches the one recorded at their last import are
skipped. A changed source has its previous facts retracted and its new facts
asserted in one ledger-backed transaction; a source that fails to parse keeps
its previous facts.

With --watch the directory is watched and re-synced after changes settle.

Examples:
  eavto sync                 # Sync ontology.dir once
  eavto sync ./defs --watch  # Keep the store in step with ./defs`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

var (
	syncWatchFlag bool
)

func init() {
	SyncCmd.Flags().BoolVarP(&syncWatchFlag, "watch", "w", false, "Watch the directory and sync on changes")
	SyncCmd.Flags().Bool("json", false, "Output sync reports as JSON")
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	dir := cfg.Ontology.Dir
	if len(args) == 1 {
		dir = args[0]
	}

	store, database, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	syncer := ontology.NewSyncer(store, logger.ComponentLogger("ontology.sync"))
	watcher, err := ontology.NewWatcher(dir, syncer, ontology.WatcherConfig{
		Debounce:       cfg.Debounce(),
		SyncsPerMinute: cfg.Ontology.MaxSyncsPerMinute,
	}, logger.ComponentLogger("ontology.watch"))
	if err != nil {
		return err
	}
	defer watcher.Close()

	report, err := watcher.SyncNow(cmd.Context())
	if perr := printSyncReport(cmd, report); perr != nil {
		return perr
	}
	if err != nil {
		return err
	}

	if !syncWatchFlag {
		if len(report.Failed) > 0 {
			return errors.Newf("%d sources failed to sync", len(report.Failed))
		}
		return nil
	}

	watcher.OnSync(func(r *ontology.SyncReport, err error) {
		if err != nil {
			pterm.Error.Printf("Sync failed: %v\n", err)
		}
		if r != nil && (r.Changed() || len(r.Failed) > 0) {
			_ = printSyncReport(cmd, r)
		}
	})
	pterm.Info.Printf("Watching %s (Ctrl+C to stop)\n", dir)
	if err := watcher.Run(cmd.Context()); err != nil && cmd.Context().Err() == nil {
		return err
	}
	return nil
}

func printSyncReport(cmd *cobra.Command, r *ontology.SyncReport) error {
	if r == nil {
		return nil
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), r)
	}

	results := append(append([]ontology.SourceResult{}, r.Updated...), r.Failed...)
	printResults(results, r.Warnings)
	if len(r.Skipped) > 0 {
		pterm.Info.Printf("Unchanged: %s\n", strings.Join(r.Skipped, ", "))
	}
	if !r.Changed() && len(r.Failed) == 0 {
		pterm.Success.Println("Store is up to date")
	}
	return nil
}
