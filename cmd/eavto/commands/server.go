package commands

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/eavto/am"
	"github.com/teranos/eavto/errors"
	"github.com/teranos/eavto/logger"
	"github.com/teranos/eavto/ontology"
	"github.com/teranos/eavto/server"
	"github.com/teranos/eavto/sym"
)

// ServerCmd starts the eavto server
var ServerCmd = &cobra.Command{
	Use:     "server",
	Aliases: []string{"serve"},
	Short:   sym.AX + " Serve the query surface over HTTP and WebSocket",
	Long: sym.AX + ` server — Serve resolve, search, icon, backlinks and ingest

HTTP endpoints live under /api, Prometheus metrics under /metrics, and a
WebSocket at /ws answers the same requests and pushes a frame after every
store commit. With ontology.watch (or --watch) the ontology directory is
synced at startup and again whenever it changes.

Examples:
  eavto server
  eavto server --port 9000 --watch`,
	RunE: runServer,
}

var (
	serverPortFlag  int
	serverWatchFlag bool
)

func init() {
	ServerCmd.Flags().IntVarP(&serverPortFlag, "port", "p", 0, "Port to listen on (overrides server.port)")
	ServerCmd.Flags().BoolVarP(&serverWatchFlag, "watch", "w", false, "Watch ontology.dir and sync on changes")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	// Default to Info for a long-running process
	if v, _ := cmd.Flags().GetCount("verbose"); v == 0 {
		if err := logger.InitializeWithLevel(cfg.Log.JSON, logger.VerbosityToLevel(logger.VerbosityInfo)); err != nil {
			return err
		}
	}

	svc, database, err := openService(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	port := cfg.GetServerPort()
	if serverPortFlag != 0 {
		port = serverPortFlag
	}
	srv := server.New(svc, server.Config{
		Port:           port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, logger.ComponentLogger("server"))

	var watcher *ontology.Watcher
	if cfg.Ontology.Watch || serverWatchFlag {
		if _, err := os.Stat(cfg.Ontology.Dir); err != nil {
			return errors.WithHint(
				errors.Wrapf(err, "ontology directory %s", cfg.Ontology.Dir),
				"set ontology.dir or create the directory",
			)
		}
		watcher, err = ontology.NewWatcher(cfg.Ontology.Dir, svc.Syncer(), ontology.WatcherConfig{
			Debounce:       cfg.Debounce(),
			SyncsPerMinute: cfg.Ontology.MaxSyncsPerMinute,
		}, logger.ComponentLogger("ontology.watch"))
		if err != nil {
			return err
		}
		defer watcher.Close()
		watcher.OnSync(func(r *ontology.SyncReport, err error) {
			switch {
			case err != nil:
				logger.IxWarnw("Ontology sync failed", logger.FieldError, err)
			case r != nil && r.Changed():
				logger.IxInfow("Ontology synced",
					"updated", len(r.Updated),
					"failed", len(r.Failed),
					"skipped", len(r.Skipped))
			}
		})
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return srv.Start(ctx)
	})
	if watcher != nil {
		g.Go(func() error {
			if _, err := watcher.SyncNow(ctx); err != nil && ctx.Err() == nil {
				logger.IxWarnw("Initial ontology sync failed", logger.FieldError, err)
			}
			return watcher.Run(ctx)
		})
	}

	logger.AxInfow("Starting server", "port", port, "watch", watcher != nil)
	pterm.Info.Printf("%s eavto listening on :%d (Ctrl+C to stop)\n", sym.AX, port)
	return g.Wait()
}
