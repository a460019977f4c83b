package commands

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/eavto/am"
	"github.com/teranos/eavto/display"
	"github.com/teranos/eavto/errors"
	"github.com/teranos/eavto/logger"
	"github.com/teranos/eavto/ontology"
	"github.com/teranos/eavto/sym"
)

// IxCmd imports ontology sources
var IxCmd = &cobra.Command{
	Use:   "ix [dir | file...]",
	Short: sym.IX + " Import ontology sources",
	Long: sym.IX + ` ix — Import ontology sources in dependency order

With a directory (default: ontology.dir) every source selected by its
ontology.toml manifest is imported. With files, exactly those are imported,
named by their base name. Each source replaces whatever it asserted before,
even when its content is unchanged; use "eavto sync" to skip unchanged sources.

Examples:
  eavto ix                       # Import ontology.dir
  eavto ix ./defs                # Import a directory
  eavto ix animals.nt dogs.nt    # Import two files`,
	RunE: runIx,
}


func init() {
	IxCmd.Flags().Bool("json", false, "Output the import report as JSON")
}

// loadSources reads the sources named by args: a directory, a list of
// files, or ontology.dir when args is empty.
func loadSources(args []string) ([]ontology.Source, error) {
	if len(args) == 0 {
		cfg, err := am.Load()
		if err != nil {
			return nil, errors.Wrap(err, "failed to load configuration")
		}
		args = []string{cfg.Ontology.Dir}
	}

	if len(args) == 1 {
		if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
			return ontology.LoadDir(args[0])
		}
	}

	sources := make([]ontology.Source, 0, len(args))
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}
		src := ontology.Source{Name: filepath.Base(path), Content: content}
		if info, err := os.Stat(path); err == nil {
			src.ModifiedAt = info.ModTime()
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func runIx(cmd *cobra.Command, args []string) error {
	sources, err := loadSources(args)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		pterm.Warning.Println("No ontology sources found")
		return nil
	}

	store, database, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	start := time.Now()
	report, err := ontology.NewImporter(store, logger.ComponentLogger("ontology.import")).ImportAll(cmd.Context(), sources)
	if err != nil && report == nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		if jerr := display.OutputJSON(cmd.OutOrStdout(), report); jerr != nil {
			return jerr
		}
	} else {
		printResults(report.Results, report.Warnings)
		pterm.Info.Printf("Imported %d sources in %s\n", len(report.Results)-len(report.Failed()), time.Since(start).Round(time.Millisecond))
	}

	if err != nil {
		return err
	}
	if failed := report.Failed(); len(failed) > 0 {
		return errors.Newf("%d of %d sources failed to import", len(failed), len(report.Results))
	}
	return nil
}

// printResults renders per-source results and warnings.
func printResults(results []ontology.SourceResult, warnings []ontology.Warning) {
	if len(results) > 0 {
		data := pterm.TableData{{"Source", "Origin", "Facts", "Retracted", "Tx", "Status"}}
		for _, r := range results {
			status := pterm.Green("ok")
			if r.Error != nil {
				status = pterm.Red(r.ErrorText)
			}
			tx := ""
			if r.Tx != 0 {
				tx = strconv.FormatInt(r.Tx, 10)
			}
			data = append(data, []string{
				r.Name,
				r.Origin,
				strconv.Itoa(r.Facts),
				strconv.Itoa(r.Retracted),
				tx,
				status,
			})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}
	for _, w := range warnings {
		pterm.Warning.Printf("%s: %s\n", w.Kind, w.Message)
	}
}
