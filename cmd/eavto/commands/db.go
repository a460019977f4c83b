package commands

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/eavto/db"
	"github.com/teranos/eavto/display"
	"github.com/teranos/eavto/eav/storage"
	"github.com/teranos/eavto/eav/types"
	"github.com/teranos/eavto/errors"
	"github.com/teranos/eavto/logger"
	"github.com/teranos/eavto/sym"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: sym.DB + " Inspect the fact store",
	Long: sym.DB + ` db — Inspect the fact store and its transaction ledger

Examples:
  eavto db stats                        # Fact counts per origin
  eavto db log --limit 10               # Last 10 ledger entries
  eavto db log --origin file:dogs.nt    # Entries for one origin
  eavto db check                        # Verify ledger integrity`,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show fact and ledger statistics",
	RunE:  runDbStats,
}

var dbLogCmd = &cobra.Command{
	Use:   "log",
	Short: "List ledger entries, newest first",
	RunE:  runDbLog,
}

var dbCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify ledger integrity",
	RunE:  runDbCheck,
}

var (
	logLimitFlag int
	logOrigin    string
	logKind      string
)

func init() {
	DbCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	dbLogCmd.Flags().IntVar(&logLimitFlag, "limit", 20, "Number of entries to show")
	dbLogCmd.Flags().StringVar(&logOrigin, "origin", "", "Only entries by this origin")
	dbLogCmd.Flags().StringVar(&logKind, "kind", "", "Only entries of this kind (assert, retract)")

	DbCmd.AddCommand(dbStatsCmd)
	DbCmd.AddCommand(dbLogCmd)
	DbCmd.AddCommand(dbCheckCmd)
}

func runDbStats(cmd *cobra.Command, args []string) error {
	database, dbPath, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	store := storage.NewStore(database, logger.ComponentLogger("storage"))
	st, err := store.Stats(cmd.Context())
	if err != nil {
		return err
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), st)
	}

	version, err := db.SchemaVersion(database)
	if err != nil {
		return err
	}

	pterm.DefaultSection.Printf("%s Database Statistics", sym.DB)
	pterm.Printf("Database Path:   %s\n", dbPath)
	pterm.Printf("Schema Version:  %d\n", version)
	pterm.Printf("Facts:           %d (%d active, %d retracted)\n", st.Facts, st.Active, st.Retracted)
	pterm.Printf("Subjects:        %d\n", st.Subjects)
	pterm.Printf("Ledger Entries:  %d\n", st.Transactions)
	pterm.Println()

	data := pterm.TableData{{"Origin", "Active", "Retracted"}}
	for _, o := range st.Origins {
		data = append(data, []string{o.Origin, strconv.FormatInt(o.Active, 10), strconv.FormatInt(o.Retracted, 10)})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func runDbLog(cmd *cobra.Command, args []string) error {
	store, database, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	filter := storage.TransactionFilter{Origin: logOrigin, Limit: logLimitFlag}
	switch types.TxKind(logKind) {
	case "":
	case types.TxAssert, types.TxRetract:
		filter.Kind = types.TxKind(logKind)
	default:
		return errors.Newf("unknown ledger entry kind %q (expected assert or retract)", logKind)
	}

	entries, err := store.Transactions(cmd.Context(), filter)
	if err != nil {
		return err
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), entries)
	}
	if len(entries) == 0 {
		pterm.Info.Println("No ledger entries")
		return nil
	}

	data := pterm.TableData{{"Tx", "Kind", "Origin", "Facts", "At"}}
	for _, e := range entries {
		kind := sym.AS + " " + string(e.Kind)
		if e.Kind == types.TxRetract {
			kind = sym.RX + " " + string(e.Kind)
		}
		data = append(data, []string{
			strconv.FormatInt(e.ID, 10),
			kind,
			e.Origin,
			strconv.FormatInt(e.FactCount, 10),
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func runDbCheck(cmd *cobra.Command, args []string) error {
	store, database, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := store.CheckIntegrity(cmd.Context()); err != nil {
		return errors.Wrap(err, "integrity check failed")
	}
	pterm.Success.Println("Ledger is consistent")
	return nil
}
