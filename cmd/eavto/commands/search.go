package commands

import (
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/eavto/display"
	"github.com/teranos/eavto/sym"
)

// SearchCmd searches entities by label and comment text
var SearchCmd = &cobra.Command{
	Use:   "search <text...>",
	Short: sym.SE + " Search entities by label and comment",
	Long: sym.SE + ` search — Rank entities by label and comment text

Exact label matches rank first, then prefix and substring matches; comment
matches count at half weight. Each entity appears once with its best score.

Examples:
  eavto search mammal
  eavto search warm blooded --limit 5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var (
	searchLimitFlag int
)

func init() {
	SearchCmd.Flags().IntVarP(&searchLimitFlag, "limit", "n", 0, "Maximum results (0 uses query.search_limit)")
	SearchCmd.Flags().Bool("json", false, "Output as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	svc, database, err := openService(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	res, err := svc.Search(cmd.Context(), strings.Join(args, " "), searchLimitFlag)
	if err != nil {
		return err
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), res)
	}
	if len(res.Matches) == 0 {
		pterm.Info.Printf("No matches for %q\n", res.Query)
		return nil
	}

	data := pterm.TableData{{"Score", "Subject", "Label", "Matched"}}
	for _, m := range res.Matches {
		data = append(data, []string{strconv.Itoa(m.Score), m.Subject, m.Label, m.Matched})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
