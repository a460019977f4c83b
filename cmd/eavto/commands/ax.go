package commands

import (
	"sort"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/eavto/display"
	"github.com/teranos/eavto/eav/types"
	"github.com/teranos/eavto/hierarchy"
	"github.com/teranos/eavto/ontology/vocab"
	"github.com/teranos/eavto/sym"
)

// AxCmd resolves entities through the class hierarchy
var AxCmd = &cobra.Command{
	Use:   "ax <id>",
	Short: sym.AX + " Resolve an entity through the class hierarchy",
	Long: sym.AX + ` ax — Resolve an entity

Shows the entity's types, superclasses, own and inherited properties,
current values, icon and backlinks.

Examples:
  eavto ax urn:example:rex
  eavto ax urn:example:Dog --json
  eavto ax icon urn:example:rex
  eavto ax backlinks urn:example:rex`,
	Args: cobra.ExactArgs(1),
	RunE: runAx,
}

var axIconCmd = &cobra.Command{
	Use:   "icon <id>",
	Short: "Show the icon an entity displays and where it comes from",
	Args:  cobra.ExactArgs(1),
	RunE:  runAxIcon,
}

var axBacklinksCmd = &cobra.Command{
	Use:   "backlinks <id>",
	Short: "List the references pointing at an entity",
	Args:  cobra.ExactArgs(1),
	RunE:  runAxBacklinks,
}


func init() {
	AxCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	AxCmd.AddCommand(axIconCmd)
	AxCmd.AddCommand(axBacklinksCmd)
}

func runAx(cmd *cobra.Command, args []string) error {
	svc, database, err := openService(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	view, err := svc.ResolveEntity(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), view)
	}
	printView(view)
	return nil
}

func printView(v *hierarchy.EntityView) {
	title := v.ID
	if v.Label != "" {
		title = v.Label + " (" + v.ID + ")"
	}
	pterm.DefaultSection.Printf("%s %s", sym.AX, title)

	kind := "instance"
	switch {
	case v.IsClass:
		kind = "class"
	case v.IsProperty:
		kind = "property"
	}
	pterm.Printf("Kind:          %s\n", kind)
	if v.Comment != "" {
		pterm.Printf("Comment:       %s\n", v.Comment)
	}
	if len(v.Types) > 0 {
		pterm.Printf("Types:         %s\n", strings.Join(v.Types, ", "))
	}
	if v.MostSpecificType != "" {
		pterm.Printf("Most specific: %s\n", v.MostSpecificType)
	}
	if len(v.Superclasses) > 0 {
		pterm.Printf("Superclasses:  %s\n", strings.Join(v.Superclasses, " > "))
	}
	if v.Icon != "" {
		pterm.Printf("Icon:          %s (from %s)\n", v.Icon, v.IconFrom)
	}

	if len(v.OwnProperties) > 0 || len(v.InheritedProperties) > 0 {
		pterm.Println()
		data := pterm.TableData{{"Property", "Declared on"}}
		for _, p := range v.OwnProperties {
			data = append(data, []string{p, "(own)"})
		}
		for _, g := range v.InheritedProperties {
			for _, p := range g.Properties {
				data = append(data, []string{p, g.Class})
			}
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}

	if len(v.Values) > 0 {
		pterm.Println()
		data := pterm.TableData{{"Predicate", "Value", "Origin"}}
		for _, p := range sortedKeys(v.Values) {
			for _, val := range v.Values[p] {
				data = append(data, []string{p, formatObject(val.Object), val.Origin})
			}
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}

	if len(v.Backlinks) > 0 {
		pterm.Println()
		printBacklinks(v.Backlinks)
	}
}

func printBacklinks(links []hierarchy.Backlink) {
	data := pterm.TableData{{"Subject", "Predicate", "Origin"}}
	for _, b := range links {
		data = append(data, []string{b.Subject, b.Predicate, b.Origin})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func runAxIcon(cmd *cobra.Command, args []string) error {
	svc, database, err := openService(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	res, err := svc.GetIcon(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), res)
	}
	if res.Icon == "" {
		pterm.Info.Println("No icon on the entity or its classes")
		return nil
	}
	pterm.Printf("%s (from %s)\n", res.Icon, res.From)
	return nil
}

func runAxBacklinks(cmd *cobra.Command, args []string) error {
	svc, database, err := openService(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	links, err := svc.ListBacklinks(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), links)
	}
	if len(links) == 0 {
		pterm.Info.Println("No backlinks")
		return nil
	}
	printBacklinks(links)
	return nil
}

// formatObject renders an object the way N-Triples would, minus the
// datatype of plain strings.
func formatObject(o types.Object) string {
	if o.IsReference() {
		return o.Value
	}
	switch {
	case o.Lang != "":
		return `"` + o.Value + `"@` + o.Lang
	case o.Datatype == "" || o.Datatype == vocab.XSDString:
		return `"` + o.Value + `"`
	}
	return `"` + o.Value + `"^^` + o.Datatype
}

func sortedKeys(m map[string][]hierarchy.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
