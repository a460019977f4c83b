package commands

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/eavto/am"
	"github.com/teranos/eavto/errors"
	"github.com/teranos/eavto/sym"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: sym.AM + " Manage eavto configuration",
	Long: sym.AM + ` am — Manage eavto configuration ("I am")

Configuration sources (later overrides earlier):
1. Built-in defaults
2. System config (/etc/eavto/am.toml)
3. User config (~/.eavto/am.toml)
4. Project config (./am.toml, searched up the directory tree)
5. Environment variables (EAVTO_* prefix)

Examples:
  eavto am show                    # Show current configuration
  eavto am show --format yaml      # Show configuration as YAML
  eavto am where                   # Show which source supplied each setting
  eavto am get query.search_limit  # Get one value
  eavto am init                    # Write a starter ./am.toml
  eavto am set server.port 9000    # Set a value in ./am.toml`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where each setting is loaded from",
	RunE:  runAmWhere,
}

var amInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file with the defaults",
	RunE:  runAmInit,
}

var amSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a value in the project (or user) config file",
	Args:  cobra.ExactArgs(2),
	RunE:  runAmSet,
}

var (
	configFormat string
	amUserFlag   bool
	amForceFlag  bool
)

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")
	amInitCmd.Flags().BoolVar(&amUserFlag, "user", false, "Write ~/.eavto/am.toml instead of ./am.toml")
	amInitCmd.Flags().BoolVar(&amForceFlag, "force", false, "Overwrite an existing file (kept as .back1)")
	amSetCmd.Flags().BoolVar(&amUserFlag, "user", false, "Write ~/.eavto/am.toml instead of the project file")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
	AmCmd.AddCommand(amInitCmd)
	AmCmd.AddCommand(amSetCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	out := cmd.OutOrStdout()
	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Fprintln(out, string(data))

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Fprintf(out, "# eavto configuration\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		fmt.Fprintf(out, "# eavto configuration\n%s", string(data))

	default:
		return errors.Newf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}

	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	v := am.GetViper()
	if !v.IsSet(key) {
		return errors.Newf("configuration key %q not found", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), v.Get(key))
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	if _, err := am.Load(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	pterm.Success.Println("Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	intro := am.GetConfigIntrospection()

	data := pterm.TableData{{"Key", "Value", "Source", "From"}}
	for _, s := range intro.Settings {
		data = append(data, []string{s.Key, fmt.Sprint(s.Value), string(s.Source), s.SourcePath})
	}

	if intro.ProjectFile != "" {
		pterm.Info.Printf("Project config: %s\n", intro.ProjectFile)
	} else {
		pterm.Info.Println("No project am.toml found")
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// targetConfigPath is ~/.eavto/am.toml with --user, else the project file
// found upward, else ./am.toml.
func targetConfigPath() (string, error) {
	if amUserFlag {
		path := am.UserConfigPath()
		if path == "" {
			return "", errors.New("could not determine home directory")
		}
		return path, nil
	}
	if project := am.FindProjectConfig(); project != "" {
		return project, nil
	}
	return filepath.Abs(am.ConfigFileName)
}

func runAmInit(cmd *cobra.Command, args []string) error {
	path := am.UserConfigPath()
	if !amUserFlag {
		abs, err := filepath.Abs(am.ConfigFileName)
		if err != nil {
			return err
		}
		path = abs
	}
	if err := am.WriteStarter(path, amForceFlag); err != nil {
		return err
	}
	pterm.Success.Printf("Wrote %s\n", path)
	return nil
}

func runAmSet(cmd *cobra.Command, args []string) error {
	path, err := targetConfigPath()
	if err != nil {
		return err
	}
	if err := am.SetValue(path, args[0], args[1]); err != nil {
		return err
	}
	am.Reset()
	pterm.Success.Printf("%s = %s (%s)\n", args[0], args[1], path)
	return nil
}
