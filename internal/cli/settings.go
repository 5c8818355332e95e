package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ytget/rollcall/internal/config"
)

var settingsJSON bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show and change preferences",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change a setting",
	Long: `Change a setting. Keys: auto_save, avoid_repetition, check_update_on_startup,
show_timer_notification (true/false) and theme (AUTO, LIGHT, DARK).`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsReset,
}

var settingsImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Load settings from a file and make them current",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsImport,
}

var settingsExportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Write the current settings to a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsExport,
}

func init() {
	settingsShowCmd.Flags().BoolVar(&settingsJSON, "json", false, "Print settings as JSON")

	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsResetCmd, settingsImportCmd, settingsExportCmd)
	RootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	values := env.settings.Values()
	out := cmd.OutOrStdout()

	if settingsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(values)
	}

	fmt.Fprintf(out, "%-24s %t\n", config.KeyAutoSave, values.AutoSave)
	fmt.Fprintf(out, "%-24s %t\n", config.KeyAvoidRepetition, values.AvoidRepetition)
	fmt.Fprintf(out, "%-24s %t\n", config.KeyCheckUpdateOnStartup, values.CheckUpdateOnStartup)
	fmt.Fprintf(out, "%-24s %t\n", config.KeyShowTimerNotification, values.ShowTimerNotification)
	fmt.Fprintf(out, "%-24s %s\n", config.KeyTheme, values.Theme)
	fmt.Fprintf(out, "%-24s %s\n", config.KeyVersion, values.Version)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if args[0] == config.KeyVersion {
		return fmt.Errorf("%s is managed by the application", config.KeyVersion)
	}
	if err := env.settings.Set(args[0], args[1]); err != nil {
		return err
	}
	if err := saveSettings(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s\n", args[0], args[1])
	return nil
}

func runSettingsReset(cmd *cobra.Command, _ []string) error {
	env.settings.Reset()
	if err := saveSettings(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Settings restored to defaults")
	return nil
}

func runSettingsImport(cmd *cobra.Command, args []string) error {
	version := env.settings.GetVersion()
	if !env.settings.LoadFrom(args[0]) {
		return fmt.Errorf("import failed: cannot read settings from %s", args[0])
	}
	// an imported file must not trigger the post-update notice
	env.settings.SetVersion(version)
	if err := saveSettings(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported settings from %s\n", args[0])
	return nil
}

func runSettingsExport(cmd *cobra.Command, args []string) error {
	if !env.settings.SaveTo(args[0]) {
		return fmt.Errorf("export failed: cannot write %s", args[0])
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported settings to %s\n", args[0])
	return nil
}

func saveSettings() error {
	if !env.settings.Save() {
		return fmt.Errorf("failed to save settings to %s", env.settings.Path())
	}
	return nil
}
