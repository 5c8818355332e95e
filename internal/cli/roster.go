package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ytget/rollcall/internal/roster"
)

var (
	rosterSave bool
	rosterJSON bool
	rosterPeek bool
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Manage the name list",
}

var rosterAddCmd = &cobra.Command{
	Use:   "add NAME...",
	Short: "Add names to the roster",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRosterAdd,
}

var rosterRemoveCmd = &cobra.Command{
	Use:     "remove NAME...",
	Aliases: []string{"rm"},
	Short:   "Remove names from the roster",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runRosterRemove,
}

var rosterListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List names, marking the ones already called",
	Args:    cobra.NoArgs,
	RunE:    runRosterList,
}

var rosterClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every name",
	Args:  cobra.NoArgs,
	RunE:  runRosterClear,
}

var rosterResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget who has been called and start a new round",
	Args:  cobra.NoArgs,
	RunE:  runRosterReset,
}

var rosterDrawCmd = &cobra.Command{
	Use:   "draw",
	Short: "Call a random name",
	Args:  cobra.NoArgs,
	RunE:  runRosterDraw,
}

var rosterImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Replace the roster with a name list file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRosterImport,
}

var rosterExportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Write the roster to a name list file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRosterExport,
}

func init() {
	for _, cmd := range []*cobra.Command{rosterAddCmd, rosterRemoveCmd, rosterClearCmd, rosterResetCmd, rosterDrawCmd} {
		cmd.Flags().BoolVar(&rosterSave, "save", false, "Save changes even when auto_save is off")
	}
	rosterListCmd.Flags().BoolVar(&rosterJSON, "json", false, "Print the name list document as JSON")
	rosterDrawCmd.Flags().BoolVar(&rosterPeek, "peek", false, "Show a name without marking it as called")

	rosterCmd.AddCommand(rosterAddCmd, rosterRemoveCmd, rosterListCmd, rosterClearCmd,
		rosterResetCmd, rosterDrawCmd, rosterImportCmd, rosterExportCmd)
	RootCmd.AddCommand(rosterCmd)
}

func loadRoster() *roster.Engine {
	engine := roster.NewEngine(roster.Settings{AvoidRepetition: env.settings.GetAvoidRepetition()}, nil)
	engine.LoadFromFile(env.cfg.NameListPath())
	return engine
}

func persistRoster(cmd *cobra.Command, engine *roster.Engine) error {
	if !env.settings.GetAutoSave() && !rosterSave {
		fmt.Fprintln(cmd.OutOrStdout(), "Not saved: auto_save is off, pass --save to keep the change")
		return nil
	}
	if !engine.SaveToFile(env.cfg.NameListPath()) {
		return fmt.Errorf("failed to save name list to %s", env.cfg.NameListPath())
	}
	return nil
}

func runRosterAdd(cmd *cobra.Command, args []string) error {
	engine := loadRoster()
	out := cmd.OutOrStdout()

	var errs []error
	added := 0
	for _, arg := range args {
		name := strings.TrimSpace(arg)
		if err := engine.ValidateName(name); err != nil {
			errs = append(errs, fmt.Errorf("%q: %w", arg, err))
			continue
		}
		engine.AddName(name)
		added++
	}
	for _, err := range errs {
		fmt.Fprintf(out, "Skipped %v\n", err)
	}
	if added == 0 {
		return MapError(errors.Join(errs...))
	}

	fmt.Fprintf(out, "Added %d name(s), %d on the roster\n", added, engine.Len())
	return persistRoster(cmd, engine)
}

func runRosterRemove(cmd *cobra.Command, args []string) error {
	engine := loadRoster()
	out := cmd.OutOrStdout()

	removed := 0
	for _, name := range args {
		if engine.RemoveName(strings.TrimSpace(name)) {
			removed++
			continue
		}
		fmt.Fprintf(out, "Not on the roster: %s\n", name)
	}
	if removed == 0 {
		return fmt.Errorf("no names removed")
	}

	fmt.Fprintf(out, "Removed %d name(s), %d on the roster\n", removed, engine.Len())
	return persistRoster(cmd, engine)
}

func runRosterList(cmd *cobra.Command, _ []string) error {
	engine := loadRoster()
	out := cmd.OutOrStdout()

	if rosterJSON {
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(engine.Document())
	}

	used := make(map[string]bool)
	for _, name := range engine.UsedNames() {
		used[name] = true
	}
	for _, name := range engine.Names() {
		marker := " "
		if used[name] {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s\n", marker, name)
	}
	fmt.Fprintf(out, "%d name(s), %d called\n", engine.Len(), len(used))
	return nil
}

func runRosterClear(cmd *cobra.Command, _ []string) error {
	engine := loadRoster()
	engine.Clear()
	fmt.Fprintln(cmd.OutOrStdout(), "Roster cleared")
	return persistRoster(cmd, engine)
}

func runRosterReset(cmd *cobra.Command, _ []string) error {
	engine := loadRoster()
	engine.ResetUsed()
	fmt.Fprintf(cmd.OutOrStdout(), "New round: %d name(s) available\n", engine.Len())
	return persistRoster(cmd, engine)
}

func runRosterDraw(cmd *cobra.Command, _ []string) error {
	engine := loadRoster()
	out := cmd.OutOrStdout()

	name, ok := engine.Draw()
	if !ok {
		return MapError(ErrEmptyRoster)
	}
	fmt.Fprintln(out, name)
	if rosterPeek {
		return nil
	}

	if engine.Commit(name) {
		fmt.Fprintln(out, "Everyone has been called, starting a new round")
	}
	return persistRoster(cmd, engine)
}

func runRosterImport(cmd *cobra.Command, args []string) error {
	doc, err := roster.ReadDocument(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	engine := loadRoster()
	engine.Replace(doc)
	if !engine.SaveToFile(env.cfg.NameListPath()) {
		return fmt.Errorf("failed to save name list to %s", env.cfg.NameListPath())
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d name(s) from %s\n", engine.Len(), args[0])
	return nil
}

func runRosterExport(cmd *cobra.Command, args []string) error {
	engine := loadRoster()
	if err := roster.WriteDocument(args[0], engine.Document()); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d name(s) to %s\n", engine.Len(), args[0])
	return nil
}
