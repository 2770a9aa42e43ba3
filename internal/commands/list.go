package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/forge/internal/archetype"
	"github.com/simonhull/forge/internal/features"
	"github.com/simonhull/forge/internal/output"
)

// ListCmd creates the list command, which shows project types and
// features.
func ListCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "list [archetypes|features]",
		Short:     "List project types and features",
		ValidArgs: []string{"archetypes", "features"},
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			what := ""
			if len(args) == 1 {
				what = args[0]
			}

			if what == "" || what == "archetypes" {
				fmt.Fprintln(w, archetypeTable())
			}
			if what == "" || what == "features" {
				fmt.Fprintln(w, featureTable())
			}
			return nil
		},
	}
}

func archetypeTable() string {
	t := output.NewTable("Project type", "Description", "Default features")
	for _, a := range archetype.Default().All() {
		defaults := strings.Join(a.Defaults, ", ")
		if defaults == "" {
			defaults = "-"
		}
		t.Row(a.Name, a.Description, defaults)
	}
	return t.String()
}

func featureTable() string {
	t := output.NewTable("Feature", "Description", "Project types")
	for _, p := range features.Default().All() {
		types := strings.Join(p.Compatibility().Archetypes, ", ")
		if types == "" {
			types = "any"
		}
		t.Row(p.Name(), p.Description(), types)
	}
	return t.String()
}
