package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/simonhull/forge"
	ferrors "github.com/simonhull/forge/internal/errors"
	"github.com/simonhull/forge/internal/input"
	"github.com/simonhull/forge/internal/output"
)

// RootCmd creates and returns the root command for the forge CLI
func RootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "forge",
		Short: "Scaffold buildable Go projects",
		Long: `Forge generates ready-to-build Go project skeletons.

Pick a project type and any features, and forge renders a complete tree:
• cli-tool, library, api-server, wasm-app, game-engine, embedded, workspace
• optional cobra or urfave/cli, database, auth, Docker, CI and linting
• a go.mod that already requires everything the features use

Generation is all-or-nothing: a failure leaves no partial project behind.`,
		Version:       forge.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetupLogging(verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")
	cmd.PersistentFlags().String("config", "", "Preferences file (default $XDG_CONFIG_HOME/forge/config.yaml)")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "forge v%s\n", forge.Version)
		},
	})

	return cmd
}

// Execute runs the command tree with args until it finishes or the
// process is interrupted.
func Execute(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return ExecuteContext(ctx, args)
}

// ExecuteContext builds the full command tree and runs it with args. A
// failure is returned as an *errors.ExitError carrying the exit code.
// Cancelling ctx stops generation before anything is written.
func ExecuteContext(ctx context.Context, args []string) error {
	root := commandTree()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, input.ErrCancelled) || errors.Is(err, context.Canceled) {
		output.Warn("Cancelled")
		return ferrors.NewExitError(err, true)
	}
	return ferrors.NewExitError(err, false)
}

func commandTree() *cobra.Command {
	root := RootCmd()
	root.AddCommand(NewCmd(), InitCmd(), ListCmd())
	return root
}
