package commands

import (
	"github.com/spf13/cobra"
)

// NewCmd creates the new command, which generates a project in a new
// directory.
func NewCmd() *cobra.Command {
	var (
		opts generateOptions
		dir  string
	)

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a new Go project",
		Long: `Create a new Go project in a directory named after it.

Without flags, forge asks for the project type, features and metadata.
Saved preferences fill in anything not given on the command line.`,
		Example: `  forge new my-tool
  forge new api -p api-server -f database,docker --set database_kind=sqlite
  forge new lib -p library --no-default-features --dry-run --format json`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return invalidInput("expected exactly one project name, got %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, &opts)
			if err != nil {
				return err
			}
			req, err := s.request(args[0], dir)
			if err != nil {
				return err
			}
			return s.run(cmd.Context(), req)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&dir, "dir", "", "Target directory (default: the project name)")

	return cmd
}
