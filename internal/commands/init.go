package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// InitCmd creates the init command, which generates a project in the
// current directory.
func InitCmd() *cobra.Command {
	var (
		opts generateOptions
		name string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a Go project in the current directory",
		Long: `Create a Go project in the current directory.

The project is named after the directory unless --name is given. The
directory must be empty unless --force is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			if name == "" {
				name = filepath.Base(cwd)
			}

			s, err := newSession(cmd, &opts)
			if err != nil {
				return err
			}
			req, err := s.request(name, cwd)
			if err != nil {
				return err
			}
			return s.run(cmd.Context(), req)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name (default: the directory name)")

	return cmd
}
