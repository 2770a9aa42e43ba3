package exec

import (
	"context"
	"os/exec"
)

// GitAvailable reports whether git is on PATH.
func GitAvailable() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// GitInit initializes a repository in dir. With spin set the command runs
// behind a spinner; otherwise its output streams through e.
func GitInit(ctx context.Context, e *Executor, dir string, spin bool) error {
	in := *e
	in.dir = dir
	if spin {
		return in.RunWithSpinner(ctx, "Initializing git repository", "git", "init", "--quiet")
	}
	return in.Run(ctx, "git", "init", "--quiet")
}
