package main

import (
	"errors"
	"os"

	"github.com/simonhull/forge/internal/commands"
	ferrors "github.com/simonhull/forge/internal/errors"
	"github.com/simonhull/forge/internal/output"
)

func main() {
	err := commands.Execute(os.Args[1:])
	if err == nil {
		return
	}

	var exitErr *ferrors.ExitError
	if !errors.As(err, &exitErr) {
		exitErr = ferrors.NewExitError(err, false)
	}
	if !exitErr.Printed {
		output.Error(exitErr.Error())
	}
	os.Exit(exitErr.Code)
}
