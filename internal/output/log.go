package output

import (
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the structured logger shared by the CLI and the generator.
// It writes to stderr so previews on stdout stay machine-readable.
var Logger = log.NewWithOptions(os.Stderr, log.Options{
	Prefix: "forge",
})

// SetupLogging configures the logger and verbose output together.
func SetupLogging(verbose bool) {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}

	Logger = log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		Prefix:          "forge",
		ReportTimestamp: verbose,
	})
	SetVerbose(verbose)
}
