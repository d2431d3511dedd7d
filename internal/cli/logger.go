package cli

import (
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/tessera/internal/colour"
)

const (
	flagVerbose = "verbose"
	flagQuiet   = "quiet"
)

// newLogger returns the command's logger on stderr. --verbose enables debug
// output and --quiet keeps only errors.
func newLogger(cmd *cobra.Command) hclog.Logger {
	verbose, _ := cmd.Flags().GetBool(flagVerbose)
	quiet, _ := cmd.Flags().GetBool(flagQuiet)

	level := hclog.Info
	switch {
	case quiet:
		level = hclog.Error
	case verbose:
		level = hclog.Debug
	}

	out := cmd.ErrOrStderr()
	logColour := hclog.ColorOff
	if f, ok := out.(*os.File); ok && colour.SupportsANSIColours(f) {
		logColour = hclog.AutoColor
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "tessera",
		Output: out,
		Level:  level,
		Color:  logColour,
	})
}
