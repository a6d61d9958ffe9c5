// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ik5/auplay/status"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	// ExitFatal means releasing native resources failed and the host's
	// state is unknown.
	ExitFatal = 2
)

// NewRootCommand builds the auplay command tree. Each tree has its own
// configuration, so trees do not share state.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()
	var configFile string

	root := &cobra.Command{
		Use:           "auplay",
		Short:         "Play audio files through a native audio graph",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return loadConfig(v, configFile)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "YAML config file")
	pf.String(keyBackend, "soft", "audio host: soft or coreaudio")
	pf.String(keyLogLevel, "info", "log level: debug, info, warn or error")
	pf.String(keyLogFormat, "text", "log format: text or json")

	// Binding only fails for a nil flag.
	_ = v.BindPFlags(pf)

	root.AddCommand(newPlayCommand(v, stdout, stderr), newProbeCommand(v, stdout, stderr))

	return root
}

// Run executes the command line args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "auplay:", err)
	}

	return ExitCode(err)
}

func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case status.IsFatal(err):
		return ExitFatal
	default:
		return ExitError
	}
}
