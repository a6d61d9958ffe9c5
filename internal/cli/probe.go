// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ik5/auplay/source"
)

func newProbeCommand(v *viper.Viper, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>",
		Short: "Print an audio file's stream format and duration",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runProbe(readSettings(v), args[0], stdout, stderr)
		},
	}
}

func runProbe(s settings, path string, stdout, stderr io.Writer) (err error) {
	log, err := newLogger(stderr, s.LogLevel, s.LogFormat)
	if err != nil {
		return err
	}

	// Probing never renders, so a render file is irrelevant here.
	s.RenderFile = ""
	b, err := newBackend(s, log)
	if err != nil {
		return err
	}

	f, err := source.Open(b, path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	sf, err := f.Format()
	if err != nil {
		return err
	}
	packets, err := f.PacketCount()
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "path:     %s\n", path)
	fmt.Fprintf(stdout, "format:   %s\n", sf)
	fmt.Fprintf(stdout, "packets:  %d\n", packets)
	fmt.Fprintf(stdout, "frames:   %d\n", source.Frames(packets, sf))
	fmt.Fprintf(stdout, "duration: %s\n", source.Duration(packets, sf))

	return nil
}
