// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ik5/auplay/playback"
)

func newPlayCommand(v *viper.Viper, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <file>",
		Short: "Play an audio file",
		Long: `Play an audio file on an output device and wait for its duration.

With --render-file the soft backend renders the file into a 16-bit WAV
file instead, as fast as it decodes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), readSettings(v), args[0], stdout, stderr)
		},
	}

	f := cmd.Flags()
	f.String(keyOutput, "default", "output unit: default, hal or generic")
	f.String(keyRenderFile, "", "write a WAV file instead of playing; implies --output generic")
	f.Duration(keyStartupDelay, playback.DefaultStartupDelay, "pause between initializing and starting the graph")
	f.Uint32(keyPrimeFrames, 0, "frames the file player reads ahead before starting (0 keeps its default)")
	_ = v.BindPFlags(f)

	return cmd
}

func runPlay(ctx context.Context, s settings, path string, stdout, stderr io.Writer) error {
	log, err := newLogger(stderr, s.LogLevel, s.LogFormat)
	if err != nil {
		return err
	}

	cfg, err := s.playbackConfig()
	if err != nil {
		return err
	}

	b, err := newBackend(s, log)
	if err != nil {
		return err
	}

	opts := []playback.Option{playback.WithLogger(log)}
	if s.RenderFile != "" {
		// The render finishes before the graph stops, so there is nothing
		// to wait for in real time.
		opts = append(opts, playback.WithSleeper(func(ctx context.Context, _ time.Duration) error { return ctx.Err() }))
	}

	p, err := playback.NewPlayer(b, cfg, opts...)
	if err != nil {
		return err
	}

	res, err := p.Play(ctx, path)
	if err != nil {
		return err
	}

	state := "played"
	if res.Cancelled {
		state = "cancelled"
	}
	fmt.Fprintf(stdout, "%s %s (%s)\n", state, res.Path, res.Duration)

	return nil
}
