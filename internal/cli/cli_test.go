// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/auplay/formats"
	"github.com/ik5/auplay/formats/wav"
	"github.com/ik5/auplay/native"
	"github.com/ik5/auplay/status"
)

func writeTone(t *testing.T, rate, channels, frames int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w, err := wav.NewWriter(f, rate, channels, 16)
	require.NoError(t, err)
	require.NoError(t, w.WriteSamples(make([]float32, frames*channels)))
	require.NoError(t, w.Close())

	return path
}

func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()

	var out, errOut bytes.Buffer
	code = Run(context.Background(), args, &out, &errOut)

	return code, out.String(), errOut.String()
}

func TestRun_Probe(t *testing.T) {
	t.Parallel()

	path := writeTone(t, 8000, 2, 4000)

	code, out, stderr := run(t, "probe", path)
	require.Equal(t, ExitOK, code, stderr)

	assert.Contains(t, out, "8000Hz 2ch 16bit")
	assert.Contains(t, out, "packets:  4000")
	assert.Contains(t, out, "duration: 500ms")
}

func TestRun_PlayRendersFile(t *testing.T) {
	t.Parallel()

	in := writeTone(t, 16000, 1, 1600)
	out := filepath.Join(t.TempDir(), "out.wav")

	code, stdout, stderr := run(t, "play", in, "--render-file", out, "--startup-delay", "0s", "--log-level", "debug")
	require.Equal(t, ExitOK, code, stderr)
	assert.Contains(t, stdout, "played "+in+" (100ms)")
	assert.Contains(t, stderr, "playback finished")

	info, err := formats.Default().Probe(out)
	require.NoError(t, err)
	assert.EqualValues(t, 1600, info.Frames())
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tone := writeTone(t, 8000, 1, 10)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no file", []string{"play"}, "accepts 1 arg"},
		{"unknown command", []string{"record"}, "unknown command"},
		{"unknown backend", []string{"probe", tone, "--backend", "alsa"}, "unknown backend"},
		{"unknown output", []string{"play", tone, "--output", "speaker"}, "unknown output"},
		{"render to device", []string{"play", tone, "--output", "hal", "--render-file", filepath.Join(dir, "x.wav")}, "generic output"},
		{"bad log level", []string{"probe", tone, "--log-level", "loud"}, "log level"},
		{"bad log format", []string{"probe", tone, "--log-format", "xml"}, "log format"},
		{"missing file", []string{"probe", filepath.Join(dir, "missing.wav")}, "missing.wav"},
		{"missing config", []string{"probe", tone, "--config", filepath.Join(dir, "none.yaml")}, "config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			code, _, stderr := run(t, tt.args...)
			assert.Equal(t, ExitError, code)
			assert.Contains(t, stderr, tt.wantErr)
		})
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("boom"), ExitError},
		{"status", status.Check("start graph", status.CodeParam), ExitError},
		{"teardown", fmt.Errorf("playback: teardown: %w", &status.TeardownError{Errs: []error{errors.New("stop")}}), ExitFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestLoadConfig_Layers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auplay.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: hal\nprime-frames: 512\nlog-format: json\n"), 0o600))
	t.Setenv("AUPLAY_STARTUP_DELAY", "10ms")
	t.Setenv("AUPLAY_LOG_FORMAT", "text")

	v := viper.New()
	require.NoError(t, loadConfig(v, path))
	s := readSettings(v)

	assert.Equal(t, "soft", s.Backend, "default")
	assert.Equal(t, "hal", s.Output, "from file")
	assert.EqualValues(t, 512, s.PrimeFrames, "from file")
	assert.Equal(t, 10*time.Millisecond, s.StartupDelay, "from environment")
	assert.Equal(t, "text", s.LogFormat, "environment over file")
}

func TestSettings_PlaybackConfig(t *testing.T) {
	t.Parallel()

	generic := outputs["generic"]

	tests := []struct {
		name    string
		s       settings
		want    native.ComponentDescription
		wantErr error
	}{
		{"default", settings{Output: "default"}, native.DefaultOutput(), nil},
		{"hal", settings{Output: "HAL"}, outputs["hal"], nil},
		{"render implies generic", settings{Output: "default", RenderFile: "x.wav"}, generic, nil},
		{"render generic", settings{Output: "generic", RenderFile: "x.wav"}, generic, nil},
		{"render to hal", settings{Output: "hal", RenderFile: "x.wav"}, native.ComponentDescription{}, ErrRenderOutput},
		{"unknown", settings{Output: "speaker"}, native.ComponentDescription{}, ErrUnknownOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := tt.s.playbackConfig()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Output)
			assert.Equal(t, native.NextRenderCycle, cfg.StartSampleTime)
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := newLogger(&buf, "warn", "json")
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown", "key", "value")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"key":"value"`)

	_, err = newLogger(&buf, "nope", "text")
	assert.Error(t, err)
}
