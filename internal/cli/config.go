// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ik5/auplay/native"
	"github.com/ik5/auplay/playback"
)

// Configuration keys. Flags carry the same names; environment variables
// are the upper-cased key with an AUPLAY_ prefix and dashes as underscores.
const (
	keyBackend      = "backend"
	keyOutput       = "output"
	keyRenderFile   = "render-file"
	keyStartupDelay = "startup-delay"
	keyPrimeFrames  = "prime-frames"
	keyLogLevel     = "log-level"
	keyLogFormat    = "log-format"
)

const envPrefix = "AUPLAY"

var (
	ErrUnknownBackend = errors.New("unknown backend")
	ErrUnknownOutput  = errors.New("unknown output")
	ErrRenderOutput   = errors.New("render file needs the generic output")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyBackend, "soft")
	v.SetDefault(keyOutput, "default")
	v.SetDefault(keyRenderFile, "")
	v.SetDefault(keyStartupDelay, playback.DefaultStartupDelay)
	v.SetDefault(keyPrimeFrames, 0)
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, "text")
}

// loadConfig layers defaults, the optional YAML file at path and the
// environment under the flags already bound to v.
func loadConfig(v *viper.Viper, path string) error {
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path == "" {
		return nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}

	return nil
}

// settings is the resolved configuration of one command.
type settings struct {
	Backend      string
	Output       string
	RenderFile   string
	StartupDelay time.Duration
	PrimeFrames  uint32
	LogLevel     string
	LogFormat    string
}

func readSettings(v *viper.Viper) settings {
	return settings{
		Backend:      v.GetString(keyBackend),
		Output:       v.GetString(keyOutput),
		RenderFile:   v.GetString(keyRenderFile),
		StartupDelay: v.GetDuration(keyStartupDelay),
		PrimeFrames:  v.GetUint32(keyPrimeFrames),
		LogLevel:     v.GetString(keyLogLevel),
		LogFormat:    v.GetString(keyLogFormat),
	}
}

var outputs = map[string]native.ComponentDescription{
	"default": native.DefaultOutput(),
	"hal":     {Type: native.TypeOutput, SubType: native.SubTypeHALOutput, Manufacturer: native.ManufacturerApple},
	"generic": {Type: native.TypeOutput, SubType: native.SubTypeGenericOutput, Manufacturer: native.ManufacturerApple},
}

// playbackConfig turns s into a session config. A render file selects the
// generic output unless another device was asked for.
func (s settings) playbackConfig() (playback.Config, error) {
	name := strings.ToLower(s.Output)
	if s.RenderFile != "" {
		switch name {
		case "default", "generic":
			name = "generic"
		default:
			return playback.Config{}, fmt.Errorf("%w: --output %s", ErrRenderOutput, s.Output)
		}
	}

	desc, ok := outputs[name]
	if !ok {
		return playback.Config{}, fmt.Errorf("%w: %q (want default, hal or generic)", ErrUnknownOutput, s.Output)
	}

	cfg := playback.DefaultConfig()
	cfg.Output = desc
	cfg.StartupDelay = s.StartupDelay
	cfg.PrimeFrames = s.PrimeFrames

	return cfg, cfg.Validate()
}
