// SPDX-License-Identifier: EPL-2.0

package auplay

import (
	"context"
	"fmt"
	"time"

	"github.com/ik5/auplay/backend/soft"
	"github.com/ik5/auplay/native"
	"github.com/ik5/auplay/playback"
)

// PlayFile plays path on the system default output and returns once its
// duration has elapsed or ctx is done.
func PlayFile(ctx context.Context, path string) (*playback.Result, error) {
	b := soft.New()

	p, err := playback.NewPlayer(b, playback.DefaultConfig())
	if err != nil {
		return nil, err
	}

	return p.Play(ctx, path)
}

// Render decodes path through the same graph PlayFile builds, with a
// generic output that writes 16-bit WAV to out. It returns once the whole
// file is rendered.
func Render(ctx context.Context, path, out string) (*playback.Result, error) {
	if out == "" {
		return nil, fmt.Errorf("render %s: empty output path", path)
	}

	b := soft.New(soft.WithRenderFile(out))

	cfg := playback.DefaultConfig()
	cfg.Output = native.ComponentDescription{
		Type:         native.TypeOutput,
		SubType:      native.SubTypeGenericOutput,
		Manufacturer: native.ManufacturerApple,
	}
	cfg.StartupDelay = 0

	p, err := playback.NewPlayer(b, cfg, playback.WithSleeper(skipWait))
	if err != nil {
		return nil, err
	}

	return p.Play(ctx, path)
}

// skipWait lets a rendering session stop at once. Stopping a render waits
// for it to finish.
func skipWait(ctx context.Context, _ time.Duration) error { return ctx.Err() }
