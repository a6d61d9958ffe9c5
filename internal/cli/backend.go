// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"fmt"
	"log/slog"

	"github.com/ik5/auplay/backend/coreaudio"
	"github.com/ik5/auplay/backend/soft"
	"github.com/ik5/auplay/native"
)

func newBackend(s settings, log *slog.Logger) (native.Backend, error) {
	switch s.Backend {
	case "soft":
		opts := []soft.Option{soft.WithLogger(log)}
		if s.RenderFile != "" {
			opts = append(opts, soft.WithRenderFile(s.RenderFile))
		}
		return soft.New(opts...), nil

	case "coreaudio":
		if s.RenderFile != "" {
			return nil, fmt.Errorf("%w: rendering to a file needs the soft backend", ErrRenderOutput)
		}
		return coreaudio.New(log)

	default:
		return nil, fmt.Errorf("%w: %q (want soft or coreaudio)", ErrUnknownBackend, s.Backend)
	}
}
