// SPDX-License-Identifier: EPL-2.0

//go:build !darwin || !cgo

package coreaudio

import (
	"log/slog"

	"github.com/ik5/auplay/native"
)

func New(*slog.Logger) (native.Backend, error) {
	return nil, ErrUnsupported
}
