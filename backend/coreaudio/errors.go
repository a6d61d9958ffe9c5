// SPDX-License-Identifier: EPL-2.0

package coreaudio

import "errors"

var ErrUnsupported = errors.New("coreaudio: AudioToolbox host needs darwin and cgo")
