// SPDX-License-Identifier: EPL-2.0

package format

import "errors"

var (
	ErrInvalidFourCC = errors.New("four character code must be 4 bytes")
	ErrInvalidFormat = errors.New("invalid stream format")
)
