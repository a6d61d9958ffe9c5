// SPDX-License-Identifier: EPL-2.0

package playback

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid playback config")
	ErrRegionTooLong = errors.New("region exceeds the maximum frame count")
	ErrNoChannels    = errors.New("source format has no channels")
)
