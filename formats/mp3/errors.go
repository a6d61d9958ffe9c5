// SPDX-License-Identifier: EPL-2.0

package mp3

import "errors"

var (
	ErrNotMP3File = errors.New("not an MP3 stream")

	// ErrUnknownLength is returned by Probe when the stream size cannot be
	// determined.
	ErrUnknownLength = errors.New("MP3 stream length unknown")
)
