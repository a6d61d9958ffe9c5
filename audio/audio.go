// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
)

// Source is a stream of interleaved float32 PCM frames.
type Source interface {
	// SampleRate of the stream in Hz.
	SampleRate() int
	// Channels per frame.
	Channels() int
	// ReadSamples fills dst with interleaved samples in [-1,1] and returns
	// the number of values written, always a whole number of frames.
	// io.EOF marks the end of the stream and may come with n > 0.
	ReadSamples(dst []float32) (n int, err error)
	// BufSize is the read size, in samples, the source works best with.
	BufSize() int
	Close() error
}

// maxEmptyReads bounds how often a source may return (0, nil) in a row.
const maxEmptyReads = 100

// ReadFull reads from src until dst is full or the stream ends.
// It returns io.EOF, possibly with n > 0, once the stream is exhausted.
func ReadFull(src Source, dst []float32) (int, error) {
	var (
		n     int
		empty int
	)

	for n < len(dst) {
		m, err := src.ReadSamples(dst[n:])
		n += m

		switch {
		case errors.Is(err, io.EOF):
			return n, io.EOF
		case err != nil:
			return n, err
		case m == 0:
			empty++
			if empty >= maxEmptyReads {
				return n, io.ErrNoProgress
			}
		default:
			empty = 0
		}
	}

	return n, nil
}
