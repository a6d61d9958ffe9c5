// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/auplay/utils"
)

// Writer encodes interleaved float32 samples as integer PCM WAV.
type Writer struct {
	enc      *wav.Encoder
	buf      *goaudio.IntBuffer
	bitDepth int
	channels int
	frames   int
	started  bool
}

// NewWriter starts a WAV file on w. Close must be called to finish the
// headers; it does not close w.
func NewWriter(w io.WriteSeeker, sampleRate, channels, bitDepth int) (*Writer, error) {
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
	if channels <= 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("wav: invalid layout %dHz %dch", sampleRate, channels)
	}

	return &Writer{
		enc: wav.NewEncoder(w, sampleRate, bitDepth, channels, formatPCM),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
		bitDepth: bitDepth,
		channels: channels,
	}, nil
}

// Frames is the number of frames written so far.
func (w *Writer) Frames() int { return w.frames }

// WriteSamples appends whole frames of interleaved samples in [-1, 1].
func (w *Writer) WriteSamples(samples []float32) error {
	if len(samples)%w.channels != 0 {
		return fmt.Errorf("wav: %w: %d samples for %d channels", ErrPartialFrame, len(samples), w.channels)
	}

	if cap(w.buf.Data) < len(samples) {
		w.buf.Data = make([]int, len(samples))
	}
	w.buf.Data = w.buf.Data[:len(samples)]

	for i, x := range samples {
		v := utils.Float32ToInt(x, w.bitDepth)
		if w.bitDepth == 8 {
			v += 128
		}
		w.buf.Data[i] = v
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	w.started = true
	w.frames += len(samples) / w.channels

	return nil
}

func (w *Writer) Close() error {
	// The encoder only writes headers with the first buffer.
	if !w.started {
		if err := w.WriteSamples(nil); err != nil {
			return err
		}
	}

	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("wav: %w", err)
	}

	return nil
}
