// SPDX-License-Identifier: EPL-2.0

// Package audiotest provides generated audio sources for tests. The sources
// satisfy audio.Source without importing it.
package audiotest

import (
	"io"
	"math"
)

// Waveform returns the sample for frame index i on channel ch.
type Waveform func(i, ch int) float32

// Source generates a fixed number of frames from a Waveform.
type Source struct {
	rate     int
	channels int
	frames   int
	pos      int
	wave     Waveform

	// Err, when set, is returned by ReadSamples once FailAt frames are read.
	Err    error
	FailAt int

	closed int
}

func New(rate, channels, frames int, wave Waveform) *Source {
	return &Source{rate: rate, channels: channels, frames: frames, wave: wave}
}

func Silence(rate, channels, frames int) *Source {
	return New(rate, channels, frames, func(int, int) float32 { return 0 })
}

func Constant(rate, channels, frames int, v float32) *Source {
	return New(rate, channels, frames, func(int, int) float32 { return v })
}

func Sine(rate, channels, frames int, freq float64) *Source {
	return New(rate, channels, frames, func(i, _ int) float32 {
		return float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(rate)))
	})
}

// PerChannel plays value[ch] on each channel, which makes mixing visible.
func PerChannel(rate, frames int, value ...float32) *Source {
	return New(rate, len(value), frames, func(_, ch int) float32 { return value[ch] })
}

// Ramp counts frames: frame i carries i/frames on every channel.
func Ramp(rate, channels, frames int) *Source {
	return New(rate, channels, frames, func(i, _ int) float32 { return float32(i) / float32(frames) })
}

func (s *Source) SampleRate() int { return s.rate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) BufSize() int    { return 4096 }

func (s *Source) Close() error {
	s.closed++
	return nil
}

// Closed reports how often Close was called.
func (s *Source) Closed() int { return s.closed }

// Reset rewinds the source.
func (s *Source) Reset() { s.pos = 0 }

// Frames is the number of frames read so far.
func (s *Source) Frames() int { return s.pos }

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if s.Err != nil && s.pos >= s.FailAt {
		return 0, s.Err
	}
	if s.pos >= s.frames {
		return 0, io.EOF
	}

	n := min(len(dst)/s.channels, s.frames-s.pos)
	if s.Err != nil {
		n = min(n, s.FailAt-s.pos)
	}

	for f := range n {
		for ch := range s.channels {
			dst[f*s.channels+ch] = s.wave(s.pos+f, ch)
		}
	}
	s.pos += n

	if s.pos >= s.frames {
		return n * s.channels, io.EOF
	}

	return n * s.channels, nil
}
