// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/auplay/audio"
	"github.com/ik5/auplay/format"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is the part of oggvorbis.Reader the source reads through.
// Read returns a count of values, always whole frames.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 - 4096%s.channels }

func (s *source) ReadSamples(dst []float32) (int, error) {
	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		if len(dst) > 0 {
			return 0, audio.ErrInvalidDstSize
		}
		return 0, nil
	}

	n, err := s.dec.Read(dst[:want])
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("vorbis: %w", err)
	}

	return n, err
}

type Decoder struct{}

func newReader(r io.Reader) (*oggvorbis.Reader, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotVorbisFile, err)
	}
	if dec.Channels() <= 0 {
		return nil, fmt.Errorf("%w: no channels", ErrNotVorbisFile)
	}

	return dec, nil
}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := newReader(r)
	if err != nil {
		return nil, err
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}, nil
}

// Probe reports the Vorbis stream format with one frame per packet, so the
// packet count is the decoded frame count. When the container does not
// record a length the stream is decoded to count its frames.
func (Decoder) Probe(r io.ReadSeeker) (format.StreamFormat, uint64, error) {
	dec, err := newReader(r)
	if err != nil {
		return format.StreamFormat{}, 0, err
	}

	sf := format.StreamFormat{
		SampleRate:       float64(dec.SampleRate()),
		FormatID:         format.Vorbis,
		FramesPerPacket:  1,
		ChannelsPerFrame: uint32(dec.Channels()),
	}

	if n := dec.Length(); n > 0 {
		return sf, uint64(n), nil
	}

	frames, err := countFrames(dec)
	if err != nil {
		return format.StreamFormat{}, 0, err
	}

	return sf, frames, nil
}

func countFrames(dec oggReader) (uint64, error) {
	var (
		total uint64
		buf   = make([]float32, 4096*dec.Channels())
	)

	for {
		n, err := dec.Read(buf)
		total += uint64(n / dec.Channels())

		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return 0, fmt.Errorf("vorbis: counting frames: %w", err)
		}
	}
}
