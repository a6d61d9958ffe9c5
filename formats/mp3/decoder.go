// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/auplay/audio"
	"github.com/ik5/auplay/format"
	"github.com/ik5/auplay/utils"
)

const (
	// go-mp3 always produces 16-bit little-endian stereo.
	channels      = 2
	bytesPerFrame = 4

	// FramesPerPacket is the frame count of one MPEG-1 Layer III packet.
	FramesPerPacket = 1152
)

// mp3Reader is the part of gomp3.Decoder the source reads through.
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec        mp3Reader
	sampleRate int
	buf        []byte
	// pending holds bytes of a frame split across two reads.
	pending int
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / 2 }

func (s *source) ReadSamples(dst []float32) (int, error) {
	want := len(dst) - len(dst)%channels
	if len(dst) > 0 && want == 0 {
		return 0, audio.ErrInvalidDstSize
	}
	if want == 0 {
		return 0, nil
	}

	size := want * 2
	if cap(s.buf) < size {
		buf := make([]byte, size)
		copy(buf, s.buf[:s.pending])
		s.buf = buf
	}
	s.buf = s.buf[:size]

	n, err := s.dec.Read(s.buf[s.pending:])
	n += s.pending

	frames := n / bytesPerFrame
	for i := range frames * channels {
		v := int16(binary.LittleEndian.Uint16(s.buf[2*i:]))
		dst[i] = utils.IntToFloat32(int(v), 16)
	}

	used := frames * bytesPerFrame
	s.pending = copy(s.buf, s.buf[used:n])

	if err != nil && err != io.EOF {
		return frames * channels, fmt.Errorf("mp3: %w", err)
	}

	return frames * channels, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotMP3File, err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}, nil
}

// Probe reports an MPEG Layer III stream format with the decoder's output
// channel count and the number of 1152 frame packets, the last one possibly
// partial.
func (Decoder) Probe(r io.ReadSeeker) (format.StreamFormat, uint64, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return format.StreamFormat{}, 0, fmt.Errorf("%w: %w", ErrNotMP3File, err)
	}

	length := dec.Length()
	if length < 0 {
		return format.StreamFormat{}, 0, ErrUnknownLength
	}

	sf := format.StreamFormat{
		SampleRate:       float64(dec.SampleRate()),
		FormatID:         format.MPEGLayer3,
		FramesPerPacket:  FramesPerPacket,
		ChannelsPerFrame: channels,
	}
	frames := uint64(length) / bytesPerFrame

	return sf, (frames + FramesPerPacket - 1) / FramesPerPacket, nil
}
