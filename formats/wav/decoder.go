// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/auplay/audio"
	"github.com/ik5/auplay/format"
	"github.com/ik5/auplay/utils"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

// pcmReader is the part of wav.Decoder the source reads through.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec        pcmReader
	sampleRate int
	channels   int
	bitDepth   int
	intBuf     *goaudio.IntBuffer
	// carry holds the samples of a frame split across two reads.
	carry []float32
	eof   bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }

func (s *source) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return 4096
}

func (s *source) sample(v int) float32 {
	// 8-bit WAV data is unsigned.
	if s.bitDepth == 8 {
		v -= 128
	}

	return utils.IntToFloat32(v, s.bitDepth)
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if s.eof {
		return 0, io.EOF
	}

	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		return 0, audio.ErrInvalidDstSize
	}

	n := copy(dst[:want], s.carry)
	s.carry = s.carry[:0]

	need := want - n
	if s.intBuf == nil || cap(s.intBuf.Data) < need {
		s.intBuf = &goaudio.IntBuffer{Data: make([]int, need)}
	}
	s.intBuf.Data = s.intBuf.Data[:need]

	got, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil {
		return 0, fmt.Errorf("wav: %w", err)
	}
	if got == 0 {
		s.eof = true
		return 0, io.EOF
	}

	for i, v := range s.intBuf.Data[:got] {
		dst[n+i] = s.sample(v)
	}

	total := n + got
	whole := total - total%s.channels
	s.carry = append(s.carry, dst[whole:total]...)

	return whole, nil
}

// Decoder reads integer PCM WAV files of 8, 16, 24 or 32 bits.
type Decoder struct{}

func open(r io.Reader) (*wav.Decoder, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	if f := dec.WavAudioFormat; f != formatPCM && f != formatExtensible {
		return nil, fmt.Errorf("%w: format tag %d", ErrUnsupportedEncoding, f)
	}

	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, dec.BitDepth)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoPCMData, err)
	}
	if dec.PCMChunk == nil {
		return nil, ErrNoPCMData
	}

	return dec, nil
}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := open(r)
	if err != nil {
		return nil, err
	}

	return &source{
		dec:        dec,
		sampleRate: int(dec.SampleRate),
		channels:   int(dec.NumChans),
		bitDepth:   int(dec.BitDepth),
	}, nil
}

// Probe reports the file's PCM layout and its frame count; every WAV packet
// is one frame.
func (Decoder) Probe(r io.ReadSeeker) (format.StreamFormat, uint64, error) {
	dec, err := open(r)
	if err != nil {
		return format.StreamFormat{}, 0, err
	}

	sf := format.IntegerPCM(float64(dec.SampleRate), uint32(dec.NumChans), uint32(dec.BitDepth), dec.BitDepth > 8, false)
	frames := uint64(dec.PCMLen()) / uint64(sf.BytesPerFrame)

	return sf, frames, nil
}
