// SPDX-License-Identifier: EPL-2.0

package format

import (
	"errors"
	"fmt"
	"strings"
)

// FourCC is a four character code packed big-endian into 32 bits.
type FourCC uint32

// ParseFourCC packs a four character string. It fails for any other length.
func ParseFourCC(s string) (FourCC, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFourCC, s)
	}

	return FourCC(uint32(s[0])<<24 | uint32(s[1])<<16 | uint32(s[2])<<8 | uint32(s[3])), nil
}

// MustFourCC is ParseFourCC for constants known to be valid.
func MustFourCC(s string) FourCC {
	c, err := ParseFourCC(s)
	if err != nil {
		panic(err)
	}

	return c
}

func (c FourCC) String() string {
	b := [4]byte{byte(c >> 24), byte(c >> 16), byte(c >> 8), byte(c)}
	for _, ch := range b {
		if ch < 0x20 || ch > 0x7e {
			return fmt.Sprintf("0x%08x", uint32(c))
		}
	}

	return string(b[:])
}

// Format identifiers.
var (
	LinearPCM  = MustFourCC("lpcm")
	MPEGLayer3 = MustFourCC(".mp3")
	Vorbis     = MustFourCC("vorb")
)

// Flags holds format specific bit flags.
type Flags uint32

// Linear PCM flags, with the values hosts use on the wire.
const (
	FlagIsFloat          Flags = 1 << 0
	FlagIsBigEndian      Flags = 1 << 1
	FlagIsSignedInteger  Flags = 1 << 2
	FlagIsPacked         Flags = 1 << 3
	FlagIsAlignedHigh    Flags = 1 << 4
	FlagIsNonInterleaved Flags = 1 << 5
	FlagIsNonMixable     Flags = 1 << 6
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagIsFloat, "float"},
	{FlagIsBigEndian, "big-endian"},
	{FlagIsSignedInteger, "signed"},
	{FlagIsPacked, "packed"},
	{FlagIsAlignedHigh, "aligned-high"},
	{FlagIsNonInterleaved, "non-interleaved"},
	{FlagIsNonMixable, "non-mixable"},
}

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}

	var parts []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
			f &^= fn.flag
		}
	}

	if f != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(f)))
	}

	return strings.Join(parts, "|")
}

// StreamFormat describes the layout of an audio stream.
type StreamFormat struct {
	SampleRate       float64
	FormatID         FourCC
	FormatFlags      Flags
	BytesPerPacket   uint32
	FramesPerPacket  uint32
	BytesPerFrame    uint32
	ChannelsPerFrame uint32
	BitsPerChannel   uint32
}

// CanonicalPCM returns packed 32-bit float linear PCM, the format generator
// units render in by default.
func CanonicalPCM(sampleRate float64, channels uint32, interleaved bool) StreamFormat {
	f := StreamFormat{
		SampleRate:       sampleRate,
		FormatID:         LinearPCM,
		FormatFlags:      FlagIsFloat | FlagIsPacked,
		FramesPerPacket:  1,
		ChannelsPerFrame: channels,
		BitsPerChannel:   32,
	}

	if interleaved {
		f.BytesPerFrame = 4 * channels
	} else {
		f.FormatFlags |= FlagIsNonInterleaved
		f.BytesPerFrame = 4
	}
	f.BytesPerPacket = f.BytesPerFrame

	return f
}

// IntegerPCM returns packed interleaved integer linear PCM, the layout of
// uncompressed WAV and AIFF data.
func IntegerPCM(sampleRate float64, channels, bits uint32, signed, bigEndian bool) StreamFormat {
	f := StreamFormat{
		SampleRate:       sampleRate,
		FormatID:         LinearPCM,
		FormatFlags:      FlagIsPacked,
		FramesPerPacket:  1,
		BytesPerFrame:    (bits + 7) / 8 * channels,
		ChannelsPerFrame: channels,
		BitsPerChannel:   bits,
	}
	f.BytesPerPacket = f.BytesPerFrame

	if signed {
		f.FormatFlags |= FlagIsSignedInteger
	}
	if bigEndian {
		f.FormatFlags |= FlagIsBigEndian
	}

	return f
}

// Validate reports every violated invariant as one joined error.
func (f StreamFormat) Validate() error {
	var errs []error

	if f.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("%w: sample rate %g", ErrInvalidFormat, f.SampleRate))
	}

	if f.ChannelsPerFrame == 0 {
		errs = append(errs, fmt.Errorf("%w: zero channels per frame", ErrInvalidFormat))
	}

	if f.IsLinearPCM() {
		if f.FramesPerPacket != 1 {
			errs = append(errs, fmt.Errorf("%w: linear PCM with %d frames per packet", ErrInvalidFormat, f.FramesPerPacket))
		}

		ws := f.SampleWordSize()
		if ws == 0 {
			errs = append(errs, fmt.Errorf("%w: no derivable sample word size", ErrInvalidFormat))
		} else {
			want := ws
			if f.IsInterleaved() {
				want = ws * f.ChannelsPerFrame
			}
			if f.BytesPerFrame != want {
				errs = append(errs, fmt.Errorf("%w: %d bytes per frame, want %d", ErrInvalidFormat, f.BytesPerFrame, want))
			}
		}

		if f.BytesPerPacket != f.BytesPerFrame*f.FramesPerPacket {
			errs = append(errs, fmt.Errorf("%w: %d bytes per packet, want %d", ErrInvalidFormat, f.BytesPerPacket, f.BytesPerFrame*f.FramesPerPacket))
		}
	}

	return errors.Join(errs...)
}

func (f StreamFormat) String() string {
	return fmt.Sprintf("%s %gHz %dch %dbit [%s] %d B/pkt %d fr/pkt %d B/fr",
		f.FormatID, f.SampleRate, f.ChannelsPerFrame, f.BitsPerChannel, f.FormatFlags,
		f.BytesPerPacket, f.FramesPerPacket, f.BytesPerFrame)
}
