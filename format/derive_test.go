// SPDX-License-Identifier: EPL-2.0

package format

import (
	"errors"
	"math"
	"testing"
)

// sampleFormats covers interleaved and non-interleaved PCM, word sizes that
// differ from the bit depth, formats without byte counts, and compressed data.
func sampleFormats() map[string]StreamFormat {
	return map[string]StreamFormat{
		"int16 stereo interleaved": {
			SampleRate: 44100, FormatID: LinearPCM, FormatFlags: FlagIsSignedInteger | FlagIsPacked,
			BytesPerPacket: 4, FramesPerPacket: 1, BytesPerFrame: 4, ChannelsPerFrame: 2, BitsPerChannel: 16,
		},
		"float32 stereo non-interleaved": CanonicalPCM(48000, 2, false),
		"float32 mono interleaved":       CanonicalPCM(22050, 1, true),
		"int24 in 32-bit words": {
			SampleRate: 96000, FormatID: LinearPCM, FormatFlags: FlagIsSignedInteger | FlagIsAlignedHigh,
			BytesPerPacket: 8, FramesPerPacket: 1, BytesPerFrame: 8, ChannelsPerFrame: 2, BitsPerChannel: 24,
		},
		"bits only": {
			SampleRate: 8000, FormatID: LinearPCM, FormatFlags: FlagIsSignedInteger,
			ChannelsPerFrame: 1, BitsPerChannel: 12,
		},
		"mp3": {
			SampleRate: 44100, FormatID: MPEGLayer3, FramesPerPacket: 1152, ChannelsPerFrame: 2,
		},
	}
}

func TestSampleWordSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want uint32
	}{
		{"int16 stereo interleaved", 2},
		{"float32 stereo non-interleaved", 4},
		{"float32 mono interleaved", 4},
		{"int24 in 32-bit words", 4},
		{"bits only", 2},
		{"mp3", 0},
	}

	formats := sampleFormats()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := formats[tt.name].SampleWordSize(); got != tt.want {
				t.Errorf("SampleWordSize() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsInterleaved(t *testing.T) {
	t.Parallel()

	nonPCM := StreamFormat{FormatID: MPEGLayer3, FormatFlags: FlagIsNonInterleaved}
	if !nonPCM.IsInterleaved() {
		t.Error("non-PCM format must count as interleaved regardless of flags")
	}

	if CanonicalPCM(44100, 2, false).IsInterleaved() {
		t.Error("non-interleaved PCM reported as interleaved")
	}

	if got := CanonicalPCM(44100, 6, false).EffectiveChannelCountForWordSize(); got != 1 {
		t.Errorf("EffectiveChannelCountForWordSize() = %d, want 1", got)
	}

	if got := CanonicalPCM(44100, 6, true).EffectiveChannelCountForWordSize(); got != 6 {
		t.Errorf("EffectiveChannelCountForWordSize() = %d, want 6", got)
	}
}

func TestWithChannelCount_Idempotent(t *testing.T) {
	t.Parallel()

	for name, f := range sampleFormats() {
		for n := range uint32(9) {
			once := f.WithChannelCount(n)
			twice := once.WithChannelCount(n)
			if once != twice {
				t.Errorf("%s n=%d: WithChannelCount not idempotent:\n once  %v\n twice %v", name, n, once, twice)
			}
		}
	}
}

func TestWithChannelCount_Invariants(t *testing.T) {
	t.Parallel()

	for name, f := range sampleFormats() {
		if !f.IsLinearPCM() {
			continue
		}

		for n := uint32(1); n <= 8; n++ {
			got := f.WithChannelCount(n)

			if got.ChannelsPerFrame != n || got.FramesPerPacket != 1 || got.BytesPerPacket != got.BytesPerFrame {
				t.Errorf("%s n=%d: unexpected layout %v", name, n, got)
			}

			if f.IsInterleaved() {
				if !got.IsInterleaved() {
					t.Errorf("%s n=%d: interleaved input became non-interleaved", name, n)
				}
				if got.BytesPerFrame != n*got.SampleWordSize() {
					t.Errorf("%s n=%d: BytesPerFrame = %d, want %d", name, n, got.BytesPerFrame, n*got.SampleWordSize())
				}
			} else {
				if got.FormatFlags&FlagIsNonInterleaved == 0 {
					t.Errorf("%s n=%d: non-interleaved flag cleared", name, n)
				}
				if got.BytesPerFrame != got.SampleWordSize() {
					t.Errorf("%s n=%d: BytesPerFrame = %d, want %d", name, n, got.BytesPerFrame, got.SampleWordSize())
				}
			}

			if got.SampleWordSize() != f.SampleWordSize() {
				t.Errorf("%s n=%d: word size changed from %d to %d", name, n, f.SampleWordSize(), got.SampleWordSize())
			}

			if err := got.Validate(); err != nil {
				t.Errorf("%s n=%d: derived format invalid: %v", name, n, err)
			}
		}
	}
}

func TestWithSampleRate_Isolation(t *testing.T) {
	t.Parallel()

	rates := []float64{8000, 44100, 48000, 192000, 0}
	for name, f := range sampleFormats() {
		for _, r := range rates {
			got := f.WithSampleRate(r)
			if got.SampleRate != r {
				t.Errorf("%s: SampleRate = %g, want %g", name, got.SampleRate, r)
			}

			got.SampleRate = f.SampleRate
			if got != f {
				t.Errorf("%s rate=%g: fields besides the rate changed:\n got  %v\n want %v", name, r, got, f)
			}
		}
	}

	if f := CanonicalPCM(44100, 2, true).WithSampleRate(math.Inf(1)); !math.IsInf(f.SampleRate, 1) {
		t.Errorf("WithSampleRate(+Inf) = %g", f.SampleRate)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := CanonicalPCM(44100, 2, true).Validate(); err != nil {
		t.Errorf("canonical interleaved: %v", err)
	}

	bad := StreamFormat{
		FormatID: LinearPCM, FramesPerPacket: 1, BytesPerPacket: 6, BytesPerFrame: 6, ChannelsPerFrame: 2, BitsPerChannel: 16,
	}
	err := bad.Validate()
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("Validate() = %v, want ErrInvalidFormat", err)
	}

	mp3 := sampleFormats()["mp3"]
	if err := mp3.Validate(); err != nil {
		t.Errorf("compressed format validated with PCM rules: %v", err)
	}
}

func TestIntegerPCM(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		bits      uint32
		channels  uint32
		signed    bool
		bigEndian bool
		wantBPF   uint32
		wantFlags Flags
	}{
		{"wav 16-bit stereo", 16, 2, true, false, 4, FlagIsPacked | FlagIsSignedInteger},
		{"wav 8-bit mono", 8, 1, false, false, 1, FlagIsPacked},
		{"aiff 24-bit stereo", 24, 2, true, true, 6, FlagIsPacked | FlagIsSignedInteger | FlagIsBigEndian},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := IntegerPCM(48000, tt.channels, tt.bits, tt.signed, tt.bigEndian)
			if f.BytesPerFrame != tt.wantBPF || f.BytesPerPacket != tt.wantBPF {
				t.Errorf("bytes per frame/packet = %d/%d, want %d", f.BytesPerFrame, f.BytesPerPacket, tt.wantBPF)
			}
			if f.FormatFlags != tt.wantFlags {
				t.Errorf("flags = %s, want %s", f.FormatFlags, tt.wantFlags)
			}
			if err := f.Validate(); err != nil {
				t.Errorf("Validate() = %v", err)
			}
		})
	}
}

func TestFourCC(t *testing.T) {
	t.Parallel()

	c, err := ParseFourCC("afpl")
	if err != nil {
		t.Fatalf("ParseFourCC() error = %v", err)
	}

	if c != 0x6166706c {
		t.Errorf("ParseFourCC(afpl) = %#x, want 0x6166706c", uint32(c))
	}

	if c.String() != "afpl" {
		t.Errorf("String() = %q, want afpl", c.String())
	}

	if _, err := ParseFourCC("toolong"); !errors.Is(err, ErrInvalidFourCC) {
		t.Errorf("ParseFourCC(toolong) error = %v, want ErrInvalidFourCC", err)
	}

	if got := FourCC(1).String(); got != "0x00000001" {
		t.Errorf("FourCC(1).String() = %q", got)
	}
}

func TestFlags_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		flags Flags
		want  string
	}{
		{0, "none"},
		{FlagIsFloat | FlagIsPacked, "float|packed"},
		{FlagIsSignedInteger | FlagIsNonInterleaved | 1<<12, "signed|non-interleaved|0x1000"},
	}

	for _, tt := range tests {
		if got := tt.flags.String(); got != tt.want {
			t.Errorf("Flags(%#x).String() = %q, want %q", uint32(tt.flags), got, tt.want)
		}
	}
}

func BenchmarkWithChannelCount(b *testing.B) {
	f := CanonicalPCM(44100, 2, false)

	b.ResetTimer()
	b.ReportAllocs()

	for b.Loop() {
		f = f.WithChannelCount(2).WithSampleRate(48000)
	}

	_ = f
}
