// SPDX-License-Identifier: EPL-2.0

package format

// IsLinearPCM reports whether f is linear PCM.
func (f StreamFormat) IsLinearPCM() bool {
	return f.FormatID == LinearPCM
}

// IsInterleaved is true for any non-PCM format and for PCM without the
// non-interleaved flag.
func (f StreamFormat) IsInterleaved() bool {
	return !f.IsLinearPCM() || f.FormatFlags&FlagIsNonInterleaved == 0
}

// EffectiveChannelCountForWordSize is the number of channels sharing one
// frame of a buffer: all of them when interleaved, one otherwise.
func (f StreamFormat) EffectiveChannelCountForWordSize() uint32 {
	if f.IsInterleaved() {
		return f.ChannelsPerFrame
	}

	return 1
}

// SampleWordSize returns the bytes occupied by one sample of one channel.
// It falls back to rounding BitsPerChannel up to whole bytes and returns 0
// only when neither derivation is possible.
func (f StreamFormat) SampleWordSize() uint32 {
	if ch := f.EffectiveChannelCountForWordSize(); f.BytesPerFrame > 0 && ch > 0 {
		return f.BytesPerFrame / ch
	}

	return (f.BitsPerChannel + 7) / 8
}

// WithChannelCount returns f carrying n channels, one frame per packet and
// byte counts recomputed from the sample word size. Interleaved formats stay
// interleaved; non-interleaved formats stay non-interleaved.
func (f StreamFormat) WithChannelCount(n uint32) StreamFormat {
	wordSize := f.SampleWordSize()
	interleaved := f.IsInterleaved()

	out := f
	out.ChannelsPerFrame = n
	out.FramesPerPacket = 1

	if interleaved {
		out.BytesPerFrame = n * wordSize
		out.FormatFlags &^= FlagIsNonInterleaved
	} else {
		out.BytesPerFrame = wordSize
		out.FormatFlags |= FlagIsNonInterleaved
	}
	out.BytesPerPacket = out.BytesPerFrame

	return out
}

// WithSampleRate returns f with only the sample rate replaced.
func (f StreamFormat) WithSampleRate(rate float64) StreamFormat {
	f.SampleRate = rate
	return f
}
