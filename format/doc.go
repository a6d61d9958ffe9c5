// SPDX-License-Identifier: EPL-2.0

// Package format models audio stream formats.
//
// A StreamFormat carries the same fields as an AudioStreamBasicDescription:
// sample rate, format id, format flags, bytes per packet, frames per packet,
// bytes per frame, channels per frame and bits per channel.
//
// All operations are pure. Changing a format always goes through a derive
// function that returns a new value, so the linear PCM invariants hold
// after every step:
//
//	unitFormat = unitFormat.WithChannelCount(2).WithSampleRate(48000)
//
// For interleaved linear PCM, BytesPerFrame == ChannelsPerFrame * SampleWordSize.
// For non-interleaved linear PCM every buffer holds a single channel, so
// BytesPerFrame == SampleWordSize and the channel count travels alongside.
package format
