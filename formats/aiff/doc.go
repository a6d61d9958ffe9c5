// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files through github.com/go-audio/aiff.
//
// Uncompressed AIFF at 8, 16, 24 or 32 bits is supported, any channel count
// and rate. Samples are big-endian and signed at every depth; the decoder
// returns them as float32 in [-1, 1).
//
//	src, err := aiff.Decoder{}.Decode(file)
//	sf, frames, err := aiff.Decoder{}.Probe(file)
//
// The go-audio decoder needs to seek, so Decode buffers readers that are not
// io.ReadSeekers in memory.
package aiff
