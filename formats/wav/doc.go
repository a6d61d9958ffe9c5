// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes uncompressed WAV files on top of
// github.com/go-audio/wav.
//
// Decoder accepts integer PCM (format tag 1, or the extensible tag) at 8,
// 16, 24 or 32 bits with any channel count and rate, and streams it as
// float32 samples in [-1, 1). 8-bit data is unsigned in WAV and is centred
// before scaling.
//
//	src, err := wav.Decoder{}.Decode(file)
//	sf, frames, err := wav.Decoder{}.Probe(file)
//
// Writer is the other direction, used by the offline render sink:
//
//	w, _ := wav.NewWriter(file, 44100, 2, 16)
//	_ = w.WriteSamples(samples)
//	_ = w.Close()
package wav
