// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1 Layer III streams with
// github.com/hajimehoshi/go-mp3.
//
// go-mp3 always renders 16-bit stereo, mono files included, so sources from
// this package report two channels. Probe needs an io.ReadSeeker to learn
// the decoded length and reports the packet count in 1152 frame packets.
//
//	src, err := mp3.Decoder{}.Decode(file)
//	sf, packets, err := mp3.Decoder{}.Probe(file)
package mp3
