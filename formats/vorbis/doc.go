// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams with
// github.com/jfreymuth/oggvorbis.
//
// The library already produces interleaved float32, so sources pass its
// output straight through. Probe counts packets as decoded frames.
package vorbis
