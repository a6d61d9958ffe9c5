// SPDX-License-Identifier: EPL-2.0

// Package soft is a native.Backend implemented in Go.
//
// Files are decoded with the formats registry. Graphs hold two kinds of
// unit: the file player generator (augn/afpl/appl), which renders the
// scheduled regions of its bound files, and output units (auou) that hand
// the rendered audio to a sink:
//
//   - def : the system default device through github.com/ebitengine/oto/v3
//   - ahal: a playback device through github.com/gen2brain/malgo
//   - genr: an offline render, written to a 16-bit WAV file when the
//     backend is built WithRenderFile and discarded otherwise
//
// Misuse is reported with the status codes AudioToolbox uses for the same
// mistakes, so code written against this host behaves the same against
// the native one.
//
// Generators render interleaved float32 internally. A non-interleaved
// stream format only affects what the unit reports.
package soft
