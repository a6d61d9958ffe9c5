// SPDX-License-Identifier: EPL-2.0

// Package coreaudio is the AudioToolbox host: files open through AudioFile
// and graphs are real AUGraphs. It needs darwin and cgo; elsewhere New
// reports ErrUnsupported.
//
// Property payloads in the native layout are handed to AudioToolbox as is
// where the layouts agree (stream formats, prime frames) and translated
// where they hold handles (scheduled files, regions, timestamps).
package coreaudio
