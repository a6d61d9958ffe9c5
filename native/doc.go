// SPDX-License-Identifier: EPL-2.0

// Package native defines the capability surface an audio host exposes to
// the playback core.
//
// The core never talks to a platform API directly. It drives a Backend:
// file open and property reads, graph creation and lifecycle, node to unit
// resolution, node connections, and unit property get/set. Every call
// returns a status.Code where zero is success.
//
// Property payloads travel as bytes in a fixed little-endian layout. The
// Encode and Decode helpers in this package produce and parse that layout,
// so hosts and the core agree on it without sharing Go types across a
// C boundary. A stream format encodes to exactly the 40 bytes of an
// AudioStreamBasicDescription.
package native
