// SPDX-License-Identifier: EPL-2.0

// Package auplay plays audio files through a native audio graph.
//
// A session opens the file, builds a two node graph (a file player
// generator feeding an output unit), schedules the whole file, starts the
// graph and waits for the file's duration. Everything is released on
// every exit path.
//
// # Packages
//
//   - playback runs sessions against a native.Backend.
//   - backend/soft is an in-process host: decoders from formats feed
//     oto, miniaudio or an offline WAV renderer.
//   - backend/coreaudio drives AudioToolbox on darwin.
//   - formats decodes WAV, AIFF, MP3 and Ogg Vorbis into audio.Source.
//   - audio converts channel counts and sample rates.
//
// # Quick Start
//
//	res, err := auplay.PlayFile(ctx, "song.mp3")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println("played", res.Duration)
//
// Render does the same into a WAV file, without waiting in real time:
//
//	res, err := auplay.Render(ctx, "song.ogg", "song.wav")
package auplay
