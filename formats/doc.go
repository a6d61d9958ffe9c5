// SPDX-License-Identifier: EPL-2.0

// Package formats maps audio files to decoders.
//
// Each subpackage (wav, aiff, mp3, vorbis) provides a Decoder that can both
// stream a file as an audio.Source and probe its native stream format and
// packet count without decoding it. A Registry selects the decoder by file
// extension:
//
//	info, err := formats.Default().Probe("song.mp3")
//	if err != nil {
//	    // errors.Is(err, formats.ErrUnsupportedType) for unknown extensions
//	}
//	fmt.Println(info.Format, info.Duration())
//
//	src, err := formats.Default().Open("song.mp3")
//	defer src.Close() // also closes the file
package formats
