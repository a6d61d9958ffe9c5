// SPDX-License-Identifier: EPL-2.0

// Package audio provides the render primitives the software host uses
// between a decoded file and an output device.
//
// Every stage implements Source, a pull based stream of interleaved float32
// frames, so stages chain:
//
//	src, _ := wav.Decoder{}.Decode(f)
//	out, err := audio.Convert(src, 48000, 2)
//	if err != nil {
//	    return err
//	}
//	buf := make([]float32, out.BufSize())
//	n, err := audio.ReadFull(out, buf)
//
// Convert picks the stages needed to reach a target format: ChannelMixer
// for the channel count and Resampler for the sample rate.
//
// Samples are float32 in [-1.0, 1.0]. Sources report the end of the stream
// with io.EOF, which may accompany the last samples:
//
//	for {
//	    n, err := src.ReadSamples(buf)
//	    process(buf[:n])
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
package audio
