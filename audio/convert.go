// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// Convert returns src rendered at rate with channels per frame. src is
// returned unchanged when it already matches. When mixing down, channels are
// mixed before resampling so the resampler handles fewer channels.
func Convert(src Source, rate, channels int) (Source, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRate, rate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
	}
	if src.SampleRate() <= 0 {
		return nil, fmt.Errorf("source: %w: %d", ErrInvalidRate, src.SampleRate())
	}
	if src.Channels() <= 0 {
		return nil, fmt.Errorf("source: %w: %d", ErrInvalidChannels, src.Channels())
	}

	out := src
	mixFirst := channels < src.Channels()

	if mixFirst {
		out = NewChannelMixer(out, channels)
	}
	if out.SampleRate() != rate {
		out = NewResampler(out, rate)
	}
	if out.Channels() != channels {
		out = NewChannelMixer(out, channels)
	}

	return out, nil
}
