// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMixer maps a source onto another channel count.
//
// Input channel k feeds output channel k mod n when mixing down, and output
// channel c reads input channel c mod m when mixing up. Outputs fed by more
// than one input take their average, so stereo to mono averages both sides
// and mono to stereo copies the single channel to each side.
type ChannelMixer struct {
	src      Source
	channels int
	tmp      []float32
	scale    []float32
}

func NewChannelMixer(src Source, channels int) *ChannelMixer {
	m := &ChannelMixer{
		src:      src,
		channels: channels,
		tmp:      make([]float32, 0, 4096),
		scale:    make([]float32, channels),
	}

	if in := src.Channels(); channels < in {
		for k := range in {
			m.scale[k%channels]++
		}
		for c := range m.scale {
			m.scale[c] = 1 / m.scale[c]
		}
	}

	return m
}

func (m *ChannelMixer) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMixer) Channels() int   { return m.channels }
func (m *ChannelMixer) BufSize() int    { return m.src.BufSize() }

func (m *ChannelMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("channel mixer: %w", err)
	}

	return nil
}

func (m *ChannelMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if len(dst)%m.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	in := m.src.Channels()
	if in == m.channels {
		return m.src.ReadSamples(dst)
	}

	frames := len(dst) / m.channels
	need := frames * in
	if cap(m.tmp) < need {
		m.tmp = make([]float32, need)
	}
	m.tmp = m.tmp[:need]

	n, err := m.src.ReadSamples(m.tmp)
	got := n / in

	switch {
	case m.channels > in:
		for f := range got {
			src := m.tmp[f*in : f*in+in]
			out := dst[f*m.channels : f*m.channels+m.channels]
			for c := range out {
				out[c] = src[c%in]
			}
		}
	case m.channels == 1:
		inv := m.scale[0]
		for f := range got {
			var sum float32
			for _, v := range m.tmp[f*in : f*in+in] {
				sum += v
			}
			dst[f] = sum * inv
		}
	default:
		for f := range got {
			src := m.tmp[f*in : f*in+in]
			out := dst[f*m.channels : f*m.channels+m.channels]
			clear(out)
			for k, v := range src {
				out[k%m.channels] += v
			}
			for c := range out {
				out[c] *= m.scale[c]
			}
		}
	}

	return got * m.channels, err
}
