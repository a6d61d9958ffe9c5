// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/auplay/utils"
)

// Resampler streams src at another sample rate using Catmull-Rom
// interpolation over interleaved frames. The channel count is preserved.
// When downsampling, input frames pass through a one-pole low-pass first.
type Resampler struct {
	src      Source
	dstRate  int
	channels int
	step     float64 // source frames advanced per output frame

	// window holds four consecutive source frames; output frames are
	// interpolated between window[1] and window[2] at fraction pos.
	window [4][]float32
	valid  [4]bool
	pos    float64
	primed bool
	done   bool

	in         []float32
	head, tail int
	eof        bool

	lowpass bool
	alpha   float32
	state   []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	step := float64(src.SampleRate()) / float64(dstRate)

	size := src.BufSize()
	if size < channels {
		size = 4096
	}
	size -= size % channels

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		channels: channels,
		step:     step,
		in:       make([]float32, size),
		lowpass:  step > 1,
		alpha:    0.5,
		state:    make([]float32, channels),
	}

	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("resampler: %w", err)
	}

	return nil
}

// nextFrame copies the next source frame into dst. It reports false once
// the source is exhausted.
func (r *Resampler) nextFrame(dst []float32) (bool, error) {
	for empty := 0; r.head == r.tail; empty++ {
		if r.eof {
			return false, nil
		}
		if empty >= maxEmptyReads {
			return false, io.ErrNoProgress
		}

		n, err := r.src.ReadSamples(r.in)
		r.head, r.tail = 0, n-n%r.channels

		if errors.Is(err, io.EOF) {
			r.eof = true
		} else if err != nil {
			return false, fmt.Errorf("resampler: %w", err)
		}
	}

	copy(dst, r.in[r.head:r.head+r.channels])
	r.head += r.channels

	if r.lowpass {
		for c := range dst {
			dst[c] = r.alpha*dst[c] + (1-r.alpha)*r.state[c]
			r.state[c] = dst[c]
		}
	}

	return true, nil
}

// prime fills the window from the start of the stream.
func (r *Resampler) prime() error {
	r.primed = true

	ok, err := r.nextFrame(r.window[1])
	if err != nil || !ok {
		r.done = !ok
		return err
	}
	r.valid[1] = true

	// Start the filter from the first frame to avoid a ramp in.
	copy(r.state, r.window[1])

	for _, i := range []int{2, 3} {
		if r.valid[i], err = r.nextFrame(r.window[i]); err != nil {
			return err
		}
	}

	return nil
}

// shift drops the oldest frame and reads a new one into the window.
func (r *Resampler) shift() error {
	w, v := r.window, r.valid
	r.window = [4][]float32{w[1], w[2], w[3], w[0]}
	r.valid = [4]bool{v[1], v[2], v[3], false}

	if !r.valid[2] {
		return nil
	}

	ok, err := r.nextFrame(r.window[3])
	r.valid[3] = ok

	return err
}

// ReadSamples produces samples at the destination rate. len(dst) must be a
// multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	want := len(dst) / r.channels
	written := 0

	for written < want && !r.done {
		for r.pos >= 1 {
			r.pos--
			if err := r.shift(); err != nil {
				return written * r.channels, err
			}
		}

		if !r.valid[1] {
			r.done = true
			break
		}

		y1 := r.window[1]
		y0, y2, y3 := y1, y1, y1
		if r.valid[0] {
			y0 = r.window[0]
		}
		if r.valid[2] {
			y2 = r.window[2]
			y3 = y2
		}
		if r.valid[3] {
			y3 = r.window[3]
		}

		x := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			out[c] = utils.CubicInterpolate(y0[c], y1[c], y2[c], y3[c], x)
		}

		written++
		r.pos += r.step
	}

	if r.done {
		return written * r.channels, io.EOF
	}

	return written * r.channels, nil
}
