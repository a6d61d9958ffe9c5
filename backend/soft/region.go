// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/auplay/audio"
)

// regionSource reads one scheduled region of a file in the file's own
// rate and channel count.
//
// The region starts at startFrame and covers framesToPlay frames. When the
// file ends first it restarts at startFrame, up to loops more times.
type regionSource struct {
	open      func() (audio.Source, error)
	cur       audio.Source
	rate      int
	channels  int
	start     int64
	remaining uint64
	loops     uint32
	pass      uint64 // frames read in the current pass
	skip      []float32
}

func newRegionSource(open func() (audio.Source, error), startFrame int64, framesToPlay uint64, loops uint32) (*regionSource, error) {
	r := &regionSource{
		open:      open,
		start:     max(startFrame, 0),
		remaining: framesToPlay,
		loops:     loops,
	}

	if err := r.reopen(); err != nil {
		return nil, err
	}
	r.rate, r.channels = r.cur.SampleRate(), r.cur.Channels()

	return r, nil
}

// reopen starts a pass: it opens the file and skips to the start frame.
func (r *regionSource) reopen() error {
	src, err := r.open()
	if err != nil {
		return fmt.Errorf("region: %w", err)
	}
	r.cur, r.pass = src, 0

	ch := src.Channels()
	if cap(r.skip) < blockFrames*ch {
		r.skip = make([]float32, blockFrames*ch)
	}

	for left := r.start * int64(ch); left > 0; {
		n, err := audio.ReadFull(src, r.skip[:min(int64(len(r.skip)), left)])
		left -= int64(n)

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = src.Close()
			r.cur = nil
			return fmt.Errorf("region: seeking to frame %d: %w", r.start, err)
		}
	}

	return nil
}

func (r *regionSource) SampleRate() int { return r.rate }
func (r *regionSource) Channels() int   { return r.channels }
func (r *regionSource) BufSize() int    { return blockFrames * r.channels }

func (r *regionSource) ReadSamples(dst []float32) (int, error) {
	for {
		if r.remaining == 0 {
			return 0, io.EOF
		}

		if r.cur == nil {
			if err := r.reopen(); err != nil {
				return 0, err
			}
		}

		want := min(uint64(len(dst)/r.channels), r.remaining) * uint64(r.channels)
		n, err := r.cur.ReadSamples(dst[:want])

		frames := uint64(n / r.channels)
		r.remaining -= frames
		r.pass += frames

		switch {
		case errors.Is(err, io.EOF):
			empty := r.pass == 0
			cerr := r.cur.Close()
			r.cur = nil
			if cerr != nil {
				return n, fmt.Errorf("region: %w", cerr)
			}
			// An empty pass would loop forever.
			if r.loops == 0 || empty {
				r.remaining = 0
			} else {
				r.loops--
			}
		case err != nil:
			return n, fmt.Errorf("region: %w", err)
		}

		if n > 0 || r.cur != nil {
			return n, nil
		}
	}
}

func (r *regionSource) Close() error {
	if r.cur == nil {
		return nil
	}

	err := r.cur.Close()
	r.cur = nil

	return err
}

// silence is n frames of zeros.
type silence struct {
	rate, channels int
	left           uint64
}

func (s *silence) SampleRate() int { return s.rate }
func (s *silence) Channels() int   { return s.channels }
func (s *silence) BufSize() int    { return blockFrames * s.channels }
func (s *silence) Close() error    { return nil }

func (s *silence) ReadSamples(dst []float32) (int, error) {
	if s.left == 0 {
		return 0, io.EOF
	}

	frames := min(uint64(len(dst)/s.channels), s.left)
	n := int(frames) * s.channels
	clear(dst[:n])
	s.left -= frames

	if s.left == 0 {
		return n, io.EOF
	}

	return n, nil
}

// sequence plays sources one after another. All of them share the same
// rate and channel count.
type sequence struct {
	rate, channels int
	parts          []audio.Source
}

func (s *sequence) SampleRate() int { return s.rate }
func (s *sequence) Channels() int   { return s.channels }
func (s *sequence) BufSize() int    { return blockFrames * s.channels }

func (s *sequence) ReadSamples(dst []float32) (int, error) {
	for len(s.parts) > 0 {
		n, err := s.parts[0].ReadSamples(dst)

		if errors.Is(err, io.EOF) {
			cerr := s.parts[0].Close()
			s.parts = s.parts[1:]
			if cerr != nil {
				return n, cerr
			}
			if n == 0 {
				continue
			}
			return n, nil
		}

		return n, err
	}

	return 0, io.EOF
}

func (s *sequence) Close() error {
	var errs []error
	for _, p := range s.parts {
		errs = append(errs, p.Close())
	}
	s.parts = nil

	return errors.Join(errs...)
}
