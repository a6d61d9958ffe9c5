// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"io"
	"log/slog"

	"github.com/ik5/auplay/format"
)

// Pull fills dst with interleaved samples and returns how many it wrote.
// done reports that the input has nothing more to render; n may still be
// positive in that call.
type Pull func(dst []float32) (n int, done bool)

// Sink consumes what an output unit renders.
//
// Start begins pulling from pull on the sink's own schedule. Stop halts
// pulling and returns once no pull is in flight. Close releases the device;
// a closed sink cannot be started again.
type Sink interface {
	Start(pull Pull) error
	Stop() error
	Close() error
}

// SinkFactory opens a sink for interleaved float32 input in sf's rate and
// channel count.
type SinkFactory func(sf format.StreamFormat, log *slog.Logger) (Sink, error)

// pullSource presents a Pull as an audio.Source so the converters in the
// audio package can sit between a unit and a device.
type pullSource struct {
	pull     Pull
	rate     int
	channels int
	done     bool
}

func newPullSource(pull Pull, sf format.StreamFormat) *pullSource {
	return &pullSource{pull: pull, rate: int(sf.SampleRate), channels: int(sf.ChannelsPerFrame)}
}

func (s *pullSource) SampleRate() int { return s.rate }
func (s *pullSource) Channels() int   { return s.channels }
func (s *pullSource) BufSize() int    { return blockFrames * s.channels }
func (s *pullSource) Close() error    { return nil }

func (s *pullSource) ReadSamples(dst []float32) (int, error) {
	if s.done {
		return 0, io.EOF
	}

	n, done := s.pull(dst[:len(dst)-len(dst)%s.channels])
	if done {
		s.done = true
		return n, io.EOF
	}

	return n, nil
}
