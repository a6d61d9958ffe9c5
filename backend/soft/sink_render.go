// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/ik5/auplay/format"
	"github.com/ik5/auplay/formats/wav"
)

// renderBitDepth is the sample size of rendered WAV files.
const renderBitDepth = 16

// renderSink runs the graph offline on its own goroutine, as fast as the
// generator produces audio. The whole scheduled input is rendered: Stop
// waits for the render to finish instead of cutting it short.
type renderSink struct {
	log      *slog.Logger
	channels int

	file   *os.File
	writer *wav.Writer

	mu      sync.Mutex
	wg      sync.WaitGroup
	running bool
	closed  bool
	err     error
	frames  int
}

// newRenderSink writes to path, or discards the output when path is empty.
func newRenderSink(path string, sf format.StreamFormat, log *slog.Logger) (*renderSink, error) {
	s := &renderSink{log: log, channels: int(sf.ChannelsPerFrame)}

	if path == "" {
		return s, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("render sink: %w", err)
	}

	w, err := wav.NewWriter(f, int(sf.SampleRate), s.channels, renderBitDepth)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("render sink: %w", err)
	}

	s.file, s.writer = f, w

	return s, nil
}

// RenderSinkFactory renders to path, or discards when path is empty.
func RenderSinkFactory(path string) SinkFactory {
	return func(sf format.StreamFormat, log *slog.Logger) (Sink, error) {
		return newRenderSink(path, sf, log)
	}
}

func (s *renderSink) Start(pull Pull) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	if s.running {
		return nil
	}
	s.running = true

	s.wg.Go(func() { s.render(pull) })

	return nil
}

func (s *renderSink) render(pull Pull) {
	buf := make([]float32, blockFrames*s.channels)

	for {
		n, done := pull(buf)
		if n > 0 && s.writer != nil {
			if err := s.writer.WriteSamples(buf[:n]); err != nil {
				s.mu.Lock()
				s.err = err
				s.mu.Unlock()
				s.log.Error("render sink write failed", "error", err)
				return
			}
		}

		s.mu.Lock()
		s.frames += n / s.channels
		s.mu.Unlock()

		if done {
			s.log.Debug("render finished", "frames", s.Frames())
			return
		}
	}
}

// Frames is the number of frames rendered so far.
func (s *renderSink) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.frames
}

func (s *renderSink) Stop() error {
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false

	return s.err
}

func (s *renderSink) Close() error {
	if err := s.Stop(); err != nil {
		s.log.Warn("render sink stopped with error", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.writer == nil {
		return nil
	}

	return errors.Join(s.writer.Close(), s.file.Close())
}
