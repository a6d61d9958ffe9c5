// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/ik5/auplay/format"
)

// malgoSink plays through a miniaudio playback device in the input's own
// format; miniaudio converts to the hardware.
type malgoSink struct {
	log      *slog.Logger
	channels int

	ctx    *malgo.AllocatedContext
	device *malgo.Device

	mu      sync.Mutex
	pull    Pull
	buf     []float32
	done    bool
	started bool
	closed  bool
}

func newMalgoSink(sf format.StreamFormat, log *slog.Logger) (Sink, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("malgo context: %w", err)
	}

	s := &malgoSink{log: log, channels: int(sf.ChannelsPerFrame), ctx: ctx}

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatF32
	cfg.Playback.Channels = uint32(sf.ChannelsPerFrame)
	cfg.SampleRate = uint32(sf.SampleRate)
	cfg.Alsa.NoMMap = 1

	device, err := malgo.InitDevice(ctx.Context, cfg, malgo.DeviceCallbacks{Data: s.onData})
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("malgo device: %w", err)
	}
	s.device = device

	log.Debug("hal output opened", "rate", sf.SampleRate, "channels", sf.ChannelsPerFrame)

	return s, nil
}

// onData runs on the device thread.
func (s *malgoSink) onData(out, _ []byte, frames uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := int(frames) * s.channels
	if cap(s.buf) < want {
		s.buf = make([]float32, want)
	}
	buf := s.buf[:want]

	n := 0
	if s.pull != nil && !s.done {
		n, s.done = s.pull(buf)
	}
	clear(buf[n:])

	for i, v := range buf {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
}

func (s *malgoSink) Start(pull Pull) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSinkClosed
	}
	s.pull = pull
	started := s.started
	s.started = true
	s.mu.Unlock()

	if started {
		return nil
	}

	if err := s.device.Start(); err != nil {
		return fmt.Errorf("malgo start: %w", err)
	}

	return nil
}

func (s *malgoSink) Stop() error {
	s.mu.Lock()
	started := s.started
	s.started = false
	s.mu.Unlock()

	if !started {
		return nil
	}

	// Stop blocks until the data callback has returned.
	if err := s.device.Stop(); err != nil {
		return fmt.Errorf("malgo stop: %w", err)
	}

	return nil
}

func (s *malgoSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.Stop()
	s.device.Uninit()
	if uerr := s.ctx.Uninit(); uerr != nil && err == nil {
		err = fmt.Errorf("malgo context: %w", uerr)
	}
	s.ctx.Free()

	return err
}
