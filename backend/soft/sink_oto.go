// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/ik5/auplay/audio"
	"github.com/ik5/auplay/format"
)

// oto allows one context per process. The first sink fixes its format and
// later sinks convert to it.
var shared struct {
	mu       sync.Mutex
	ctx      *oto.Context
	rate     int
	channels int
}

func otoContext(rate, channels int) (*oto.Context, int, int, error) {
	shared.mu.Lock()
	defer shared.mu.Unlock()

	if shared.ctx != nil {
		return shared.ctx, shared.rate, shared.channels, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   100 * time.Millisecond,
	})
	if err != nil {
		return nil, 0, 0, fmt.Errorf("oto context: %w", err)
	}
	<-ready

	shared.ctx, shared.rate, shared.channels = ctx, rate, channels

	return ctx, rate, channels, nil
}

// otoSink plays through the system default device.
type otoSink struct {
	log    *slog.Logger
	sf     format.StreamFormat
	ctx    *oto.Context
	rate   int
	ch     int
	mu     sync.Mutex
	player *oto.Player
	closed bool
}

func newOtoSink(sf format.StreamFormat, log *slog.Logger) (Sink, error) {
	ctx, rate, ch, err := otoContext(int(sf.SampleRate), int(sf.ChannelsPerFrame))
	if err != nil {
		return nil, err
	}

	if rate != int(sf.SampleRate) || ch != int(sf.ChannelsPerFrame) {
		log.Info("default output converts to the shared device format",
			"deviceRate", rate, "deviceChannels", ch,
			"inputRate", sf.SampleRate, "inputChannels", sf.ChannelsPerFrame)
	}

	return &otoSink{log: log, sf: sf, ctx: ctx, rate: rate, ch: ch}, nil
}

func (s *otoSink) Start(pull Pull) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}

	if s.player == nil {
		src, err := audio.Convert(newPullSource(pull, s.sf), s.rate, s.ch)
		if err != nil {
			return fmt.Errorf("oto sink: %w", err)
		}
		s.player = s.ctx.NewPlayer(&float32Reader{src: src})
	}

	s.player.Play()

	return nil
}

func (s *otoSink) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player == nil {
		return nil
	}
	s.player.Pause()

	return s.player.Err()
}

func (s *otoSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.player == nil {
		return nil
	}

	return s.player.Close()
}

// float32Reader serialises a source as little-endian float32 bytes.
type float32Reader struct {
	src     audio.Source
	samples []float32
	eof     bool
}

func (r *float32Reader) Read(p []byte) (int, error) {
	if r.eof {
		return 0, io.EOF
	}

	want := len(p) / 4
	want -= want % r.src.Channels()
	if want == 0 {
		return 0, nil
	}

	if cap(r.samples) < want {
		r.samples = make([]float32, want)
	}
	r.samples = r.samples[:want]

	n, err := audio.ReadFull(r.src, r.samples)
	for i, v := range r.samples[:n] {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(v))
	}

	switch {
	case errors.Is(err, io.EOF):
		r.eof = true
		if n == 0 {
			return 0, io.EOF
		}
	case err != nil:
		return 4 * n, err
	}

	return 4 * n, nil
}
