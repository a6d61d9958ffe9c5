// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/auplay/audio"
	"github.com/ik5/auplay/internal/audiotest"
)

// drainSource reads src to the end in small blocks.
func drainSource(t *testing.T, src audio.Source) []float32 {
	t.Helper()

	var (
		out []float32
		buf = make([]float32, 7*src.Channels())
	)

	for range 10000 {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
	}

	t.Fatal("source never reached EOF")
	return nil
}

// rampOpener opens a fresh 50 frame mono ramp on every call.
type rampOpener struct {
	frames int
	opened int
	err    error
}

func (o *rampOpener) open() (audio.Source, error) {
	if o.err != nil {
		return nil, o.err
	}
	o.opened++

	return audiotest.Ramp(8000, 1, o.frames), nil
}

func TestRegionSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		start      int64
		frames     uint64
		loops      uint32
		wantFrames int
		wantFirst  float32
		wantOpened int
	}{
		{name: "whole file", frames: 50, wantFrames: 50, wantOpened: 1},
		{name: "capped", frames: 30, loops: 2, wantFrames: 30, wantOpened: 1},
		{name: "from start frame", start: 10, frames: 1000, wantFrames: 40, wantFirst: 0.2, wantOpened: 1},
		{name: "one loop", frames: 1000, loops: 1, wantFrames: 100, wantOpened: 2},
		{name: "loop capped", frames: 75, loops: 5, wantFrames: 75, wantOpened: 2},
		{name: "start past end", start: 80, frames: 100, loops: 3, wantFrames: 0, wantOpened: 1},
		{name: "nothing to play", frames: 0, wantFrames: 0, wantOpened: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			o := &rampOpener{frames: 50}
			src, err := newRegionSource(o.open, tt.start, tt.frames, tt.loops)
			require.NoError(t, err)
			defer src.Close()

			assert.Equal(t, 8000, src.SampleRate())
			assert.Equal(t, 1, src.Channels())

			got := drainSource(t, src)
			require.Len(t, got, tt.wantFrames)
			if tt.wantFrames > 0 {
				assert.InDelta(t, tt.wantFirst, got[0], 1e-6)
			}
			assert.Equal(t, tt.wantOpened, o.opened)
		})
	}
}

func TestRegionSource_LoopRepeatsRegion(t *testing.T) {
	t.Parallel()

	o := &rampOpener{frames: 50}
	src, err := newRegionSource(o.open, 20, 1000, 1)
	require.NoError(t, err)
	defer src.Close()

	got := drainSource(t, src)
	require.Len(t, got, 60)
	assert.Equal(t, got[:30], got[30:])
}

func TestRegionSource_OpenError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	o := &rampOpener{frames: 50, err: boom}

	_, err := newRegionSource(o.open, 0, 10, 0)
	require.ErrorIs(t, err, boom)
}

func TestRegionSource_ReadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	failing := audiotest.Ramp(8000, 2, 100)
	failing.Err, failing.FailAt = boom, 10

	src, err := newRegionSource(func() (audio.Source, error) { return failing, nil }, 0, 100, 0)
	require.NoError(t, err)
	defer src.Close()

	buf := make([]float32, 200)
	_, err = audio.ReadFull(src, buf)
	require.ErrorIs(t, err, boom)
}

func TestSilence(t *testing.T) {
	t.Parallel()

	s := &silence{rate: 8000, channels: 2, left: 10}
	got := drainSource(t, s)

	require.Len(t, got, 20)
	for _, v := range got {
		assert.Zero(t, v)
	}
}

func TestSequence(t *testing.T) {
	t.Parallel()

	first := &silence{rate: 8000, channels: 2, left: 3}
	empty := &silence{rate: 8000, channels: 2}
	second := audiotest.Constant(8000, 2, 4, 0.5)

	seq := &sequence{rate: 8000, channels: 2, parts: []audio.Source{first, empty, second}}
	got := drainSource(t, seq)

	require.Len(t, got, 14)
	assert.Equal(t, make([]float32, 6), got[:6])
	for _, v := range got[6:] {
		assert.InDelta(t, 0.5, v, 1e-6)
	}
	assert.Equal(t, 1, second.Closed())
	require.NoError(t, seq.Close())
}

func TestSequence_CloseClosesRemaining(t *testing.T) {
	t.Parallel()

	a := audiotest.Constant(8000, 1, 10, 0.1)
	b := audiotest.Constant(8000, 1, 10, 0.2)
	seq := &sequence{rate: 8000, channels: 1, parts: []audio.Source{a, b}}

	require.NoError(t, seq.Close())
	assert.Equal(t, 1, a.Closed())
	assert.Equal(t, 1, b.Closed())

	n, err := seq.ReadSamples(make([]float32, 4))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)
}
