// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"testing"

	"github.com/ik5/auplay/internal/audiotest"
)

func TestConvert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rate     int
		channels int
		outRate  int
		outCh    int
		same     bool
	}{
		{"unchanged", 44100, 2, 44100, 2, true},
		{"channels only", 44100, 1, 44100, 2, false},
		{"rate only", 22050, 2, 44100, 2, false},
		{"both, mixing down", 48000, 6, 44100, 2, false},
		{"both, mixing up", 8000, 1, 16000, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.Sine(tt.rate, tt.channels, tt.rate/10, 440)

			out, err := Convert(src, tt.outRate, tt.outCh)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}

			if same := out == Source(src); same != tt.same {
				t.Errorf("Convert() returned source unchanged = %v, want %v", same, tt.same)
			}
			if out.SampleRate() != tt.outRate || out.Channels() != tt.outCh {
				t.Errorf("Convert() = %dHz %dch, want %dHz %dch", out.SampleRate(), out.Channels(), tt.outRate, tt.outCh)
			}

			got := len(drain(t, out, 512*tt.outCh)) / tt.outCh
			want := tt.outRate / 10
			if got < want-2 || got > want+2 {
				t.Errorf("converted %d frames, want about %d", got, want)
			}
		})
	}
}

func TestConvert_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      Source
		rate, ch int
		want     error
	}{
		{"zero rate", audiotest.Silence(8000, 1, 1), 0, 1, ErrInvalidRate},
		{"zero channels", audiotest.Silence(8000, 1, 1), 8000, 0, ErrInvalidChannels},
		{"source without rate", audiotest.Silence(0, 1, 1), 8000, 1, ErrInvalidRate},
		{"source without channels", audiotest.Silence(8000, 0, 1), 8000, 1, ErrInvalidChannels},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := Convert(tt.src, tt.rate, tt.ch); !errors.Is(err, tt.want) {
				t.Errorf("Convert() error = %v, want %v", err, tt.want)
			}
		})
	}
}

// stutter returns (0, nil) on every other call.
type stutter struct {
	Source
	calls int
}

func (s *stutter) ReadSamples(dst []float32) (int, error) {
	s.calls++
	if s.calls%2 == 1 {
		return 0, nil
	}
	return s.Source.ReadSamples(dst[:min(len(dst), 4)])
}

// stalled never produces anything.
type stalled struct{ Source }

func (stalled) ReadSamples([]float32) (int, error) { return 0, nil }

func TestReadFull(t *testing.T) {
	t.Parallel()

	t.Run("fills across short reads", func(t *testing.T) {
		t.Parallel()

		src := &stutter{Source: audiotest.Constant(8000, 1, 100, 1)}
		buf := make([]float32, 32)

		n, err := ReadFull(src, buf)
		if n != 32 || err != nil {
			t.Fatalf("ReadFull() = %d, %v, want 32, nil", n, err)
		}
	})

	t.Run("short stream", func(t *testing.T) {
		t.Parallel()

		n, err := ReadFull(audiotest.Constant(8000, 2, 5, 1), make([]float32, 32))
		if n != 10 || err != io.EOF {
			t.Fatalf("ReadFull() = %d, %v, want 10, io.EOF", n, err)
		}
	})

	t.Run("no progress", func(t *testing.T) {
		t.Parallel()

		_, err := ReadFull(stalled{audiotest.Silence(8000, 1, 1)}, make([]float32, 8))
		if !errors.Is(err, io.ErrNoProgress) {
			t.Fatalf("ReadFull() error = %v, want io.ErrNoProgress", err)
		}
	})
}
