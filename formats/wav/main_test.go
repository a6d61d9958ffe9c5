// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

// writeFile renders frames of a per-channel ramp to a WAV file in a
// temporary directory and returns its path.
func writeFile(t testing.TB, rate, channels, bitDepth, frames int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer f.Close()

	w, err := NewWriter(f, rate, channels, bitDepth)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	if err := w.WriteSamples(ramp(channels, frames)); err != nil {
		t.Fatalf("WriteSamples() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	return path
}

// ramp is a sawtooth per channel, offset so channels differ.
func ramp(channels, frames int) []float32 {
	out := make([]float32, channels*frames)
	for f := range frames {
		for c := range channels {
			out[f*channels+c] = float32(math.Mod(float64(f)/100+float64(c)*0.25, 1.5)) - 0.75
		}
	}

	return out
}
