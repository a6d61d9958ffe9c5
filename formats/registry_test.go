// SPDX-License-Identifier: EPL-2.0

package formats

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/ik5/auplay/format"
	"github.com/ik5/auplay/formats/wav"
)

func writeWAV(t *testing.T, name string, rate, channels, frames int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer f.Close()

	w, err := wav.NewWriter(f, rate, channels, 16)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	samples := make([]float32, frames*channels)
	for i := range samples {
		samples[i] = 0.25
	}
	if err := w.WriteSamples(samples); err != nil {
		t.Fatalf("WriteSamples() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	return path
}

func TestRegistry_ForPath(t *testing.T) {
	t.Parallel()

	r := Default()

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"wav", "a.wav", nil},
		{"upper case", "A.WAV", nil},
		{"aiff", "a/b/c.aiff", nil},
		{"aif", "c.aif", nil},
		{"mp3", "song.mp3", nil},
		{"ogg", "song.ogg", nil},
		{"unknown", "song.flac", ErrUnsupportedType},
		{"no extension", "README", ErrNoExtension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := r.ForPath(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ForPath(%q) error = %v, want %v", tt.path, err, tt.wantErr)
			}
			if tt.wantErr == nil && c == nil {
				t.Errorf("ForPath(%q) returned a nil codec", tt.path)
			}
		})
	}
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if len(r.Extensions()) != 0 {
		t.Fatalf("new registry has extensions %v", r.Extensions())
	}

	r.Register(wav.Decoder{}, ".WAV", "bwf")

	if got, want := r.Extensions(), []string{"bwf", "wav"}; !slices.Equal(got, want) {
		t.Errorf("Extensions() = %v, want %v", got, want)
	}
	if _, ok := r.Get("wav"); !ok {
		t.Error(`Get("wav") not found`)
	}
	if _, ok := r.Get(".bwf"); !ok {
		t.Error(`Get(".bwf") not found`)
	}
}

func TestDefault_Extensions(t *testing.T) {
	t.Parallel()

	want := []string{"aif", "aifc", "aiff", "mp3", "oga", "ogg", "wav", "wave"}
	if got := Default().Extensions(); !slices.Equal(got, want) {
		t.Errorf("Extensions() = %v, want %v", got, want)
	}
}

func TestRegistry_Probe(t *testing.T) {
	t.Parallel()

	path := writeWAV(t, "tone.wav", 8000, 2, 4000)

	info, err := Default().Probe(path)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}

	if want := format.IntegerPCM(8000, 2, 16, true, false); info.Format != want {
		t.Errorf("Format = %v, want %v", info.Format, want)
	}
	if info.Packets != 4000 || info.Frames() != 4000 {
		t.Errorf("Packets/Frames = %d/%d, want 4000", info.Packets, info.Frames())
	}
	if info.Duration() != 500*time.Millisecond {
		t.Errorf("Duration() = %v, want 500ms", info.Duration())
	}
}

func TestRegistry_ProbeErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	garbage := filepath.Join(dir, "bad.wav")
	if err := os.WriteFile(garbage, []byte("not audio"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Default().Probe(filepath.Join(dir, "missing.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Probe(missing) error = %v, want os.ErrNotExist", err)
	}
	if _, err := Default().Probe(garbage); !errors.Is(err, wav.ErrNotWavFile) {
		t.Errorf("Probe(garbage) error = %v, want wav.ErrNotWavFile", err)
	}
	if _, err := Default().Probe("x.flac"); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("Probe(flac) error = %v, want ErrUnsupportedType", err)
	}
}

func TestRegistry_Open(t *testing.T) {
	t.Parallel()

	src, err := Default().Open(writeWAV(t, "tone.wave", 8000, 1, 100))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	buf := make([]float32, 64)
	total := 0
	for {
		n, err := src.ReadSamples(buf)
		total += n
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}

	if total != 100 {
		t.Errorf("read %d samples, want 100", total)
	}
	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := src.Close(); err == nil {
		t.Error("second Close() error = nil, want the file already closed error")
	}
}

func TestInfo_DurationWithoutRate(t *testing.T) {
	t.Parallel()

	if d := (Info{Packets: 10}).Duration(); d != 0 {
		t.Errorf("Duration() = %v, want 0", d)
	}
}
