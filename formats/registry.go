// SPDX-License-Identifier: EPL-2.0

package formats

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ik5/auplay/audio"
	"github.com/ik5/auplay/format"
	"github.com/ik5/auplay/formats/aiff"
	"github.com/ik5/auplay/formats/mp3"
	"github.com/ik5/auplay/formats/vorbis"
	"github.com/ik5/auplay/formats/wav"
)

// Codec decodes one container format.
type Codec interface {
	// Decode streams r as float32 PCM.
	Decode(r io.Reader) (audio.Source, error)
	// Probe reads the native stream format and the number of packets.
	Probe(r io.ReadSeeker) (format.StreamFormat, uint64, error)
}

// Info is what Probe learns about a file.
type Info struct {
	Format  format.StreamFormat
	Packets uint64
}

// Frames is the number of frames in the file.
func (i Info) Frames() uint64 {
	return i.Packets * uint64(i.Format.FramesPerPacket)
}

// Duration is the playing time of the file at its native rate.
func (i Info) Duration() time.Duration {
	if i.Format.SampleRate <= 0 {
		return 0
	}

	return time.Duration(float64(i.Frames()) / i.Format.SampleRate * float64(time.Second))
}

// Registry holds codecs by lower case file extension, without the dot.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec
}

func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Codec)}
}

// Register binds codec to each extension, replacing earlier bindings.
func (r *Registry) Register(codec Codec, exts ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range exts {
		r.codecs[normalizeExt(ext)] = codec
	}
}

// Get returns the codec bound to ext.
func (r *Registry) Get(ext string) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.codecs[normalizeExt(ext)]
	return c, ok
}

// ForPath returns the codec for path's extension.
func (r *Registry) ForPath(path string) (Codec, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrNoExtension)
	}

	c, ok := r.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", path, ErrUnsupportedType, ext)
	}

	return c, nil
}

// Extensions lists the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.codecs))
	for ext := range r.codecs {
		exts = append(exts, ext)
	}
	slices.Sort(exts)

	return exts
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r := NewRegistry()
	r.Register(wav.Decoder{}, "wav", "wave")
	r.Register(aiff.Decoder{}, "aif", "aiff", "aifc")
	r.Register(mp3.Decoder{}, "mp3")
	r.Register(vorbis.Decoder{}, "ogg", "oga")

	return r
})

// Default returns the shared registry with every built-in codec.
func Default() *Registry {
	return defaultRegistry()
}
