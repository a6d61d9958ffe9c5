// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"log/slog"
	"sync"

	"github.com/ik5/auplay/format"
	"github.com/ik5/auplay/formats"
	"github.com/ik5/auplay/native"
	"github.com/ik5/auplay/status"
)

// blockFrames is the number of frames rendered per pull.
const blockFrames = 1024

// Backend is a native.Backend that renders in process.
type Backend struct {
	registry *formats.Registry
	log      *slog.Logger
	sinks    map[format.FourCC]SinkFactory

	mu     sync.Mutex
	nextID uint64
	files  map[native.FileID]*file
	graphs map[native.GraphID]*graph
	units  map[native.UnitID]*unit
}

var _ native.Backend = (*Backend)(nil)

// Option customizes a Backend.
type Option func(*Backend)

// WithRegistry decodes files with r instead of formats.Default().
func WithRegistry(r *formats.Registry) Option {
	return func(b *Backend) {
		if r != nil {
			b.registry = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.log = l
		}
	}
}

// WithRenderFile makes generic output units write a WAV file at path.
func WithRenderFile(path string) Option {
	return WithSink(native.SubTypeGenericOutput, RenderSinkFactory(path))
}

// WithSink serves output units of subtype with factory.
func WithSink(subtype format.FourCC, factory SinkFactory) Option {
	return func(b *Backend) {
		if factory != nil {
			b.sinks[subtype] = factory
		}
	}
}

func New(opts ...Option) *Backend {
	b := &Backend{
		registry: formats.Default(),
		log:      slog.Default(),
		sinks: map[format.FourCC]SinkFactory{
			native.SubTypeDefaultOutput: newOtoSink,
			native.SubTypeHALOutput:     newMalgoSink,
			native.SubTypeGenericOutput: RenderSinkFactory(""),
		},
		files:  make(map[native.FileID]*file),
		graphs: make(map[native.GraphID]*graph),
		units:  make(map[native.UnitID]*unit),
	}

	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.With("backend", "soft")

	return b
}

// id hands out the next handle. Handles are unique across kinds.
// Callers hold b.mu.
func (b *Backend) id() uint64 {
	b.nextID++
	return b.nextID
}

type file struct {
	path string
	info formats.Info
}

func (b *Backend) OpenFile(path string) (native.FileID, status.Code) {
	if path == "" {
		return 0, status.CodeParam
	}

	// Probing reads the file, so it runs outside the lock.
	info, err := b.registry.Probe(path)
	if err != nil {
		b.log.Debug("open file failed", "path", path, "error", err)
		return 0, fileCode(err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := native.FileID(b.id())
	b.files[id] = &file{path: path, info: info}

	return id, status.OK
}

func (b *Backend) CloseFile(id native.FileID) status.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.files[id]; !ok {
		return status.CodeNotOpen
	}
	delete(b.files, id)

	return status.OK
}

func (b *Backend) FileProperty(id native.FileID, prop native.FilePropertyID) ([]byte, status.Code) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, ok := b.files[id]
	if !ok {
		return nil, status.CodeNotOpen
	}

	switch prop {
	case native.FilePropertyDataFormat:
		return native.EncodeStreamFormat(f.info.Format), status.OK
	case native.FilePropertyAudioDataPacketCount:
		return native.EncodeUint64(f.info.Packets), status.OK
	default:
		return nil, status.CodeUnsupportedProperty
	}
}

func (b *Backend) UnitProperty(id native.UnitID, prop native.PropertyID, scope native.Scope, elem native.Element) ([]byte, status.Code) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.units[id]
	if !ok {
		return nil, status.CodeParam
	}

	return u.property(prop, scope, elem)
}

func (b *Backend) SetUnitProperty(id native.UnitID, prop native.PropertyID, scope native.Scope, elem native.Element, data []byte) status.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.units[id]
	if !ok {
		return status.CodeParam
	}

	return u.setProperty(b, prop, scope, elem, data)
}
