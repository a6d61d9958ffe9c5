// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"cmp"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/ik5/auplay/audio"
	"github.com/ik5/auplay/format"
	"github.com/ik5/auplay/formats"
	"github.com/ik5/auplay/native"
	"github.com/ik5/auplay/status"
)

// defaultRate is the rate units start with before a format is set.
const defaultRate = 44100

// unit is an instantiated component. Exactly one of player and output is set.
type unit struct {
	id     native.UnitID
	desc   native.ComponentDescription
	player *filePlayer
	output *outputUnit
}

func (b *Backend) newUnit(desc native.ComponentDescription) (*unit, status.Code) {
	if desc.Manufacturer != native.ManufacturerApple {
		return nil, status.CodeInvalidAudioUnit
	}

	log := b.log.With("component", desc.String())

	switch desc.Type {
	case native.TypeGenerator:
		if desc.SubType != native.SubTypeAudioFilePlayer {
			return nil, status.CodeInvalidAudioUnit
		}
		return &unit{desc: desc, player: newFilePlayer(b.registry, log)}, status.OK

	case native.TypeOutput:
		factory, ok := b.sinks[desc.SubType]
		if !ok {
			log.Debug("no output", "error", ErrUnknownSink)
			return nil, status.CodeInvalidAudioUnit
		}
		return &unit{desc: desc, output: &outputUnit{
			factory: factory,
			log:     log,
			format:  format.CanonicalPCM(defaultRate, 2, false),
		}}, status.OK

	default:
		return nil, status.CodeInvalidAudioUnit
	}
}

func (u *unit) property(prop native.PropertyID, scope native.Scope, elem native.Element) ([]byte, status.Code) {
	if u.player != nil {
		return u.player.property(prop, scope, elem)
	}

	return u.output.property(prop, scope, elem)
}

// setProperty runs with the backend lock held, which is how it reads the
// open file table.
func (u *unit) setProperty(b *Backend, prop native.PropertyID, scope native.Scope, elem native.Element, data []byte) status.Code {
	if u.player != nil {
		return u.player.setProperty(b.files, prop, scope, elem, data)
	}

	return u.output.setProperty(prop, scope, elem, data)
}

func (u *unit) initialize() status.Code {
	if u.player != nil {
		u.player.setInitialized(true)
		return status.OK
	}

	return u.output.initialize()
}

func (u *unit) uninitialize() status.Code {
	if u.player != nil {
		u.player.setInitialized(false)
		return status.OK
	}

	return u.output.uninitialize()
}

// release drops anything the unit holds open.
func (u *unit) release() {
	if u.player != nil {
		u.player.reset()
	}
}

// checkFormat accepts float32 linear PCM, the only sample type units render.
func checkFormat(f format.StreamFormat) status.Code {
	if !f.IsLinearPCM() || f.FormatFlags&format.FlagIsFloat == 0 || f.BitsPerChannel != 32 {
		return status.CodeFormatNotSupported
	}
	if f.Validate() != nil {
		return status.CodeFormatNotSupported
	}

	return status.OK
}

func checkElement(scope, want native.Scope, elem native.Element) status.Code {
	if scope != want {
		return status.CodeInvalidScope
	}
	if elem != 0 {
		return status.CodeInvalidElement
	}

	return status.OK
}

type scheduledFile struct {
	path   string
	frames uint64
	rate   float64
}

// filePlayer is the file reading generator. It renders the regions it was
// given in its output format, one after another on a shared timeline.
//
// Property setters and render both hold mu. Render never takes the backend
// lock, so a sink may stop a graph while a pull is in flight.
type filePlayer struct {
	registry *formats.Registry
	log      *slog.Logger

	mu          sync.Mutex
	format      format.StreamFormat
	initialized bool
	files       []native.FileID
	scheduled   map[native.FileID]scheduledFile
	regions     []native.ScheduledRegion
	prime       uint32
	start       native.TimeStamp
	hasStart    bool

	pipeline  audio.Source
	pending   []float32
	exhausted bool // the pipeline reached its end
	done      bool
}

func newFilePlayer(registry *formats.Registry, log *slog.Logger) *filePlayer {
	return &filePlayer{
		registry:  registry,
		log:       log,
		format:    format.CanonicalPCM(defaultRate, 2, false),
		scheduled: make(map[native.FileID]scheduledFile),
	}
}

func (p *filePlayer) streamFormat() format.StreamFormat {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.format
}

func (p *filePlayer) setInitialized(v bool) {
	p.mu.Lock()
	p.initialized = v
	p.mu.Unlock()

	if !v {
		p.reset()
	}
}

func (p *filePlayer) property(prop native.PropertyID, scope native.Scope, elem native.Element) ([]byte, status.Code) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch prop {
	case native.PropertyStreamFormat:
		if code := checkElement(scope, native.ScopeOutput, elem); code != status.OK {
			return nil, code
		}
		return native.EncodeStreamFormat(p.format), status.OK

	case native.PropertyScheduledFileIDs:
		return native.EncodeFileIDs(p.files...), status.OK

	case native.PropertyScheduledFilePrime:
		return native.EncodeUint32(p.prime), status.OK

	case native.PropertyScheduleStartTimeStamp:
		if !p.hasStart {
			return nil, status.CodeInvalidPropertyValue
		}
		return native.EncodeTimeStamp(p.start), status.OK

	default:
		return nil, status.CodeInvalidProperty
	}
}

func (p *filePlayer) setProperty(open map[native.FileID]*file, prop native.PropertyID, scope native.Scope, elem native.Element, data []byte) status.Code {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch prop {
	case native.PropertyStreamFormat:
		if code := checkElement(scope, native.ScopeOutput, elem); code != status.OK {
			return code
		}
		if p.initialized {
			return status.CodeInitialized
		}

		sf, code := native.DecodeStreamFormat(data)
		if code != status.OK {
			return code
		}
		if code := checkFormat(sf); code != status.OK {
			return code
		}

		p.format = sf
		p.resetLocked()

	case native.PropertyScheduledFileIDs:
		ids, code := native.DecodeFileIDs(data)
		if code != status.OK {
			return code
		}

		scheduled := make(map[native.FileID]scheduledFile, len(ids))
		for _, id := range ids {
			f, ok := open[id]
			if !ok {
				return status.CodeInvalidFile
			}
			scheduled[id] = scheduledFile{path: f.path, frames: f.info.Frames(), rate: f.info.Format.SampleRate}
		}

		p.files, p.scheduled = ids, scheduled
		p.regions = slices.DeleteFunc(p.regions, func(r native.ScheduledRegion) bool {
			_, ok := scheduled[r.File]
			return !ok
		})
		p.resetLocked()

	case native.PropertyScheduledFileRegion:
		r, code := native.DecodeRegion(data)
		if code != status.OK {
			return code
		}
		if _, ok := p.scheduled[r.File]; !ok {
			return status.CodeInvalidFile
		}
		if r.TimeStamp.Flags&native.TimeStampSampleTimeValid == 0 {
			return status.CodeInvalidPropertyValue
		}

		p.regions = append(p.regions, r)
		p.resetLocked()

	case native.PropertyScheduledFilePrime:
		frames, code := native.DecodeUint32(data)
		if code != status.OK {
			return code
		}
		if len(p.regions) == 0 {
			return status.CodeFileNotSpecified
		}

		p.prime = frames
		return p.primeLocked()

	case native.PropertyScheduleStartTimeStamp:
		ts, code := native.DecodeTimeStamp(data)
		if code != status.OK {
			return code
		}
		if ts.Flags&native.TimeStampSampleTimeValid == 0 {
			return status.CodeInvalidPropertyValue
		}

		lead := p.leadFrames()
		p.start, p.hasStart = ts, true
		// Primed audio already holds the old leading silence.
		if p.leadFrames() != lead {
			p.resetLocked()
		}

	default:
		return status.CodeInvalidProperty
	}

	return status.OK
}

// primeLocked builds the pipeline and reads ahead so the first render does
// not wait on file I/O. Zero primes one block.
func (p *filePlayer) primeLocked() status.Code {
	p.resetLocked()

	if err := p.buildLocked(); err != nil {
		p.log.Error("prime failed", "error", err)
		return fileCode(err)
	}

	frames := int(p.prime)
	if frames == 0 {
		frames = blockFrames
	}

	buf := make([]float32, frames*p.pipeline.Channels())
	n, err := audio.ReadFull(p.pipeline, buf)
	p.pending = buf[:n]

	switch {
	case errors.Is(err, io.EOF):
		p.closePipelineLocked()
	case err != nil:
		p.log.Error("prime failed", "error", err)
		p.resetLocked()
		return status.CodeInvalidFileData
	}

	p.log.Debug("primed", "frames", n/int(p.format.ChannelsPerFrame))

	return status.OK
}

// buildLocked lays the regions out on the render timeline: leading silence
// for a positive start time, then each region in timestamp order with
// silence filling any gap before it.
func (p *filePlayer) buildLocked() error {
	rate := int(p.format.SampleRate)
	ch := int(p.format.ChannelsPerFrame)

	var (
		parts  []audio.Source
		cursor float64
	)

	closeAll := func() {
		for _, s := range parts {
			_ = s.Close()
		}
	}

	if lead := p.leadFrames(); lead > 0 {
		parts = append(parts, &silence{rate: rate, channels: ch, left: lead})
	}

	regions := slices.Clone(p.regions)
	slices.SortStableFunc(regions, func(a, b native.ScheduledRegion) int {
		return cmp.Compare(a.TimeStamp.SampleTime, b.TimeStamp.SampleTime)
	})

	for _, r := range regions {
		sf := p.scheduled[r.File]

		if gap := r.TimeStamp.SampleTime - cursor; gap >= 1 {
			parts = append(parts, &silence{rate: rate, channels: ch, left: uint64(gap)})
			cursor += float64(uint64(gap))
		}

		path := sf.path
		src, err := newRegionSource(func() (audio.Source, error) {
			return p.registry.Open(path)
		}, r.StartFrame, uint64(r.FramesToPlay), r.LoopCount)
		if err != nil {
			closeAll()
			return err
		}

		out, err := audio.Convert(src, rate, ch)
		if err != nil {
			_ = src.Close()
			closeAll()
			return err
		}
		parts = append(parts, out)

		cursor += float64(regionFrames(r, sf)) * float64(rate) / max(sf.rate, 1)
	}

	p.pipeline = &sequence{rate: rate, channels: ch, parts: parts}
	p.done = false

	return nil
}

// leadFrames is the silence rendered before the timeline starts. A start
// on the next render cycle has none.
func (p *filePlayer) leadFrames() uint64 {
	if !p.hasStart || p.start.SampleTime <= 0 {
		return 0
	}

	return uint64(p.start.SampleTime)
}

// regionFrames estimates how many file frames r covers.
func regionFrames(r native.ScheduledRegion, sf scheduledFile) uint64 {
	start := uint64(max(r.StartFrame, 0))
	if sf.frames <= start {
		return 0
	}

	pass := sf.frames - start
	return min(uint64(r.FramesToPlay), pass*(uint64(r.LoopCount)+1))
}

// render is the Pull an output unit drives.
func (p *filePlayer) render(dst []float32) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done {
		return 0, true
	}

	n := copy(dst, p.pending)
	p.pending = p.pending[n:]
	if n == len(dst) {
		return n, false
	}

	// pending is empty from here on.
	if p.pipeline == nil {
		if p.exhausted || len(p.regions) == 0 {
			p.done = true
			return n, true
		}
		if err := p.buildLocked(); err != nil {
			p.log.Error("render failed", "error", err)
			p.done = true
			return n, true
		}
	}

	m, err := audio.ReadFull(p.pipeline, dst[n:])
	n += m

	if err != nil {
		if !errors.Is(err, io.EOF) {
			p.log.Error("render failed", "error", err)
		}
		p.closePipelineLocked()
		p.done = true
		return n, true
	}

	return n, false
}

func (p *filePlayer) closePipelineLocked() {
	if p.pipeline == nil {
		return
	}

	if err := p.pipeline.Close(); err != nil {
		p.log.Warn("closing files failed", "error", err)
	}
	p.pipeline = nil
	p.exhausted = true
}

// resetLocked drops rendered state so the next render starts over.
func (p *filePlayer) resetLocked() {
	p.closePipelineLocked()
	p.pending = nil
	p.exhausted = false
	p.done = false
}

func (p *filePlayer) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.resetLocked()
}

// outputUnit hands what its input renders to a Sink.
type outputUnit struct {
	factory SinkFactory
	log     *slog.Logger
	format  format.StreamFormat
	input   *filePlayer
	sink    Sink
}

func (o *outputUnit) property(prop native.PropertyID, scope native.Scope, elem native.Element) ([]byte, status.Code) {
	if prop != native.PropertyStreamFormat {
		return nil, status.CodeInvalidProperty
	}
	if scope == native.ScopeGlobal {
		return nil, status.CodeInvalidScope
	}
	if elem != 0 {
		return nil, status.CodeInvalidElement
	}

	return native.EncodeStreamFormat(o.format), status.OK
}

func (o *outputUnit) setProperty(prop native.PropertyID, scope native.Scope, elem native.Element, data []byte) status.Code {
	if prop != native.PropertyStreamFormat {
		return status.CodeInvalidProperty
	}
	if code := checkElement(scope, native.ScopeInput, elem); code != status.OK {
		return code
	}
	if o.sink != nil {
		return status.CodeInitialized
	}

	sf, code := native.DecodeStreamFormat(data)
	if code != status.OK {
		return code
	}
	if code := checkFormat(sf); code != status.OK {
		return code
	}
	o.format = sf

	return status.OK
}

// initialize opens the sink in the connected generator's format.
func (o *outputUnit) initialize() status.Code {
	if o.sink != nil {
		return status.OK
	}

	if o.input != nil {
		o.format = o.input.streamFormat()
	}

	sink, err := o.factory(o.format, o.log)
	if err != nil {
		o.log.Error("opening output failed", "error", err)
		return status.CodeFailedInitialization
	}
	o.sink = sink

	return status.OK
}

func (o *outputUnit) start() error {
	pull := func([]float32) (int, bool) { return 0, true }
	if o.input != nil {
		pull = o.input.render
	}

	return o.sink.Start(pull)
}

func (o *outputUnit) stop() error {
	if o.sink == nil {
		return nil
	}

	return o.sink.Stop()
}

func (o *outputUnit) uninitialize() status.Code {
	if o.sink == nil {
		return status.OK
	}

	err := o.sink.Close()
	o.sink = nil
	if err != nil {
		o.log.Error("closing output failed", "error", err)
		return status.CodeOutputNodeErr
	}

	return status.OK
}
