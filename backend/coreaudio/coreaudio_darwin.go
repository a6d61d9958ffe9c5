// SPDX-License-Identifier: EPL-2.0

//go:build darwin && cgo

package coreaudio

/*
#cgo LDFLAGS: -framework AudioToolbox -framework CoreFoundation
#include <stdlib.h>
#include <string.h>
#include <AudioToolbox/AudioToolbox.h>

// A path that cannot become a URL leaves *out NULL with noErr.
static OSStatus ap_open_file(const char *path, AudioFileID *out) {
	*out = NULL;
	CFURLRef url = CFURLCreateFromFileSystemRepresentation(NULL, (const UInt8 *)path, (CFIndex)strlen(path), false);
	if (url == NULL) {
		return noErr;
	}
	OSStatus st = AudioFileOpenURL(url, kAudioFileReadPermission, 0, out);
	CFRelease(url);
	return st;
}

static OSStatus ap_set_region(AudioUnit u, Float64 sampleTime, UInt64 hostTime, Float64 rate, UInt32 flags,
                              AudioFileID f, UInt32 loops, SInt64 start, UInt32 frames) {
	ScheduledAudioFileRegion r;
	memset(&r, 0, sizeof r);
	r.mTimeStamp.mSampleTime = sampleTime;
	r.mTimeStamp.mHostTime = hostTime;
	r.mTimeStamp.mRateScalar = rate;
	r.mTimeStamp.mFlags = flags;
	r.mAudioFile = f;
	r.mLoopCount = loops;
	r.mStartFrame = start;
	r.mFramesToPlay = frames;
	return AudioUnitSetProperty(u, kAudioUnitProperty_ScheduledFileRegion, kAudioUnitScope_Global, 0, &r, sizeof r);
}

static OSStatus ap_set_start(AudioUnit u, Float64 sampleTime, UInt64 hostTime, Float64 rate, UInt32 flags) {
	AudioTimeStamp ts;
	memset(&ts, 0, sizeof ts);
	ts.mSampleTime = sampleTime;
	ts.mHostTime = hostTime;
	ts.mRateScalar = rate;
	ts.mFlags = flags;
	return AudioUnitSetProperty(u, kAudioUnitProperty_ScheduleStartTimeStamp, kAudioUnitScope_Global, 0, &ts, sizeof ts);
}

static OSStatus ap_get_start(AudioUnit u, Float64 *sampleTime, UInt64 *hostTime, Float64 *rate, UInt32 *flags) {
	AudioTimeStamp ts;
	UInt32 size = sizeof ts;
	OSStatus st = AudioUnitGetProperty(u, kAudioUnitProperty_ScheduleStartTimeStamp, kAudioUnitScope_Global, 0, &ts, &size);
	if (st != noErr) {
		return st;
	}
	*sampleTime = ts.mSampleTime;
	*hostTime = ts.mHostTime;
	*rate = ts.mRateScalar;
	*flags = ts.mFlags;
	return noErr;
}
*/
import "C"

import (
	"log/slog"
	"sync"
	"unsafe"

	"github.com/ik5/auplay/native"
	"github.com/ik5/auplay/status"
)

// backend maps native handles to AudioToolbox objects. AUNode values are
// used as node ids directly.
type backend struct {
	log *slog.Logger

	mu      sync.Mutex
	nextID  uint64
	files   map[native.FileID]C.AudioFileID
	graphs  map[native.GraphID]C.AUGraph
	units   map[native.UnitID]C.AudioUnit
	unitIDs map[C.AudioUnit]native.UnitID
	graphOf map[native.UnitID]native.GraphID
}

func New(log *slog.Logger) (native.Backend, error) {
	if log == nil {
		log = slog.Default()
	}

	return &backend{
		log:     log.With("backend", "coreaudio"),
		files:   make(map[native.FileID]C.AudioFileID),
		graphs:  make(map[native.GraphID]C.AUGraph),
		units:   make(map[native.UnitID]C.AudioUnit),
		unitIDs: make(map[C.AudioUnit]native.UnitID),
		graphOf: make(map[native.UnitID]native.GraphID),
	}, nil
}

// id hands out the next handle. Callers hold b.mu.
func (b *backend) id() uint64 {
	b.nextID++
	return b.nextID
}

func code(st C.OSStatus) status.Code { return status.Code(st) }

func (b *backend) OpenFile(path string) (native.FileID, status.Code) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	var f C.AudioFileID
	if st := C.ap_open_file(cpath, &f); st != 0 {
		return 0, code(st)
	}
	if f == nil {
		return 0, status.OK
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := native.FileID(b.id())
	b.files[id] = f

	return id, status.OK
}

func (b *backend) CloseFile(id native.FileID) status.Code {
	b.mu.Lock()
	f, ok := b.files[id]
	delete(b.files, id)
	b.mu.Unlock()

	if !ok {
		return status.CodeNotOpen
	}

	return code(C.AudioFileClose(f))
}

func (b *backend) file(id native.FileID) (C.AudioFileID, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, ok := b.files[id]
	return f, ok
}

func (b *backend) FileProperty(id native.FileID, prop native.FilePropertyID) ([]byte, status.Code) {
	f, ok := b.file(id)
	if !ok {
		return nil, status.CodeNotOpen
	}

	var size, writable C.UInt32
	if st := C.AudioFileGetPropertyInfo(f, C.AudioFilePropertyID(prop), &size, &writable); st != 0 {
		return nil, code(st)
	}
	if size == 0 {
		return nil, status.OK
	}

	buf := C.malloc(C.size_t(size))
	defer C.free(buf)

	if st := C.AudioFileGetProperty(f, C.AudioFilePropertyID(prop), &size, buf); st != 0 {
		return nil, code(st)
	}

	return C.GoBytes(buf, C.int(size)), status.OK
}

func (b *backend) graph(id native.GraphID) (C.AUGraph, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	g, ok := b.graphs[id]
	return g, ok
}

func (b *backend) NewGraph() (native.GraphID, status.Code) {
	var g C.AUGraph
	st := C.NewAUGraph(&g)
	if g == nil {
		return 0, code(st)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := native.GraphID(b.id())
	b.graphs[id] = g

	return id, code(st)
}

func (b *backend) AddNode(id native.GraphID, desc native.ComponentDescription) (native.NodeID, status.Code) {
	g, ok := b.graph(id)
	if !ok {
		return 0, status.CodeParam
	}

	cd := C.AudioComponentDescription{
		componentType:         C.OSType(desc.Type),
		componentSubType:      C.OSType(desc.SubType),
		componentManufacturer: C.OSType(desc.Manufacturer),
		componentFlags:        C.UInt32(desc.Flags),
		componentFlagsMask:    C.UInt32(desc.FlagsMask),
	}

	var node C.AUNode
	st := C.AUGraphAddNode(g, &cd, &node)

	return native.NodeID(node), code(st)
}

// graphCall runs one of the AUGraph lifecycle calls.
func (b *backend) graphCall(id native.GraphID, call func(C.AUGraph) C.OSStatus) status.Code {
	g, ok := b.graph(id)
	if !ok {
		return status.CodeParam
	}

	return code(call(g))
}

func (b *backend) OpenGraph(id native.GraphID) status.Code {
	return b.graphCall(id, func(g C.AUGraph) C.OSStatus { return C.AUGraphOpen(g) })
}

func (b *backend) NodeUnit(id native.GraphID, node native.NodeID) (native.UnitID, status.Code) {
	g, ok := b.graph(id)
	if !ok {
		return 0, status.CodeParam
	}

	var u C.AudioUnit
	if st := C.AUGraphNodeInfo(g, C.AUNode(node), nil, &u); st != 0 {
		return 0, code(st)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if uid, ok := b.unitIDs[u]; ok {
		return uid, status.OK
	}

	uid := native.UnitID(b.id())
	b.units[uid] = u
	b.unitIDs[u] = uid
	b.graphOf[uid] = id

	return uid, status.OK
}

func (b *backend) ConnectNodes(id native.GraphID, src native.NodeID, srcOutput uint32, dst native.NodeID, dstInput uint32) status.Code {
	return b.graphCall(id, func(g C.AUGraph) C.OSStatus {
		return C.AUGraphConnectNodeInput(g, C.AUNode(src), C.UInt32(srcOutput), C.AUNode(dst), C.UInt32(dstInput))
	})
}

func (b *backend) InitializeGraph(id native.GraphID) status.Code {
	return b.graphCall(id, func(g C.AUGraph) C.OSStatus { return C.AUGraphInitialize(g) })
}

func (b *backend) StartGraph(id native.GraphID) status.Code {
	return b.graphCall(id, func(g C.AUGraph) C.OSStatus { return C.AUGraphStart(g) })
}

func (b *backend) StopGraph(id native.GraphID) status.Code {
	return b.graphCall(id, func(g C.AUGraph) C.OSStatus { return C.AUGraphStop(g) })
}

func (b *backend) UninitializeGraph(id native.GraphID) status.Code {
	return b.graphCall(id, func(g C.AUGraph) C.OSStatus { return C.AUGraphUninitialize(g) })
}

// CloseGraph closes and disposes the graph, forgetting its units.
func (b *backend) CloseGraph(id native.GraphID) status.Code {
	b.mu.Lock()
	g, ok := b.graphs[id]
	delete(b.graphs, id)
	for uid, gid := range b.graphOf {
		if gid == id {
			delete(b.unitIDs, b.units[uid])
			delete(b.units, uid)
			delete(b.graphOf, uid)
		}
	}
	b.mu.Unlock()

	if !ok {
		return status.CodeParam
	}

	st := C.AUGraphClose(g)
	if dst := C.DisposeAUGraph(g); st == 0 {
		st = dst
	}
	if st != 0 {
		b.log.Error("closing graph failed", "graph", uint64(id), "status", code(st).String())
	}

	return code(st)
}

func (b *backend) unit(id native.UnitID) (C.AudioUnit, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.units[id]
	return u, ok
}

func (b *backend) UnitProperty(id native.UnitID, prop native.PropertyID, scope native.Scope, elem native.Element) ([]byte, status.Code) {
	u, ok := b.unit(id)
	if !ok {
		return nil, status.CodeParam
	}

	switch prop {
	case native.PropertyScheduleStartTimeStamp:
		var (
			ts               native.TimeStamp
			sampleTime, rate C.Float64
			hostTime         C.UInt64
			flags            C.UInt32
		)
		if st := C.ap_get_start(u, &sampleTime, &hostTime, &rate, &flags); st != 0 {
			return nil, code(st)
		}
		ts.SampleTime, ts.HostTime = float64(sampleTime), uint64(hostTime)
		ts.RateScalar, ts.Flags = float64(rate), native.TimeStampFlags(flags)
		return native.EncodeTimeStamp(ts), status.OK

	case native.PropertyScheduledFileIDs, native.PropertyScheduledFileRegion:
		return nil, status.CodeInvalidProperty
	}

	var size C.UInt32
	var writable C.Boolean
	st := C.AudioUnitGetPropertyInfo(u, C.AudioUnitPropertyID(prop), C.AudioUnitScope(scope), C.AudioUnitElement(elem), &size, &writable)
	if st != 0 {
		return nil, code(st)
	}
	if size == 0 {
		return nil, status.OK
	}

	buf := C.malloc(C.size_t(size))
	defer C.free(buf)

	st = C.AudioUnitGetProperty(u, C.AudioUnitPropertyID(prop), C.AudioUnitScope(scope), C.AudioUnitElement(elem), buf, &size)
	if st != 0 {
		return nil, code(st)
	}

	return C.GoBytes(buf, C.int(size)), status.OK
}

func (b *backend) SetUnitProperty(id native.UnitID, prop native.PropertyID, scope native.Scope, elem native.Element, data []byte) status.Code {
	u, ok := b.unit(id)
	if !ok {
		return status.CodeParam
	}

	switch prop {
	case native.PropertyScheduledFileIDs:
		return b.setFileIDs(u, data)

	case native.PropertyScheduledFileRegion:
		r, c := native.DecodeRegion(data)
		if c != status.OK {
			return c
		}
		f, ok := b.file(r.File)
		if !ok {
			return status.CodeInvalidFile
		}
		return code(C.ap_set_region(u, C.Float64(r.TimeStamp.SampleTime), C.UInt64(r.TimeStamp.HostTime),
			C.Float64(r.TimeStamp.RateScalar), C.UInt32(r.TimeStamp.Flags),
			f, C.UInt32(r.LoopCount), C.SInt64(r.StartFrame), C.UInt32(r.FramesToPlay)))

	case native.PropertyScheduleStartTimeStamp:
		ts, c := native.DecodeTimeStamp(data)
		if c != status.OK {
			return c
		}
		return code(C.ap_set_start(u, C.Float64(ts.SampleTime), C.UInt64(ts.HostTime),
			C.Float64(ts.RateScalar), C.UInt32(ts.Flags)))
	}

	// Stream formats and prime frames share the AudioToolbox layout.
	var ptr unsafe.Pointer
	if len(data) > 0 {
		cdata := C.CBytes(data)
		defer C.free(cdata)
		ptr = cdata
	}

	return code(C.AudioUnitSetProperty(u, C.AudioUnitPropertyID(prop), C.AudioUnitScope(scope),
		C.AudioUnitElement(elem), ptr, C.UInt32(len(data))))
}

func (b *backend) setFileIDs(u C.AudioUnit, data []byte) status.Code {
	ids, c := native.DecodeFileIDs(data)
	if c != status.OK {
		return c
	}
	if len(ids) == 0 {
		return code(C.AudioUnitSetProperty(u, C.AudioUnitPropertyID(C.kAudioUnitProperty_ScheduledFileIDs), C.AudioUnitScope(C.kAudioUnitScope_Global), 0, nil, 0))
	}

	size := C.size_t(len(ids)) * C.size_t(unsafe.Sizeof(C.AudioFileID(nil)))
	arr := C.malloc(size)
	defer C.free(arr)

	files := unsafe.Slice((*C.AudioFileID)(arr), len(ids))
	for i, id := range ids {
		f, ok := b.file(id)
		if !ok {
			return status.CodeInvalidFile
		}
		files[i] = f
	}

	return code(C.AudioUnitSetProperty(u, C.AudioUnitPropertyID(C.kAudioUnitProperty_ScheduledFileIDs), C.AudioUnitScope(C.kAudioUnitScope_Global), 0, arr, C.UInt32(size)))
}
