// SPDX-License-Identifier: EPL-2.0

// Package nativetest provides a recording native.Backend for tests.
//
// Backend records every call in order, serves file properties from an
// in-memory table, stores unit properties, and can be told to fail any
// operation with a chosen status:
//
//	b := nativetest.New()
//	b.AddFile("/a.wav", nativetest.StereoPCM(44100), 44100)
//	b.FailOn(nativetest.OpConnectNodes, status.CodeInvalidConnection)
package nativetest

import (
	"fmt"
	"slices"
	"sync"

	"github.com/ik5/auplay/format"
	"github.com/ik5/auplay/native"
	"github.com/ik5/auplay/status"
)

// Operation names as recorded in Calls.
const (
	OpOpenFile          = "OpenFile"
	OpCloseFile         = "CloseFile"
	OpFileProperty      = "FileProperty"
	OpNewGraph          = "NewGraph"
	OpAddNode           = "AddNode"
	OpOpenGraph         = "OpenGraph"
	OpNodeUnit          = "NodeUnit"
	OpConnectNodes      = "ConnectNodes"
	OpInitializeGraph   = "InitializeGraph"
	OpStartGraph        = "StartGraph"
	OpStopGraph         = "StopGraph"
	OpUninitializeGraph = "UninitializeGraph"
	OpCloseGraph        = "CloseGraph"
	OpUnitProperty      = "UnitProperty"
	OpSetUnitProperty   = "SetUnitProperty"
)

// PropertyOp names a property call for a single property id, so a test can
// fail one property without failing the rest.
func PropertyOp(op string, prop native.PropertyID) string {
	return fmt.Sprintf("%s:%d", op, prop)
}

// FilePropertyOp is PropertyOp for file properties.
func FilePropertyOp(prop native.FilePropertyID) string {
	return OpFileProperty + ":" + prop.String()
}

// FileSpec is what the fake reports for an openable path.
type FileSpec struct {
	Format  format.StreamFormat
	Packets uint64
}

// PropertySet records one SetUnitProperty call.
type PropertySet struct {
	Unit  native.UnitID
	Prop  native.PropertyID
	Scope native.Scope
	Elem  native.Element
	Data  []byte
}

// Connection records one ConnectNodes call.
type Connection struct {
	Src       native.NodeID
	SrcOutput uint32
	Dst       native.NodeID
	DstInput  uint32
}

type propKey struct {
	unit  native.UnitID
	prop  native.PropertyID
	scope native.Scope
	elem  native.Element
}

// Backend is a recording native.Backend. The zero value is not usable; call New.
type Backend struct {
	mu sync.Mutex

	calls []string
	fail  map[string]status.Code
	files map[string]FileSpec

	// NullFileHandle makes OpenFile return a zero handle with status.OK.
	NullFileHandle bool
	// PartialGraph makes a failing NewGraph still hand out a handle.
	PartialGraph bool
	// DefaultUnitFormat is what a freshly resolved unit reports for its
	// stream format on every scope.
	DefaultUnitFormat format.StreamFormat

	openFiles map[native.FileID]FileSpec
	nodes     map[native.NodeID]native.ComponentDescription
	props     map[propKey][]byte
	sets      []PropertySet
	conns     []Connection

	nextFile  native.FileID
	nextGraph native.GraphID
	nextNode  native.NodeID
}

var _ native.Backend = (*Backend)(nil)

// New returns a Backend whose units default to non-interleaved float stereo
// at 44.1kHz.
func New() *Backend {
	return &Backend{
		fail:              make(map[string]status.Code),
		files:             make(map[string]FileSpec),
		DefaultUnitFormat: format.CanonicalPCM(44100, 2, false),
		openFiles:         make(map[native.FileID]FileSpec),
		nodes:             make(map[native.NodeID]native.ComponentDescription),
		props:             make(map[propKey][]byte),
	}
}

// StereoPCM is 16-bit interleaved stereo linear PCM at rate.
func StereoPCM(rate float64) format.StreamFormat {
	return format.StreamFormat{
		SampleRate:       rate,
		FormatID:         format.LinearPCM,
		FormatFlags:      format.FlagIsSignedInteger | format.FlagIsPacked,
		BytesPerPacket:   4,
		FramesPerPacket:  1,
		BytesPerFrame:    4,
		ChannelsPerFrame: 2,
		BitsPerChannel:   16,
	}
}

// AddFile makes path openable.
func (b *Backend) AddFile(path string, f format.StreamFormat, packets uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.files[path] = FileSpec{Format: f, Packets: packets}
}

// FailOn makes op (or a PropertyOp) return code from now on.
func (b *Backend) FailOn(op string, code status.Code) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.fail[op] = code
}

// Calls returns the recorded operation names in call order.
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return slices.Clone(b.calls)
}

// Count returns how many times op was called.
func (b *Backend) Count(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, c := range b.calls {
		if c == op {
			n++
		}
	}

	return n
}

// Sets returns every SetUnitProperty call in order.
func (b *Backend) Sets() []PropertySet {
	b.mu.Lock()
	defer b.mu.Unlock()

	return slices.Clone(b.sets)
}

// Connections returns every successful ConnectNodes call.
func (b *Backend) Connections() []Connection {
	b.mu.Lock()
	defer b.mu.Unlock()

	return slices.Clone(b.conns)
}

// Property returns the stored value of a unit property.
func (b *Backend) Property(unit native.UnitID, prop native.PropertyID, scope native.Scope, elem native.Element) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	v, ok := b.props[propKey{unit, prop, scope, elem}]
	return v, ok
}

// OpenFiles is the number of file handles not yet closed.
func (b *Backend) OpenFiles() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.openFiles)
}

// record notes the call and returns the programmed failure, if any.
// Callers hold b.mu.
func (b *Backend) record(op string, extra ...string) status.Code {
	b.calls = append(b.calls, op)

	for _, key := range extra {
		if code, ok := b.fail[key]; ok {
			return code
		}
	}

	return b.fail[op]
}

func (b *Backend) OpenFile(path string) (native.FileID, status.Code) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if code := b.record(OpOpenFile); code != status.OK {
		return 0, code
	}

	if b.NullFileHandle {
		return 0, status.OK
	}

	spec, ok := b.files[path]
	if !ok {
		return 0, status.CodeFileNotFound
	}

	b.nextFile++
	b.openFiles[b.nextFile] = spec

	return b.nextFile, status.OK
}

func (b *Backend) CloseFile(file native.FileID) status.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	if code := b.record(OpCloseFile); code != status.OK {
		return code
	}

	if _, ok := b.openFiles[file]; !ok {
		return status.CodeNotOpen
	}
	delete(b.openFiles, file)

	return status.OK
}

func (b *Backend) FileProperty(file native.FileID, prop native.FilePropertyID) ([]byte, status.Code) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if code := b.record(OpFileProperty, FilePropertyOp(prop)); code != status.OK {
		return nil, code
	}

	spec, ok := b.openFiles[file]
	if !ok {
		return nil, status.CodeNotOpen
	}

	switch prop {
	case native.FilePropertyDataFormat:
		return native.EncodeStreamFormat(spec.Format), status.OK
	case native.FilePropertyAudioDataPacketCount:
		return native.EncodeUint64(spec.Packets), status.OK
	default:
		return nil, status.CodeUnsupportedProperty
	}
}

func (b *Backend) NewGraph() (native.GraphID, status.Code) {
	b.mu.Lock()
	defer b.mu.Unlock()

	code := b.record(OpNewGraph)
	if code != status.OK && !b.PartialGraph {
		return 0, code
	}

	b.nextGraph++
	return b.nextGraph, code
}

func (b *Backend) AddNode(_ native.GraphID, desc native.ComponentDescription) (native.NodeID, status.Code) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if code := b.record(OpAddNode); code != status.OK {
		return 0, code
	}

	b.nextNode++
	b.nodes[b.nextNode] = desc

	return b.nextNode, status.OK
}

func (b *Backend) OpenGraph(native.GraphID) status.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.record(OpOpenGraph)
}

// NodeUnit hands out unit ids equal to 100 + node id.
func (b *Backend) NodeUnit(_ native.GraphID, node native.NodeID) (native.UnitID, status.Code) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if code := b.record(OpNodeUnit); code != status.OK {
		return 0, code
	}

	if _, ok := b.nodes[node]; !ok {
		return 0, status.CodeNodeNotFound
	}

	return native.UnitID(100 + int64(node)), status.OK
}

func (b *Backend) ConnectNodes(_ native.GraphID, src native.NodeID, srcOutput uint32, dst native.NodeID, dstInput uint32) status.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	if code := b.record(OpConnectNodes); code != status.OK {
		return code
	}

	b.conns = append(b.conns, Connection{src, srcOutput, dst, dstInput})

	return status.OK
}

func (b *Backend) InitializeGraph(native.GraphID) status.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.record(OpInitializeGraph)
}

func (b *Backend) StartGraph(native.GraphID) status.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.record(OpStartGraph)
}

func (b *Backend) StopGraph(native.GraphID) status.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.record(OpStopGraph)
}

func (b *Backend) UninitializeGraph(native.GraphID) status.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.record(OpUninitializeGraph)
}

func (b *Backend) CloseGraph(native.GraphID) status.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.record(OpCloseGraph)
}

func (b *Backend) UnitProperty(unit native.UnitID, prop native.PropertyID, scope native.Scope, elem native.Element) ([]byte, status.Code) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if code := b.record(OpUnitProperty, PropertyOp(OpUnitProperty, prop)); code != status.OK {
		return nil, code
	}

	if v, ok := b.props[propKey{unit, prop, scope, elem}]; ok {
		return slices.Clone(v), status.OK
	}

	if prop == native.PropertyStreamFormat {
		return native.EncodeStreamFormat(b.DefaultUnitFormat), status.OK
	}

	return nil, status.CodeInvalidProperty
}

func (b *Backend) SetUnitProperty(unit native.UnitID, prop native.PropertyID, scope native.Scope, elem native.Element, data []byte) status.Code {
	b.mu.Lock()
	defer b.mu.Unlock()

	if code := b.record(OpSetUnitProperty, PropertyOp(OpSetUnitProperty, prop)); code != status.OK {
		return code
	}

	v := slices.Clone(data)
	b.props[propKey{unit, prop, scope, elem}] = v
	b.sets = append(b.sets, PropertySet{Unit: unit, Prop: prop, Scope: scope, Elem: elem, Data: v})

	return status.OK
}
