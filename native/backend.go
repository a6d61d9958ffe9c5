// SPDX-License-Identifier: EPL-2.0

package native

import (
	"strconv"

	"github.com/ik5/auplay/format"
	"github.com/ik5/auplay/status"
)

// Opaque handles handed out by a Backend. Zero is never a valid handle.
type (
	FileID  uint64
	GraphID uint64
	NodeID  int32
	UnitID  uint64
)

// PropertyID selects a unit property.
type PropertyID uint32

// Unit properties used by the playback core.
const (
	PropertyStreamFormat           PropertyID = 8
	PropertyScheduledFileIDs       PropertyID = 3310
	PropertyScheduledFileRegion    PropertyID = 3311
	PropertyScheduledFilePrime     PropertyID = 3312
	PropertyScheduleStartTimeStamp PropertyID = 3316
)

// FilePropertyID selects a file property.
type FilePropertyID format.FourCC

// File properties used by the playback core.
var (
	FilePropertyDataFormat           = FilePropertyID(format.MustFourCC("dfmt"))
	FilePropertyAudioDataPacketCount = FilePropertyID(format.MustFourCC("pcnt"))
)

func (p FilePropertyID) String() string { return format.FourCC(p).String() }

// Scope selects which side of a unit a property applies to.
type Scope uint32

const (
	ScopeGlobal Scope = 0
	ScopeInput  Scope = 1
	ScopeOutput Scope = 2
)

func (s Scope) String() string {
	switch s {
	case ScopeGlobal:
		return "global"
	case ScopeInput:
		return "input"
	case ScopeOutput:
		return "output"
	default:
		return "scope(" + strconv.FormatUint(uint64(s), 10) + ")"
	}
}

// Element is the bus index within a scope.
type Element uint32

// ComponentDescription selects a concrete unit from the host's registry.
// Flags and FlagsMask are reserved and zero in practice.
type ComponentDescription struct {
	Type         format.FourCC
	SubType      format.FourCC
	Manufacturer format.FourCC
	Flags        uint32
	FlagsMask    uint32
}

func (d ComponentDescription) String() string {
	return d.Type.String() + "/" + d.SubType.String() + "/" + d.Manufacturer.String()
}

// Component identifiers understood by every Backend in this module.
var (
	TypeOutput    = format.MustFourCC("auou")
	TypeGenerator = format.MustFourCC("augn")

	SubTypeDefaultOutput   = format.MustFourCC("def ")
	SubTypeHALOutput       = format.MustFourCC("ahal")
	SubTypeGenericOutput   = format.MustFourCC("genr")
	SubTypeAudioFilePlayer = format.MustFourCC("afpl")

	ManufacturerApple = format.MustFourCC("appl")
)

// DefaultOutput describes the system default output sink.
func DefaultOutput() ComponentDescription {
	return ComponentDescription{Type: TypeOutput, SubType: SubTypeDefaultOutput, Manufacturer: ManufacturerApple}
}

// FilePlayer describes the file reading generator.
func FilePlayer() ComponentDescription {
	return ComponentDescription{Type: TypeGenerator, SubType: SubTypeAudioFilePlayer, Manufacturer: ManufacturerApple}
}

// Backend is the capability surface of a native audio host.
//
// OpenFile opens path read-only. A zero FileID together with status.OK
// means the host produced no handle at all, for example because the path
// could not be turned into a URL.
//
// CloseGraph closes the graph and releases it; the GraphID is invalid
// afterwards. NewGraph may return a non-zero GraphID alongside a failure
// when the host allocated something before failing; the caller must close it.
type Backend interface {
	OpenFile(path string) (FileID, status.Code)
	CloseFile(file FileID) status.Code
	FileProperty(file FileID, prop FilePropertyID) ([]byte, status.Code)

	NewGraph() (GraphID, status.Code)
	AddNode(graph GraphID, desc ComponentDescription) (NodeID, status.Code)
	OpenGraph(graph GraphID) status.Code
	NodeUnit(graph GraphID, node NodeID) (UnitID, status.Code)
	ConnectNodes(graph GraphID, src NodeID, srcOutput uint32, dst NodeID, dstInput uint32) status.Code
	InitializeGraph(graph GraphID) status.Code
	StartGraph(graph GraphID) status.Code
	StopGraph(graph GraphID) status.Code
	UninitializeGraph(graph GraphID) status.Code
	CloseGraph(graph GraphID) status.Code

	UnitProperty(unit UnitID, prop PropertyID, scope Scope, elem Element) ([]byte, status.Code)
	SetUnitProperty(unit UnitID, prop PropertyID, scope Scope, elem Element, data []byte) status.Code
}
