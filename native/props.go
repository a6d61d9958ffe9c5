// SPDX-License-Identifier: EPL-2.0

package native

import (
	"bytes"
	"encoding/binary"

	"github.com/ik5/auplay/format"
	"github.com/ik5/auplay/status"
)

// NextRenderCycle as a start sample time asks a generator to begin on the
// next render cycle.
const NextRenderCycle float64 = -1

// TimeStampFlags marks which TimeStamp fields are valid.
type TimeStampFlags uint32

const (
	TimeStampSampleTimeValid TimeStampFlags = 1 << 0
	TimeStampHostTimeValid   TimeStampFlags = 1 << 1
	TimeStampRateScalarValid TimeStampFlags = 1 << 2
)

// TimeStamp is a point in a unit's render timeline.
type TimeStamp struct {
	SampleTime float64
	HostTime   uint64
	RateScalar float64
	Flags      TimeStampFlags
}

// SampleTimeStamp returns a timestamp with only the sample time valid.
func SampleTimeStamp(sampleTime float64) TimeStamp {
	return TimeStamp{SampleTime: sampleTime, Flags: TimeStampSampleTimeValid}
}

// ScheduledRegion is the slice of a file a generator renders.
// The TimeStamp is relative to the generator's start time.
type ScheduledRegion struct {
	TimeStamp    TimeStamp
	File         FileID
	LoopCount    uint32
	StartFrame   int64
	FramesToPlay uint32
}

type wireStreamFormat struct {
	SampleRate       float64
	FormatID         uint32
	FormatFlags      uint32
	BytesPerPacket   uint32
	FramesPerPacket  uint32
	BytesPerFrame    uint32
	ChannelsPerFrame uint32
	BitsPerChannel   uint32
	Reserved         uint32
}

type wireTimeStamp struct {
	SampleTime float64
	HostTime   uint64
	RateScalar float64
	Flags      uint32
	Reserved   uint32
}

type wireRegion struct {
	TimeStamp    wireTimeStamp
	File         uint64
	LoopCount    uint32
	FramesToPlay uint32
	StartFrame   int64
}

// Encoded sizes in bytes.
var (
	StreamFormatSize = binary.Size(wireStreamFormat{})
	TimeStampSize    = binary.Size(wireTimeStamp{})
	RegionSize       = binary.Size(wireRegion{})
)

func encode(v any) []byte {
	var buf bytes.Buffer
	// Writes of fixed-size values into a bytes.Buffer cannot fail.
	_ = binary.Write(&buf, binary.LittleEndian, v)
	return buf.Bytes()
}

func decode(data []byte, v any) status.Code {
	if len(data) < binary.Size(v) {
		return status.CodeBadPropertySize
	}

	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, v); err != nil {
		return status.CodeBadPropertySize
	}

	return status.OK
}

// EncodeStreamFormat lays f out as an AudioStreamBasicDescription.
func EncodeStreamFormat(f format.StreamFormat) []byte {
	return encode(&wireStreamFormat{
		SampleRate:       f.SampleRate,
		FormatID:         uint32(f.FormatID),
		FormatFlags:      uint32(f.FormatFlags),
		BytesPerPacket:   f.BytesPerPacket,
		FramesPerPacket:  f.FramesPerPacket,
		BytesPerFrame:    f.BytesPerFrame,
		ChannelsPerFrame: f.ChannelsPerFrame,
		BitsPerChannel:   f.BitsPerChannel,
	})
}

// DecodeStreamFormat parses the layout written by EncodeStreamFormat.
func DecodeStreamFormat(data []byte) (format.StreamFormat, status.Code) {
	var w wireStreamFormat
	if code := decode(data, &w); code != status.OK {
		return format.StreamFormat{}, code
	}

	return format.StreamFormat{
		SampleRate:       w.SampleRate,
		FormatID:         format.FourCC(w.FormatID),
		FormatFlags:      format.Flags(w.FormatFlags),
		BytesPerPacket:   w.BytesPerPacket,
		FramesPerPacket:  w.FramesPerPacket,
		BytesPerFrame:    w.BytesPerFrame,
		ChannelsPerFrame: w.ChannelsPerFrame,
		BitsPerChannel:   w.BitsPerChannel,
	}, status.OK
}

func toWireTimeStamp(ts TimeStamp) wireTimeStamp {
	return wireTimeStamp{
		SampleTime: ts.SampleTime,
		HostTime:   ts.HostTime,
		RateScalar: ts.RateScalar,
		Flags:      uint32(ts.Flags),
	}
}

func fromWireTimeStamp(w wireTimeStamp) TimeStamp {
	return TimeStamp{
		SampleTime: w.SampleTime,
		HostTime:   w.HostTime,
		RateScalar: w.RateScalar,
		Flags:      TimeStampFlags(w.Flags),
	}
}

func EncodeTimeStamp(ts TimeStamp) []byte {
	w := toWireTimeStamp(ts)
	return encode(&w)
}

func DecodeTimeStamp(data []byte) (TimeStamp, status.Code) {
	var w wireTimeStamp
	if code := decode(data, &w); code != status.OK {
		return TimeStamp{}, code
	}

	return fromWireTimeStamp(w), status.OK
}

func EncodeRegion(r ScheduledRegion) []byte {
	return encode(&wireRegion{
		TimeStamp:    toWireTimeStamp(r.TimeStamp),
		File:         uint64(r.File),
		LoopCount:    r.LoopCount,
		FramesToPlay: r.FramesToPlay,
		StartFrame:   r.StartFrame,
	})
}

func DecodeRegion(data []byte) (ScheduledRegion, status.Code) {
	var w wireRegion
	if code := decode(data, &w); code != status.OK {
		return ScheduledRegion{}, code
	}

	return ScheduledRegion{
		TimeStamp:    fromWireTimeStamp(w.TimeStamp),
		File:         FileID(w.File),
		LoopCount:    w.LoopCount,
		StartFrame:   w.StartFrame,
		FramesToPlay: w.FramesToPlay,
	}, status.OK
}

// EncodeFileIDs lays out a list of file handles, 8 bytes each.
func EncodeFileIDs(ids ...FileID) []byte {
	raw := make([]uint64, len(ids))
	for i, id := range ids {
		raw[i] = uint64(id)
	}

	return encode(raw)
}

// DecodeFileIDs parses every whole handle in data.
func DecodeFileIDs(data []byte) ([]FileID, status.Code) {
	if len(data)%8 != 0 {
		return nil, status.CodeBadPropertySize
	}

	ids := make([]FileID, len(data)/8)
	for i := range ids {
		ids[i] = FileID(binary.LittleEndian.Uint64(data[i*8:]))
	}

	return ids, status.OK
}

func EncodeUint32(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}

func DecodeUint32(data []byte) (uint32, status.Code) {
	if len(data) < 4 {
		return 0, status.CodeBadPropertySize
	}

	return binary.LittleEndian.Uint32(data), status.OK
}

func EncodeUint64(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}

func DecodeUint64(data []byte) (uint64, status.Code) {
	if len(data) < 8 {
		return 0, status.CodeBadPropertySize
	}

	return binary.LittleEndian.Uint64(data), status.OK
}
