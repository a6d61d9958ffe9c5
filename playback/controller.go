// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"fmt"
	"math"

	"github.com/ik5/auplay/format"
	"github.com/ik5/auplay/native"
	"github.com/ik5/auplay/source"
	"github.com/ik5/auplay/status"
)

// Controller writes scheduling properties on a file player unit.
type Controller struct {
	backend native.Backend
}

func NewController(b native.Backend) *Controller {
	return &Controller{backend: b}
}

// StreamFormat reads the stream format of a unit bus.
func (c *Controller) StreamFormat(unit native.UnitID, scope native.Scope, elem native.Element) (format.StreamFormat, error) {
	data, code := c.backend.UnitProperty(unit, native.PropertyStreamFormat, scope, elem)
	if err := status.Check("get stream format", code); err != nil {
		return format.StreamFormat{}, err
	}

	sf, code := native.DecodeStreamFormat(data)
	if err := status.Check("decode stream format", code); err != nil {
		return format.StreamFormat{}, err
	}

	return sf, nil
}

// SetStreamFormat writes the stream format of a unit bus.
func (c *Controller) SetStreamFormat(unit native.UnitID, scope native.Scope, elem native.Element, sf format.StreamFormat) error {
	code := c.backend.SetUnitProperty(unit, native.PropertyStreamFormat, scope, elem, native.EncodeStreamFormat(sf))
	return status.Check("set stream format", code)
}

// ConfigureChannelsAndRate makes the unit's format carry src's channel
// count and then src's sample rate. Each step starts from what the unit
// currently reports, so the unit keeps its own sample type and layout.
func (c *Controller) ConfigureChannelsAndRate(unit native.UnitID, scope native.Scope, elem native.Element, src format.StreamFormat) error {
	if src.ChannelsPerFrame == 0 {
		return ErrNoChannels
	}

	cur, err := c.StreamFormat(unit, scope, elem)
	if err != nil {
		return fmt.Errorf("channels: %w", err)
	}

	if err := c.SetStreamFormat(unit, scope, elem, cur.WithChannelCount(src.ChannelsPerFrame)); err != nil {
		return fmt.Errorf("channels: %w", err)
	}

	cur, err = c.StreamFormat(unit, scope, elem)
	if err != nil {
		return fmt.Errorf("sample rate: %w", err)
	}

	if err := c.SetStreamFormat(unit, scope, elem, cur.WithSampleRate(src.SampleRate)); err != nil {
		return fmt.Errorf("sample rate: %w", err)
	}

	return nil
}

// BindSource hands the file to the unit.
func (c *Controller) BindSource(unit native.UnitID, file native.FileID) error {
	code := c.backend.SetUnitProperty(unit, native.PropertyScheduledFileIDs, native.ScopeGlobal, 0, native.EncodeFileIDs(file))
	return status.Check("set scheduled file ids", code)
}

// ScheduleRegion schedules the whole file once, from frame zero, at the
// start of the unit's timeline.
func (c *Controller) ScheduleRegion(unit native.UnitID, file native.FileID, packets uint64, src format.StreamFormat) error {
	frames := source.Frames(packets, src)
	if frames > math.MaxUint32 {
		return fmt.Errorf("%w: %d frames", ErrRegionTooLong, frames)
	}

	region := native.ScheduledRegion{
		TimeStamp:    native.SampleTimeStamp(0),
		File:         file,
		LoopCount:    1,
		StartFrame:   0,
		FramesToPlay: uint32(frames),
	}

	code := c.backend.SetUnitProperty(unit, native.PropertyScheduledFileRegion, native.ScopeGlobal, 0, native.EncodeRegion(region))
	return status.Check("set scheduled file region", code)
}

// Prime asks the unit to pre-read frames before starting. Zero leaves the
// unit's default priming in place.
func (c *Controller) Prime(unit native.UnitID, frames uint32) error {
	code := c.backend.SetUnitProperty(unit, native.PropertyScheduledFilePrime, native.ScopeGlobal, 0, native.EncodeUint32(frames))
	return status.Check("set scheduled file prime", code)
}

// SetStartTimestamp sets the sample time playback begins at.
// native.NextRenderCycle starts on the next render cycle.
func (c *Controller) SetStartTimestamp(unit native.UnitID, sampleTime float64) error {
	code := c.backend.SetUnitProperty(unit, native.PropertyScheduleStartTimeStamp, native.ScopeGlobal, 0,
		native.EncodeTimeStamp(native.SampleTimeStamp(sampleTime)))
	return status.Check("set schedule start timestamp", code)
}
