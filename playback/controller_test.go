// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/auplay/format"
	"github.com/ik5/auplay/internal/nativetest"
	"github.com/ik5/auplay/native"
	"github.com/ik5/auplay/status"
)

const testUnit native.UnitID = 101

func TestController_ConfigureChannelsAndRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		unit format.StreamFormat
		src  format.StreamFormat
		want format.StreamFormat
	}{
		{
			name: "mono 48k into canonical stereo",
			unit: format.CanonicalPCM(44100, 2, false),
			src:  format.StreamFormat{SampleRate: 48000, FormatID: format.LinearPCM, ChannelsPerFrame: 1, FramesPerPacket: 1},
			want: format.CanonicalPCM(48000, 1, false),
		},
		{
			name: "interleaved unit stays interleaved",
			unit: format.CanonicalPCM(44100, 2, true),
			src:  format.StreamFormat{SampleRate: 22050, FormatID: format.MPEGLayer3, ChannelsPerFrame: 6, FramesPerPacket: 1152},
			want: format.CanonicalPCM(22050, 6, true),
		},
		{
			name: "already matching",
			unit: format.CanonicalPCM(44100, 2, false),
			src:  nativetest.StereoPCM(44100),
			want: format.CanonicalPCM(44100, 2, false),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := nativetest.New()
			b.DefaultUnitFormat = tt.unit
			c := NewController(b)

			require.NoError(t, c.ConfigureChannelsAndRate(testUnit, native.ScopeOutput, 0, tt.src))

			got, err := c.StreamFormat(testUnit, native.ScopeOutput, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, got.Validate())

			sets := b.Sets()
			require.Len(t, sets, 2)

			first, code := native.DecodeStreamFormat(sets[0].Data)
			require.Equal(t, status.OK, code)
			assert.Equal(t, tt.src.ChannelsPerFrame, first.ChannelsPerFrame)
			assert.Equal(t, tt.unit.SampleRate, first.SampleRate, "channel step keeps the unit's rate")
		})
	}
}

func TestController_ConfigureChannelsAndRate_Failures(t *testing.T) {
	t.Parallel()

	t.Run("no channels", func(t *testing.T) {
		t.Parallel()

		err := NewController(nativetest.New()).ConfigureChannelsAndRate(testUnit, native.ScopeOutput, 0, format.StreamFormat{SampleRate: 44100})
		assert.ErrorIs(t, err, ErrNoChannels)
	})

	t.Run("format not writable", func(t *testing.T) {
		t.Parallel()

		b := nativetest.New()
		b.FailOn(nativetest.PropertyOp(nativetest.OpSetUnitProperty, native.PropertyStreamFormat), status.CodeFormatNotSupported)

		err := NewController(b).ConfigureChannelsAndRate(testUnit, native.ScopeOutput, 0, nativetest.StereoPCM(44100))
		assert.ErrorIs(t, err, &status.StatusError{Code: status.CodeFormatNotSupported})
		assert.ErrorContains(t, err, "channels")
	})
}

func TestController_ScheduleRegion(t *testing.T) {
	t.Parallel()

	b := nativetest.New()
	c := NewController(b)

	mp3 := format.StreamFormat{SampleRate: 44100, FormatID: format.MPEGLayer3, FramesPerPacket: 1152, ChannelsPerFrame: 2}
	require.NoError(t, c.ScheduleRegion(testUnit, 7, 100, mp3))

	data, ok := b.Property(testUnit, native.PropertyScheduledFileRegion, native.ScopeGlobal, 0)
	require.True(t, ok)

	region, code := native.DecodeRegion(data)
	require.Equal(t, status.OK, code)
	assert.Equal(t, native.ScheduledRegion{
		TimeStamp:    native.SampleTimeStamp(0),
		File:         7,
		LoopCount:    1,
		StartFrame:   0,
		FramesToPlay: 115200,
	}, region)
}

func TestController_ScheduleRegion_TooLong(t *testing.T) {
	t.Parallel()

	b := nativetest.New()
	err := NewController(b).ScheduleRegion(testUnit, 7, 1<<32, nativetest.StereoPCM(44100))

	assert.ErrorIs(t, err, ErrRegionTooLong)
	assert.Empty(t, b.Sets())
}

func TestController_Scheduling(t *testing.T) {
	t.Parallel()

	b := nativetest.New()
	c := NewController(b)

	require.NoError(t, c.BindSource(testUnit, 9))
	require.NoError(t, c.Prime(testUnit, 4096))
	require.NoError(t, c.SetStartTimestamp(testUnit, native.NextRenderCycle))

	data, ok := b.Property(testUnit, native.PropertyScheduledFileIDs, native.ScopeGlobal, 0)
	require.True(t, ok)
	ids, code := native.DecodeFileIDs(data)
	require.Equal(t, status.OK, code)
	assert.Equal(t, []native.FileID{9}, ids)

	data, ok = b.Property(testUnit, native.PropertyScheduledFilePrime, native.ScopeGlobal, 0)
	require.True(t, ok)
	frames, code := native.DecodeUint32(data)
	require.Equal(t, status.OK, code)
	assert.Equal(t, uint32(4096), frames)

	data, ok = b.Property(testUnit, native.PropertyScheduleStartTimeStamp, native.ScopeGlobal, 0)
	require.True(t, ok)
	ts, code := native.DecodeTimeStamp(data)
	require.Equal(t, status.OK, code)
	assert.Equal(t, native.SampleTimeStamp(-1), ts)
}
