// SPDX-License-Identifier: EPL-2.0

// Package source opens file-backed audio sources through a native host and
// reads the properties the playback core needs: the stream format and the
// packet count.
package source

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ik5/auplay/format"
	"github.com/ik5/auplay/native"
	"github.com/ik5/auplay/status"
)

// File is an open, read-only audio file owned by one playback session.
type File struct {
	backend native.Backend
	id      native.FileID
	path    string

	closeOnce sync.Once
	closeErr  error
}

// Open opens path read-only. Every failure is a *status.FileError.
func Open(b native.Backend, path string) (*File, error) {
	if path == "" {
		return nil, &status.FileError{Path: path, Code: status.CodeParam, Err: ErrEmptyPath}
	}

	id, code := b.OpenFile(path)
	if code != status.OK {
		if id != 0 {
			// Release whatever the host handed out before failing.
			_ = b.CloseFile(id)
		}
		return nil, &status.FileError{Path: path, Code: code}
	}

	if id == 0 {
		return nil, &status.FileError{Path: path, Err: status.ErrUnspecified}
	}

	return &File{backend: b, id: id, path: path}, nil
}

// ID is the host handle, used to bind the file to a generator unit.
func (f *File) ID() native.FileID { return f.id }

func (f *File) Path() string { return f.path }

// Format reads the file's native data format.
func (f *File) Format() (format.StreamFormat, error) {
	data, code := f.backend.FileProperty(f.id, native.FilePropertyDataFormat)
	if err := status.Check("get file data format", code); err != nil {
		return format.StreamFormat{}, err
	}

	sf, code := native.DecodeStreamFormat(data)
	if err := status.Check("decode file data format", code); err != nil {
		return format.StreamFormat{}, err
	}

	return sf, nil
}

// PacketCount reads the total number of audio data packets in the file.
func (f *File) PacketCount() (uint64, error) {
	data, code := f.backend.FileProperty(f.id, native.FilePropertyAudioDataPacketCount)
	if err := status.Check("get file packet count", code); err != nil {
		return 0, err
	}

	n, code := native.DecodeUint64(data)
	if err := status.Check("decode file packet count", code); err != nil {
		return 0, err
	}

	return n, nil
}

// Close releases the host handle. It is safe to call more than once; only
// the first call reaches the host.
func (f *File) Close() error {
	f.closeOnce.Do(func() {
		if err := status.Check("close file", f.backend.CloseFile(f.id)); err != nil {
			f.closeErr = fmt.Errorf("%s: %w", f.path, err)
		}
	})

	return f.closeErr
}

// Seconds is the playable length of packets packets in seconds:
// packets * framesPerPacket / sampleRate. It is zero when the rate is not
// positive.
func Seconds(packets uint64, sf format.StreamFormat) float64 {
	if sf.SampleRate <= 0 || math.IsNaN(sf.SampleRate) {
		return 0
	}

	return float64(packets) * float64(sf.FramesPerPacket) / sf.SampleRate
}

// Duration is Seconds as a time.Duration, rounded to the nearest nanosecond.
func Duration(packets uint64, sf format.StreamFormat) time.Duration {
	return time.Duration(math.Round(Seconds(packets, sf) * float64(time.Second)))
}

// Frames is the number of frames packets packets hold.
func Frames(packets uint64, sf format.StreamFormat) uint64 {
	return packets * uint64(sf.FramesPerPacket)
}
