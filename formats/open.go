// SPDX-License-Identifier: EPL-2.0

package formats

import (
	"errors"
	"fmt"
	"os"

	"github.com/ik5/auplay/audio"
)

// Probe reads the stream format and packet count of the file at path.
func (r *Registry) Probe(path string) (Info, error) {
	codec, err := r.ForPath(path)
	if err != nil {
		return Info{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("probe: %w", err)
	}
	defer f.Close()

	sf, packets, err := codec.Probe(f)
	if err != nil {
		return Info{}, fmt.Errorf("probe %s: %w", path, err)
	}

	return Info{Format: sf, Packets: packets}, nil
}

// Open decodes the file at path. Closing the returned source closes the file.
func (r *Registry) Open(path string) (audio.Source, error) {
	codec, err := r.ForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	src, err := codec.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return &fileSource{Source: src, file: f}, nil
}

type fileSource struct {
	audio.Source
	file *os.File
}

func (s *fileSource) Close() error {
	return errors.Join(s.Source.Close(), s.file.Close())
}
