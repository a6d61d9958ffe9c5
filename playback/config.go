// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ik5/auplay/native"
)

// DefaultStartupDelay is the pause between initializing and starting the
// graph. File player units can drop the first buffers when started
// immediately after initialization.
const DefaultStartupDelay = 50 * time.Millisecond

// Config controls one playback session.
type Config struct {
	// Output selects the sink unit. Its type must be an output unit.
	Output native.ComponentDescription

	// StartupDelay is slept between initialize and start. Zero disables it.
	StartupDelay time.Duration

	// PrimeFrames is written to the generator before start.
	PrimeFrames uint32

	// StartSampleTime is where on the generator's timeline playback begins.
	StartSampleTime float64
}

func DefaultConfig() Config {
	return Config{
		Output:          native.DefaultOutput(),
		StartupDelay:    DefaultStartupDelay,
		StartSampleTime: native.NextRenderCycle,
	}
}

// Validate reports every problem with c as one joined error.
func (c Config) Validate() error {
	var errs []error

	if c.Output.Type != native.TypeOutput {
		errs = append(errs, fmt.Errorf("%w: output %s is not an output unit", ErrInvalidConfig, c.Output))
	}

	if c.StartupDelay < 0 {
		errs = append(errs, fmt.Errorf("%w: negative startup delay %s", ErrInvalidConfig, c.StartupDelay))
	}

	if math.IsNaN(c.StartSampleTime) || math.IsInf(c.StartSampleTime, 0) ||
		(c.StartSampleTime < 0 && c.StartSampleTime != native.NextRenderCycle) {
		errs = append(errs, fmt.Errorf("%w: start sample time %g", ErrInvalidConfig, c.StartSampleTime))
	}

	return errors.Join(errs...)
}

// Sleeper waits for d or until ctx is done, returning ctx.Err() in the
// latter case.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the Sleeper backed by a timer.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
