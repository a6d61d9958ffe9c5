// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const scopeName = "github.com/ik5/auplay/playback"

// Session outcomes recorded on the sessions counter.
const (
	OutcomeCompleted = "completed"
	OutcomeCancelled = "cancelled"
	OutcomeFailed    = "failed"
)

// Metrics holds the instruments a Player records to. Safe for concurrent use.
type Metrics struct {
	// Sessions counts finished sessions by attribute "outcome".
	Sessions metric.Int64Counter

	// PlayedDuration records the seconds of audio each session scheduled.
	PlayedDuration metric.Float64Histogram

	// TeardownFailures counts sessions whose graph could not be released.
	TeardownFailures metric.Int64Counter
}

var durationBuckets = []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(scopeName)
	var err error
	met := &Metrics{}

	if met.Sessions, err = m.Int64Counter("auplay.playback.sessions",
		metric.WithDescription("Playback sessions by outcome."),
	); err != nil {
		return nil, err
	}
	if met.PlayedDuration, err = m.Float64Histogram("auplay.playback.duration",
		metric.WithDescription("Scheduled audio duration per session."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TeardownFailures, err = m.Int64Counter("auplay.playback.teardown_failures",
		metric.WithDescription("Sessions whose graph teardown failed."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

func (m *Metrics) recordSession(ctx context.Context, outcome string) {
	m.Sessions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
