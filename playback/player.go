// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ik5/auplay/format"
	"github.com/ik5/auplay/graph"
	"github.com/ik5/auplay/native"
	"github.com/ik5/auplay/source"
	"github.com/ik5/auplay/status"
)

// Result describes a finished session.
type Result struct {
	SessionID string
	Path      string
	Format    format.StreamFormat
	Packets   uint64
	Duration  time.Duration
	// Cancelled is set when the context ended the wait early.
	Cancelled bool
}

// Player runs playback sessions against one backend. Each call to Play
// builds its own graph, so a Player may run sessions concurrently.
type Player struct {
	backend native.Backend
	cfg     Config
	ctrl    *Controller

	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
	sleep   Sleeper
}

// Option customizes a Player.
type Option func(*Player)

// WithLogger sets the logger sessions derive theirs from.
func WithLogger(l *slog.Logger) Option {
	return func(p *Player) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics records to m instead of instruments on the global provider.
func WithMetrics(m *Metrics) Option {
	return func(p *Player) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithTracerProvider creates session spans on tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Player) {
		if tp != nil {
			p.tracer = tp.Tracer(scopeName)
		}
	}
}

// WithSleeper replaces the timer based waits.
func WithSleeper(s Sleeper) Option {
	return func(p *Player) {
		if s != nil {
			p.sleep = s
		}
	}
}

// NewPlayer validates cfg and returns a Player using b.
func NewPlayer(b native.Backend, cfg Config, opts ...Option) (*Player, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Player{
		backend: b,
		cfg:     cfg,
		ctrl:    NewController(b),
		logger:  slog.Default(),
		tracer:  otel.GetTracerProvider().Tracer(scopeName),
		sleep:   Sleep,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.metrics == nil {
		m, err := NewMetrics(otel.GetMeterProvider())
		if err != nil {
			return nil, fmt.Errorf("playback metrics: %w", err)
		}
		p.metrics = m
	}

	return p, nil
}

func (p *Player) Config() Config { return p.cfg }

// Play plays the file at path and returns once its duration has elapsed
// or ctx is done. A cancelled wait is not an error; the Result reports it.
//
// Errors name the stage that failed. When releasing the graph fails the
// error is fatal (see status.IsFatal) and the host's state is unknown.
func (p *Player) Play(ctx context.Context, path string) (*Result, error) {
	s := &session{
		Player: p,
		id:     uuid.NewString(),
		path:   path,
	}
	s.log = p.logger.With("session", s.id, "path", path)

	ctx, span := p.tracer.Start(ctx, "playback.session", trace.WithAttributes(
		attribute.String("auplay.session", s.id),
		attribute.String("auplay.path", path),
	))
	defer span.End()

	s.log.Info("playback starting", "output", p.cfg.Output.String())

	res, err := s.run(ctx)

	switch {
	case err != nil:
		p.metrics.recordSession(ctx, OutcomeFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if status.IsFatal(err) {
			s.log.Error("playback failed; native state unknown", "error", err)
		} else {
			s.log.Error("playback failed", "error", err)
		}
	case res.Cancelled:
		p.metrics.recordSession(ctx, OutcomeCancelled)
		s.log.Info("playback cancelled", "duration", res.Duration)
	default:
		p.metrics.recordSession(ctx, OutcomeCompleted)
		s.log.Info("playback finished", "duration", res.Duration)
	}

	return res, err
}

// session is the state of one Play call.
type session struct {
	*Player

	id   string
	path string
	log  *slog.Logger
}

// stage runs fn in a child span and prefixes its error with name.
func (s *session) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, name)
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("playback: %s: %w", name, err)
	}

	return nil
}

func (s *session) run(ctx context.Context) (res *Result, err error) {
	var (
		file    *source.File
		sf      format.StreamFormat
		packets uint64
	)

	err = s.stage(ctx, "open source", func(context.Context) error {
		var err error
		if file, err = source.Open(s.backend, s.path); err != nil {
			return err
		}
		if sf, err = file.Format(); err != nil {
			return err
		}
		packets, err = file.PacketCount()
		return err
	})
	if file != nil {
		defer func() {
			if cerr := file.Close(); cerr != nil {
				s.log.Warn("closing source failed", "error", cerr)
				err = errors.Join(err, fmt.Errorf("playback: close source: %w", cerr))
			}
		}()
	}
	if err != nil {
		return nil, err
	}

	s.log.Debug("source opened", "format", sf.String(), "packets", packets)

	var g *graph.Graph
	if err := s.stage(ctx, "create graph", func(context.Context) error {
		var err error
		g, err = graph.New(s.backend)
		return err
	}); err != nil {
		return nil, err
	}

	// Registered after the file close, so it runs first.
	defer func() {
		if terr := g.Teardown(); terr != nil {
			s.metrics.TeardownFailures.Add(ctx, 1)
			err = errors.Join(err, fmt.Errorf("playback: teardown: %w", terr))
		}
		s.log.Debug("graph torn down")
	}()

	var (
		outNode, genNode native.NodeID
		unit             native.UnitID
	)

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"add output node", func(context.Context) (err error) {
			outNode, err = g.AddNode(s.cfg.Output)
			return err
		}},
		{"add file player node", func(context.Context) (err error) {
			genNode, err = g.AddNode(native.FilePlayer())
			return err
		}},
		{"open graph", func(context.Context) error { return g.Open() }},
		{"resolve file player unit", func(context.Context) (err error) {
			unit, err = g.ResolveUnit(genNode)
			return err
		}},
		{"configure stream format", func(context.Context) error {
			return s.ctrl.ConfigureChannelsAndRate(unit, native.ScopeOutput, 0, sf)
		}},
		{"connect nodes", func(context.Context) error { return g.Connect(genNode, 0, outNode, 0) }},
		{"bind source", func(context.Context) error { return s.ctrl.BindSource(unit, file.ID()) }},
		{"schedule region", func(context.Context) error { return s.ctrl.ScheduleRegion(unit, file.ID(), packets, sf) }},
		{"prime", func(context.Context) error { return s.ctrl.Prime(unit, s.cfg.PrimeFrames) }},
		{"set start timestamp", func(context.Context) error { return s.ctrl.SetStartTimestamp(unit, s.cfg.StartSampleTime) }},
		{"initialize graph", func(context.Context) error { return g.Initialize() }},
		{"startup delay", func(ctx context.Context) error { return s.sleep(ctx, s.cfg.StartupDelay) }},
		{"start graph", func(context.Context) error { return g.Start() }},
	}

	for _, step := range steps {
		if err := s.stage(ctx, step.name, step.fn); err != nil {
			return nil, err
		}
	}

	res = &Result{
		SessionID: s.id,
		Path:      s.path,
		Format:    sf,
		Packets:   packets,
		Duration:  source.Duration(packets, sf),
	}
	s.metrics.PlayedDuration.Record(ctx, res.Duration.Seconds())
	s.log.Info("playing", "duration", res.Duration, "format", sf.String())

	if werr := s.sleep(ctx, res.Duration); werr != nil {
		if !errors.Is(werr, context.Canceled) && !errors.Is(werr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("playback: wait: %w", werr)
		}
		res.Cancelled = true
	}

	return res, nil
}
