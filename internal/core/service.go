// Package core orchestrates the pangenome workflow: ingesting annotated
// genomes, predicting regions of genomic plasticity, and querying or exporting
// them. Every operation runs inside the persistent store's transactions and
// is observed through the configured logger, metrics recorder and tracer.
package core

import (
	"context"
	"time"

	"panrgp/internal/blob"
	"panrgp/internal/infra/persistence/memory"
)

// Service exposes the pangenome operations over a persistent store.
type Service struct {
	store   PersistentStore
	blobs   blob.Store
	clock   Clock
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(l Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source, including the store's when it
// accepts one.
func WithClock(c Clock) ServiceOption {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithMetricsRecorder sets the metrics sink.
func WithMetricsRecorder(m MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer sets the span source.
func WithTracer(t Tracer) ServiceOption {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithBlobStore enables blob-backed ingestion and export.
func WithBlobStore(b blob.Store) ServiceOption {
	return func(s *Service) { s.blobs = b }
}

type nowSetter interface {
	SetNowFunc(func() time.Time)
}

// NewService constructs a service backed by store.
func NewService(store PersistentStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		clock:   systemClock{},
		logger:  noopLogger{},
		metrics: noopMetrics{},
		tracer:  noopTracer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if ns, ok := store.(nowSetter); ok {
		ns.SetNowFunc(s.clock.Now)
	}
	return s
}

// NewInMemoryService creates a service over a fresh in-memory store. A nil
// engine selects NewDefaultRulesEngine.
func NewInMemoryService(engine *RulesEngine, opts ...ServiceOption) *Service {
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying persistent store.
func (s *Service) Store() PersistentStore { return s.store }

// BlobStore returns the configured blob store, or nil.
func (s *Service) BlobStore() blob.Store { return s.blobs }

// run wraps one operation with a span, a metric observation and a log line.
func (s *Service) run(ctx context.Context, op string, fn func(context.Context) error) error {
	started := time.Now()
	ctx, span := s.tracer.Start(ctx, op)
	err := fn(ctx)
	elapsed := time.Since(started)
	s.metrics.Observe(ctx, op, err == nil, elapsed)
	span.End(err)
	if err != nil {
		s.logger.Error("operation failed", "op", op, "duration", elapsed, "error", err)
		return err
	}
	s.logger.Debug("operation completed", "op", op, "duration", elapsed)
	return nil
}
