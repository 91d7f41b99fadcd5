package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"unitcore/internal/infra/persistence/memory"
	"unitcore/pkg/measure"
)

// ErrNotFound reports a lookup by ID that matched no unit.
var ErrNotFound = errors.New("unit not found")

// Service exposes catalog operations over a PersistentStore with rules,
// logging, auditing, metrics and tracing attached.
type Service struct {
	store   PersistentStore
	logger  Logger
	audit   AuditRecorder
	metrics MetricsRecorder
	tracer  Tracer
	nowFn   func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithLogger attaches a structured logger. Nil restores the no-op logger.
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		if logger == nil {
			logger = noopLogger{}
		}
		s.logger = logger
	}
}

// WithClock overrides the service clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// WithAuditRecorder attaches an audit sink.
func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(s *Service) {
		if recorder == nil {
			recorder = noopAuditRecorder{}
		}
		s.audit = recorder
	}
}

// WithMetricsRecorder attaches a metrics sink.
func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(s *Service) {
		if recorder == nil {
			recorder = noopMetricsRecorder{}
		}
		s.metrics = recorder
	}
}

// WithTracer attaches a tracer.
func WithTracer(tracer Tracer) Option {
	return func(s *Service) {
		if tracer == nil {
			tracer = noopTracer{}
		}
		s.tracer = tracer
	}
}

// NewService wraps an existing store.
func NewService(store PersistentStore, opts ...Option) *Service {
	svc := &Service{
		store:   store,
		logger:  noopLogger{},
		audit:   noopAuditRecorder{},
		metrics: noopMetricsRecorder{},
		tracer:  noopTracer{},
		nowFn:   time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// NewInMemoryService builds a service over a fresh in-memory store with the
// default rules engine installed.
func NewInMemoryService(opts ...Option) *Service {
	return NewService(memory.NewStore(NewDefaultRulesEngine()), opts...)
}

// Store exposes the underlying persistent store.
func (s *Service) Store() PersistentStore { return s.store }

func (s *Service) instrument(ctx context.Context, operation string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, operation)
	start := s.nowFn()
	err := fn(ctx)
	duration := s.nowFn().Sub(start)
	span.End(err)
	s.metrics.Observe(ctx, operation, err == nil, duration)

	entry := AuditEntry{Timestamp: s.nowFn(), Operation: operation, Status: AuditStatusSuccess}
	if err != nil {
		entry.Status = AuditStatusError
		entry.Err = err
		entry.Detail = err.Error()
		s.logger.Error("operation failed", "operation", operation, "error", err)
	} else {
		s.logger.Debug("operation completed", "operation", operation, "duration", duration)
	}
	s.audit.Record(ctx, entry)
	return err
}

// CreateUnit registers a derived unit in the catalog.
func (s *Service) CreateUnit(ctx context.Context, unit DerivedUnit) (DerivedUnit, error) {
	var created DerivedUnit
	err := s.instrument(ctx, "create_unit", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			created, txErr = tx.CreateUnit(unit)
			return txErr
		})
		return err
	})
	if err != nil {
		return DerivedUnit{}, err
	}
	s.logger.Info("unit created", "id", created.ID, "symbol", created.Symbol)
	return created, nil
}

// UpdateUnit applies a mutator to a stored unit.
func (s *Service) UpdateUnit(ctx context.Context, id string, mutate func(*DerivedUnit) error) (DerivedUnit, error) {
	var updated DerivedUnit
	err := s.instrument(ctx, "update_unit", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateUnit(id, mutate)
			return txErr
		})
		return err
	})
	if err != nil {
		return DerivedUnit{}, err
	}
	return updated, nil
}

// DeleteUnit removes a unit by ID.
func (s *Service) DeleteUnit(ctx context.Context, id string) error {
	return s.instrument(ctx, "delete_unit", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			return tx.DeleteUnit(id)
		})
		return err
	})
}

// GetUnit fetches a unit by ID.
func (s *Service) GetUnit(ctx context.Context, id string) (DerivedUnit, error) {
	var unit DerivedUnit
	err := s.instrument(ctx, "get_unit", func(context.Context) error {
		got, ok := s.store.GetUnit(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		unit = got
		return nil
	})
	if err != nil {
		return DerivedUnit{}, err
	}
	return unit, nil
}

// ListUnits returns all catalog units ordered by symbol.
func (s *Service) ListUnits(ctx context.Context) ([]DerivedUnit, error) {
	var units []DerivedUnit
	err := s.instrument(ctx, "list_units", func(context.Context) error {
		units = s.store.ListUnits()
		sort.Slice(units, func(i, j int) bool { return units[i].Symbol < units[j].Symbol })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return units, nil
}

// ResolveUnit finds a unit by symbol, name or alternative name. Symbol
// matches win over name matches.
func (s *Service) ResolveUnit(ctx context.Context, token string) (DerivedUnit, error) {
	var unit DerivedUnit
	err := s.instrument(ctx, "resolve_unit", func(context.Context) error {
		got, ok := s.store.ResolveUnit(token)
		if !ok {
			return measure.UnknownUnitError{Query: token}
		}
		unit = got
		return nil
	})
	if err != nil {
		return DerivedUnit{}, err
	}
	return unit, nil
}

// ResolveValue resolves a token and reduces it to its base-unit value.
func (s *Service) ResolveValue(ctx context.Context, token string) (Value, error) {
	unit, err := s.ResolveUnit(ctx, token)
	if err != nil {
		return Value{}, err
	}
	return unit.Value(), nil
}

// SeedCatalog installs the default SI catalog, skipping symbols that are
// already registered.
func (s *Service) SeedCatalog(ctx context.Context) (int, error) {
	seeded := 0
	err := s.instrument(ctx, "seed_catalog", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx Transaction) error {
			for _, unit := range measure.DefaultCatalog() {
				if _, ok := tx.ResolveUnit(unit.Symbol); ok {
					continue
				}
				if _, err := tx.CreateUnit(unit); err != nil {
					return err
				}
				seeded++
			}
			return nil
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("catalog seeded", "units", seeded)
	return seeded, nil
}
