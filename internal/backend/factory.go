package backend

import (
	"context"
	"fmt"
	"log/slog"

	"ibms/internal/amqp"
	applog "ibms/internal/log"
	"ibms/internal/ports"
	"ibms/internal/ports/memory"
	"ibms/internal/seed"
	"ibms/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
	// dial is swapped in tests to avoid a broker.
	dial func(url, exchange, queue string) (*amqp.Client, error)
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) *DefaultFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
		dial:   amqp.NewClient,
	}
}

// CreateBackend opens the configured store, seeds it when empty and connects
// the optional AMQP publisher.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var store ports.Store
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		store = repo
	case MemoryBackend:
		store = memory.New()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	seeded, err := f.seed(ctx, store, config)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	res := &Result{Store: store, Seeded: seeded}
	if config.AMQPURL != "" {
		client, err := f.dial(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without change events",
				applog.FieldComponent, applog.ComponentBackend,
				applog.FieldError, err)
		} else {
			f.logger.Info("Initialized AMQP client",
				applog.FieldComponent, applog.ComponentBackend,
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			res.AMQP = client
			res.Publisher = client
		}
	}

	closers := []func() error{store.Close}
	if res.AMQP != nil {
		closers = append([]func() error{res.AMQP.Close}, closers...)
	}
	res.Cleanup = joinCleanup(closers...)

	f.logger.Info("Initialized backend",
		applog.FieldComponent, applog.ComponentBackend,
		"type", config.Type.String(),
		"seeded", seeded,
		"amqp_enabled", res.AMQP != nil)
	return res, nil
}

func (f *DefaultFactory) seed(ctx context.Context, store ports.Store, config Config) (bool, error) {
	if config.SkipSeed {
		return false, nil
	}
	var (
		s   seed.Seed
		err error
	)
	if config.SeedFile != "" {
		s, err = seed.Load(config.SeedFile)
	} else {
		s, err = seed.Default()
	}
	if err != nil {
		return false, fmt.Errorf("failed to load seed: %w", err)
	}
	applied, err := seed.Apply(ctx, store, s)
	if err != nil {
		return false, fmt.Errorf("failed to apply seed: %w", err)
	}
	return applied, nil
}
