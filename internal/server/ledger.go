package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"branch-ledger/internal/config"
	"branch-ledger/internal/domain"
	"branch-ledger/internal/events"
	"branch-ledger/internal/repository"
	"branch-ledger/internal/service"
)

// Ledger is the wired service layer together with the resources behind it.
type Ledger struct {
	Services  *service.Services
	db        *sql.DB
	publisher events.Publisher
	logger    *slog.Logger
}

// OpenLedger builds the services for cfg. With the postgres backend the
// schema is migrated and the registry is restored from the journal before
// anything is served.
func OpenLedger(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Ledger, error) {
	policy, err := cfg.CheckingPolicy()
	if err != nil {
		return nil, err
	}

	l := &Ledger{logger: logger}
	registry := repository.NewMemoryRegistry(logger)
	var journal domain.Journal = domain.NopJournal{}

	if cfg.StorageBackend == config.BackendPostgres {
		pj, err := l.openJournal(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		if err := pj.Restore(ctx, registry); err != nil {
			l.Close()
			return nil, fmt.Errorf("restore ledger: %w", err)
		}
		journal = pj
	}

	l.publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP publisher, continuing without events", "error", err)
		} else {
			logger.Info("Publishing transaction events",
				"exchange", cfg.AMQPExchange,
				"routing_key", cfg.AMQPRoutingKey)
			l.publisher = publisher
		}
	}

	l.Services = service.New(service.Deps{
		Registry:  registry,
		Journal:   journal,
		Publisher: l.publisher,
		Logger:    logger,
	}, policy)
	return l, nil
}

func (l *Ledger) openJournal(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repository.PostgresJournal, error) {
	dsn := cfg.GetDBConnectionString()
	if err := repository.RunMigrations(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	// Configure connection pool for better performance
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("Successfully connected to database")

	l.db = db
	store := repository.NewStore(db, logger)
	return repository.NewPostgresJournal(store, logger), nil
}

// Ping reports whether the journal database is reachable. It is always nil
// for the in-memory backend.
func (l *Ledger) Ping(ctx context.Context) error {
	if l.db == nil {
		return nil
	}
	return l.db.PingContext(ctx)
}

func (l *Ledger) Close() error {
	var errs []error
	if l.publisher != nil {
		errs = append(errs, l.publisher.Close())
	}
	if l.db != nil {
		errs = append(errs, l.db.Close())
	}
	return errors.Join(errs...)
}
