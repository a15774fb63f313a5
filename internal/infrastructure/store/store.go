// Package store opens the persistence backend selected by STORE_DRIVER and
// hands back the repositories the services depend on.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/portfolio/workitems-api/internal/core/ports"
	"github.com/portfolio/workitems-api/internal/infrastructure/db/gormdb"
	mongodb "github.com/portfolio/workitems-api/internal/infrastructure/db/mongo"
	"github.com/portfolio/workitems-api/internal/infrastructure/db/postgres"
	"github.com/portfolio/workitems-api/internal/pkg/config"
)

// Store bundles the repositories of one backend with its lifecycle hooks.
type Store struct {
	Driver    string
	Users     ports.UserRepository
	WorkItems ports.WorkItemRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping reports whether the backend is reachable.
func (s *Store) Ping(ctx context.Context) error { return s.ping(ctx) }

func (s *Store) Close(ctx context.Context) error { return s.close(ctx) }

// Open connects to the configured backend and brings its schema up to date.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	driver := strings.ToLower(cfg.Store.Driver)

	var (
		s   *Store
		err error
	)
	switch driver {
	case config.DriverMongo:
		s, err = openMongo(ctx, cfg)
	case config.DriverPostgres:
		s, err = openPostgres(ctx, cfg)
	case config.DriverSQLite:
		s, err = openGorm(gormdb.DialectSQLite, cfg.SQLite.Path)
	case config.DriverMySQL:
		s, err = openGorm(gormdb.DialectMySQL, cfg.MySQL.DSN)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	s.Driver = driver
	log.Info().Str("driver", driver).Msg("store ready")
	return s, nil
}

func openMongo(ctx context.Context, cfg *config.Config) (*Store, error) {
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return nil, err
	}
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &Store{
		Users:     mongodb.NewUserRepository(db),
		WorkItems: mongodb.NewWorkItemRepository(db),
		ping:      func(ctx context.Context) error { return mongodb.Ping(ctx, db) },
		close:     client.Disconnect,
	}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (*Store, error) {
	db, err := postgres.Open(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		Users:     postgres.NewUserRepository(db),
		WorkItems: postgres.NewWorkItemRepository(db),
		ping:      db.PingContext,
		close:     func(context.Context) error { return db.Close() },
	}, nil
}

func openGorm(dialect, dsn string) (*Store, error) {
	db, err := gormdb.Open(dialect, dsn)
	if err != nil {
		return nil, err
	}
	if err := gormdb.Migrate(db); err != nil {
		_ = gormdb.Close(db)
		return nil, err
	}

	return &Store{
		Users:     gormdb.NewUserRepository(db),
		WorkItems: gormdb.NewWorkItemRepository(db),
		ping:      func(ctx context.Context) error { return gormdb.Ping(ctx, db) },
		close:     func(context.Context) error { return gormdb.Close(db) },
	}, nil
}
