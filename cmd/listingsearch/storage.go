package main

import (
	"context"
	"database/sql"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	config "github.com/davicafu/listingsearch/internal/config"
	infraMongo "github.com/davicafu/listingsearch/internal/infra/db/mongodb"
	infraPostgres "github.com/davicafu/listingsearch/internal/infra/db/postgres"
	infraSQLite "github.com/davicafu/listingsearch/internal/infra/db/sqlite"
	listingDomain "github.com/davicafu/listingsearch/internal/listing/domain"
	listingMongo "github.com/davicafu/listingsearch/internal/listing/infra/outbound/db/mongodb"
	listingPostgres "github.com/davicafu/listingsearch/internal/listing/infra/outbound/db/postgre"
	listingSQLite "github.com/davicafu/listingsearch/internal/listing/infra/outbound/db/sqlite"
	sharedDomain "github.com/davicafu/listingsearch/shared/domain"

	// _ "github.com/mattn/go-sqlite3" // requires gcc
	_ "modernc.org/sqlite"
)

// storage agrupa el repositorio de listings y el outbox del mismo motor.
type storage struct {
	listings listingDomain.ListingRepository
	outbox   sharedDomain.OutboxRepository
	ping     func(ctx context.Context) error
	close    func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (*storage, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		db, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// SQLite admite un único escritor
		db.SetMaxOpenConns(1)
		if err := listingSQLite.InitSQLite(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		log.Info("✅ SQLite listo", zap.String("path", cfg.SQLitePath))
		return &storage{
			listings: listingSQLite.NewListingRepoSQLite(db),
			outbox:   infraSQLite.NewOutboxRepoSQLite(db),
			ping:     db.PingContext,
			close:    func() { db.Close() },
		}, nil

	case config.DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for driver %q", cfg.DBDriver)
		}
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := listingPostgres.InitPostgresListingSchema(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		log.Info("✅ Postgres listo")
		return &storage{
			listings: listingPostgres.NewListingRepoPostgres(db),
			outbox:   infraPostgres.NewOutboxRepoPostgres(db),
			ping:     db.PingContext,
			close:    func() { db.Close() },
		}, nil

	case config.DriverMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		disconnect := func() { _ = client.Disconnect(context.Background()) }

		repo, err := listingMongo.NewListingRepoMongoDB(ctx, client, cfg.MongoDB)
		if err != nil {
			disconnect()
			return nil, err
		}
		if err := repo.EnsureIndexes(ctx); err != nil {
			disconnect()
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		log.Info("✅ MongoDB listo", zap.String("db", cfg.MongoDB))
		return &storage{
			listings: repo,
			outbox:   infraMongo.NewOutboxRepoMongoDB(client.Database(cfg.MongoDB)),
			ping:     func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:    disconnect,
		}, nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
}
