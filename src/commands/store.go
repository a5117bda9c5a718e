package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/theleywin/friendlynk/src/lib"
	"github.com/theleywin/friendlynk/src/repository"
	"github.com/theleywin/friendlynk/src/repository/mongostore"
	"github.com/theleywin/friendlynk/src/repository/sqlstore"
)

// openRepository connects the configured store and brings its schema up to
// date.
func openRepository(ctx context.Context, cfg *lib.Config, logger *zap.Logger) (*repository.Repository, error) {
	switch cfg.DBDriver {
	case lib.DriverMongo:
		client, err := lib.ConnectMongo(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDB)
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("failed to create indexes: %w", err)
		}
		return mongostore.New(client, db, mongostore.Options{Transactions: cfg.MongoTransactions}, logger), nil

	case lib.DriverSQLite:
		db, err := lib.ConnectSQLite(cfg.DBPath, logger)
		if err != nil {
			return nil, err
		}
		if err := sqlstore.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
		return sqlstore.New(db, logger), nil
	}
	return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
}
