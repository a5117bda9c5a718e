package lib

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const connectTimeout = 10 * time.Second

// SQLiteDriver is the database/sql driver name used for SQLite. Its
// connections carry a unicode_lower function because the built-in LOWER only
// folds ASCII.
const SQLiteDriver = "sqlite3_friendlynk"

func init() {
	sql.Register(SQLiteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("unicode_lower", strings.ToLower, true)
		},
	})
}

// ConnectMongo opens a client against cfg.MongoURI and verifies it with a ping.
func ConnectMongo(ctx context.Context, cfg *Config, logger *zap.Logger) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", cfg.MongoDB))
	return client, nil
}

// ConnectSQLite opens the SQLite database at path. SQLite allows one writer,
// so the pool is capped at a single connection.
func ConnectSQLite(path string, logger *zap.Logger) (*gorm.DB, error) {
	dialector := sqlite.New(sqlite.Config{DriverName: SQLiteDriver, DSN: path})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	logger.Info("connected to SQLite", zap.String("path", path))
	return db, nil
}

// ConnectRedis returns nil when no address is configured.
func ConnectRedis(ctx context.Context, cfg *Config, logger *zap.Logger) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))
	return rdb, nil
}

// ConnectRabbitMQ returns nil when no URL is configured.
func ConnectRabbitMQ(cfg *Config, logger *zap.Logger) (*amqp.Connection, error) {
	if cfg.RabbitMQURL == "" {
		return nil, nil
	}

	conn, err := amqp.DialConfig(cfg.RabbitMQURL, amqp.Config{
		Dial: amqp.DefaultDial(connectTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	logger.Info("connected to RabbitMQ")
	return conn, nil
}
