package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anonto42/threadboard/backend/pkg/firebase"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the connection for the configured store driver. Only the handle
// matching Driver is set.
type DB struct {
	Driver    string
	Postgres  *gorm.DB
	Mongo     *mongo.Client
	MongoDB   *mongo.Database
	Firestore *firebase.App

	logger *slog.Logger
}

// InitDB opens the store selected by cfg.StoreDriver
func InitDB(ctx context.Context, cfg *Config, logger *slog.Logger) (*DB, error) {
	db := &DB{Driver: cfg.StoreDriver, logger: logger}

	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.PostgresConnStr == "" {
			return nil, fmt.Errorf("POSTGRES_CONN_STR environment variable not set")
		}
		pg, err := initPostgres(cfg.PostgresConnStr, cfg.IsProduction())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		db.Postgres = pg
		logger.Info("connected to PostgreSQL")

	case DriverMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI environment variable not set")
		}
		client, err := initMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		db.Mongo = client
		db.MongoDB = client.Database(cfg.MongoDatabase)
		logger.Info("connected to MongoDB", "database", cfg.MongoDatabase)

	case DriverFirestore:
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseProjectID, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Firestore: %w", err)
		}
		db.Firestore = app

	case DriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")

	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return db, nil
}

// initPostgres initializes the PostgreSQL database connection using GORM
func initPostgres(connStr string, quiet bool) (*gorm.DB, error) {
	gormConfig := &gorm.Config{}
	if quiet {
		gormConfig.Logger = gormlogger.Default.LogMode(gormlogger.Warn)
	}
	db, err := gorm.Open(postgres.Open(connStr), gormConfig)
	if err != nil {
		return nil, err
	}

	// Ping the database to verify connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// initMongo initializes the MongoDB connection
func initMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

// CloseDB closes whichever connection is open
func (db *DB) CloseDB() {
	if db.Postgres != nil {
		sqlDB, err := db.Postgres.DB()
		if err != nil {
			db.logger.Error("error getting SQL DB from GORM", "error", err)
		} else if err := sqlDB.Close(); err != nil {
			db.logger.Error("error closing PostgreSQL connection", "error", err)
		} else {
			db.logger.Info("PostgreSQL connection closed")
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			db.logger.Error("error closing MongoDB connection", "error", err)
		} else {
			db.logger.Info("MongoDB connection closed")
		}
	}

	if db.Firestore != nil {
		if err := db.Firestore.Close(); err != nil {
			db.logger.Error("error closing Firestore client", "error", err)
		} else {
			db.logger.Info("Firestore client closed")
		}
	}
}
