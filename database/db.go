package database

import (
	"context"
	"time"

	"smartsched/config"
	"smartsched/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoClient backs the turn-history audit log. Sessions themselves live in
// redis; mongo only sees the append-only conversation records.
var MongoClient *mongo.Client

// InitDB connects the audit-log client and verifies the deployment is
// reachable before the server starts taking turns.
func InitDB() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger := utils.GetLogger().Sugar()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.AppConfig.DatabaseURL))
	if err != nil {
		logger.Fatalf("turn audit store: failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatalf("turn audit store: failed to ping MongoDB: %v", err)
	}
	MongoClient = client
	logger.Info("Connected to the turn audit store")
}

// CloseDB releases the audit-log connection on shutdown.
func CloseDB() {
	if MongoClient == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := MongoClient.Disconnect(ctx); err != nil {
		utils.GetLogger().Sugar().Warnf("turn audit store: disconnect failed: %v", err)
	}
}
