// Command backfill-group-lessons runs the group-lesson reconciliation
// job once and exits. It is meant to be invoked from cron or a
// scheduled task runner, independently of the HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/harmonykeys/lessonhub/internal/app/scheduling"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "backfill-group-lessons:", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; environment variables still apply.
	_ = godotenv.Load()

	uri := os.Getenv("LESSONHUB_MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("LESSONHUB_MONGO_DATABASE")
	if dbName == "" {
		dbName = "lessonhub"
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer func() {
		discCtx, discCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer discCancel()
		_ = client.Disconnect(discCtx)
	}()

	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping MongoDB: %w", err)
	}

	engine := scheduling.NewEngine(client.Database(dbName), logger)

	res, err := engine.Backfill(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("backfill: %w", err)
	}

	fmt.Printf("backfill complete: linked=%d statusAligned=%d created=%d\n",
		res.Linked, res.StatusAligned, res.Created)
	return nil
}
