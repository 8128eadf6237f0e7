package main

import (
	"context"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mokili/momo"
	"github.com/mokili/momo/adapters/events"
	"github.com/mokili/momo/adapters/store"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := momo.LoadConfig("")
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()
	opts := []momo.Option{momo.WithLogger(logger)}

	// Redis is optional: when present it backs the shared token cache
	// and the transfer event stream.
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisOpts, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.Fatal("failed to parse redis url", zap.Error(err))
		}
		redisClient := redis.NewClient(redisOpts)

		opts = append(opts, momo.WithTokenStore(store.NewRedisStore(redisClient)))

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			logger.Fatal("failed to create event publisher", zap.Error(err))
		}
		opts = append(opts, momo.WithEventPublisher(events.NewWatermillPublisher(publisher)))
	}

	client, err := momo.New(cfg, opts...)
	if err != nil {
		logger.Fatal("failed to create client", zap.Error(err))
	}
	defer client.Close()

	phoneNumber := os.Getenv("MOMO_PAYER_NUMBER")
	if phoneNumber == "" {
		logger.Fatal("MOMO_PAYER_NUMBER must be set")
	}

	amount := os.Getenv("MOMO_AMOUNT")
	if amount == "" {
		amount = "100"
	}

	req, err := momo.NewTransferRequest(amount, "XAF", momo.NewExternalID(), phoneNumber)
	if err != nil {
		logger.Fatal("invalid transfer request", zap.Error(err))
	}

	outcome, err := client.Transfer(ctx, req)
	if err != nil {
		logger.Fatal("transfer failed", zap.Error(err))
	}

	logger.Info("transfer submitted",
		zap.String("transaction_id", outcome.TransactionID),
		zap.String("status", string(outcome.Status)))

	// Poll until the customer approves or declines
	for i := 0; i < 12; i++ {
		time.Sleep(5 * time.Second)

		outcome, err = client.GetTransferStatus(ctx, outcome.TransactionID)
		if err != nil {
			logger.Fatal("status query failed", zap.Error(err))
		}

		logger.Info("transfer status",
			zap.String("transaction_id", outcome.TransactionID),
			zap.String("status", string(outcome.Status)))

		if outcome.Status != momo.StatusPending {
			break
		}
	}

	if outcome.Status == momo.StatusFailed {
		logger.Warn("transfer was declined", zap.String("reason", outcome.FailureReason))
	}
}
