package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hotelbook/config"
	"hotelbook/database"
	"hotelbook/models"
	"hotelbook/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Reconciler records the missing payment entry of a committed booking.
type Reconciler interface {
	Reconcile(ctx context.Context, bookingID string) (*models.TransactionRecord, error)
}

// RedisOpt is the asynq connection for the reconciliation queue.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReconcileDB,
	}
}

// InitReconcileWorker runs the ledger reconciliation worker in background.
// Shut the returned server down on exit.
func InitReconcileWorker(ctx context.Context, svc Reconciler, logger *zap.Logger) *asynq.Server {
	concurrency := config.AppConfig.ReconcileConcurrency
	if concurrency <= 0 {
		concurrency = 5
	}
	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeLedgerReconcile, handleReconcileTask(svc, logger))

	go monitorRedisConnection(ctx, logger)

	go func() {
		logger.Info("Starting ledger reconciliation worker", zap.Int("concurrency", concurrency))
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				return
			}
			logger.Error("Reconciliation worker failed to start",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("Reconciliation worker giving up; pending ledger entries need manual reconciliation")
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(attempts*2) * time.Second):
			}
		}
	}()
	return srv
}

func handleReconcileTask(svc Reconciler, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.ReconcilePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid reconcile payload", zap.Error(err))
			return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
		}
		if p.BookingID == "" {
			return fmt.Errorf("payload without booking id: %w", asynq.SkipRetry)
		}

		txn, err := svc.Reconcile(ctx, p.BookingID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				logger.Error("Reconcile target booking does not exist", zap.String("bookingId", p.BookingID))
				return fmt.Errorf("booking %s: %v: %w", p.BookingID, err, asynq.SkipRetry)
			}
			logger.Warn("Reconciliation attempt failed", zap.String("bookingId", p.BookingID), zap.Error(err))
			return err
		}
		logger.Info("Reconciliation complete",
			zap.String("bookingId", p.BookingID),
			zap.String("transactionId", txn.ID))
		return nil
	}
}

// monitorRedisConnection pings the queue's Redis periodically to surface outages.
func monitorRedisConnection(ctx context.Context, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReconcileDB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("Reconcile queue Redis unreachable", zap.Error(err))
			}
		}
	}
}
