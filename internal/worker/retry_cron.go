package worker

// retry_cron.go
// Background goroutine that periodically redrives dead-lettered reorder
// alerts back into the live queue once the webhook circuit closes again.

import (
	"context"
	"encoding/json"
	"time"

	"tiendapos/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds the redrive dependencies.
type RetryCronConfig struct {
	RDB *redis.Client
	CB  *infra.CircuitBreaker
}

// StartRetryCron launches a goroutine that ticks every 30s and, while the
// circuit is closed, moves up to retryBatchSize DLQ entries back to the
// notification queue. It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				redriveDLQ(ctx, cfg)
			}
		}
	}()
}

func redriveDLQ(ctx context.Context, cfg RetryCronConfig) {
	// If CB is open, skip entirely — don't hammer a downed endpoint
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	dlqKey := DLQPrefix + QueueNotificaciones
	redriven := 0
	for i := 0; i < retryBatchSize; i++ {
		raw, err := cfg.RDB.RPop(ctx, dlqKey).Result()
		if err != nil {
			break // empty queue or redis unavailable
		}

		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Msg("retry_cron: malformed DLQ entry dropped")
			continue
		}

		job := Job{Type: entry.JobType, Payload: entry.Payload}
		encoded, err := json.Marshal(job)
		if err != nil {
			log.Error().Err(err).Msg("retry_cron: failed to re-encode job")
			continue
		}
		if err := cfg.RDB.LPush(ctx, QueueNotificaciones, encoded).Err(); err != nil {
			log.Error().Err(err).Msg("retry_cron: failed to redrive job")
			// Put it back so it is not lost
			_ = cfg.RDB.LPush(ctx, dlqKey, raw).Err()
			return
		}
		redriven++
	}

	if redriven > 0 {
		log.Info().Int("count", redriven).Msg("retry_cron: DLQ entries redriven")
	}
}
