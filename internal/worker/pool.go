package worker

import (
	"context"
	"encoding/json"
	"time"

	"tiendapos/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueNotificaciones = "jobs:notificaciones"
	QueueEmail          = "jobs:email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Procesador handles jobs of one queue.
type Procesador interface {
	Process(ctx context.Context, raw json.RawMessage)
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EncolarAlertaReorden pushes a reorder alert job to Redis. Satisfies the
// orchestrator's notifier contract: enqueue is the only coupling point, the
// delivery itself happens in the pool.
func (d *Dispatcher) EncolarAlertaReorden(ctx context.Context, alerta service.AlertaReorden) error {
	return d.enqueue(ctx, QueueNotificaciones, "reorden", alerta)
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueEmail, "email", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, procesadores map[string]Procesador) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, procesadores)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, procesadores map[string]Procesador) {
	queues := []string{QueueNotificaciones, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, result[0], result[1], procesadores)
		}
	}
}

func processJob(ctx context.Context, queue, raw string, procesadores map[string]Procesador) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	p, ok := procesadores[queue]
	if !ok {
		log.Warn().Str("queue", queue).Str("type", job.Type).Msg("no processor registered for queue")
		return
	}
	p.Process(ctx, job.Payload)
}
