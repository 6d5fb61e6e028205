package worker

// notificacion_worker.go
// Processes reorder alerts from QueueNotificaciones: POSTs to the configured
// webhook through the circuit breaker, with exponential backoff, and
// optionally mirrors the alert to the purchasing email. Exhausted jobs land
// in the DLQ.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tiendapos/internal/infra"
	"tiendapos/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const maxEntregaIntentos = 3

// NotificacionWorker delivers reorder alerts to the outside world.
type NotificacionWorker struct {
	webhook    *infra.WebhookClient
	cb         *infra.CircuitBreaker
	dispatcher *Dispatcher
	rdb        *redis.Client
	email      string
}

func NewNotificacionWorker(webhook *infra.WebhookClient, cb *infra.CircuitBreaker, dispatcher *Dispatcher, rdb *redis.Client, email string) *NotificacionWorker {
	return &NotificacionWorker{
		webhook:    webhook,
		cb:         cb,
		dispatcher: dispatcher,
		rdb:        rdb,
		email:      email,
	}
}

// Process delivers one alert. The originating sale is already committed;
// every failure path ends in a log line or the DLQ, never an error upstream.
func (w *NotificacionWorker) Process(ctx context.Context, raw json.RawMessage) {
	var alerta service.AlertaReorden
	if err := json.Unmarshal(raw, &alerta); err != nil {
		log.Error().Err(err).Msg("notificacion_worker: invalid payload")
		return
	}

	if w.webhook != nil && w.webhook.Habilitado() {
		payload := infra.ReordenPayload{
			SucursalID:   alerta.SucursalID.String(),
			ProductoID:   alerta.ProductoID.String(),
			Producto:     alerta.Producto,
			Stock:        alerta.Stock,
			PuntoReorden: alerta.PuntoReorden,
			EmitidoEn:    time.Now().UTC().Format(time.RFC3339),
		}
		err := withRetry(ctx, maxEntregaIntentos, func(attempt int) error {
			return w.cb.Execute(func() error {
				return w.webhook.Notificar(ctx, payload)
			})
		})
		if err != nil {
			log.Error().Err(err).
				Str("producto_id", alerta.ProductoID.String()).
				Msg("notificacion_worker: webhook failed after all retries")
			SendToDLQ(ctx, w.rdb, QueueNotificaciones, "reorden", raw,
				fmt.Sprintf("webhook failed after %d attempts: %v", maxEntregaIntentos, err),
				maxEntregaIntentos)
		} else {
			log.Info().
				Str("producto_id", alerta.ProductoID.String()).
				Int("stock", alerta.Stock).
				Msg("notificacion_worker: webhook delivered")
		}
	}

	if w.email != "" && w.dispatcher != nil {
		emailJob := EmailJobPayload{
			ToEmail: w.email,
			Subject: fmt.Sprintf("Reposición pendiente: %s", alerta.Producto),
			Body: fmt.Sprintf(
				"El producto %s quedó con stock %d (punto de reorden: %d) en la sucursal %s.",
				alerta.Producto, alerta.Stock, alerta.PuntoReorden, alerta.SucursalID),
		}
		if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
			log.Warn().Err(err).Msg("notificacion_worker: failed to enqueue email")
		}
	}
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
