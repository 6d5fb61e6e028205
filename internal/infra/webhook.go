package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ReordenPayload is what the worker pool POSTs to the configured webhook when
// a product crosses its reorder point.
type ReordenPayload struct {
	SucursalID   string `json:"sucursal_id"`
	ProductoID   string `json:"producto_id"`
	Producto     string `json:"producto"`
	Stock        int    `json:"stock"`
	PuntoReorden int    `json:"punto_reorden"`
	EmitidoEn    string `json:"emitido_en"`
}

// WebhookClient delivers reorder alerts to an external endpoint. Delivery is
// best-effort: the sale that produced the alert is already committed and no
// failure here propagates back to it.
type WebhookClient struct {
	url        string
	httpClient *http.Client
}

func NewWebhookClient(url string) *WebhookClient {
	return &WebhookClient{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Habilitado reports whether a webhook URL was configured.
func (c *WebhookClient) Habilitado() bool { return c.url != "" }

// Notificar POSTs the payload and treats any non-2xx as failure so the
// circuit breaker and retry queue see it.
func (c *WebhookClient) Notificar(ctx context.Context, payload ReordenPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: endpoint returned %d", resp.StatusCode)
	}
	return nil
}
