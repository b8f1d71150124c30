package whatsapp

import (
	"context"

	"github.com/healthassist/whatsapp-gateway/internal/metrics"
	"github.com/healthassist/whatsapp-gateway/internal/model"
)

// Deliverer performs one send attempt. Satisfied by *Client.
type Deliverer interface {
	Send(ctx context.Context, to, text string) model.DeliveryResult
}

// Sender wraps a Deliverer with bounded retry on transient failures.
// Only rate_limited/server_error outcomes with a status in the fixed
// retryable set are repeated; anything else means the request itself is
// wrong and returns immediately.
type Sender struct {
	client Deliverer
}

func NewSender(client Deliverer) *Sender {
	return &Sender{client: client}
}

// SendWithRetry makes at most maxRetries+1 attempts and reports the
// attempts actually made in the result. Exhausting the budget returns
// the last failure's classification, never a synthetic error.
func (s *Sender) SendWithRetry(ctx context.Context, to, text string, maxRetries int) model.DeliveryResult {
	if maxRetries < 0 {
		maxRetries = 0
	}

	var last model.DeliveryResult
	for attempt := 0; attempt <= maxRetries; attempt++ {
		last = s.client.Send(ctx, to, text)
		last.Attempts = attempt + 1

		if last.Succeeded {
			metrics.SendAttemptsTotal.WithLabelValues("success").Inc()
			return last
		}
		metrics.SendAttemptsTotal.WithLabelValues(last.ErrorKind.String()).Inc()

		if !last.Retryable() {
			return last
		}
		if ctx.Err() != nil {
			return last
		}
	}

	return last
}
