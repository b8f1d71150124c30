package broadcast

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/healthassist/whatsapp-gateway/internal/logger"
	"github.com/healthassist/whatsapp-gateway/internal/metrics"
	"github.com/healthassist/whatsapp-gateway/internal/model"
	"github.com/healthassist/whatsapp-gateway/internal/repository"
	"github.com/healthassist/whatsapp-gateway/internal/util"
	"go.uber.org/zap"
)

// Sender delivers one message with bounded retry. Broadcast uses the
// same retry budget as interactive sends.
type Sender interface {
	SendWithRetry(ctx context.Context, to, text string, maxRetries int) model.DeliveryResult
}

// Coordinator fans a single alert out to every active user and
// aggregates per-recipient outcomes. Fan-out runs on a bounded worker
// group; each recipient writes exactly one outcome slot, so aggregation
// needs no shared counters.
type Coordinator struct {
	store       repository.UserStore
	sender      Sender
	deliveries  repository.DeliveriesRepository // nil disables the delivery log
	concurrency int
	maxRetries  int
}

func New(
	store repository.UserStore,
	sender Sender,
	deliveries repository.DeliveriesRepository,
	concurrency, maxRetries int,
) *Coordinator {
	if concurrency < 1 {
		concurrency = 8
	}
	if maxRetries < 0 {
		maxRetries = 2
	}
	return &Coordinator{
		store:       store,
		sender:      sender,
		deliveries:  deliveries,
		concurrency: concurrency,
		maxRetries:  maxRetries,
	}
}

// Broadcast sends message to every active user. Zero recipients is not
// an error: the summary comes back with Targeted=0. The summary always
// holds Succeeded+Failed == Targeted, and Errors stays nil when every
// delivery succeeded.
func (c *Coordinator) Broadcast(ctx context.Context, message string, priority model.AlertPriority) (model.BroadcastSummary, error) {
	users, err := c.store.ListActive(ctx)
	if err != nil {
		return model.BroadcastSummary{}, fmt.Errorf("load active users: %w", err)
	}

	summary := model.BroadcastSummary{
		ID:       util.NewULID(),
		Targeted: len(users),
	}

	logger.Log.Info("broadcasting alert",
		zap.String("broadcast_id", summary.ID),
		zap.String("priority", string(priority)),
		zap.Int("targeted", summary.Targeted))

	if len(users) == 0 {
		return summary, nil
	}

	formatted := FormatAlert(message, priority)
	outcomes := make([]model.RecipientOutcome, len(users))

	workers := c.concurrency
	if workers > len(users) {
		workers = len(users)
	}

	idxCh := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range idxCh {
				outcomes[i] = c.sendToRecipient(ctx, users[i].PhoneNumber, formatted)
			}
		}()
	}
	for i := range users {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()

	// Aggregate in recipient order for a deterministic error list.
	for _, outcome := range outcomes {
		if outcome.Succeeded {
			summary.Succeeded++
			continue
		}
		summary.Failed++
		if outcome.ErrorMessage != "" {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %s", outcome.Recipient, outcome.ErrorMessage))
		}
	}

	logger.Log.Info("broadcast completed",
		zap.String("broadcast_id", summary.ID),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed))

	return summary, nil
}

func (c *Coordinator) sendToRecipient(ctx context.Context, recipient, message string) model.RecipientOutcome {
	result := c.sender.SendWithRetry(ctx, recipient, message, c.maxRetries)
	c.recordDelivery(ctx, recipient, result)

	if result.Succeeded {
		metrics.BroadcastDeliveriesTotal.WithLabelValues("delivered").Inc()
		return model.RecipientOutcome{Recipient: recipient, Succeeded: true}
	}

	metrics.BroadcastDeliveriesTotal.WithLabelValues("failed").Inc()
	logger.Log.Warn("broadcast delivery failed",
		zap.String("recipient", recipient),
		zap.String("error_kind", result.ErrorKind.String()),
		zap.Int("attempts", result.Attempts))

	return model.RecipientOutcome{
		Recipient:    recipient,
		ErrorMessage: result.Err,
	}
}

func (c *Coordinator) recordDelivery(ctx context.Context, recipient string, res model.DeliveryResult) {
	if c.deliveries == nil {
		return
	}

	status := model.DeliverySent
	if !res.Succeeded {
		status = model.DeliveryFailed
	}
	rec := model.DeliveryRecord{
		ID:        util.NewULID(),
		Recipient: recipient,
		Kind:      model.KindBroadcast,
		Status:    status,
		ErrorKind: res.ErrorKind.String(),
		Attempts:  res.Attempts,
		CreatedAt: time.Now(),
	}
	if err := c.deliveries.Insert(ctx, rec); err != nil {
		logger.Log.Warn("delivery log insert failed", zap.Error(err))
	}
}

var priorityGlyphs = map[model.AlertPriority]string{
	model.PriorityLow:    "ℹ️",
	model.PriorityMedium: "⚠️",
	model.PriorityHigh:   "🚨",
}

var priorityLabels = map[model.AlertPriority]string{
	model.PriorityLow:    "INFO",
	model.PriorityMedium: "ALERT",
	model.PriorityHigh:   "URGENT",
}

// FormatAlert prefixes the message with the priority glyph/label pair.
// Unrecognized priorities fall back to the medium formatting.
func FormatAlert(message string, priority model.AlertPriority) string {
	glyph, ok := priorityGlyphs[priority]
	if !ok {
		glyph = priorityGlyphs[model.PriorityMedium]
	}
	label, ok := priorityLabels[priority]
	if !ok {
		label = priorityLabels[model.PriorityMedium]
	}

	return fmt.Sprintf("%s %s: %s\n\n📱 Health Assistant", glyph, label, message)
}
