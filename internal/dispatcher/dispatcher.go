package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/healthassist/whatsapp-gateway/internal/logger"
	"github.com/healthassist/whatsapp-gateway/internal/metrics"
	"github.com/healthassist/whatsapp-gateway/internal/model"
	"github.com/healthassist/whatsapp-gateway/internal/repository"
	"github.com/healthassist/whatsapp-gateway/internal/responder"
	"github.com/healthassist/whatsapp-gateway/internal/util"
	"github.com/healthassist/whatsapp-gateway/internal/webhook"
	"go.uber.org/zap"
)

// fallbackRetries bounds the single lower-effort apology send that
// follows a failed reply.
const fallbackRetries = 1

// Sender delivers one message with bounded retry. Satisfied by
// *whatsapp.Sender.
type Sender interface {
	SendWithRetry(ctx context.Context, to, text string, maxRetries int) model.DeliveryResult
}

// Responder generates canned reply text. Satisfied by
// *responder.Responder.
type Responder interface {
	Reply(text string) string
	Ack(typ model.MessageType) string
	Fallback(kind responder.FallbackKind) string
}

// Dispatcher walks a validated envelope entry→change→message and turns
// each inbound message into an outbound reply. Failures are isolated at
// the granularity they occur: one bad message, change or entry never
// aborts its siblings.
type Dispatcher struct {
	store      repository.UserStore
	responder  Responder
	sender     Sender
	deliveries repository.DeliveriesRepository // nil disables the delivery log
	maxRetries int
}

func New(
	store repository.UserStore,
	resp Responder,
	sender Sender,
	deliveries repository.DeliveriesRepository,
	maxRetries int,
) *Dispatcher {
	if maxRetries < 0 {
		maxRetries = 2
	}
	return &Dispatcher{
		store:      store,
		responder:  resp,
		sender:     sender,
		deliveries: deliveries,
		maxRetries: maxRetries,
	}
}

// Report summarizes one webhook request. The HTTP layer returns an
// error status only when ProcessedEntries is zero and Errors is not:
// partial success is a success at the transport level.
type Report struct {
	ProcessedEntries int
	Errors           []string
}

// AllFailed reports total failure: every entry errored.
func (r Report) AllFailed() bool {
	return r.ProcessedEntries == 0 && len(r.Errors) > 0
}

// ProcessEnvelope dispatches every entry of an already signature-checked
// and envelope-validated payload, in payload order.
func (d *Dispatcher) ProcessEnvelope(ctx context.Context, env model.Envelope) Report {
	var report Report

	for _, entry := range env.Entry {
		if err := d.processEntry(ctx, entry); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("entry processing failed: %v", err))
			logger.Log.Error("entry processing failed",
				zap.String("entry_id", entry.ID), zap.Error(err))
			continue
		}
		report.ProcessedEntries++
	}

	logger.Log.Info("webhook processing completed",
		zap.Int("processed_entries", report.ProcessedEntries),
		zap.Int("errors", len(report.Errors)))

	return report
}

func (d *Dispatcher) processEntry(ctx context.Context, entry model.Entry) error {
	if err := webhook.ValidateEntry(entry); err != nil {
		return err
	}

	for _, change := range entry.Changes {
		if err := d.processChange(ctx, change); err != nil {
			// One bad change never aborts its siblings.
			logger.Log.Error("change processing failed",
				zap.String("entry_id", entry.ID),
				zap.String("field", change.Field),
				zap.Error(err))
		}
	}

	return nil
}

func (d *Dispatcher) processChange(ctx context.Context, change model.Change) error {
	skip, err := webhook.ValidateChange(change)
	if err != nil {
		return err
	}
	if skip {
		logger.Log.Debug("ignoring non-message change", zap.String("field", change.Field))
		return nil
	}

	for _, msg := range change.Value.Messages {
		if err := d.processMessage(ctx, msg); err != nil {
			logger.Log.Error("message processing failed",
				zap.String("message_id", msg.ID), zap.Error(err))
		}
	}

	return nil
}

func (d *Dispatcher) processMessage(ctx context.Context, msg model.Message) error {
	extracted, err := webhook.Extract(msg)
	if err != nil {
		metrics.WebhookMessagesTotal.WithLabelValues(model.TypeUnknown.String(), "failed").Inc()
		return err
	}

	logger.Log.Info("user message received",
		zap.String("from", extracted.From),
		zap.String("type", extracted.RawType),
		zap.String("message_id", extracted.ID))

	// Registry failure must never suppress the user's reply.
	if user, err := d.store.Touch(ctx, extracted.From); err != nil {
		logger.Log.Error("user registry update failed",
			zap.String("phone", extracted.From), zap.Error(err))
	} else {
		logger.Log.Debug("user processed",
			zap.String("phone", user.PhoneNumber),
			zap.Int64("message_count", user.MessageCount),
			zap.Bool("active", user.IsActive))
	}

	if extracted.Type == model.TypeText {
		d.handleText(ctx, extracted)
	} else {
		d.handleNonText(ctx, extracted)
	}

	metrics.WebhookMessagesTotal.WithLabelValues(extracted.Type.String(), "processed").Inc()
	return nil
}

// handleText replies to a text message. A failed reply triggers exactly
// one bounded fallback attempt carrying a generic apology; a named step,
// not a side effect of error handling.
func (d *Dispatcher) handleText(ctx context.Context, msg model.ExtractedMessage) {
	reply := d.responder.Reply(msg.TextBody())

	result := d.sender.SendWithRetry(ctx, msg.From, reply, d.maxRetries)
	d.recordDelivery(ctx, msg.From, model.KindReply, result)
	if result.Succeeded {
		logger.Log.Info("reply sent",
			zap.String("to", msg.From), zap.Int("attempts", result.Attempts))
		return
	}

	logger.Log.Warn("reply send failed, attempting fallback",
		zap.String("to", msg.From),
		zap.String("error_kind", result.ErrorKind.String()),
		zap.String("error", result.Err))

	fallback := d.responder.Fallback(responder.FallbackNetwork)
	fbResult := d.sender.SendWithRetry(ctx, msg.From, fallback, fallbackRetries)
	d.recordDelivery(ctx, msg.From, model.KindFallback, fbResult)
	if fbResult.Succeeded {
		logger.Log.Info("fallback sent", zap.String("to", msg.From))
	} else {
		logger.Log.Error("fallback send failed",
			zap.String("to", msg.From), zap.String("error", fbResult.Err))
	}
}

func (d *Dispatcher) handleNonText(ctx context.Context, msg model.ExtractedMessage) {
	ack := d.responder.Ack(msg.Type)

	result := d.sender.SendWithRetry(ctx, msg.From, ack, d.maxRetries)
	d.recordDelivery(ctx, msg.From, model.KindAck, result)
	if result.Succeeded {
		logger.Log.Info("non-text acknowledgement sent",
			zap.String("to", msg.From), zap.String("type", msg.RawType))
	} else {
		logger.Log.Warn("non-text acknowledgement failed",
			zap.String("to", msg.From), zap.String("error", result.Err))
	}
}

func (d *Dispatcher) recordDelivery(ctx context.Context, recipient string, kind model.DeliveryKind, res model.DeliveryResult) {
	if d.deliveries == nil {
		return
	}

	status := model.DeliverySent
	if !res.Succeeded {
		status = model.DeliveryFailed
	}
	rec := model.DeliveryRecord{
		ID:        util.NewULID(),
		Recipient: recipient,
		Kind:      kind,
		Status:    status,
		ErrorKind: res.ErrorKind.String(),
		Attempts:  res.Attempts,
		CreatedAt: time.Now(),
	}
	if err := d.deliveries.Insert(ctx, rec); err != nil {
		logger.Log.Warn("delivery log insert failed", zap.Error(err))
	}
}
