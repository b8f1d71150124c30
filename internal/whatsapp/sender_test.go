package whatsapp

import (
	"context"
	"testing"

	"github.com/healthassist/whatsapp-gateway/internal/model"
)

// scriptedDeliverer returns its results in order; the last one repeats.
type scriptedDeliverer struct {
	results []model.DeliveryResult
	calls   int
}

func (d *scriptedDeliverer) Send(ctx context.Context, to, text string) model.DeliveryResult {
	i := d.calls
	if i >= len(d.results) {
		i = len(d.results) - 1
	}
	d.calls++
	return d.results[i]
}

func rateLimited() model.DeliveryResult {
	return model.DeliveryResult{ErrorKind: model.ErrKindRateLimited, HTTPStatus: 429, Err: "rate limit exceeded"}
}

func serverError(status int) model.DeliveryResult {
	return model.DeliveryResult{ErrorKind: model.ErrKindServerError, HTTPStatus: status, Err: "server error"}
}

func success() model.DeliveryResult {
	return model.DeliveryResult{Succeeded: true, HTTPStatus: 200, MessageID: "wamid.OK"}
}

func TestSendWithRetrySucceedsFirstTry(t *testing.T) {
	d := &scriptedDeliverer{results: []model.DeliveryResult{success()}}
	res := NewSender(d).SendWithRetry(context.Background(), "+1234567890", "hi", 2)

	if !res.Succeeded {
		t.Fatal("want success")
	}
	if d.calls != 1 {
		t.Errorf("calls = %d, want 1", d.calls)
	}
	if res.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", res.Attempts)
	}
}

func TestSendWithRetryRecoversAfterTransientFailure(t *testing.T) {
	d := &scriptedDeliverer{results: []model.DeliveryResult{serverError(503), rateLimited(), success()}}
	res := NewSender(d).SendWithRetry(context.Background(), "+1234567890", "hi", 2)

	if !res.Succeeded {
		t.Fatalf("want success, got %s", res.Err)
	}
	if d.calls != 3 {
		t.Errorf("calls = %d, want 3", d.calls)
	}
	if res.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", res.Attempts)
	}
}

func TestSendWithRetryExhaustsBudget(t *testing.T) {
	d := &scriptedDeliverer{results: []model.DeliveryResult{rateLimited()}}
	res := NewSender(d).SendWithRetry(context.Background(), "+1234567890", "hi", 2)

	if res.Succeeded {
		t.Fatal("want failure")
	}
	// maxRetries+1 attempts, never more.
	if d.calls != 3 {
		t.Errorf("calls = %d, want 3", d.calls)
	}
	if res.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", res.Attempts)
	}
	if res.ErrorKind != model.ErrKindRateLimited {
		t.Errorf("kind = %s, want last failure's classification", res.ErrorKind)
	}
}

func TestSendWithRetryStopsOnNonRetryable(t *testing.T) {
	nonRetryable := []model.DeliveryResult{
		{ErrorKind: model.ErrKindValidation},
		{ErrorKind: model.ErrKindConfiguration},
		{ErrorKind: model.ErrKindAuthentication, HTTPStatus: 401},
		{ErrorKind: model.ErrKindForbidden, HTTPStatus: 403},
		{ErrorKind: model.ErrKindBadRequest, HTTPStatus: 400},
		{ErrorKind: model.ErrKindTimeout},
		{ErrorKind: model.ErrKindConnection},
		{ErrorKind: model.ErrKindUnexpected, HTTPStatus: 418},
		// Right kind, status outside the retryable set.
		{ErrorKind: model.ErrKindServerError, HTTPStatus: 501},
	}

	for _, failure := range nonRetryable {
		t.Run(failure.ErrorKind.String(), func(t *testing.T) {
			d := &scriptedDeliverer{results: []model.DeliveryResult{failure}}
			res := NewSender(d).SendWithRetry(context.Background(), "+1234567890", "hi", 5)

			if d.calls != 1 {
				t.Errorf("calls = %d, want 1 (no retry)", d.calls)
			}
			if res.Attempts != 1 {
				t.Errorf("Attempts = %d, want 1", res.Attempts)
			}
		})
	}
}

func TestSendWithRetryZeroBudget(t *testing.T) {
	d := &scriptedDeliverer{results: []model.DeliveryResult{rateLimited()}}
	res := NewSender(d).SendWithRetry(context.Background(), "+1234567890", "hi", 0)

	if d.calls != 1 {
		t.Errorf("calls = %d, want 1", d.calls)
	}
	if res.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", res.Attempts)
	}
}

func TestSendWithRetryNegativeBudgetClamped(t *testing.T) {
	d := &scriptedDeliverer{results: []model.DeliveryResult{rateLimited()}}
	NewSender(d).SendWithRetry(context.Background(), "+1234567890", "hi", -3)

	if d.calls != 1 {
		t.Errorf("calls = %d, want 1", d.calls)
	}
}

func TestSendWithRetryHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &scriptedDeliverer{results: []model.DeliveryResult{rateLimited()}}
	res := NewSender(d).SendWithRetry(ctx, "+1234567890", "hi", 5)

	if d.calls != 1 {
		t.Errorf("calls = %d, want 1 (canceled context stops retries)", d.calls)
	}
	if res.Succeeded {
		t.Fatal("want failure")
	}
}
