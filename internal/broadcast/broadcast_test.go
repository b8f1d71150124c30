package broadcast

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/healthassist/whatsapp-gateway/internal/model"
	"github.com/healthassist/whatsapp-gateway/internal/repository"
)

// fanoutSender fails the recipients named in failFor and counts
// concurrent in-flight sends.
type fanoutSender struct {
	mu       sync.Mutex
	failFor  map[string]string // recipient -> error message
	sent     []string
	inFlight int
	maxSeen  int
}

func newFanoutSender() *fanoutSender {
	return &fanoutSender{failFor: map[string]string{}}
}

func (s *fanoutSender) SendWithRetry(ctx context.Context, to, text string, maxRetries int) model.DeliveryResult {
	s.mu.Lock()
	s.sent = append(s.sent, to)
	s.inFlight++
	if s.inFlight > s.maxSeen {
		s.maxSeen = s.inFlight
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if msg, ok := s.failFor[to]; ok {
		return model.DeliveryResult{ErrorKind: model.ErrKindRateLimited, HTTPStatus: 429, Err: msg, Attempts: maxRetries + 1}
	}
	return model.DeliveryResult{Succeeded: true, HTTPStatus: 200, Attempts: 1}
}

type brokenStore struct{}

func (brokenStore) Touch(ctx context.Context, phone string) (model.User, error) {
	return model.User{}, errors.New("unavailable")
}
func (brokenStore) Get(ctx context.Context, phone string) (*model.User, error) {
	return nil, errors.New("unavailable")
}
func (brokenStore) ListActive(ctx context.Context) ([]model.User, error) {
	return nil, errors.New("unavailable")
}
func (brokenStore) Counts(ctx context.Context) (int64, int64, error) {
	return 0, 0, errors.New("unavailable")
}
func (brokenStore) SetActive(ctx context.Context, phone string, active bool) (bool, error) {
	return false, errors.New("unavailable")
}

func seededStore(t *testing.T, phones ...string) *repository.MemoryUserStore {
	t.Helper()
	store := repository.NewMemoryUserStore()
	for _, p := range phones {
		if _, err := store.Touch(context.Background(), p); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func TestBroadcastAllSucceed(t *testing.T) {
	store := seededStore(t, "+1111111111", "+2222222222", "+3333333333")
	sender := newFanoutSender()
	c := New(store, sender, nil, 4, 2)

	summary, err := c.Broadcast(context.Background(), "clinic open tomorrow", model.PriorityLow)
	if err != nil {
		t.Fatal(err)
	}

	if summary.Targeted != 3 || summary.Succeeded != 3 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Succeeded+summary.Failed != summary.Targeted {
		t.Fatal("accounting invariant violated")
	}
	if summary.Errors != nil {
		t.Fatalf("Errors = %v, want nil on full success", summary.Errors)
	}
	if summary.ID == "" {
		t.Fatal("missing broadcast id")
	}
	if len(sender.sent) != 3 {
		t.Fatalf("sent to %d recipients, want 3", len(sender.sent))
	}
}

func TestBroadcastPartialFailure(t *testing.T) {
	store := seededStore(t, "+1111111111", "+2222222222", "+3333333333")
	sender := newFanoutSender()
	sender.failFor["+2222222222"] = "rate limit exceeded"
	c := New(store, sender, nil, 4, 2)

	summary, err := c.Broadcast(context.Background(), "alert", model.PriorityHigh)
	if err != nil {
		t.Fatal(err)
	}

	if summary.Targeted != 3 || summary.Succeeded != 2 || summary.Failed != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(summary.Errors) != 1 {
		t.Fatalf("Errors = %v", summary.Errors)
	}
	if summary.Errors[0] != "+2222222222: rate limit exceeded" {
		t.Fatalf("error entry = %q, want \"<recipient>: <message>\"", summary.Errors[0])
	}
}

func TestBroadcastNoActiveUsers(t *testing.T) {
	sender := newFanoutSender()
	c := New(repository.NewMemoryUserStore(), sender, nil, 4, 2)

	summary, err := c.Broadcast(context.Background(), "anyone there?", model.PriorityMedium)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Targeted != 0 || summary.Succeeded != 0 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(sender.sent) != 0 {
		t.Fatal("sends attempted with zero recipients")
	}
}

func TestBroadcastStoreFailure(t *testing.T) {
	c := New(brokenStore{}, newFanoutSender(), nil, 4, 2)

	if _, err := c.Broadcast(context.Background(), "msg", model.PriorityMedium); err == nil {
		t.Fatal("want error when the registry is unavailable")
	}
}

func TestBroadcastConcurrencyBound(t *testing.T) {
	phones := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		phones = append(phones, "+1000000"+string(rune('0'+i/10))+string(rune('0'+i%10))+"0")
	}
	store := seededStore(t, phones...)
	sender := newFanoutSender()
	c := New(store, sender, nil, 3, 0)

	summary, err := c.Broadcast(context.Background(), "msg", model.PriorityMedium)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Succeeded != 20 {
		t.Fatalf("summary = %+v", summary)
	}
	if sender.maxSeen > 3 {
		t.Fatalf("observed %d concurrent sends, bound is 3", sender.maxSeen)
	}
}

func TestBroadcastFormatsMessage(t *testing.T) {
	store := seededStore(t, "+1111111111")
	var gotText string
	sender := &textCaptureSender{capture: &gotText}
	c := New(store, sender, nil, 1, 0)

	if _, err := c.Broadcast(context.Background(), "stock up on water", model.PriorityHigh); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(gotText, "🚨 URGENT: stock up on water") {
		t.Fatalf("sent text = %q", gotText)
	}
}

type textCaptureSender struct {
	capture *string
}

func (s *textCaptureSender) SendWithRetry(ctx context.Context, to, text string, maxRetries int) model.DeliveryResult {
	*s.capture = text
	return model.DeliveryResult{Succeeded: true, HTTPStatus: 200, Attempts: 1}
}

func TestFormatAlert(t *testing.T) {
	tests := []struct {
		priority model.AlertPriority
		prefix   string
	}{
		{model.PriorityLow, "ℹ️ INFO: check-up reminders available"},
		{model.PriorityMedium, "⚠️ ALERT: check-up reminders available"},
		{model.PriorityHigh, "🚨 URGENT: check-up reminders available"},
		{model.AlertPriority("bogus"), "⚠️ ALERT: check-up reminders available"},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			got := FormatAlert("check-up reminders available", tt.priority)
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("FormatAlert = %q, want prefix %q", got, tt.prefix)
			}
			if !strings.HasSuffix(got, "📱 Health Assistant") {
				t.Errorf("FormatAlert = %q, missing signature suffix", got)
			}
		})
	}
}

func TestParseAlertPriority(t *testing.T) {
	if model.ParseAlertPriority("low") != model.PriorityLow {
		t.Error("low")
	}
	if model.ParseAlertPriority("") != model.PriorityMedium {
		t.Error("empty should default to medium")
	}
	if model.ParseAlertPriority("critical") != model.PriorityMedium {
		t.Error("unknown should default to medium")
	}
}
