package webhook

import (
	"testing"

	"github.com/healthassist/whatsapp-gateway/internal/model"
)

func TestExtractText(t *testing.T) {
	got, err := Extract(model.Message{
		ID:   "wamid.1",
		From: "919876543210",
		Type: "text",
		Text: &model.Text{Body: "hello there"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.ID != "wamid.1" {
		t.Errorf("ID = %q", got.ID)
	}
	if got.From != "+919876543210" {
		t.Errorf("From = %q, want canonical +919876543210", got.From)
	}
	if got.Type != model.TypeText {
		t.Errorf("Type = %s", got.Type)
	}
	if got.TextBody() != "hello there" {
		t.Errorf("TextBody = %q", got.TextBody())
	}
}

func TestExtractTextMissingBody(t *testing.T) {
	// A text message with no text object still yields non-nil, empty text.
	got, err := Extract(model.Message{ID: "wamid.2", From: "+14155552671", Type: "text"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text == nil {
		t.Fatal("Text is nil for a text message")
	}
	if *got.Text != "" {
		t.Fatalf("Text = %q, want empty", *got.Text)
	}
}

func TestExtractNonText(t *testing.T) {
	got, err := Extract(model.Message{ID: "wamid.3", From: "+14155552671", Type: "image"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Type != model.TypeImage {
		t.Errorf("Type = %s", got.Type)
	}
	if got.Text != nil {
		t.Error("Text should be nil for non-text messages")
	}
}

func TestExtractUnknownTypePreservesRaw(t *testing.T) {
	got, err := Extract(model.Message{ID: "wamid.4", From: "+14155552671", Type: "reaction"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Type != model.TypeUnknown {
		t.Errorf("Type = %s, want unknown", got.Type)
	}
	if got.RawType != "reaction" {
		t.Errorf("RawType = %q, want raw tag preserved", got.RawType)
	}
}

func TestExtractMissingTypeDefaultsUnknown(t *testing.T) {
	got, err := Extract(model.Message{ID: "wamid.5", From: "+14155552671"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Type != model.TypeUnknown || got.RawType != "unknown" {
		t.Errorf("Type = %s RawType = %q", got.Type, got.RawType)
	}
}

func TestExtractRejections(t *testing.T) {
	tests := []struct {
		name string
		msg  model.Message
	}{
		{name: "missing id", msg: model.Message{From: "+14155552671", Type: "text"}},
		{name: "missing from", msg: model.Message{ID: "wamid.6", Type: "text"}},
		{name: "invalid phone", msg: model.Message{ID: "wamid.7", From: "not-a-number", Type: "text"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Extract(tt.msg); err == nil {
				t.Fatal("want error")
			}
		})
	}
}
