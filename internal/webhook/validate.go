package webhook

import (
	"fmt"

	"github.com/healthassist/whatsapp-gateway/internal/model"
)

// Level names the payload nesting level a validation error refers to.
type Level string

const (
	LevelEnvelope Level = "envelope"
	LevelEntry    Level = "entry"
	LevelChange   Level = "change"
	LevelMessage  Level = "message"
)

// ValidationError is a structural rejection at one payload level.
// Validation short-circuits at the first invalid level and never
// partially mutates anything.
type ValidationError struct {
	Level  Level
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: field %q %s", e.Level, e.Field, e.Reason)
}

func invalid(level Level, field, reason string) *ValidationError {
	return &ValidationError{Level: level, Field: field, Reason: reason}
}

// ValidateEnvelope checks the top-level payload: recognized object tag
// and a non-empty entry sequence. JSON shape errors (non-object body)
// are caught earlier by the decoder.
func ValidateEnvelope(env model.Envelope) error {
	if env.Object == "" {
		return invalid(LevelEnvelope, "object", "is missing")
	}
	if env.Object != model.ObjectWhatsApp {
		return invalid(LevelEnvelope, "object", fmt.Sprintf("has unrecognized value %q", env.Object))
	}
	if env.Entry == nil {
		return invalid(LevelEnvelope, "entry", "is missing")
	}
	if len(env.Entry) == 0 {
		return invalid(LevelEnvelope, "entry", "is empty")
	}
	return nil
}

// ValidateEntry checks one entry: identifier and changes sequence must
// be present. An empty changes array is fine, there is just nothing to do.
func ValidateEntry(entry model.Entry) error {
	if entry.ID == "" {
		return invalid(LevelEntry, "id", "is missing")
	}
	if entry.Changes == nil {
		return invalid(LevelEntry, "changes", "is missing")
	}
	return nil
}

// ValidateChange checks one change. It returns skip=true for change
// fields other than "messages": providers send many unrelated change
// types and those pass through without being an error.
func ValidateChange(change model.Change) (skip bool, err error) {
	if change.Field == "" {
		return false, invalid(LevelChange, "field", "is missing")
	}
	if change.Field != model.FieldMessages {
		return true, nil
	}
	return false, nil
}
