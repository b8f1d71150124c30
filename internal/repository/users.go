package repository

import (
	"context"

	"github.com/healthassist/whatsapp-gateway/internal/model"
)

// UserStore is the user registry the dispatcher and broadcast
// coordinator talk to. Implementations own their concurrency
// discipline; callers only require that concurrent updates to a single
// key are not corrupted (last-write-wins on activity counters is fine).
type UserStore interface {
	// Touch registers the phone number on first contact and bumps
	// message_count / last_activity on every call.
	Touch(ctx context.Context, phone string) (model.User, error)

	// Get returns the user or (nil, nil) when not registered.
	Get(ctx context.Context, phone string) (*model.User, error)

	// ListActive returns every user eligible for broadcasts.
	ListActive(ctx context.Context) ([]model.User, error)

	// Counts returns total and active user counts.
	Counts(ctx context.Context) (total, active int64, err error)

	// SetActive toggles broadcast eligibility. Returns false when the
	// user is not registered.
	SetActive(ctx context.Context, phone string, active bool) (bool, error)
}
