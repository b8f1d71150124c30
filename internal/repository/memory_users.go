package repository

import (
	"context"
	"sync"
	"time"

	"github.com/healthassist/whatsapp-gateway/internal/model"
)

// MemoryUserStore is the first-pass registry: a mutex-guarded map.
// Contents do not survive a restart, which the delivery model accepts.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User
}

var _ UserStore = (*MemoryUserStore)(nil)

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*model.User)}
}

func (s *MemoryUserStore) Touch(ctx context.Context, phone string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	u, ok := s.users[phone]
	if !ok {
		u = &model.User{
			PhoneNumber: phone,
			FirstSeen:   now,
			IsActive:    true,
		}
		s.users[phone] = u
	}
	u.MessageCount++
	u.LastActivity = now

	return *u, nil
}

func (s *MemoryUserStore) Get(ctx context.Context, phone string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[phone]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

func (s *MemoryUserStore) ListActive(ctx context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		if u.IsActive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *MemoryUserStore) Counts(ctx context.Context) (total, active int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		total++
		if u.IsActive {
			active++
		}
	}
	return total, active, nil
}

func (s *MemoryUserStore) SetActive(ctx context.Context, phone string, active bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[phone]
	if !ok {
		return false, nil
	}
	u.IsActive = active
	return true, nil
}
