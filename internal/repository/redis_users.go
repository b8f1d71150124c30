package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/healthassist/whatsapp-gateway/internal/model"
	"github.com/redis/go-redis/v9"
)

const (
	redisUserKeyPrefix  = "wagw:user:"
	redisAllUsersKey    = "wagw:users:all"
	redisActiveUsersKey = "wagw:users:active"
)

// RedisUserStore keeps each user as a hash plus two membership sets.
// Counter updates are not transactional across fields; last-write-wins
// is acceptable for activity tracking.
type RedisUserStore struct {
	rdb *redis.Client
}

var _ UserStore = (*RedisUserStore)(nil)

func NewRedisUserStore(rdb *redis.Client) *RedisUserStore {
	return &RedisUserStore{rdb: rdb}
}

func userKey(phone string) string { return redisUserKeyPrefix + phone }

func (s *RedisUserStore) Touch(ctx context.Context, phone string) (model.User, error) {
	now := time.Now()

	exists, err := s.rdb.SIsMember(ctx, redisAllUsersKey, phone).Result()
	if err != nil {
		return model.User{}, err
	}

	if !exists {
		pipe := s.rdb.TxPipeline()
		pipe.HSet(ctx, userKey(phone), map[string]any{
			"phone_number":  phone,
			"first_seen":    now.Format(time.RFC3339Nano),
			"last_activity": now.Format(time.RFC3339Nano),
			"message_count": 1,
			"is_active":     1,
		})
		pipe.SAdd(ctx, redisAllUsersKey, phone)
		pipe.SAdd(ctx, redisActiveUsersKey, phone)
		if _, err := pipe.Exec(ctx); err != nil {
			return model.User{}, err
		}
	} else {
		pipe := s.rdb.TxPipeline()
		pipe.HIncrBy(ctx, userKey(phone), "message_count", 1)
		pipe.HSet(ctx, userKey(phone), "last_activity", now.Format(time.RFC3339Nano))
		if _, err := pipe.Exec(ctx); err != nil {
			return model.User{}, err
		}
	}

	u, err := s.Get(ctx, phone)
	if err != nil {
		return model.User{}, err
	}
	if u == nil {
		// Touched a moment ago; racing deletes are not a supported case.
		return model.User{PhoneNumber: phone, FirstSeen: now, LastActivity: now, MessageCount: 1, IsActive: true}, nil
	}
	return *u, nil
}

func (s *RedisUserStore) Get(ctx context.Context, phone string) (*model.User, error) {
	fields, err := s.rdb.HGetAll(ctx, userKey(phone)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	u := hashToUser(phone, fields)
	return &u, nil
}

func (s *RedisUserStore) ListActive(ctx context.Context) ([]model.User, error) {
	phones, err := s.rdb.SMembers(ctx, redisActiveUsersKey).Result()
	if err != nil {
		return nil, err
	}

	users := make([]model.User, 0, len(phones))
	for _, phone := range phones {
		u, err := s.Get(ctx, phone)
		if err != nil {
			return nil, err
		}
		if u != nil && u.IsActive {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (s *RedisUserStore) Counts(ctx context.Context) (total, active int64, err error) {
	total, err = s.rdb.SCard(ctx, redisAllUsersKey).Result()
	if err != nil {
		return 0, 0, err
	}
	active, err = s.rdb.SCard(ctx, redisActiveUsersKey).Result()
	if err != nil {
		return 0, 0, err
	}
	return total, active, nil
}

func (s *RedisUserStore) SetActive(ctx context.Context, phone string, active bool) (bool, error) {
	exists, err := s.rdb.SIsMember(ctx, redisAllUsersKey, phone).Result()
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	pipe := s.rdb.TxPipeline()
	if active {
		pipe.HSet(ctx, userKey(phone), "is_active", 1)
		pipe.SAdd(ctx, redisActiveUsersKey, phone)
	} else {
		pipe.HSet(ctx, userKey(phone), "is_active", 0)
		pipe.SRem(ctx, redisActiveUsersKey, phone)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func hashToUser(phone string, fields map[string]string) model.User {
	u := model.User{PhoneNumber: phone}
	if t, err := time.Parse(time.RFC3339Nano, fields["first_seen"]); err == nil {
		u.FirstSeen = t
	}
	if t, err := time.Parse(time.RFC3339Nano, fields["last_activity"]); err == nil {
		u.LastActivity = t
	}
	if n, err := strconv.ParseInt(fields["message_count"], 10, 64); err == nil {
		u.MessageCount = n
	}
	u.IsActive = fields["is_active"] == "1"
	return u
}
