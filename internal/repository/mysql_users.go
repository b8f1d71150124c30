package repository

import (
	"context"
	"database/sql"

	"github.com/healthassist/whatsapp-gateway/internal/model"
	"github.com/jmoiron/sqlx"
)

// MySQLUserStore persists the registry in a users table. Touch relies
// on the primary key upsert so concurrent first messages from the same
// number cannot create duplicates.
type MySQLUserStore struct {
	db *sqlx.DB
}

var _ UserStore = (*MySQLUserStore)(nil)

func NewMySQLUserStore(db *sqlx.DB) *MySQLUserStore {
	return &MySQLUserStore{db: db}
}

func (s *MySQLUserStore) Touch(ctx context.Context, phone string) (model.User, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (phone_number, first_seen, last_activity, message_count, is_active)
		VALUES (?, NOW(), NOW(), 1, 1)
		ON DUPLICATE KEY UPDATE
			message_count = message_count + 1,
			last_activity = NOW()
	`, phone)
	if err != nil {
		return model.User{}, err
	}

	u, err := s.Get(ctx, phone)
	if err != nil {
		return model.User{}, err
	}
	if u == nil {
		return model.User{}, sql.ErrNoRows
	}
	return *u, nil
}

func (s *MySQLUserStore) Get(ctx context.Context, phone string) (*model.User, error) {
	var u model.User
	err := s.db.GetContext(ctx, &u, `
		SELECT phone_number, first_seen, last_activity, message_count, is_active
		  FROM users
		 WHERE phone_number = ? LIMIT 1
	`, phone)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MySQLUserStore) ListActive(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := s.db.SelectContext(ctx, &users, `
		SELECT phone_number, first_seen, last_activity, message_count, is_active
		  FROM users
		 WHERE is_active = 1
		 ORDER BY first_seen
	`)
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (s *MySQLUserStore) Counts(ctx context.Context) (total, active int64, err error) {
	row := struct {
		Total  int64 `db:"total"`
		Active int64 `db:"active"`
	}{}
	err = s.db.GetContext(ctx, &row, `
		SELECT COUNT(*) AS total, COALESCE(SUM(is_active), 0) AS active FROM users
	`)
	if err != nil {
		return 0, 0, err
	}
	return row.Total, row.Active, nil
}

func (s *MySQLUserStore) SetActive(ctx context.Context, phone string, active bool) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET is_active = ? WHERE phone_number = ?
	`, active, phone)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
