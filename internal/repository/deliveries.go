package repository

import (
	"context"

	"github.com/healthassist/whatsapp-gateway/internal/model"
	"github.com/jmoiron/sqlx"
)

// DeliveriesRepository records outbound send outcomes in ClickHouse and
// serves the admin delivery report. Optional: a nil repository means the
// delivery log is disabled.
type DeliveriesRepository interface {
	Insert(ctx context.Context, rec model.DeliveryRecord) error
	List(ctx context.Context, recipient string, status model.DeliveryStatus, limit, offset int) ([]model.DeliveryRecord, error)
}

type chDeliveriesRepository struct {
	ch *sqlx.DB // ClickHouse connection
}

func NewCHDeliveriesRepository(ch *sqlx.DB) DeliveriesRepository {
	return &chDeliveriesRepository{ch: ch}
}

func (r *chDeliveriesRepository) Insert(ctx context.Context, rec model.DeliveryRecord) error {
	_, err := r.ch.ExecContext(ctx, `
		INSERT INTO wagw.deliveries (id, recipient, kind, status, error_kind, attempts, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Recipient, rec.Kind.String(), rec.Status.String(), rec.ErrorKind, rec.Attempts, rec.CreatedAt)
	return err
}

func (r *chDeliveriesRepository) List(ctx context.Context, recipient string, status model.DeliveryStatus, limit, offset int) ([]model.DeliveryRecord, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	q := `
		SELECT id, recipient, kind, status, error_kind, attempts, created_at
		FROM wagw.deliveries
		WHERE 1 = 1
	`
	args := []any{}

	if recipient != "" {
		q += " AND recipient = ?"
		args = append(args, recipient)
	}
	if status != "" {
		q += " AND status = ?"
		args = append(args, status.String())
	}

	q += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var rows []model.DeliveryRecord
	if err := r.ch.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
