package model

import "time"

type DeliveryKind string

const (
	KindReply     DeliveryKind = "reply"
	KindFallback  DeliveryKind = "fallback"
	KindAck       DeliveryKind = "ack"
	KindBroadcast DeliveryKind = "broadcast"
)

func (k DeliveryKind) String() string { return string(k) }

type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

func (s DeliveryStatus) String() string { return string(s) }

func (s DeliveryStatus) Valid() bool {
	return s == DeliverySent || s == DeliveryFailed
}

// DeliveryRecord is the row persisted to ClickHouse for each outbound
// send outcome (replies, fallbacks, acks and broadcast deliveries).
type DeliveryRecord struct {
	ID        string         `db:"id"`
	Recipient string         `db:"recipient"`
	Kind      DeliveryKind   `db:"kind"`
	Status    DeliveryStatus `db:"status"`
	ErrorKind string         `db:"error_kind"`
	Attempts  int            `db:"attempts"`
	CreatedAt time.Time      `db:"created_at"`
}
