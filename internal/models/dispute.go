package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Dispute эскалация по заказу. Пока спор активен (open/in_review),
// заказ находится в статусе disputed и обычные переходы заморожены.
type Dispute struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	OrderID         uuid.UUID      `db:"order_id" json:"order_id"`
	ClientID        uuid.UUID      `db:"client_id" json:"client_id"`
	FreelancerID    uuid.UUID      `db:"freelancer_id" json:"freelancer_id"`
	Reason          string         `db:"reason" json:"reason"`
	Description     string         `db:"description" json:"description"`
	Attachments     pq.StringArray `db:"attachments" json:"attachments"`
	Status          string         `db:"status" json:"status"`
	AdminResolution *string        `db:"admin_resolution" json:"admin_resolution,omitempty"`
	ResolvedBy      *uuid.UUID     `db:"resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time     `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// IsActive сообщает, активен ли спор.
func (d *Dispute) IsActive() bool {
	return d.Status == DisputeStatusOpen || d.Status == DisputeStatusInReview
}

// DisputeComment реплика в обсуждении спора.
type DisputeComment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DisputeID uuid.UUID `db:"dispute_id" json:"dispute_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
