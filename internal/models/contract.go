package models

import (
	"time"

	"github.com/google/uuid"
)

// Contract хранит замороженные условия заказа, 1:1 с заказом.
// Создаётся только вместе с заказом и меняется только в ногу с его статусом.
type Contract struct {
	OrderID              uuid.UUID  `db:"order_id" json:"order_id"`
	ServiceTitle         string     `db:"service_title" json:"service_title"`
	ServiceDescription   string     `db:"service_description" json:"service_description"`
	ScopeOfWork          string     `db:"scope_of_work" json:"scope_of_work"`
	Price                float64    `db:"price" json:"price"`
	Currency             string     `db:"currency" json:"currency"`
	DeliveryTimeDays     int        `db:"delivery_time_days" json:"delivery_time_days"`
	RevisionsIncluded    int        `db:"revisions_included" json:"revisions_included"`
	CancellationPolicy   string     `db:"cancellation_policy" json:"cancellation_policy"`
	Status               string     `db:"status" json:"status"`
	ClientAcceptedAt     time.Time  `db:"client_accepted_at" json:"client_accepted_at"`
	FreelancerAcceptedAt *time.Time `db:"freelancer_accepted_at" json:"freelancer_accepted_at,omitempty"`
	RejectionReason      *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`
	RejectedAt           *time.Time `db:"rejected_at" json:"rejected_at,omitempty"`
	RejectedBy           *uuid.UUID `db:"rejected_by" json:"rejected_by,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updated_at"`
}
