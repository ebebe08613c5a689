package models

import (
	"time"

	"github.com/google/uuid"
)

// Offer представляет предложение исполнителя по конкретной услуге.
// Название и описание услуги замораживаются в момент создания, чтобы
// последующее редактирование каталога не меняло уже отправленные офферы.
type Offer struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	ServiceID          uuid.UUID  `db:"service_id" json:"service_id"`
	ClientID           uuid.UUID  `db:"client_id" json:"client_id"`
	FreelancerID       uuid.UUID  `db:"freelancer_id" json:"freelancer_id"`
	ConversationID     *uuid.UUID `db:"conversation_id" json:"conversation_id,omitempty"`
	Status             string     `db:"status" json:"status"`
	Price              float64    `db:"price" json:"price"`
	Currency           string     `db:"currency" json:"currency"`
	DeliveryTimeDays   int        `db:"delivery_time_days" json:"delivery_time_days"`
	RevisionsIncluded  int        `db:"revisions_included" json:"revisions_included"`
	ScopeOfWork        string     `db:"scope_of_work" json:"scope_of_work"`
	CancellationPolicy string     `db:"cancellation_policy" json:"cancellation_policy"`
	ServiceTitle       string     `db:"service_title" json:"service_title"`
	ServiceDescription string     `db:"service_description" json:"service_description"`
	OrderID            *uuid.UUID `db:"order_id" json:"order_id,omitempty"`
	RejectionReason    *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`
	AcceptedAt         *time.Time `db:"accepted_at" json:"accepted_at,omitempty"`
	RejectedAt         *time.Time `db:"rejected_at" json:"rejected_at,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}
