package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Order описывает обязывающий заказ, созданный принятием оффера.
// Статус — единственный источник истины о состоянии; ссылка на оффер
// обязана согласовываться с ним в рамках одной транзакции.
type Order struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	OrderNumber       string     `db:"order_number" json:"order_number"`
	ServiceID         uuid.UUID  `db:"service_id" json:"service_id"`
	ClientID          uuid.UUID  `db:"client_id" json:"client_id"`
	FreelancerID      uuid.UUID  `db:"freelancer_id" json:"freelancer_id"`
	ConversationID    *uuid.UUID `db:"conversation_id" json:"conversation_id,omitempty"`
	OfferID           uuid.UUID  `db:"offer_id" json:"offer_id"`
	Status            string     `db:"status" json:"status"`
	Price             float64    `db:"price" json:"price"`
	Currency          string     `db:"currency" json:"currency"`
	DeliveryTimeDays  int        `db:"delivery_time_days" json:"delivery_time_days"`
	RevisionsIncluded int        `db:"revisions_included" json:"revisions_included"`
	RevisionsUsed     int        `db:"revisions_used" json:"revisions_used"`
	DeliveryDate      time.Time  `db:"delivery_date" json:"delivery_date"`
	CompletedAt       *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	ClientIPAddress   *string    `db:"client_ip_address" json:"-"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// IsParticipant сообщает, является ли пользователь стороной заказа.
func (o *Order) IsParticipant(userID uuid.UUID) bool {
	return o.ClientID == userID || o.FreelancerID == userID
}

// OrderDeliverable результат работы, переданный исполнителем при сдаче.
type OrderDeliverable struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	OrderID      uuid.UUID      `db:"order_id" json:"order_id"`
	FreelancerID uuid.UUID      `db:"freelancer_id" json:"freelancer_id"`
	Message      string         `db:"message" json:"message"`
	FileURLs     pq.StringArray `db:"file_urls" json:"file_urls"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}
