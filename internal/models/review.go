package models

import (
	"time"

	"github.com/google/uuid"
)

// Review отзыв одной стороны о другой. Ровно одно из полей OrderID и
// ServiceID заполнено: отзыв либо по заказу, либо по услуге.
// Для отзывов по заказу действует правило "сначала заказчик".
type Review struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	OrderID        *uuid.UUID `db:"order_id" json:"order_id,omitempty"`
	ServiceID      *uuid.UUID `db:"service_id" json:"service_id,omitempty"`
	ReviewerID     uuid.UUID  `db:"reviewer_id" json:"reviewer_id"`
	RevieweeID     uuid.UUID  `db:"reviewee_id" json:"reviewee_id"`
	Rating         int        `db:"rating" json:"rating"`
	Comment        string     `db:"comment" json:"comment"`
	IsOrderReview  bool       `db:"is_order_review" json:"is_order_review"`
	IsClientReview bool       `db:"is_client_review" json:"is_client_review"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// UserRating агрегированный рейтинг пользователя. Пересчитывается
// заново из набора отзывов в той же транзакции, что и вставка отзыва,
// инкрементов по устаревшим значениям нет.
type UserRating struct {
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	RatingAvg   float64   `db:"rating_avg" json:"rating_avg"`
	RatingCount int       `db:"rating_count" json:"rating_count"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
