package models

import (
	"time"

	"github.com/google/uuid"
)

// Service снимок записи каталога услуг. Каталог — внешний поставщик данных:
// ядро читает его только при создании оффера, чтобы заморозить условия.
type Service struct {
	ID          uuid.UUID `db:"id" json:"id"`
	OwnerID     uuid.UUID `db:"owner_id" json:"owner_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price"`
	Currency    string    `db:"currency" json:"currency"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
