package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ovmelnikov/uslugi-backend/internal/models"
)

// OrderEventRepository читает журнал событий заказа.
// Записи в журнал добавляются только внутри транзакций переходов,
// поэтому отдельного метода добавления здесь нет.
type OrderEventRepository struct {
	db *sqlx.DB
}

// NewOrderEventRepository создаёт экземпляр репозитория.
func NewOrderEventRepository(db *sqlx.DB) *OrderEventRepository {
	return &OrderEventRepository{db: db}
}

// ListByOrder возвращает события заказа в порядке их наступления.
func (r *OrderEventRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderEvent, error) {
	var events []models.OrderEvent
	err := r.db.SelectContext(ctx, &events, `
		SELECT * FROM order_events WHERE order_id = $1 ORDER BY created_at ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("order event repository: list by order %w", err)
	}

	return events, nil
}
