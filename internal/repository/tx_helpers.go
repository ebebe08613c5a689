package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ovmelnikov/uslugi-backend/internal/models"
	"github.com/ovmelnikov/uslugi-backend/internal/pkg/apperror"
)

// lockOrderTx читает заказ с блокировкой строки. Все многошаговые операции
// над одним заказом сериализуются через эту блокировку.
func lockOrderTx(tx *sqlx.Tx, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := tx.Get(&order, `SELECT * FROM orders WHERE id = $1 FOR UPDATE`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock order: %w", err)
	}
	return &order, nil
}

// appendOrderEventTx добавляет запись в журнал заказа. Журнал append-only,
// поэтому здесь только INSERT.
func appendOrderEventTx(tx *sqlx.Tx, orderID uuid.UUID, userID *uuid.UUID, eventType, description string, metadata interface{}) error {
	raw, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("order event: marshal metadata: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO order_events (order_id, user_id, event_type, description, metadata)
		VALUES ($1, $2, $3, $4, $5)
	`, orderID, userID, eventType, description, raw)
	if err != nil {
		return fmt.Errorf("order event: insert: %w", err)
	}
	return nil
}

// setOrderStatusTx переводит заказ в новый статус и зеркалирует его в контракт.
// Контракт никогда не меняется отдельно от заказа.
func setOrderStatusTx(tx *sqlx.Tx, orderID uuid.UUID, newStatus string) error {
	if _, err := tx.Exec(`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, orderID, newStatus); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	contractStatus := models.ContractStatusForOrder(newStatus)
	if _, err := tx.Exec(`UPDATE contracts SET status = $2, updated_at = NOW() WHERE order_id = $1`, orderID, contractStatus); err != nil {
		return fmt.Errorf("mirror contract status: %w", err)
	}
	return nil
}
