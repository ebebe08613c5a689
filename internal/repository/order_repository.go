package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovmelnikov/uslugi-backend/internal/models"
	"github.com/ovmelnikov/uslugi-backend/internal/pkg/apperror"
	"github.com/ovmelnikov/uslugi-backend/internal/repository/common"
)

type OrderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// GetByID возвращает заказ по идентификатору.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return common.GetByID[models.Order](ctx, r.db, "orders", id, apperror.ErrOrderNotFound)
}

// GetByNumber возвращает заказ по человекочитаемому номеру.
func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	return common.GetByField[models.Order](ctx, r.db, "orders", "order_number", number, apperror.ErrOrderNotFound)
}

// ListByUser возвращает заказы пользователя в любой роли.
func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.SelectContext(ctx, &orders, `
		SELECT * FROM orders
		WHERE client_id = $1 OR freelancer_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return orders, err
}

// checkTransition проверяет допустимость перехода под блокировкой.
// Спор замораживает обычные переходы, терминальные статусы неизменяемы.
func checkTransition(order *models.Order, to string) error {
	if order.Status == models.OrderStatusDisputed {
		return apperror.New(apperror.ErrCodeInvalidState, "по заказу открыт спор, обычные операции заморожены")
	}
	if models.IsTerminalOrderStatus(order.Status) {
		return apperror.New(apperror.ErrCodeInvalidState, "заказ уже завершён или отменён")
	}
	if !models.CanTransition(order.Status, to) {
		return apperror.New(apperror.ErrCodeInvalidState,
			fmt.Sprintf("переход из статуса %s в %s невозможен", order.Status, to))
	}
	return nil
}

// SubmitDeliveryParams входные данные сдачи работы.
type SubmitDeliveryParams struct {
	OrderID      uuid.UUID
	FreelancerID uuid.UUID
	Message      string
	FileURLs     []string
}

// SubmitDelivery фиксирует сдачу работы: сохраняет результат, добавляет
// запись журнала и переводит заказ в delivered. Статус перепроверяется
// под блокировкой строки заказа.
func (r *OrderRepository) SubmitDelivery(ctx context.Context, p SubmitDeliveryParams) (*models.Order, *models.OrderDeliverable, error) {
	var (
		order       *models.Order
		deliverable models.OrderDeliverable
	)

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		order, err = lockOrderTx(tx, p.OrderID)
		if err != nil {
			return err
		}
		if err := checkTransition(order, models.OrderStatusDelivered); err != nil {
			return err
		}

		err = tx.Get(&deliverable, `
			INSERT INTO order_deliverables (order_id, freelancer_id, message, file_urls)
			VALUES ($1, $2, $3, $4)
			RETURNING *
		`, p.OrderID, p.FreelancerID, p.Message, pq.Array(p.FileURLs))
		if err != nil {
			return fmt.Errorf("insert deliverable: %w", err)
		}

		if err := appendOrderEventTx(tx, p.OrderID, &p.FreelancerID, models.EventDeliverySubmitted,
			"Работа сдана на проверку", map[string]interface{}{
				"deliverable_id": deliverable.ID,
				"file_count":     len(p.FileURLs),
			}); err != nil {
			return err
		}

		err = tx.Get(order, `
			UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING *
		`, p.OrderID, models.OrderStatusDelivered)
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}

		if _, err := tx.Exec(`UPDATE contracts SET status = $2, updated_at = NOW() WHERE order_id = $1`,
			p.OrderID, models.ContractStatusForOrder(models.OrderStatusDelivered)); err != nil {
			return fmt.Errorf("mirror contract status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return order, &deliverable, nil
}

// RequestRevision фиксирует запрос правок: проверяет лимит под блокировкой,
// инкрементирует счётчик и возвращает заказ в доработку.
func (r *OrderRepository) RequestRevision(ctx context.Context, orderID, clientID uuid.UUID, note string) (*models.Order, error) {
	var order *models.Order

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		order, err = lockOrderTx(tx, orderID)
		if err != nil {
			return err
		}
		if err := checkTransition(order, models.OrderStatusRevisionRequested); err != nil {
			return err
		}
		if order.RevisionsUsed >= order.RevisionsIncluded {
			return apperror.New(apperror.ErrCodeRevisionLimitExceeded,
				fmt.Sprintf("лимит правок исчерпан (%d из %d)", order.RevisionsUsed, order.RevisionsIncluded))
		}

		err = tx.Get(order, `
			UPDATE orders
			SET status = $2, revisions_used = revisions_used + 1, updated_at = NOW()
			WHERE id = $1
			RETURNING *
		`, orderID, models.OrderStatusRevisionRequested)
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}

		return appendOrderEventTx(tx, orderID, &clientID, models.EventRevisionRequested,
			note, map[string]interface{}{
				"revisions_used":     order.RevisionsUsed,
				"revisions_included": order.RevisionsIncluded,
			})
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// AcceptDelivery завершает заказ: единственный путь в completed помимо
// разрешения спора. Контракт зеркалирует статус в той же транзакции.
func (r *OrderRepository) AcceptDelivery(ctx context.Context, orderID, clientID uuid.UUID) (*models.Order, error) {
	var order *models.Order

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		order, err = lockOrderTx(tx, orderID)
		if err != nil {
			return err
		}
		if err := checkTransition(order, models.OrderStatusCompleted); err != nil {
			return err
		}

		err = tx.Get(order, `
			UPDATE orders
			SET status = $2, completed_at = NOW(), updated_at = NOW()
			WHERE id = $1
			RETURNING *
		`, orderID, models.OrderStatusCompleted)
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}

		if _, err := tx.Exec(`UPDATE contracts SET status = $2, updated_at = NOW() WHERE order_id = $1`,
			orderID, models.ContractStatusCompleted); err != nil {
			return fmt.Errorf("mirror contract status: %w", err)
		}

		return appendOrderEventTx(tx, orderID, &clientID, models.EventDeliveryAccepted,
			"Работа принята заказчиком", map[string]interface{}{})
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// Cancel отменяет заказ из любого нетерминального состояния кроме disputed.
func (r *OrderRepository) Cancel(ctx context.Context, orderID, actorID uuid.UUID, reason string) (*models.Order, error) {
	var order *models.Order

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		order, err = lockOrderTx(tx, orderID)
		if err != nil {
			return err
		}
		if err := checkTransition(order, models.OrderStatusCancelled); err != nil {
			return err
		}

		err = tx.Get(order, `
			UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING *
		`, orderID, models.OrderStatusCancelled)
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}

		if _, err := tx.Exec(`UPDATE contracts SET status = $2, updated_at = NOW() WHERE order_id = $1`,
			orderID, models.ContractStatusCancelled); err != nil {
			return fmt.Errorf("mirror contract status: %w", err)
		}

		return appendOrderEventTx(tx, orderID, &actorID, models.EventOrderCancelled,
			"Заказ отменён", map[string]interface{}{"reason": reason})
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// ListDeliverables возвращает сданные результаты по заказу.
func (r *OrderRepository) ListDeliverables(ctx context.Context, orderID uuid.UUID) ([]models.OrderDeliverable, error) {
	var deliverables []models.OrderDeliverable
	err := r.db.SelectContext(ctx, &deliverables, `
		SELECT * FROM order_deliverables WHERE order_id = $1 ORDER BY created_at DESC
	`, orderID)
	return deliverables, err
}
