package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ovmelnikov/uslugi-backend/internal/models"
	"github.com/ovmelnikov/uslugi-backend/internal/pkg/apperror"
	"github.com/ovmelnikov/uslugi-backend/internal/repository/common"
)

// orderNumberAttempts число попыток сгенерировать уникальный номер заказа.
const orderNumberAttempts = 3

type OfferRepository struct {
	db *sqlx.DB
}

func NewOfferRepository(db *sqlx.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

// Create создаёт оффер.
func (r *OfferRepository) Create(ctx context.Context, offer *models.Offer) error {
	query := `
		INSERT INTO offers (
			service_id, client_id, freelancer_id, conversation_id, status,
			price, currency, delivery_time_days, revisions_included,
			scope_of_work, cancellation_policy, service_title, service_description
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		offer.ServiceID, offer.ClientID, offer.FreelancerID, offer.ConversationID, offer.Status,
		offer.Price, offer.Currency, offer.DeliveryTimeDays, offer.RevisionsIncluded,
		offer.ScopeOfWork, offer.CancellationPolicy, offer.ServiceTitle, offer.ServiceDescription,
	).Scan(&offer.ID, &offer.CreatedAt, &offer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("offer repository: create %w", err)
	}
	return nil
}

// GetByID возвращает оффер по идентификатору.
func (r *OfferRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	return common.GetByID[models.Offer](ctx, r.db, "offers", id, apperror.ErrOfferNotFound)
}

// ListByClient возвращает офферы, адресованные клиенту.
func (r *OfferRepository) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.SelectContext(ctx, &offers, `
		SELECT * FROM offers WHERE client_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, clientID, limit, offset)
	return offers, err
}

// ListByFreelancer возвращает офферы, созданные исполнителем.
func (r *OfferRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.SelectContext(ctx, &offers, `
		SELECT * FROM offers WHERE freelancer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, freelancerID, limit, offset)
	return offers, err
}

// AcceptParams входные данные принятия оффера.
type AcceptParams struct {
	OfferID         uuid.UUID
	ClientID        uuid.UUID
	ClientIPAddress *string
}

// Accept выполняет принятие оффера как одну атомарную единицу: блокирует
// строку оффера, перепроверяет статус под блокировкой, создаёт заказ,
// контракт и запись журнала, затем помечает оффер принятым. Из двух
// конкурентных вызовов заказ создаст ровно один, второй получит
// AlreadyAccepted.
func (r *OfferRepository) Accept(ctx context.Context, p AcceptParams) (*models.Offer, *models.Order, error) {
	var (
		offer models.Offer
		order models.Order
	)

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.Get(&offer, `SELECT * FROM offers WHERE id = $1 FOR UPDATE`, p.OfferID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.ErrOfferNotFound
			}
			return fmt.Errorf("lock offer: %w", err)
		}

		// Перепроверка под блокировкой: конкурентный вызов мог успеть раньше.
		if offer.OrderID != nil || offer.Status == models.OfferStatusAccepted {
			return apperror.New(apperror.ErrCodeAlreadyAccepted, "оффер уже принят")
		}
		if offer.Status != models.OfferStatusPending {
			return apperror.New(apperror.ErrCodeInvalidState, "оффер уже отклонён")
		}

		now := time.Now()
		deliveryDate := now.AddDate(0, 0, offer.DeliveryTimeDays)

		if err := insertOrderForOffer(tx, &order, &offer, deliveryDate, p.ClientIPAddress); err != nil {
			return err
		}

		_, err := tx.Exec(`
			INSERT INTO contracts (
				order_id, service_title, service_description, scope_of_work,
				price, currency, delivery_time_days, revisions_included,
				cancellation_policy, status, client_accepted_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, order.ID, offer.ServiceTitle, offer.ServiceDescription, offer.ScopeOfWork,
			offer.Price, offer.Currency, offer.DeliveryTimeDays, offer.RevisionsIncluded,
			offer.CancellationPolicy, models.ContractStatusActive, now)
		if err != nil {
			return fmt.Errorf("insert contract: %w", err)
		}

		if err := appendOrderEventTx(tx, order.ID, &p.ClientID, models.EventOrderCreated,
			"Заказ создан принятием оффера", map[string]interface{}{
				"offer_id":     offer.ID,
				"order_number": order.OrderNumber,
			}); err != nil {
			return err
		}

		err = tx.Get(&offer, `
			UPDATE offers
			SET status = $2, order_id = $3, accepted_at = $4, updated_at = NOW()
			WHERE id = $1
			RETURNING *
		`, offer.ID, models.OfferStatusAccepted, order.ID, now)
		if err != nil {
			return fmt.Errorf("update offer: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &offer, &order, nil
}

// insertOrderForOffer создаёт заказ с уникальным человекочитаемым номером.
// Свободный номер подбирается до вставки: повторить INSERT после ошибки
// внутри той же транзакции postgres не даст. Ограничение
// orders_order_number_key остаётся последней линией защиты от гонки.
func insertOrderForOffer(tx *sqlx.Tx, order *models.Order, offer *models.Offer, deliveryDate time.Time, clientIP *string) error {
	number, err := pickOrderNumber(tx)
	if err != nil {
		return err
	}

	err = tx.Get(order, `
		INSERT INTO orders (
			order_number, service_id, client_id, freelancer_id, conversation_id,
			offer_id, status, price, currency, delivery_time_days,
			revisions_included, revisions_used, delivery_date, client_ip_address
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, $12, $13)
		RETURNING *
	`, number, offer.ServiceID, offer.ClientID, offer.FreelancerID, offer.ConversationID,
		offer.ID, models.OrderStatusInProgress, offer.Price, offer.Currency,
		offer.DeliveryTimeDays, offer.RevisionsIncluded, deliveryDate, clientIP)
	if err != nil {
		if common.IsUniqueViolation(err, "orders_offer_id_key") {
			return apperror.New(apperror.ErrCodeAlreadyAccepted, "оффер уже принят")
		}
		if common.IsUniqueViolation(err, "orders_order_number_key") {
			return apperror.New(apperror.ErrCodeConflict, "не удалось сгенерировать уникальный номер заказа")
		}
		return fmt.Errorf("insert order: %w", err)
	}

	return nil
}

// pickOrderNumber подбирает номер, не занятый на момент проверки.
func pickOrderNumber(tx *sqlx.Tx) (string, error) {
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		number := generateOrderNumber()

		var taken bool
		if err := tx.Get(&taken, `SELECT EXISTS (SELECT 1 FROM orders WHERE order_number = $1)`, number); err != nil {
			return "", fmt.Errorf("check order number: %w", err)
		}
		if !taken {
			return number, nil
		}
	}

	return "", apperror.New(apperror.ErrCodeConflict, "не удалось сгенерировать уникальный номер заказа")
}

// generateOrderNumber формирует номер вида ORD-2026-3F07A1.
// Шесть шестнадцатеричных знаков дают 16.7 млн значений на год.
func generateOrderNumber() string {
	var buf [4]byte
	_, _ = rand.Read(buf[:])
	n := binary.BigEndian.Uint32(buf[:]) % 0x1000000
	return fmt.Sprintf("ORD-%d-%06X", time.Now().Year(), n)
}

// Reject отклоняет оффер. Статус перепроверяется под блокировкой строки.
func (r *OfferRepository) Reject(ctx context.Context, offerID uuid.UUID, reason string) (*models.Offer, error) {
	var offer models.Offer

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.Get(&offer, `SELECT * FROM offers WHERE id = $1 FOR UPDATE`, offerID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.ErrOfferNotFound
			}
			return fmt.Errorf("lock offer: %w", err)
		}

		if offer.Status == models.OfferStatusAccepted || offer.OrderID != nil {
			return apperror.New(apperror.ErrCodeAlreadyAccepted, "оффер уже принят")
		}
		if offer.Status != models.OfferStatusPending {
			return apperror.New(apperror.ErrCodeInvalidState, "оффер уже отклонён")
		}

		err := tx.Get(&offer, `
			UPDATE offers
			SET status = $2, rejection_reason = $3, rejected_at = NOW(), updated_at = NOW()
			WHERE id = $1
			RETURNING *
		`, offerID, models.OfferStatusRejected, reason)
		if err != nil {
			return fmt.Errorf("update offer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &offer, nil
}
