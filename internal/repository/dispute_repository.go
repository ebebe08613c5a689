package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovmelnikov/uslugi-backend/internal/models"
	"github.com/ovmelnikov/uslugi-backend/internal/pkg/apperror"
	"github.com/ovmelnikov/uslugi-backend/internal/repository/common"
)

type DisputeRepository struct {
	db *sqlx.DB
}

func NewDisputeRepository(db *sqlx.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

// GetByID возвращает спор по идентификатору.
func (r *DisputeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	return common.GetByID[models.Dispute](ctx, r.db, "disputes", id, apperror.ErrDisputeNotFound)
}

// GetActiveByOrderID возвращает активный спор по заказу, nil если его нет.
func (r *DisputeRepository) GetActiveByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Dispute, error) {
	var d models.Dispute
	err := r.db.GetContext(ctx, &d, `
		SELECT * FROM disputes WHERE order_id = $1 AND status IN ('open', 'in_review')
	`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dispute repository: get active by order %w", err)
	}
	return &d, nil
}

// ListByOrderID возвращает все споры по заказу, включая закрытые.
func (r *DisputeRepository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Dispute, error) {
	var disputes []models.Dispute
	err := r.db.SelectContext(ctx, &disputes, `
		SELECT * FROM disputes WHERE order_id = $1 ORDER BY created_at DESC
	`, orderID)
	return disputes, err
}

// ListByUser возвращает споры с участием пользователя.
func (r *DisputeRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Dispute, error) {
	var disputes []models.Dispute
	err := r.db.SelectContext(ctx, &disputes, `
		SELECT * FROM disputes
		WHERE client_id = $1 OR freelancer_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return disputes, err
}

// Open открывает спор одной транзакцией: блокирует заказ, проверяет
// отсутствие активного спора, создаёт спор и переводит заказ в disputed.
// Открытие спора и конкурентный переход заказа сериализуются блокировкой
// строки заказа; кто зафиксировался первым, тот и выиграл.
func (r *DisputeRepository) Open(ctx context.Context, d *models.Dispute) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		order, err := lockOrderTx(tx, d.OrderID)
		if err != nil {
			return err
		}

		var hasActive bool
		if err := tx.Get(&hasActive, `
			SELECT EXISTS (SELECT 1 FROM disputes WHERE order_id = $1 AND status IN ('open', 'in_review'))
		`, d.OrderID); err != nil {
			return fmt.Errorf("check active dispute: %w", err)
		}
		if err := checkDisputeOpen(order, hasActive); err != nil {
			return err
		}

		previousStatus := order.Status
		d.ClientID = order.ClientID
		d.FreelancerID = order.FreelancerID
		d.Status = models.DisputeStatusOpen

		err = tx.Get(d, `
			INSERT INTO disputes (order_id, client_id, freelancer_id, reason, description, attachments, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING *
		`, d.OrderID, d.ClientID, d.FreelancerID, d.Reason, d.Description, pq.Array([]string(d.Attachments)), d.Status)
		if err != nil {
			// Частичный уникальный индекс по активным спорам — последняя линия защиты.
			if common.IsUniqueViolation(err, "disputes_active_order_idx") {
				return apperror.New(apperror.ErrCodeDisputeAlreadyOpen, "по заказу уже открыт спор")
			}
			return fmt.Errorf("insert dispute: %w", err)
		}

		if err := setOrderStatusTx(tx, d.OrderID, models.OrderStatusDisputed); err != nil {
			return err
		}

		return appendOrderEventTx(tx, d.OrderID, &d.ClientID, models.EventDisputeOpened,
			"Открыт спор: "+d.Reason, map[string]interface{}{
				"dispute_id":      d.ID,
				"previous_status": previousStatus,
			})
	})
}

// checkDisputeOpen проверяет, можно ли открыть спор по заказу. Признак —
// наличие активного спора, а не статус заказа: после разрешения спора без
// действия над заказом тот остаётся в disputed, и новый спор по нему —
// единственный способ довести заказ до терминального состояния.
func checkDisputeOpen(order *models.Order, hasActiveDispute bool) error {
	if hasActiveDispute {
		return apperror.New(apperror.ErrCodeDisputeAlreadyOpen, "по заказу уже открыт спор")
	}
	if models.IsTerminalOrderStatus(order.Status) {
		return apperror.New(apperror.ErrCodeInvalidState, "нельзя открыть спор по завершённому заказу")
	}
	return nil
}

// ResolveParams входные данные разрешения спора администратором.
type ResolveParams struct {
	DisputeID       uuid.UUID
	AdminID         uuid.UUID
	NewStatus       string
	AdminResolution string
	OrderAction     string
}

// Resolve применяет решение администратора. Единственный путь, выводящий
// заказ из disputed: действие над заказом отображается в терминальный
// статус и зеркалируется в контракт в той же транзакции.
func (r *DisputeRepository) Resolve(ctx context.Context, p ResolveParams) (*models.Dispute, *models.Order, error) {
	var (
		dispute models.Dispute
		order   *models.Order
	)

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.Get(&dispute, `SELECT * FROM disputes WHERE id = $1 FOR UPDATE`, p.DisputeID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperror.ErrDisputeNotFound
			}
			return fmt.Errorf("lock dispute: %w", err)
		}

		if !dispute.IsActive() {
			return apperror.New(apperror.ErrCodeInvalidState, "спор уже разрешён")
		}

		var err error
		order, err = lockOrderTx(tx, dispute.OrderID)
		if err != nil {
			return err
		}

		terminal := p.NewStatus == models.DisputeStatusResolved || p.NewStatus == models.DisputeStatusClosed
		if terminal {
			err = tx.Get(&dispute, `
				UPDATE disputes
				SET status = $2, admin_resolution = $3, resolved_by = $4, resolved_at = NOW(), updated_at = NOW()
				WHERE id = $1
				RETURNING *
			`, p.DisputeID, p.NewStatus, p.AdminResolution, p.AdminID)
		} else {
			err = tx.Get(&dispute, `
				UPDATE disputes SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING *
			`, p.DisputeID, p.NewStatus)
		}
		if err != nil {
			return fmt.Errorf("update dispute: %w", err)
		}

		// Заказ выходит из disputed только вместе с закрытием спора;
		// пока спор активен, действие над заказом не применяется.
		newOrderStatus, changed := terminalStatusForAction(p.OrderAction)
		if terminal && changed {
			completedAt := "NULL"
			if newOrderStatus == models.OrderStatusCompleted {
				completedAt = "NOW()"
			}
			err = tx.Get(order, `
				UPDATE orders
				SET status = $2, completed_at = `+completedAt+`, updated_at = NOW()
				WHERE id = $1
				RETURNING *
			`, dispute.OrderID, newOrderStatus)
			if err != nil {
				return fmt.Errorf("update order: %w", err)
			}

			if _, err := tx.Exec(`UPDATE contracts SET status = $2, updated_at = NOW() WHERE order_id = $1`,
				dispute.OrderID, models.ContractStatusForOrder(newOrderStatus)); err != nil {
				return fmt.Errorf("mirror contract status: %w", err)
			}
		}

		if terminal {
			return appendOrderEventTx(tx, dispute.OrderID, &p.AdminID, models.EventDisputeResolved,
				"Спор разрешён администратором", map[string]interface{}{
					"dispute_id":       dispute.ID,
					"order_action":     p.OrderAction,
					"new_order_status": order.Status,
				})
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &dispute, order, nil
}

// terminalStatusForAction отображает действие администратора в терминальный
// статус заказа. SPLIT трактуется как завершение: работа частично принята,
// раздел выплаты остаётся заботой платёжной подсистемы.
func terminalStatusForAction(action string) (string, bool) {
	switch action {
	case models.DisputeActionRefundClient:
		return models.OrderStatusCancelled, true
	case models.DisputeActionPayFreelancer, models.DisputeActionSplit:
		return models.OrderStatusCompleted, true
	default:
		return "", false
	}
}

// AddComment добавляет реплику в обсуждение спора.
func (r *DisputeRepository) AddComment(ctx context.Context, comment *models.DisputeComment) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO dispute_comments (dispute_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, comment.DisputeID, comment.UserID, comment.Content).Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("dispute repository: add comment %w", err)
	}
	return nil
}

// ListComments возвращает обсуждение спора в хронологическом порядке.
func (r *DisputeRepository) ListComments(ctx context.Context, disputeID uuid.UUID) ([]models.DisputeComment, error) {
	var comments []models.DisputeComment
	err := r.db.SelectContext(ctx, &comments, `
		SELECT * FROM dispute_comments WHERE dispute_id = $1 ORDER BY created_at ASC
	`, disputeID)
	return comments, err
}
