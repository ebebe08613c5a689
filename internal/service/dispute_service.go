package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ovmelnikov/uslugi-backend/internal/models"
	"github.com/ovmelnikov/uslugi-backend/internal/pkg/apperror"
	"github.com/ovmelnikov/uslugi-backend/internal/repository"
)

// DisputeRepository описывает взаимодействие сервиса с хранилищем споров.
type DisputeRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	GetActiveByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Dispute, error)
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Dispute, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Dispute, error)
	Open(ctx context.Context, d *models.Dispute) error
	Resolve(ctx context.Context, p repository.ResolveParams) (*models.Dispute, *models.Order, error)
	AddComment(ctx context.Context, comment *models.DisputeComment) error
	ListComments(ctx context.Context, disputeID uuid.UUID) ([]models.DisputeComment, error)
}

// DisputeService содержит бизнес-логику споров.
type DisputeService struct {
	repo   DisputeRepository
	orders OrderRepository
	hub    WSNotifier
}

// NewDisputeService создаёт новый сервис споров.
func NewDisputeService(repo DisputeRepository, orders OrderRepository) *DisputeService {
	return &DisputeService{repo: repo, orders: orders}
}

// SetHub устанавливает WebSocket hub для отправки уведомлений.
func (s *DisputeService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// OpenDisputeInput описывает входные данные открытия спора.
type OpenDisputeInput struct {
	OrderID     uuid.UUID
	UserID      uuid.UUID
	Reason      string
	Description string
	Attachments []string
}

// OpenDispute открывает спор по заказу от имени одной из его сторон.
// Заморозка заказа выполняется хранилищем в одной транзакции со вставкой.
func (s *DisputeService) OpenDispute(ctx context.Context, in OpenDisputeInput) (*models.Dispute, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "причина спора не может быть пустой")
	}
	if len(strings.TrimSpace(in.Description)) < 20 {
		return nil, apperror.New(apperror.ErrCodeValidation, "описание спора должно содержать не менее 20 символов")
	}

	order, err := s.orders.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}

	if !order.IsParticipant(in.UserID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "открыть спор может только сторона заказа")
	}

	dispute := &models.Dispute{
		OrderID:      in.OrderID,
		ClientID:     order.ClientID,
		FreelancerID: order.FreelancerID,
		Reason:       in.Reason,
		Description:  in.Description,
		Attachments:  in.Attachments,
		Status:       models.DisputeStatusOpen,
	}

	if err := s.repo.Open(ctx, dispute); err != nil {
		return nil, err
	}

	notify(s.hub, EventDisputeOpened, map[string]interface{}{
		"dispute_id": dispute.ID,
		"order_id":   dispute.OrderID,
		"reason":     dispute.Reason,
	}, dispute.ClientID, dispute.FreelancerID)

	return dispute, nil
}

// ResolveDisputeInput описывает решение администратора.
type ResolveDisputeInput struct {
	DisputeID       uuid.UUID
	AdminID         uuid.UUID
	NewStatus       string
	AdminResolution string
	OrderAction     string
}

// ResolveDispute применяет решение администратора по спору.
func (s *DisputeService) ResolveDispute(ctx context.Context, in ResolveDisputeInput) (*models.Dispute, *models.Order, error) {
	switch in.NewStatus {
	case models.DisputeStatusInReview, models.DisputeStatusResolved, models.DisputeStatusClosed:
	default:
		return nil, nil, apperror.New(apperror.ErrCodeValidation, "недопустимый статус решения спора")
	}

	terminal := in.NewStatus == models.DisputeStatusResolved || in.NewStatus == models.DisputeStatusClosed
	if terminal && strings.TrimSpace(in.AdminResolution) == "" {
		return nil, nil, apperror.New(apperror.ErrCodeResolutionRequired, "решение администратора обязательно при разрешении спора")
	}

	action := in.OrderAction
	if action == "" {
		action = models.DisputeActionNone
	}
	if _, ok := models.ValidDisputeActions[action]; !ok {
		return nil, nil, apperror.New(apperror.ErrCodeValidation, "недопустимое действие над заказом")
	}
	// Действие над заказом выводит его из disputed, поэтому допустимо только
	// вместе с закрытием спора: иначе спор остался бы активным при завершённом заказе.
	if !terminal && action != models.DisputeActionNone {
		return nil, nil, apperror.New(apperror.ErrCodeValidation,
			"действие над заказом допустимо только при разрешении или закрытии спора")
	}

	dispute, order, err := s.repo.Resolve(ctx, repository.ResolveParams{
		DisputeID:       in.DisputeID,
		AdminID:         in.AdminID,
		NewStatus:       in.NewStatus,
		AdminResolution: in.AdminResolution,
		OrderAction:     action,
	})
	if err != nil {
		return nil, nil, err
	}

	notify(s.hub, EventDisputeResolved, map[string]interface{}{
		"dispute_id":   dispute.ID,
		"order_id":     dispute.OrderID,
		"status":       dispute.Status,
		"order_action": action,
		"order_status": order.Status,
	}, dispute.ClientID, dispute.FreelancerID)

	return dispute, order, nil
}

// GetDispute возвращает спор его сторонам и администратору.
func (s *DisputeService) GetDispute(ctx context.Context, id, userID uuid.UUID, role string) (*models.Dispute, error) {
	dispute, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dispute.ClientID != userID && dispute.FreelancerID != userID && role != models.RoleAdmin {
		return nil, apperror.New(apperror.ErrCodeForbidden, "у вас нет доступа к этому спору")
	}

	return dispute, nil
}

// ListMyDisputes возвращает споры пользователя.
func (s *DisputeService) ListMyDisputes(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Dispute, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// ListOrderDisputes возвращает споры по заказу его сторонам и администратору.
func (s *DisputeService) ListOrderDisputes(ctx context.Context, orderID, userID uuid.UUID, role string) ([]models.Dispute, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.IsParticipant(userID) && role != models.RoleAdmin {
		return nil, apperror.New(apperror.ErrCodeForbidden, "у вас нет доступа к этому заказу")
	}

	return s.repo.ListByOrderID(ctx, orderID)
}

// AddComment добавляет реплику в обсуждение активного спора.
func (s *DisputeService) AddComment(ctx context.Context, disputeID, userID uuid.UUID, role, content string) (*models.DisputeComment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "комментарий не может быть пустым")
	}

	dispute, err := s.repo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}

	if dispute.ClientID != userID && dispute.FreelancerID != userID && role != models.RoleAdmin {
		return nil, apperror.New(apperror.ErrCodeForbidden, "у вас нет доступа к этому спору")
	}

	if !dispute.IsActive() {
		return nil, apperror.New(apperror.ErrCodeInvalidState, "обсуждение закрытого спора недоступно")
	}

	comment := &models.DisputeComment{
		DisputeID: disputeID,
		UserID:    userID,
		Content:   content,
	}

	if err := s.repo.AddComment(ctx, comment); err != nil {
		return nil, err
	}

	return comment, nil
}

// ListComments возвращает обсуждение спора его сторонам и администратору.
func (s *DisputeService) ListComments(ctx context.Context, disputeID, userID uuid.UUID, role string) ([]models.DisputeComment, error) {
	dispute, err := s.repo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}

	if dispute.ClientID != userID && dispute.FreelancerID != userID && role != models.RoleAdmin {
		return nil, apperror.New(apperror.ErrCodeForbidden, "у вас нет доступа к этому спору")
	}

	return s.repo.ListComments(ctx, disputeID)
}
