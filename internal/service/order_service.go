package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ovmelnikov/uslugi-backend/internal/models"
	"github.com/ovmelnikov/uslugi-backend/internal/pkg/apperror"
	"github.com/ovmelnikov/uslugi-backend/internal/repository"
)

// OrderRepository описывает взаимодействие сервиса с хранилищем заказов.
type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByNumber(ctx context.Context, number string) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, error)
	SubmitDelivery(ctx context.Context, p repository.SubmitDeliveryParams) (*models.Order, *models.OrderDeliverable, error)
	RequestRevision(ctx context.Context, orderID, clientID uuid.UUID, note string) (*models.Order, error)
	AcceptDelivery(ctx context.Context, orderID, clientID uuid.UUID) (*models.Order, error)
	Cancel(ctx context.Context, orderID, actorID uuid.UUID, reason string) (*models.Order, error)
	ListDeliverables(ctx context.Context, orderID uuid.UUID) ([]models.OrderDeliverable, error)
}

// OrderEventRepository описывает чтение журнала заказа.
type OrderEventRepository interface {
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderEvent, error)
}

// OrderService содержит бизнес-логику жизненного цикла заказа.
// Проверки статуса выполняются хранилищем под блокировкой строки заказа,
// сервис отвечает за права доступа и рассылку событий.
type OrderService struct {
	repo   OrderRepository
	events OrderEventRepository
	hub    WSNotifier
}

// NewOrderService создаёт новый сервис заказов.
func NewOrderService(repo OrderRepository, events OrderEventRepository) *OrderService {
	return &OrderService{repo: repo, events: events}
}

// SetHub устанавливает WebSocket hub для отправки уведомлений.
func (s *OrderService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// GetOrder возвращает заказ, доступен только его сторонам и администратору.
func (s *OrderService) GetOrder(ctx context.Context, id, userID uuid.UUID, role string) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.IsParticipant(userID) && role != models.RoleAdmin {
		return nil, apperror.New(apperror.ErrCodeForbidden, "у вас нет доступа к этому заказу")
	}

	return order, nil
}

// ListMyOrders возвращает заказы пользователя.
func (s *OrderService) ListMyOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// SubmitDeliveryInput описывает входные данные сдачи работы.
type SubmitDeliveryInput struct {
	OrderID      uuid.UUID
	FreelancerID uuid.UUID
	Message      string
	FileURLs     []string
}

// SubmitDelivery сдаёт работу от имени исполнителя.
func (s *OrderService) SubmitDelivery(ctx context.Context, in SubmitDeliveryInput) (*models.Order, *models.OrderDeliverable, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, nil, apperror.New(apperror.ErrCodeValidation, "сообщение о сдаче не может быть пустым")
	}

	order, err := s.repo.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, nil, err
	}

	if order.FreelancerID != in.FreelancerID {
		return nil, nil, apperror.New(apperror.ErrCodeForbidden, "сдать работу может только исполнитель заказа")
	}

	from := order.Status

	order, deliverable, err := s.repo.SubmitDelivery(ctx, repository.SubmitDeliveryParams{
		OrderID:      in.OrderID,
		FreelancerID: in.FreelancerID,
		Message:      in.Message,
		FileURLs:     in.FileURLs,
	})
	if err != nil {
		return nil, nil, err
	}

	s.notifyStatusChanged(order, from)

	return order, deliverable, nil
}

// RequestRevision запрашивает правки от имени заказчика.
func (s *OrderService) RequestRevision(ctx context.Context, orderID, clientID uuid.UUID, note string) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.ClientID != clientID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "запросить правки может только заказчик")
	}

	from := order.Status

	order, err = s.repo.RequestRevision(ctx, orderID, clientID, note)
	if err != nil {
		return nil, err
	}

	s.notifyStatusChanged(order, from)

	return order, nil
}

// AcceptDelivery принимает работу от имени заказчика и завершает заказ.
func (s *OrderService) AcceptDelivery(ctx context.Context, orderID, clientID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.ClientID != clientID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "принять работу может только заказчик")
	}

	from := order.Status

	order, err = s.repo.AcceptDelivery(ctx, orderID, clientID)
	if err != nil {
		return nil, err
	}

	s.notifyStatusChanged(order, from)

	return order, nil
}

// CancelOrder отменяет заказ. Отменить может любая из сторон,
// допустимость отмены из текущего статуса проверяет хранилище.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, actorID uuid.UUID, reason string) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.IsParticipant(actorID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "отменить заказ может только его сторона")
	}

	from := order.Status

	order, err = s.repo.Cancel(ctx, orderID, actorID, reason)
	if err != nil {
		return nil, err
	}

	s.notifyStatusChanged(order, from)

	return order, nil
}

// ListEvents возвращает журнал заказа его сторонам и администратору.
func (s *OrderService) ListEvents(ctx context.Context, orderID, userID uuid.UUID, role string) ([]models.OrderEvent, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.IsParticipant(userID) && role != models.RoleAdmin {
		return nil, apperror.New(apperror.ErrCodeForbidden, "у вас нет доступа к этому заказу")
	}

	return s.events.ListByOrder(ctx, orderID)
}

// ListDeliverables возвращает сданные результаты работ сторонам заказа.
func (s *OrderService) ListDeliverables(ctx context.Context, orderID, userID uuid.UUID, role string) ([]models.OrderDeliverable, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.IsParticipant(userID) && role != models.RoleAdmin {
		return nil, apperror.New(apperror.ErrCodeForbidden, "у вас нет доступа к этому заказу")
	}

	return s.repo.ListDeliverables(ctx, orderID)
}

// notifyStatusChanged рассылает событие смены статуса обеим сторонам заказа.
func (s *OrderService) notifyStatusChanged(order *models.Order, from string) {
	notify(s.hub, EventOrderStatusChanged, map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"from":         from,
		"to":           order.Status,
	}, order.ClientID, order.FreelancerID)
}
