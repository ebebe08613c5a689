package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ovmelnikov/uslugi-backend/internal/models"
	"github.com/ovmelnikov/uslugi-backend/internal/pkg/apperror"
)

// ReviewRepository описывает взаимодействие сервиса с хранилищем отзывов.
type ReviewRepository interface {
	CreateOrderReview(ctx context.Context, review *models.Review) error
	CreateServiceReview(ctx context.Context, review *models.Review) error
	GetByOrderAndReviewer(ctx context.Context, orderID, reviewerID uuid.UUID) (*models.Review, error)
	HasClientReview(ctx context.Context, orderID uuid.UUID) (bool, error)
	ListByReviewee(ctx context.Context, revieweeID uuid.UUID, limit, offset int) ([]models.Review, error)
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Review, error)
	GetUserRating(ctx context.Context, userID uuid.UUID) (*models.UserRating, error)
}

// ReviewService содержит бизнес-логику отзывов и рейтингов.
type ReviewService struct {
	repo    ReviewRepository
	orders  OrderRepository
	catalog CatalogRepository
	hub     WSNotifier
}

// NewReviewService создаёт новый сервис отзывов.
func NewReviewService(repo ReviewRepository, orders OrderRepository, catalog CatalogRepository) *ReviewService {
	return &ReviewService{repo: repo, orders: orders, catalog: catalog}
}

// SetHub устанавливает WebSocket hub для отправки уведомлений.
func (s *ReviewService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// CanReviewResult сообщает, доступна ли отправка отзыва, и причину отказа.
type CanReviewResult struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// CanReview проверяет возможность оставить отзыв по заказу, не записывая
// его. Ответ носит справочный характер: окончательную проверку выполняет
// транзакция записи.
func (s *ReviewService) CanReview(ctx context.Context, orderID, userID uuid.UUID) (*CanReviewResult, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.IsParticipant(userID) {
		return &CanReviewResult{Reason: "Вы не участник этого заказа"}, nil
	}

	if order.Status != models.OrderStatusCompleted {
		return &CanReviewResult{Reason: "Заказ ещё не завершён"}, nil
	}

	existing, err := s.repo.GetByOrderAndReviewer(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &CanReviewResult{Reason: "Вы уже оставили отзыв на этот заказ"}, nil
	}

	if userID == order.FreelancerID {
		clientReviewed, err := s.repo.HasClientReview(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if !clientReviewed {
			return &CanReviewResult{Reason: "Сначала отзыв оставляет заказчик"}, nil
		}
	}

	return &CanReviewResult{Allowed: true}, nil
}

// SubmitOrderReviewInput описывает входные данные отзыва по заказу.
type SubmitOrderReviewInput struct {
	OrderID    uuid.UUID
	ReviewerID uuid.UUID
	Rating     int
	Comment    string
}

// SubmitOrderReview записывает отзыв по завершённому заказу. Проверки
// состояния, порядка сторон и уникальности выполняются транзакцией записи.
func (s *ReviewService) SubmitOrderReview(ctx context.Context, in SubmitOrderReviewInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperror.New(apperror.ErrCodeValidation, "оценка должна быть от 1 до 5")
	}

	order, err := s.orders.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}

	if !order.IsParticipant(in.ReviewerID) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "отзыв может оставить только сторона заказа")
	}

	isClientReview := in.ReviewerID == order.ClientID
	revieweeID := order.ClientID
	if isClientReview {
		revieweeID = order.FreelancerID
	}

	review := &models.Review{
		OrderID:        &in.OrderID,
		ReviewerID:     in.ReviewerID,
		RevieweeID:     revieweeID,
		Rating:         in.Rating,
		Comment:        in.Comment,
		IsOrderReview:  true,
		IsClientReview: isClientReview,
	}

	if err := s.repo.CreateOrderReview(ctx, review); err != nil {
		return nil, err
	}

	notify(s.hub, EventReviewSubmitted, map[string]interface{}{
		"review_id": review.ID,
		"order_id":  in.OrderID,
		"rating":    review.Rating,
	}, revieweeID)

	return review, nil
}

// SubmitServiceReviewInput описывает входные данные отзыва по услуге.
type SubmitServiceReviewInput struct {
	ServiceID  uuid.UUID
	ReviewerID uuid.UUID
	Rating     int
	Comment    string
}

// SubmitServiceReview записывает отзыв по услуге из каталога.
func (s *ReviewService) SubmitServiceReview(ctx context.Context, in SubmitServiceReviewInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperror.New(apperror.ErrCodeValidation, "оценка должна быть от 1 до 5")
	}
	if strings.TrimSpace(in.Comment) == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "комментарий не может быть пустым")
	}

	svc, err := s.catalog.GetService(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}

	if svc.OwnerID == in.ReviewerID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "нельзя оставить отзыв на свою услугу")
	}

	review := &models.Review{
		ServiceID:  &in.ServiceID,
		ReviewerID: in.ReviewerID,
		RevieweeID: svc.OwnerID,
		Rating:     in.Rating,
		Comment:    in.Comment,
	}

	if err := s.repo.CreateServiceReview(ctx, review); err != nil {
		return nil, err
	}

	notify(s.hub, EventReviewSubmitted, map[string]interface{}{
		"review_id":  review.ID,
		"service_id": in.ServiceID,
		"rating":     review.Rating,
	}, svc.OwnerID)

	return review, nil
}

// ListUserReviews возвращает отзывы о пользователе.
func (s *ReviewService) ListUserReviews(ctx context.Context, revieweeID uuid.UUID, limit, offset int) ([]models.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.ListByReviewee(ctx, revieweeID, limit, offset)
}

// ListOrderReviews возвращает отзывы по заказу его сторонам и администратору.
func (s *ReviewService) ListOrderReviews(ctx context.Context, orderID, userID uuid.UUID, role string) ([]models.Review, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.IsParticipant(userID) && role != models.RoleAdmin {
		return nil, apperror.New(apperror.ErrCodeForbidden, "у вас нет доступа к этому заказу")
	}

	return s.repo.ListByOrderID(ctx, orderID)
}

// GetUserRating возвращает агрегированный рейтинг пользователя.
func (s *ReviewService) GetUserRating(ctx context.Context, userID uuid.UUID) (*models.UserRating, error) {
	return s.repo.GetUserRating(ctx, userID)
}
