package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ovmelnikov/uslugi-backend/internal/models"
	"github.com/ovmelnikov/uslugi-backend/internal/pkg/apperror"
	"github.com/ovmelnikov/uslugi-backend/internal/repository"
)

// OfferRepository описывает взаимодействие сервиса с хранилищем офферов.
type OfferRepository interface {
	Create(ctx context.Context, offer *models.Offer) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Offer, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Offer, error)
	Accept(ctx context.Context, p repository.AcceptParams) (*models.Offer, *models.Order, error)
	Reject(ctx context.Context, offerID uuid.UUID, reason string) (*models.Offer, error)
}

// CatalogRepository описывает чтение каталога услуг.
type CatalogRepository interface {
	GetService(ctx context.Context, id uuid.UUID) (*models.Service, error)
}

// OfferService содержит бизнес-логику работы с офферами.
type OfferService struct {
	repo    OfferRepository
	catalog CatalogRepository
	hub     WSNotifier
}

// NewOfferService создаёт новый сервис офферов.
func NewOfferService(repo OfferRepository, catalog CatalogRepository) *OfferService {
	return &OfferService{repo: repo, catalog: catalog}
}

// SetHub устанавливает WebSocket hub для отправки уведомлений.
func (s *OfferService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// CreateOfferInput описывает входные данные.
type CreateOfferInput struct {
	ServiceID          uuid.UUID
	FreelancerID       uuid.UUID
	ClientID           uuid.UUID
	ConversationID     *uuid.UUID
	Price              float64
	Currency           string
	DeliveryTimeDays   int
	RevisionsIncluded  int
	ScopeOfWork        string
	CancellationPolicy string
}

// CreateOffer создаёт оффер. Название и описание услуги замораживаются
// из каталога в момент создания.
func (s *OfferService) CreateOffer(ctx context.Context, in CreateOfferInput) (*models.Offer, error) {
	if in.DeliveryTimeDays < 1 {
		return nil, apperror.New(apperror.ErrCodeValidation, "срок выполнения должен быть не меньше одного дня")
	}
	if in.RevisionsIncluded < 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "количество правок не может быть отрицательным")
	}
	if strings.TrimSpace(in.ScopeOfWork) == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "объём работ не может быть пустым")
	}
	if in.ClientID == in.FreelancerID {
		return nil, apperror.New(apperror.ErrCodeValidation, "нельзя отправить оффер самому себе")
	}

	svc, err := s.catalog.GetService(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}

	if svc.OwnerID != in.FreelancerID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "оффер можно отправить только по своей услуге")
	}

	// Пустая цена означает цену из каталога.
	price := in.Price
	if price == 0 {
		price = svc.Price
	}
	if price <= 0 {
		return nil, apperror.New(apperror.ErrCodeInvalidPrice, "цена оффера должна быть больше нуля")
	}

	currency := in.Currency
	if currency == "" {
		currency = svc.Currency
	}

	offer := &models.Offer{
		ServiceID:          in.ServiceID,
		ClientID:           in.ClientID,
		FreelancerID:       in.FreelancerID,
		ConversationID:     in.ConversationID,
		Status:             models.OfferStatusPending,
		Price:              price,
		Currency:           currency,
		DeliveryTimeDays:   in.DeliveryTimeDays,
		RevisionsIncluded:  in.RevisionsIncluded,
		ScopeOfWork:        in.ScopeOfWork,
		CancellationPolicy: in.CancellationPolicy,
		ServiceTitle:       svc.Title,
		ServiceDescription: svc.Description,
	}

	if err := s.repo.Create(ctx, offer); err != nil {
		return nil, err
	}

	notify(s.hub, EventOfferCreated, offer, offer.ClientID)

	return offer, nil
}

// GetOffer возвращает оффер, доступен только его сторонам.
func (s *OfferService) GetOffer(ctx context.Context, id, userID uuid.UUID) (*models.Offer, error) {
	offer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if offer.ClientID != userID && offer.FreelancerID != userID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "у вас нет доступа к этому офферу")
	}

	return offer, nil
}

// ListMyOffers возвращает офферы пользователя как заказчика и как исполнителя.
func (s *OfferService) ListMyOffers(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Offer, []models.Offer, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	asClient, err := s.repo.ListByClient(ctx, userID, limit, offset)
	if err != nil {
		return nil, nil, err
	}

	asFreelancer, err := s.repo.ListByFreelancer(ctx, userID, limit, offset)
	if err != nil {
		return nil, nil, err
	}

	return asClient, asFreelancer, nil
}

// AcceptOffer принимает оффер от имени заказчика. Создание заказа,
// контракта и записи журнала происходит в одной транзакции хранилища.
func (s *OfferService) AcceptOffer(ctx context.Context, offerID, clientID uuid.UUID, clientIP *string) (*models.Offer, *models.Order, error) {
	offer, err := s.repo.GetByID(ctx, offerID)
	if err != nil {
		return nil, nil, err
	}

	if offer.ClientID != clientID {
		return nil, nil, apperror.New(apperror.ErrCodeForbidden, "принять оффер может только его получатель")
	}

	offer, order, err := s.repo.Accept(ctx, repository.AcceptParams{
		OfferID:         offerID,
		ClientID:        clientID,
		ClientIPAddress: clientIP,
	})
	if err != nil {
		return nil, nil, err
	}

	notify(s.hub, EventOfferAccepted, map[string]interface{}{
		"offer_id":     offer.ID,
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	}, offer.ClientID, offer.FreelancerID)

	return offer, order, nil
}

// RejectOffer отклоняет оффер от имени заказчика.
func (s *OfferService) RejectOffer(ctx context.Context, offerID, clientID uuid.UUID, reason string) (*models.Offer, error) {
	offer, err := s.repo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if offer.ClientID != clientID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "отклонить оффер может только его получатель")
	}

	if strings.TrimSpace(reason) == "" {
		reason = "Причина не указана"
	}

	offer, err = s.repo.Reject(ctx, offerID, reason)
	if err != nil {
		return nil, err
	}

	notify(s.hub, EventOfferRejected, map[string]interface{}{
		"offer_id": offer.ID,
		"reason":   reason,
	}, offer.FreelancerID)

	return offer, nil
}
