package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ovmelnikov/uslugi-backend/internal/models"
	"github.com/ovmelnikov/uslugi-backend/internal/pkg/apperror"
	"github.com/ovmelnikov/uslugi-backend/internal/repository"
)

type mockOfferRepo struct {
	mock.Mock
}

func (m *mockOfferRepo) Create(ctx context.Context, offer *models.Offer) error {
	args := m.Called(ctx, offer)
	if args.Error(0) == nil {
		offer.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockOfferRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Offer), args.Error(1)
}

func (m *mockOfferRepo) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]models.Offer, error) {
	args := m.Called(ctx, clientID, limit, offset)
	return args.Get(0).([]models.Offer), args.Error(1)
}

func (m *mockOfferRepo) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID, limit, offset int) ([]models.Offer, error) {
	args := m.Called(ctx, freelancerID, limit, offset)
	return args.Get(0).([]models.Offer), args.Error(1)
}

func (m *mockOfferRepo) Accept(ctx context.Context, p repository.AcceptParams) (*models.Offer, *models.Order, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Offer), args.Get(1).(*models.Order), args.Error(2)
}

func (m *mockOfferRepo) Reject(ctx context.Context, offerID uuid.UUID, reason string) (*models.Offer, error) {
	args := m.Called(ctx, offerID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Offer), args.Error(1)
}

type mockCatalogRepo struct {
	mock.Mock
}

func (m *mockCatalogRepo) GetService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}

type mockHub struct {
	mock.Mock
}

func (m *mockHub) BroadcastToUser(userID uuid.UUID, event string, data interface{}) error {
	args := m.Called(userID, event, data)
	return args.Error(0)
}

func validOfferInput(serviceID, freelancerID, clientID uuid.UUID) CreateOfferInput {
	return CreateOfferInput{
		ServiceID:        serviceID,
		FreelancerID:     freelancerID,
		ClientID:         clientID,
		Price:            5000,
		DeliveryTimeDays: 7,
		ScopeOfWork:      "Дизайн логотипа в трёх вариантах",
	}
}

func TestOfferService_CreateOffer_Success(t *testing.T) {
	repo := new(mockOfferRepo)
	catalog := new(mockCatalogRepo)
	svc := NewOfferService(repo, catalog)
	ctx := context.Background()

	serviceID := uuid.New()
	freelancerID := uuid.New()
	clientID := uuid.New()

	catalog.On("GetService", ctx, serviceID).Return(&models.Service{
		ID:          serviceID,
		OwnerID:     freelancerID,
		Title:       "Логотип",
		Description: "Отрисовка логотипа",
		Currency:    "RUB",
	}, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.Offer")).Return(nil)

	offer, err := svc.CreateOffer(ctx, validOfferInput(serviceID, freelancerID, clientID))

	assert.NoError(t, err)
	assert.NotNil(t, offer)
	assert.Equal(t, models.OfferStatusPending, offer.Status)
	assert.Equal(t, "Логотип", offer.ServiceTitle)
	assert.Equal(t, "RUB", offer.Currency)
}

func TestOfferService_CreateOffer_InvalidPrice(t *testing.T) {
	catalog := new(mockCatalogRepo)
	svc := NewOfferService(new(mockOfferRepo), catalog)
	ctx := context.Background()

	serviceID := uuid.New()
	freelancerID := uuid.New()

	// Цена не задана ни в оффере, ни в каталоге.
	catalog.On("GetService", ctx, serviceID).Return(&models.Service{
		ID:      serviceID,
		OwnerID: freelancerID,
	}, nil)

	in := validOfferInput(serviceID, freelancerID, uuid.New())
	in.Price = 0

	_, err := svc.CreateOffer(ctx, in)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "больше нуля")

	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeInvalidPrice, appErr.Code)
}

func TestOfferService_CreateOffer_DefaultsPriceFromCatalog(t *testing.T) {
	repo := new(mockOfferRepo)
	catalog := new(mockCatalogRepo)
	svc := NewOfferService(repo, catalog)
	ctx := context.Background()

	serviceID := uuid.New()
	freelancerID := uuid.New()

	catalog.On("GetService", ctx, serviceID).Return(&models.Service{
		ID:       serviceID,
		OwnerID:  freelancerID,
		Price:    3000,
		Currency: "RUB",
	}, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.Offer")).Return(nil)

	in := validOfferInput(serviceID, freelancerID, uuid.New())
	in.Price = 0

	offer, err := svc.CreateOffer(ctx, in)
	assert.NoError(t, err)
	assert.Equal(t, float64(3000), offer.Price)
}

func TestOfferService_CreateOffer_InvalidDeliveryTime(t *testing.T) {
	svc := NewOfferService(new(mockOfferRepo), new(mockCatalogRepo))

	in := validOfferInput(uuid.New(), uuid.New(), uuid.New())
	in.DeliveryTimeDays = 0

	_, err := svc.CreateOffer(context.Background(), in)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "не меньше одного дня")
}

func TestOfferService_CreateOffer_EmptyScope(t *testing.T) {
	svc := NewOfferService(new(mockOfferRepo), new(mockCatalogRepo))

	in := validOfferInput(uuid.New(), uuid.New(), uuid.New())
	in.ScopeOfWork = "   "

	_, err := svc.CreateOffer(context.Background(), in)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "объём работ")
}

func TestOfferService_CreateOffer_SelfOffer(t *testing.T) {
	svc := NewOfferService(new(mockOfferRepo), new(mockCatalogRepo))

	userID := uuid.New()
	in := validOfferInput(uuid.New(), userID, userID)

	_, err := svc.CreateOffer(context.Background(), in)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "самому себе")
}

func TestOfferService_CreateOffer_NotServiceOwner(t *testing.T) {
	repo := new(mockOfferRepo)
	catalog := new(mockCatalogRepo)
	svc := NewOfferService(repo, catalog)
	ctx := context.Background()

	serviceID := uuid.New()
	catalog.On("GetService", ctx, serviceID).Return(&models.Service{
		ID:      serviceID,
		OwnerID: uuid.New(),
	}, nil)

	_, err := svc.CreateOffer(ctx, validOfferInput(serviceID, uuid.New(), uuid.New()))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "по своей услуге")
}

func TestOfferService_AcceptOffer_Success(t *testing.T) {
	repo := new(mockOfferRepo)
	svc := NewOfferService(repo, new(mockCatalogRepo))
	hub := new(mockHub)
	svc.SetHub(hub)
	ctx := context.Background()

	offerID := uuid.New()
	clientID := uuid.New()
	freelancerID := uuid.New()

	pending := &models.Offer{
		ID:           offerID,
		ClientID:     clientID,
		FreelancerID: freelancerID,
		Status:       models.OfferStatusPending,
	}
	accepted := &models.Offer{
		ID:           offerID,
		ClientID:     clientID,
		FreelancerID: freelancerID,
		Status:       models.OfferStatusAccepted,
	}
	order := &models.Order{
		ID:           uuid.New(),
		OrderNumber:  "ORD-2026-a1b2c3",
		ClientID:     clientID,
		FreelancerID: freelancerID,
		Status:       models.OrderStatusInProgress,
	}

	repo.On("GetByID", ctx, offerID).Return(pending, nil)
	repo.On("Accept", ctx, repository.AcceptParams{OfferID: offerID, ClientID: clientID}).Return(accepted, order, nil)
	hub.On("BroadcastToUser", clientID, EventOfferAccepted, mock.Anything).Return(nil)
	hub.On("BroadcastToUser", freelancerID, EventOfferAccepted, mock.Anything).Return(nil)

	gotOffer, gotOrder, err := svc.AcceptOffer(ctx, offerID, clientID, nil)

	assert.NoError(t, err)
	assert.Equal(t, models.OfferStatusAccepted, gotOffer.Status)
	assert.Equal(t, order.ID, gotOrder.ID)
	hub.AssertExpectations(t)
}

func TestOfferService_AcceptOffer_NotRecipient(t *testing.T) {
	repo := new(mockOfferRepo)
	svc := NewOfferService(repo, new(mockCatalogRepo))
	ctx := context.Background()

	offerID := uuid.New()
	repo.On("GetByID", ctx, offerID).Return(&models.Offer{
		ID:       offerID,
		ClientID: uuid.New(),
	}, nil)

	_, _, err := svc.AcceptOffer(ctx, offerID, uuid.New(), nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "только его получатель")
	repo.AssertNotCalled(t, "Accept", mock.Anything, mock.Anything)
}

func TestOfferService_AcceptOffer_AlreadyAccepted(t *testing.T) {
	repo := new(mockOfferRepo)
	svc := NewOfferService(repo, new(mockCatalogRepo))
	ctx := context.Background()

	offerID := uuid.New()
	clientID := uuid.New()

	repo.On("GetByID", ctx, offerID).Return(&models.Offer{
		ID:       offerID,
		ClientID: clientID,
		Status:   models.OfferStatusAccepted,
	}, nil)
	repo.On("Accept", ctx, mock.Anything).Return(nil, nil,
		apperror.New(apperror.ErrCodeAlreadyAccepted, "оффер уже принят"))

	_, _, err := svc.AcceptOffer(ctx, offerID, clientID, nil)
	assert.Error(t, err)

	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeAlreadyAccepted, appErr.Code)
}

func TestOfferService_RejectOffer_NotRecipient(t *testing.T) {
	repo := new(mockOfferRepo)
	svc := NewOfferService(repo, new(mockCatalogRepo))
	ctx := context.Background()

	offerID := uuid.New()
	repo.On("GetByID", ctx, offerID).Return(&models.Offer{
		ID:       offerID,
		ClientID: uuid.New(),
	}, nil)

	_, err := svc.RejectOffer(ctx, offerID, uuid.New(), "не подходит")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "только его получатель")
}

func TestOfferService_GetOffer_NotParty(t *testing.T) {
	repo := new(mockOfferRepo)
	svc := NewOfferService(repo, new(mockCatalogRepo))
	ctx := context.Background()

	offerID := uuid.New()
	repo.On("GetByID", ctx, offerID).Return(&models.Offer{
		ID:           offerID,
		ClientID:     uuid.New(),
		FreelancerID: uuid.New(),
	}, nil)

	_, err := svc.GetOffer(ctx, offerID, uuid.New())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "нет доступа")
}

func TestOfferService_ListMyOffers(t *testing.T) {
	repo := new(mockOfferRepo)
	svc := NewOfferService(repo, new(mockCatalogRepo))
	ctx := context.Background()

	userID := uuid.New()
	repo.On("ListByClient", ctx, userID, 20, 0).Return([]models.Offer{{ID: uuid.New()}}, nil)
	repo.On("ListByFreelancer", ctx, userID, 20, 0).Return([]models.Offer{}, nil)

	asClient, asFreelancer, err := svc.ListMyOffers(ctx, userID, 0, -5)
	assert.NoError(t, err)
	assert.Len(t, asClient, 1)
	assert.Len(t, asFreelancer, 0)
}
