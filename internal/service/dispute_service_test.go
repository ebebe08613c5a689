package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ovmelnikov/uslugi-backend/internal/models"
	"github.com/ovmelnikov/uslugi-backend/internal/pkg/apperror"
	"github.com/ovmelnikov/uslugi-backend/internal/repository"
)

type mockDisputeRepo struct {
	mock.Mock
}

func (m *mockDisputeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) GetActiveByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Dispute, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Dispute, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]models.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Dispute, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) Open(ctx context.Context, d *models.Dispute) error {
	args := m.Called(ctx, d)
	if args.Error(0) == nil {
		d.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockDisputeRepo) Resolve(ctx context.Context, p repository.ResolveParams) (*models.Dispute, *models.Order, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Dispute), args.Get(1).(*models.Order), args.Error(2)
}

func (m *mockDisputeRepo) AddComment(ctx context.Context, comment *models.DisputeComment) error {
	args := m.Called(ctx, comment)
	if args.Error(0) == nil {
		comment.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockDisputeRepo) ListComments(ctx context.Context, disputeID uuid.UUID) ([]models.DisputeComment, error) {
	args := m.Called(ctx, disputeID)
	return args.Get(0).([]models.DisputeComment), args.Error(1)
}

func TestDisputeService_OpenDispute_Success(t *testing.T) {
	repo := new(mockDisputeRepo)
	orders := new(mockOrderRepo)
	svc := NewDisputeService(repo, orders)
	ctx := context.Background()

	orderID := uuid.New()
	clientID := uuid.New()
	freelancerID := uuid.New()

	orders.On("GetByID", ctx, orderID).Return(&models.Order{
		ID:           orderID,
		ClientID:     clientID,
		FreelancerID: freelancerID,
		Status:       models.OrderStatusDelivered,
	}, nil)
	repo.On("Open", ctx, mock.AnythingOfType("*models.Dispute")).Return(nil)

	dispute, err := svc.OpenDispute(ctx, OpenDisputeInput{
		OrderID:     orderID,
		UserID:      clientID,
		Reason:      "Работа не соответствует заданию",
		Description: "Исполнитель сдал макет, не совпадающий с утверждённым объёмом работ",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.DisputeStatusOpen, dispute.Status)
	assert.Equal(t, clientID, dispute.ClientID)
	assert.Equal(t, freelancerID, dispute.FreelancerID)
}

func TestDisputeService_OpenDispute_ShortDescription(t *testing.T) {
	svc := NewDisputeService(new(mockDisputeRepo), new(mockOrderRepo))

	_, err := svc.OpenDispute(context.Background(), OpenDisputeInput{
		OrderID:     uuid.New(),
		UserID:      uuid.New(),
		Reason:      "Срыв срока",
		Description: "слишком коротко",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "не менее 20 символов")
}

func TestDisputeService_OpenDispute_NotParticipant(t *testing.T) {
	repo := new(mockDisputeRepo)
	orders := new(mockOrderRepo)
	svc := NewDisputeService(repo, orders)
	ctx := context.Background()

	orderID := uuid.New()
	orders.On("GetByID", ctx, orderID).Return(&models.Order{
		ID:           orderID,
		ClientID:     uuid.New(),
		FreelancerID: uuid.New(),
	}, nil)

	_, err := svc.OpenDispute(ctx, OpenDisputeInput{
		OrderID:     orderID,
		UserID:      uuid.New(),
		Reason:      "Срыв срока",
		Description: strings.Repeat("описание претензии ", 3),
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "только сторона заказа")
	repo.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
}

func TestDisputeService_OpenDispute_AlreadyOpen(t *testing.T) {
	repo := new(mockDisputeRepo)
	orders := new(mockOrderRepo)
	svc := NewDisputeService(repo, orders)
	ctx := context.Background()

	orderID := uuid.New()
	clientID := uuid.New()
	orders.On("GetByID", ctx, orderID).Return(&models.Order{
		ID:           orderID,
		ClientID:     clientID,
		FreelancerID: uuid.New(),
		Status:       models.OrderStatusDisputed,
	}, nil)
	repo.On("Open", ctx, mock.AnythingOfType("*models.Dispute")).Return(
		apperror.New(apperror.ErrCodeDisputeAlreadyOpen, "по заказу уже открыт спор"))

	_, err := svc.OpenDispute(ctx, OpenDisputeInput{
		OrderID:     orderID,
		UserID:      clientID,
		Reason:      "Срыв срока",
		Description: strings.Repeat("описание претензии ", 3),
	})
	assert.Error(t, err)

	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeDisputeAlreadyOpen, appErr.Code)
}

func TestDisputeService_ResolveDispute_Success(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := NewDisputeService(repo, new(mockOrderRepo))
	ctx := context.Background()

	disputeID := uuid.New()
	adminID := uuid.New()
	orderID := uuid.New()
	resolution := "Возврат средств заказчику"

	resolved := &models.Dispute{
		ID:              disputeID,
		OrderID:         orderID,
		ClientID:        uuid.New(),
		FreelancerID:    uuid.New(),
		Status:          models.DisputeStatusResolved,
		AdminResolution: &resolution,
	}
	order := &models.Order{ID: orderID, Status: models.OrderStatusCancelled}

	repo.On("Resolve", ctx, repository.ResolveParams{
		DisputeID:       disputeID,
		AdminID:         adminID,
		NewStatus:       models.DisputeStatusResolved,
		AdminResolution: resolution,
		OrderAction:     models.DisputeActionRefundClient,
	}).Return(resolved, order, nil)

	gotDispute, gotOrder, err := svc.ResolveDispute(ctx, ResolveDisputeInput{
		DisputeID:       disputeID,
		AdminID:         adminID,
		NewStatus:       models.DisputeStatusResolved,
		AdminResolution: resolution,
		OrderAction:     models.DisputeActionRefundClient,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.DisputeStatusResolved, gotDispute.Status)
	assert.Equal(t, models.OrderStatusCancelled, gotOrder.Status)
}

func TestDisputeService_ResolveDispute_ResolutionRequired(t *testing.T) {
	svc := NewDisputeService(new(mockDisputeRepo), new(mockOrderRepo))

	_, _, err := svc.ResolveDispute(context.Background(), ResolveDisputeInput{
		DisputeID: uuid.New(),
		AdminID:   uuid.New(),
		NewStatus: models.DisputeStatusResolved,
	})
	assert.Error(t, err)

	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeResolutionRequired, appErr.Code)
}

func TestDisputeService_ResolveDispute_InvalidStatus(t *testing.T) {
	svc := NewDisputeService(new(mockDisputeRepo), new(mockOrderRepo))

	_, _, err := svc.ResolveDispute(context.Background(), ResolveDisputeInput{
		DisputeID: uuid.New(),
		AdminID:   uuid.New(),
		NewStatus: "open",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "недопустимый статус")
}

func TestDisputeService_ResolveDispute_DefaultsActionToNone(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := NewDisputeService(repo, new(mockOrderRepo))
	ctx := context.Background()

	disputeID := uuid.New()
	adminID := uuid.New()

	repo.On("Resolve", ctx, mock.MatchedBy(func(p repository.ResolveParams) bool {
		return p.OrderAction == models.DisputeActionNone
	})).Return(&models.Dispute{ID: disputeID, Status: models.DisputeStatusInReview},
		&models.Order{Status: models.OrderStatusDisputed}, nil)

	_, _, err := svc.ResolveDispute(ctx, ResolveDisputeInput{
		DisputeID: disputeID,
		AdminID:   adminID,
		NewStatus: models.DisputeStatusInReview,
	})
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDisputeService_ResolveDispute_InReviewRejectsOrderAction(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := NewDisputeService(repo, new(mockOrderRepo))

	// Взятие спора в работу не закрывает его: действие над заказом здесь
	// вывело бы заказ из disputed при всё ещё активном споре.
	for _, action := range []string{
		models.DisputeActionPayFreelancer,
		models.DisputeActionRefundClient,
		models.DisputeActionSplit,
	} {
		_, _, err := svc.ResolveDispute(context.Background(), ResolveDisputeInput{
			DisputeID:   uuid.New(),
			AdminID:     uuid.New(),
			NewStatus:   models.DisputeStatusInReview,
			OrderAction: action,
		})
		assert.Error(t, err)
		assert.True(t, apperror.IsValidation(err))
		assert.Contains(t, err.Error(), "только при разрешении или закрытии")
	}
	repo.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
}

func TestDisputeService_AddComment_ClosedDispute(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := NewDisputeService(repo, new(mockOrderRepo))
	ctx := context.Background()

	disputeID := uuid.New()
	clientID := uuid.New()
	repo.On("GetByID", ctx, disputeID).Return(&models.Dispute{
		ID:           disputeID,
		ClientID:     clientID,
		FreelancerID: uuid.New(),
		Status:       models.DisputeStatusResolved,
	}, nil)

	_, err := svc.AddComment(ctx, disputeID, clientID, models.RoleClient, "а можно ещё раз?")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "закрытого спора")
}

func TestDisputeService_AddComment_NotParty(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := NewDisputeService(repo, new(mockOrderRepo))
	ctx := context.Background()

	disputeID := uuid.New()
	repo.On("GetByID", ctx, disputeID).Return(&models.Dispute{
		ID:           disputeID,
		ClientID:     uuid.New(),
		FreelancerID: uuid.New(),
		Status:       models.DisputeStatusOpen,
	}, nil)

	_, err := svc.AddComment(ctx, disputeID, uuid.New(), models.RoleClient, "комментарий")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "нет доступа")
}

func TestDisputeService_AddComment_AdminAllowed(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := NewDisputeService(repo, new(mockOrderRepo))
	ctx := context.Background()

	disputeID := uuid.New()
	adminID := uuid.New()
	repo.On("GetByID", ctx, disputeID).Return(&models.Dispute{
		ID:           disputeID,
		ClientID:     uuid.New(),
		FreelancerID: uuid.New(),
		Status:       models.DisputeStatusInReview,
	}, nil)
	repo.On("AddComment", ctx, mock.AnythingOfType("*models.DisputeComment")).Return(nil)

	comment, err := svc.AddComment(ctx, disputeID, adminID, models.RoleAdmin, "запрошены материалы у сторон")
	assert.NoError(t, err)
	assert.Equal(t, adminID, comment.UserID)
}

func TestDisputeService_GetDispute_PartyAccess(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := NewDisputeService(repo, new(mockOrderRepo))
	ctx := context.Background()

	disputeID := uuid.New()
	freelancerID := uuid.New()
	repo.On("GetByID", ctx, disputeID).Return(&models.Dispute{
		ID:           disputeID,
		ClientID:     uuid.New(),
		FreelancerID: freelancerID,
		Status:       models.DisputeStatusOpen,
	}, nil)

	dispute, err := svc.GetDispute(ctx, disputeID, freelancerID, models.RoleFreelancer)
	assert.NoError(t, err)
	assert.Equal(t, disputeID, dispute.ID)

	_, err = svc.GetDispute(ctx, disputeID, uuid.New(), models.RoleClient)
	assert.Error(t, err)
}
