package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ovmelnikov/uslugi-backend/internal/models"
	"github.com/ovmelnikov/uslugi-backend/internal/pkg/apperror"
)

// ContractRepository описывает чтение контрактов.
type ContractRepository interface {
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Contract, error)
}

// ContractService отдаёт замороженные условия заказа. Записи контрактов
// происходят только внутри транзакций принятия оффера и переходов заказа,
// поэтому сервис только читает.
type ContractService struct {
	repo   ContractRepository
	orders OrderRepository
}

// NewContractService создаёт новый сервис контрактов.
func NewContractService(repo ContractRepository, orders OrderRepository) *ContractService {
	return &ContractService{repo: repo, orders: orders}
}

// GetByOrderID возвращает контракт заказа его сторонам и администратору.
func (s *ContractService) GetByOrderID(ctx context.Context, orderID, userID uuid.UUID, role string) (*models.Contract, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.IsParticipant(userID) && role != models.RoleAdmin {
		return nil, apperror.New(apperror.ErrCodeForbidden, "у вас нет доступа к этому контракту")
	}

	return s.repo.GetByOrderID(ctx, orderID)
}
