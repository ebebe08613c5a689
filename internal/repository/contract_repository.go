package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ovmelnikov/uslugi-backend/internal/models"
	"github.com/ovmelnikov/uslugi-backend/internal/pkg/apperror"
	"github.com/ovmelnikov/uslugi-backend/internal/repository/common"
)

// ContractRepository читает замороженные условия заказов. Записи контрактов
// создаются и меняются только внутри транзакций принятия оффера и переходов
// заказа, поэтому здесь нет методов записи.
type ContractRepository struct {
	db *sqlx.DB
}

func NewContractRepository(db *sqlx.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

// GetByOrderID возвращает контракт заказа.
func (r *ContractRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Contract, error) {
	return common.GetByField[models.Contract](ctx, r.db, "contracts", "order_id", orderID, apperror.ErrContractNotFound)
}
