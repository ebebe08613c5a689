package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ovmelnikov/uslugi-backend/internal/models"
	"github.com/ovmelnikov/uslugi-backend/internal/pkg/apperror"
	"github.com/ovmelnikov/uslugi-backend/internal/repository/common"
)

// CatalogRepository читает снимки услуг из каталога. Сам каталог ведёт
// внешняя подсистема, ядру нужны только замороженные условия.
type CatalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// GetService возвращает снимок услуги по идентификатору.
func (r *CatalogRepository) GetService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	return common.GetByID[models.Service](ctx, r.db, "services", id, apperror.ErrServiceNotFound)
}
