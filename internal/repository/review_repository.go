package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ovmelnikov/uslugi-backend/internal/models"
	"github.com/ovmelnikov/uslugi-backend/internal/pkg/apperror"
	"github.com/ovmelnikov/uslugi-backend/internal/repository/common"
)

type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// CreateOrderReview записывает отзыв по заказу одной транзакцией:
// заказ блокируется, все проверки из canReview повторяются на записи,
// после вставки рейтинг получателя пересчитывается заново из набора
// отзывов. Блокировка строки заказа сериализует конкурентные отзывы
// по одному заказу, уникальное ограничение закрывает двойную отправку.
func (r *ReviewRepository) CreateOrderReview(ctx context.Context, review *models.Review) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		order, err := lockOrderTx(tx, *review.OrderID)
		if err != nil {
			return err
		}

		if order.Status != models.OrderStatusCompleted {
			return apperror.New(apperror.ErrCodeInvalidState, "отзыв можно оставить только после завершения заказа")
		}

		// Правило порядка: сначала отзыв оставляет заказчик.
		if !review.IsClientReview {
			var clientReviewed bool
			err := tx.Get(&clientReviewed, `
				SELECT EXISTS (
					SELECT 1 FROM reviews WHERE order_id = $1 AND is_client_review = TRUE
				)
			`, *review.OrderID)
			if err != nil {
				return fmt.Errorf("check client review: %w", err)
			}
			if !clientReviewed {
				return apperror.New(apperror.ErrCodeInvalidState, "сначала отзыв оставляет заказчик")
			}
		}

		err = tx.Get(review, `
			INSERT INTO reviews (order_id, reviewer_id, reviewee_id, rating, comment, is_order_review, is_client_review)
			VALUES ($1, $2, $3, $4, $5, TRUE, $6)
			RETURNING *
		`, *review.OrderID, review.ReviewerID, review.RevieweeID, review.Rating, review.Comment, review.IsClientReview)
		if err != nil {
			if common.IsUniqueViolation(err, "reviews_order_reviewer_direction_key") {
				return apperror.New(apperror.ErrCodeAlreadyReviewed, "вы уже оставили отзыв на этот заказ")
			}
			return fmt.Errorf("insert review: %w", err)
		}

		return recomputeRatingTx(tx, review.RevieweeID)
	})
}

// CreateServiceReview записывает отзыв по услуге и пересчитывает рейтинг
// владельца в той же транзакции.
func (r *ReviewRepository) CreateServiceReview(ctx context.Context, review *models.Review) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.Get(review, `
			INSERT INTO reviews (service_id, reviewer_id, reviewee_id, rating, comment, is_order_review, is_client_review)
			VALUES ($1, $2, $3, $4, $5, FALSE, FALSE)
			RETURNING *
		`, *review.ServiceID, review.ReviewerID, review.RevieweeID, review.Rating, review.Comment)
		if err != nil {
			if common.IsUniqueViolation(err, "reviews_service_reviewer_key") {
				return apperror.New(apperror.ErrCodeAlreadyReviewed, "вы уже оставили отзыв на эту услугу")
			}
			return fmt.Errorf("insert review: %w", err)
		}

		return recomputeRatingTx(tx, review.RevieweeID)
	})
}

// recomputeRatingTx пересчитывает агрегат рейтинга заново из набора отзывов.
// Никаких инкрементов по кэшированным значениям: пересбор внутри той же
// транзакции исключает потерю обновлений при конкурентных отзывах.
func recomputeRatingTx(tx *sqlx.Tx, revieweeID uuid.UUID) error {
	_, err := tx.Exec(`
		INSERT INTO user_ratings (user_id, rating_avg, rating_count, updated_at)
		SELECT $1, COALESCE(AVG(rating), 0), COUNT(*), NOW()
		FROM reviews WHERE reviewee_id = $1
		ON CONFLICT (user_id) DO UPDATE
		SET rating_avg = EXCLUDED.rating_avg,
		    rating_count = EXCLUDED.rating_count,
		    updated_at = EXCLUDED.updated_at
	`, revieweeID)
	if err != nil {
		return fmt.Errorf("recompute rating: %w", err)
	}
	return nil
}

// GetByID возвращает отзыв по идентификатору.
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	return common.GetByID[models.Review](ctx, r.db, "reviews", id, apperror.ErrReviewNotFound)
}

// GetByOrderAndReviewer возвращает отзыв пользователя по заказу, nil если его нет.
func (r *ReviewRepository) GetByOrderAndReviewer(ctx context.Context, orderID, reviewerID uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.GetContext(ctx, &review, `
		SELECT * FROM reviews WHERE order_id = $1 AND reviewer_id = $2
	`, orderID, reviewerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("review repository: get by order and reviewer %w", err)
	}
	return &review, nil
}

// HasClientReview сообщает, оставил ли заказчик отзыв по заказу.
func (r *ReviewRepository) HasClientReview(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM reviews WHERE order_id = $1 AND is_client_review = TRUE)
	`, orderID)
	if err != nil {
		return false, fmt.Errorf("review repository: has client review %w", err)
	}
	return exists, nil
}

// ListByReviewee возвращает отзывы о пользователе.
func (r *ReviewRepository) ListByReviewee(ctx context.Context, revieweeID uuid.UUID, limit, offset int) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.SelectContext(ctx, &reviews, `
		SELECT * FROM reviews WHERE reviewee_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, revieweeID, limit, offset)
	return reviews, err
}

// ListByOrderID возвращает отзывы по заказу.
func (r *ReviewRepository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.SelectContext(ctx, &reviews, `SELECT * FROM reviews WHERE order_id = $1`, orderID)
	return reviews, err
}

// GetUserRating возвращает агрегированный рейтинг пользователя.
// Для пользователя без отзывов возвращается нулевой агрегат.
func (r *ReviewRepository) GetUserRating(ctx context.Context, userID uuid.UUID) (*models.UserRating, error) {
	var rating models.UserRating
	err := r.db.GetContext(ctx, &rating, `SELECT * FROM user_ratings WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.UserRating{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("review repository: get user rating %w", err)
	}
	return &rating, nil
}
