package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ovmelnikov/uslugi-backend/internal/dto"
	"github.com/ovmelnikov/uslugi-backend/internal/http/handlers/common"
	"github.com/ovmelnikov/uslugi-backend/internal/service"
)

// ReviewHandler обрабатывает HTTP запросы по отзывам.
type ReviewHandler struct {
	svc *service.ReviewService
}

// NewReviewHandler создаёт новый хэндлер отзывов.
func NewReviewHandler(svc *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

// SubmitReview POST /api/reviews
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	switch {
	case req.OrderID != nil && req.ServiceID != nil:
		common.RespondBadRequest(c, "укажите либо order_id, либо service_id, но не оба")
		return
	case req.OrderID != nil:
		orderID, err := uuid.Parse(*req.OrderID)
		if err != nil {
			common.RespondBadRequest(c, "невалидный order_id")
			return
		}

		review, err := h.svc.SubmitOrderReview(c.Request.Context(), service.SubmitOrderReviewInput{
			OrderID:    orderID,
			ReviewerID: userID,
			Rating:     req.Rating,
			Comment:    req.Comment,
		})
		if err != nil {
			common.RespondAppError(c, err)
			return
		}

		c.JSON(http.StatusCreated, review)
	case req.ServiceID != nil:
		serviceID, err := uuid.Parse(*req.ServiceID)
		if err != nil {
			common.RespondBadRequest(c, "невалидный service_id")
			return
		}

		review, err := h.svc.SubmitServiceReview(c.Request.Context(), service.SubmitServiceReviewInput{
			ServiceID:  serviceID,
			ReviewerID: userID,
			Rating:     req.Rating,
			Comment:    req.Comment,
		})
		if err != nil {
			common.RespondAppError(c, err)
			return
		}

		c.JSON(http.StatusCreated, review)
	default:
		common.RespondBadRequest(c, "укажите order_id или service_id")
	}
}

// CanReview GET /api/orders/:id/can-review
func (h *ReviewHandler) CanReview(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	result, err := h.svc.CanReview(c.Request.Context(), orderID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListOrderReviews GET /api/orders/:id/reviews
func (h *ReviewHandler) ListOrderReviews(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentUserRole(c)

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	reviews, err := h.svc.ListOrderReviews(c.Request.Context(), orderID, userID, role)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// ListUserReviews GET /api/users/:id/reviews
func (h *ReviewHandler) ListUserReviews(c *gin.Context) {
	revieweeID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	reviews, err := h.svc.ListUserReviews(c.Request.Context(), revieweeID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// GetUserRating GET /api/users/:id/rating
func (h *ReviewHandler) GetUserRating(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	rating, err := h.svc.GetUserRating(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, rating)
}
