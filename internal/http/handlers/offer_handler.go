package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ovmelnikov/uslugi-backend/internal/dto"
	"github.com/ovmelnikov/uslugi-backend/internal/http/handlers/common"
	"github.com/ovmelnikov/uslugi-backend/internal/service"
)

// OfferHandler обрабатывает HTTP запросы по офферам.
type OfferHandler struct {
	svc *service.OfferService
}

// NewOfferHandler создаёт новый хэндлер офферов.
func NewOfferHandler(svc *service.OfferService) *OfferHandler {
	return &OfferHandler{svc: svc}
}

// CreateOffer POST /api/offers
func (h *OfferHandler) CreateOffer(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	serviceID, _ := uuid.Parse(req.ServiceID)
	clientID, _ := uuid.Parse(req.ClientID)

	var conversationID *uuid.UUID
	if req.ConversationID != nil {
		parsed, err := uuid.Parse(*req.ConversationID)
		if err != nil {
			common.RespondBadRequest(c, "невалидный conversation_id")
			return
		}
		conversationID = &parsed
	}

	offer, err := h.svc.CreateOffer(c.Request.Context(), service.CreateOfferInput{
		ServiceID:          serviceID,
		FreelancerID:       userID,
		ClientID:           clientID,
		ConversationID:     conversationID,
		Price:              req.Price,
		Currency:           req.Currency,
		DeliveryTimeDays:   req.DeliveryTimeDays,
		RevisionsIncluded:  req.RevisionsIncluded,
		ScopeOfWork:        req.ScopeOfWork,
		CancellationPolicy: req.CancellationPolicy,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, offer)
}

// GetOffer GET /api/offers/:id
func (h *OfferHandler) GetOffer(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	offerID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	offer, err := h.svc.GetOffer(c.Request.Context(), offerID, userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

// ListMyOffers GET /api/offers/my
func (h *OfferHandler) ListMyOffers(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	asClient, asFreelancer, err := h.svc.ListMyOffers(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"as_client":     asClient,
		"as_freelancer": asFreelancer,
	})
}

// AcceptOffer POST /api/offers/:id/accept
func (h *OfferHandler) AcceptOffer(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	offerID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	clientIP := c.ClientIP()

	offer, order, err := h.svc.AcceptOffer(c.Request.Context(), offerID, userID, &clientIP)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"offer": offer,
		"order": order,
	})
}

// RejectOffer POST /api/offers/:id/reject
func (h *OfferHandler) RejectOffer(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	offerID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.RejectOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		common.RespondBadRequest(c, err.Error())
		return
	}

	offer, err := h.svc.RejectOffer(c.Request.Context(), offerID, userID, req.Reason)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}
