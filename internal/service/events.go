package service

import (
	"github.com/google/uuid"

	"github.com/ovmelnikov/uslugi-backend/internal/logger"
)

// Имена доменных событий, уходящих подписчикам по WebSocket.
const (
	EventOfferCreated       = "offer.created"
	EventOfferAccepted      = "offer.accepted"
	EventOfferRejected      = "offer.rejected"
	EventOrderStatusChanged = "order.status_changed"
	EventDisputeOpened      = "dispute.opened"
	EventDisputeResolved    = "dispute.resolved"
	EventReviewSubmitted    = "review.submitted"
)

// WSNotifier интерфейс для отправки WebSocket уведомлений.
type WSNotifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data interface{}) error
}

// notify отправляет событие каждому из получателей. Доставка
// best-effort: состояние заказа к этому моменту уже зафиксировано,
// сбой отправки только логируется.
func notify(hub WSNotifier, event string, data interface{}, userIDs ...uuid.UUID) {
	if hub == nil {
		return
	}

	for _, id := range userIDs {
		if err := hub.BroadcastToUser(id, event, data); err != nil && logger.Log != nil {
			logger.Log.WithFields(map[string]interface{}{
				"event":   event,
				"user_id": id,
				"error":   err.Error(),
			}).Warn("не удалось отправить уведомление")
		}
	}
}
