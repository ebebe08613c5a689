package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OrderEvent запись журнала заказа. Журнал строго append-only:
// записи никогда не обновляются и не удаляются.
//
// Формы metadata по типам событий:
//
//	ORDER_CREATED      {"offer_id", "order_number"}
//	DELIVERY_SUBMITTED {"deliverable_id", "file_count"}
//	REVISION_REQUESTED {"revisions_used", "revisions_included"}
//	DELIVERY_ACCEPTED  {}
//	ORDER_CANCELLED    {"reason"}
//	DISPUTE_OPENED     {"dispute_id", "previous_status"}
//	DISPUTE_RESOLVED   {"dispute_id", "order_action", "new_order_status"}
type OrderEvent struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	OrderID     uuid.UUID       `db:"order_id" json:"order_id"`
	UserID      *uuid.UUID      `db:"user_id" json:"user_id,omitempty"`
	EventType   string          `db:"event_type" json:"event_type"`
	Description string          `db:"description" json:"description"`
	Metadata    json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}
