package dto

// CreateOfferRequest запрос на создание оффера.
type CreateOfferRequest struct {
	ServiceID          string  `json:"service_id" binding:"required,uuid"`
	ClientID           string  `json:"client_id" binding:"required,uuid"`
	ConversationID     *string `json:"conversation_id" binding:"omitempty,uuid"`
	Price              float64 `json:"price" binding:"omitempty,gt=0"`
	Currency           string  `json:"currency"`
	DeliveryTimeDays   int     `json:"delivery_time_days" binding:"required,min=1"`
	RevisionsIncluded  int     `json:"revisions_included" binding:"min=0"`
	ScopeOfWork        string  `json:"scope_of_work" binding:"required"`
	CancellationPolicy string  `json:"cancellation_policy"`
}

// RejectOfferRequest запрос на отклонение оффера.
type RejectOfferRequest struct {
	Reason string `json:"reason"`
}

// SubmitDeliveryRequest запрос на сдачу работы.
type SubmitDeliveryRequest struct {
	Message  string   `json:"message" binding:"required"`
	FileURLs []string `json:"file_urls"`
}

// RequestRevisionRequest запрос правок по сданной работе.
type RequestRevisionRequest struct {
	Note string `json:"note" binding:"required"`
}

// CancelOrderRequest запрос на отмену заказа.
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// OpenDisputeRequest запрос на открытие спора.
type OpenDisputeRequest struct {
	Reason      string   `json:"reason" binding:"required"`
	Description string   `json:"description" binding:"required,min=20"`
	Attachments []string `json:"attachments"`
}

// ResolveDisputeRequest решение администратора по спору.
type ResolveDisputeRequest struct {
	Status          string `json:"status" binding:"required"`
	AdminResolution string `json:"admin_resolution"`
	OrderAction     string `json:"order_action"`
}

// AddDisputeCommentRequest реплика в обсуждении спора.
type AddDisputeCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// SubmitReviewRequest запрос на отправку отзыва. Заполняется ровно одно
// из полей OrderID и ServiceID.
type SubmitReviewRequest struct {
	OrderID   *string `json:"order_id" binding:"omitempty,uuid"`
	ServiceID *string `json:"service_id" binding:"omitempty,uuid"`
	Rating    int     `json:"rating" binding:"required,min=1,max=5"`
	Comment   string  `json:"comment"`
}
