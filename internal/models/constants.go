package models

// OfferStatus константы статусов офферов
const (
	OfferStatusPending  = "pending"
	OfferStatusAccepted = "accepted"
	OfferStatusRejected = "rejected"
)

// OrderStatus константы статусов заказов
const (
	OrderStatusPendingAcceptance = "pending_acceptance"
	OrderStatusInProgress        = "in_progress"
	OrderStatusDelivered         = "delivered"
	OrderStatusRevisionRequested = "revision_requested"
	OrderStatusCompleted         = "completed"
	OrderStatusCancelled         = "cancelled"
	OrderStatusDisputed          = "disputed"
)

// ContractStatus константы статусов контрактов (зеркалируют статус заказа)
const (
	ContractStatusActive    = "active"
	ContractStatusCompleted = "completed"
	ContractStatusCancelled = "cancelled"
	ContractStatusDisputed  = "disputed"
)

// DisputeStatus константы статусов споров
const (
	DisputeStatusOpen     = "open"
	DisputeStatusInReview = "in_review"
	DisputeStatusResolved = "resolved"
	DisputeStatusClosed   = "closed"
)

// DisputeOrderAction действия над заказом при разрешении спора
const (
	DisputeActionRefundClient  = "refund_client"
	DisputeActionPayFreelancer = "pay_freelancer"
	DisputeActionSplit         = "split"
	DisputeActionNone          = "none"
)

// Role константы ролей вызывающего
const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
	RoleAdmin      = "admin"
)

// EventType типы записей журнала заказа. Набор закрыт: для каждого типа
// в metadata ожидается фиксированная форма (см. models.OrderEvent).
const (
	EventOrderCreated      = "ORDER_CREATED"
	EventDeliverySubmitted = "DELIVERY_SUBMITTED"
	EventRevisionRequested = "REVISION_REQUESTED"
	EventDeliveryAccepted  = "DELIVERY_ACCEPTED"
	EventOrderCancelled    = "ORDER_CANCELLED"
	EventDisputeOpened     = "DISPUTE_OPENED"
	EventDisputeResolved   = "DISPUTE_RESOLVED"
)

// ValidOfferStatuses список валидных статусов офферов
var ValidOfferStatuses = map[string]struct{}{
	OfferStatusPending:  {},
	OfferStatusAccepted: {},
	OfferStatusRejected: {},
}

// ValidOrderStatuses список валидных статусов заказов
var ValidOrderStatuses = map[string]struct{}{
	OrderStatusPendingAcceptance: {},
	OrderStatusInProgress:        {},
	OrderStatusDelivered:         {},
	OrderStatusRevisionRequested: {},
	OrderStatusCompleted:         {},
	OrderStatusCancelled:         {},
	OrderStatusDisputed:          {},
}

// ValidDisputeStatuses список валидных статусов споров
var ValidDisputeStatuses = map[string]struct{}{
	DisputeStatusOpen:     {},
	DisputeStatusInReview: {},
	DisputeStatusResolved: {},
	DisputeStatusClosed:   {},
}

// ValidDisputeActions список валидных действий при разрешении спора
var ValidDisputeActions = map[string]struct{}{
	DisputeActionRefundClient:  {},
	DisputeActionPayFreelancer: {},
	DisputeActionSplit:         {},
	DisputeActionNone:          {},
}

// OrderTransitions таблица допустимых переходов статусов заказа.
// Единственный источник истины для жизненного цикла: перехода, которого
// здесь нет, не существует. Выход из disputed выполняет только разрешение
// спора, поэтому в таблице он отсутствует.
var OrderTransitions = map[string]map[string]struct{}{
	OrderStatusPendingAcceptance: {
		OrderStatusInProgress: {},
		OrderStatusCancelled:  {},
		OrderStatusDisputed:   {},
	},
	OrderStatusInProgress: {
		OrderStatusDelivered: {},
		OrderStatusCancelled: {},
		OrderStatusDisputed:  {},
	},
	OrderStatusDelivered: {
		OrderStatusRevisionRequested: {},
		OrderStatusCompleted:         {},
		OrderStatusCancelled:         {},
		OrderStatusDisputed:          {},
	},
	OrderStatusRevisionRequested: {
		OrderStatusDelivered: {},
		OrderStatusCancelled: {},
		OrderStatusDisputed:  {},
	},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
	OrderStatusDisputed:  {},
}

// CanTransition проверяет по таблице, допустим ли переход статуса заказа.
func CanTransition(from, to string) bool {
	targets, ok := OrderTransitions[from]
	if !ok {
		return false
	}
	_, ok = targets[to]
	return ok
}

// IsTerminalOrderStatus сообщает, является ли статус заказа терминальным.
func IsTerminalOrderStatus(status string) bool {
	return status == OrderStatusCompleted || status == OrderStatusCancelled
}

// ContractStatusForOrder возвращает статус контракта, зеркалирующий статус заказа.
// Пока заказ жив, контракт остаётся активным.
func ContractStatusForOrder(orderStatus string) string {
	switch orderStatus {
	case OrderStatusCompleted:
		return ContractStatusCompleted
	case OrderStatusCancelled:
		return ContractStatusCancelled
	case OrderStatusDisputed:
		return ContractStatusDisputed
	default:
		return ContractStatusActive
	}
}
