package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ovmelnikov/uslugi-backend/internal/config"
	"github.com/ovmelnikov/uslugi-backend/internal/http/handlers"
	"github.com/ovmelnikov/uslugi-backend/internal/http/middleware"
	"github.com/ovmelnikov/uslugi-backend/internal/service"
)

// SetupRouter собирает маршруты приложения.
func SetupRouter(
	cfg *config.Config,
	offerHandler *handlers.OfferHandler,
	orderHandler *handlers.OrderHandler,
	disputeHandler *handlers.DisputeHandler,
	reviewHandler *handlers.ReviewHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))

	// Публичные маршруты
	api.GET("/ws", wsHandler.Handle)
	api.GET("/users/:id/reviews", middleware.UUIDValidator("id"), reviewHandler.ListUserReviews)
	api.GET("/users/:id/rating", middleware.UUIDValidator("id"), reviewHandler.GetUserRating)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.POST("/offers", offerHandler.CreateOffer)
		protected.GET("/offers/my", offerHandler.ListMyOffers)
		protected.GET("/offers/:id", middleware.UUIDValidator("id"), offerHandler.GetOffer)
		protected.POST("/offers/:id/accept", middleware.UUIDValidator("id"), offerHandler.AcceptOffer)
		protected.POST("/offers/:id/reject", middleware.UUIDValidator("id"), offerHandler.RejectOffer)

		protected.GET("/orders/my", orderHandler.ListMyOrders)
		protected.GET("/orders/:id", middleware.UUIDValidator("id"), orderHandler.GetOrder)
		protected.GET("/orders/:id/contract", middleware.UUIDValidator("id"), orderHandler.GetContract)
		protected.GET("/orders/:id/events", middleware.UUIDValidator("id"), orderHandler.ListEvents)
		protected.GET("/orders/:id/deliverables", middleware.UUIDValidator("id"), orderHandler.ListDeliverables)
		protected.POST("/orders/:id/delivery", middleware.UUIDValidator("id"), orderHandler.SubmitDelivery)
		protected.POST("/orders/:id/revision", middleware.UUIDValidator("id"), orderHandler.RequestRevision)
		protected.POST("/orders/:id/accept-delivery", middleware.UUIDValidator("id"), orderHandler.AcceptDelivery)
		protected.POST("/orders/:id/cancel", middleware.UUIDValidator("id"), orderHandler.CancelOrder)

		protected.POST("/orders/:id/dispute", middleware.UUIDValidator("id"), disputeHandler.OpenDispute)
		protected.GET("/orders/:id/disputes", middleware.UUIDValidator("id"), disputeHandler.ListOrderDisputes)
		protected.GET("/disputes/my", disputeHandler.ListMyDisputes)
		protected.GET("/disputes/:id", middleware.UUIDValidator("id"), disputeHandler.GetDispute)
		protected.POST("/disputes/:id/comments", middleware.UUIDValidator("id"), disputeHandler.AddComment)
		protected.GET("/disputes/:id/comments", middleware.UUIDValidator("id"), disputeHandler.ListComments)

		protected.POST("/reviews", reviewHandler.SubmitReview)
		protected.GET("/orders/:id/can-review", middleware.UUIDValidator("id"), reviewHandler.CanReview)
		protected.GET("/orders/:id/reviews", middleware.UUIDValidator("id"), reviewHandler.ListOrderReviews)

		protected.GET("/notifications", notificationHandler.ListNotifications)
		protected.GET("/notifications/unread/count", notificationHandler.CountUnread)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
	}

	// Администрирование
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireAdmin())
	{
		admin.POST("/disputes/:id/resolve", middleware.UUIDValidator("id"), disputeHandler.ResolveDispute)
	}

	return r
}
