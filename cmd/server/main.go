package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovmelnikov/uslugi-backend/internal/config"
	"github.com/ovmelnikov/uslugi-backend/internal/db"
	httpHandlers "github.com/ovmelnikov/uslugi-backend/internal/http/handlers"
	httpRouter "github.com/ovmelnikov/uslugi-backend/internal/http/router"
	"github.com/ovmelnikov/uslugi-backend/internal/logger"
	"github.com/ovmelnikov/uslugi-backend/internal/repository"
	"github.com/ovmelnikov/uslugi-backend/internal/service"
	"github.com/ovmelnikov/uslugi-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret)

	// Репозитории.
	catalogRepo := repository.NewCatalogRepository(dbConn)
	offerRepo := repository.NewOfferRepository(dbConn)
	orderRepo := repository.NewOrderRepository(dbConn)
	orderEventRepo := repository.NewOrderEventRepository(dbConn)
	contractRepo := repository.NewContractRepository(dbConn)
	disputeRepo := repository.NewDisputeRepository(dbConn)
	reviewRepo := repository.NewReviewRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Сервисы.
	offerService := service.NewOfferService(offerRepo, catalogRepo)
	orderService := service.NewOrderService(orderRepo, orderEventRepo)
	contractService := service.NewContractService(contractRepo, orderRepo)
	disputeService := service.NewDisputeService(disputeRepo, orderRepo)
	reviewService := service.NewReviewService(reviewRepo, orderRepo, catalogRepo)
	notificationService := service.NewNotificationService(notificationRepo)

	// Вебсокеты.
	hub := ws.NewHub(ctx)
	hub.SetNotificationSaver(ws.NewNotificationServiceAdapter(notificationService))
	go hub.Run()

	offerService.SetHub(hub)
	orderService.SetHub(hub)
	disputeService.SetHub(hub)
	reviewService.SetHub(hub)

	// HTTP хэндлеры.
	offerHandler := httpHandlers.NewOfferHandler(offerService)
	orderHandler := httpHandlers.NewOrderHandler(orderService, contractService)
	disputeHandler := httpHandlers.NewDisputeHandler(disputeService)
	reviewHandler := httpHandlers.NewReviewHandler(reviewService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, offerHandler, orderHandler, disputeHandler, reviewHandler, notificationHandler, wsHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
