package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mmhmddd/PowerEV-sub000/config"
	"github.com/mmhmddd/PowerEV-sub000/internal/api"
	"github.com/mmhmddd/PowerEV-sub000/internal/backend"
	"github.com/mmhmddd/PowerEV-sub000/internal/broker"
	"github.com/mmhmddd/PowerEV-sub000/internal/control"
	"github.com/mmhmddd/PowerEV-sub000/internal/dashboard"
	"github.com/mmhmddd/PowerEV-sub000/internal/models"
	"github.com/mmhmddd/PowerEV-sub000/internal/service"
	"github.com/mmhmddd/PowerEV-sub000/internal/session"
	"github.com/mmhmddd/PowerEV-sub000/internal/store"
	"github.com/mmhmddd/PowerEV-sub000/internal/util"
	"github.com/mmhmddd/PowerEV-sub000/internal/worker"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting PowerEV gateway")

	tp, err := util.InitTracer("powerev-gateway", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Cart.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Cart database connected")

	sessions, err := session.NewStore(cfg.Session.Addr, cfg.Session.Password, cfg.Session.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer sessions.Close()
	logger.Info("Session store connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
	defer producer.Close()
	logger.Info("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	// A 401 from upstream drops the stored login so the next request goes
	// out clean instead of replaying a dead token.
	client := backend.NewClient(
		cfg.Backend.BaseURL,
		time.Duration(cfg.Backend.TimeoutSeconds)*time.Second,
		sessions,
		func(ctx context.Context) {
			if err := sessions.Logout(ctx); err != nil {
				logger.Warn("Failed to drop session after 401", zap.Error(err))
			}
		},
	)

	products := make(map[string]*control.Controller[models.Product])
	productSources := make([]dashboard.ProductSource, 0, len(models.Categories()))
	for _, category := range models.Categories() {
		pc := client.Products(category)
		products[category.Collection()] = control.New[models.Product](control.ProductConfig(category), pc, eventPublisher)
		productSources = append(productSources, pc)
	}

	ordersClient := client.Orders()
	orderController := control.NewOrderController(ordersClient, eventPublisher)
	userController := control.NewUserController(client.Users(), eventPublisher)
	galleryController := control.New[models.GalleryItem](control.GalleryConfig(), client.Gallery(), eventPublisher)

	aggregator := dashboard.NewAggregator(ordersClient, client.Users(), productSources)

	cartService := service.NewCartService(db, service.NewBackendLookup(client), ordersClient, eventPublisher)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	cartConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.ConsumerGroup)
	cartWorker := worker.NewCartWorker(cartConsumer, cartService)
	go func() {
		if err := cartWorker.Start(workerCtx); err != nil && err != context.Canceled {
			logger.Error("Cart worker error", zap.Error(err))
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(
		products,
		orderController,
		userController,
		galleryController,
		aggregator,
		cartService,
		client.Auth(),
		sessions,
	)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	cartWorker.Stop()

	logger.Info("Server exited")
}
