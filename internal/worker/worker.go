package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/mmhmddd/PowerEV-sub000/internal/broker"
	"github.com/mmhmddd/PowerEV-sub000/internal/models"
	"github.com/mmhmddd/PowerEV-sub000/internal/service"
	"github.com/mmhmddd/PowerEV-sub000/internal/util"
)

// CartWorker clears session carts when an order-placed event arrives.
// The checkout path clears the cart inline as well; the worker covers
// orders placed through other gateway instances sharing the topic.
type CartWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	carts        *service.CartService
	logger       *zap.Logger
}

// NewCartWorker creates a new cart worker
func NewCartWorker(consumer *broker.Consumer, carts *service.CartService) *CartWorker {
	w := &CartWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		carts:        carts,
		logger:       util.GetLogger(),
	}
	w.eventHandler.OnOrderPlaced(w.handleOrderPlaced)
	return w
}

func (w *CartWorker) handleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	w.logger.Info("Clearing cart for placed order",
		zap.String("order_id", event.OrderID),
		zap.String("session_id", event.SessionID))
	return w.carts.Clear(ctx, event.SessionID)
}

// Start starts the worker
func (w *CartWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting cart worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *CartWorker) Stop() error {
	w.logger.Info("Stopping cart worker")
	return w.consumer.Close()
}
