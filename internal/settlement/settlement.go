package settlement

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/matchbook/matchbook-api/internal/engine"
	"github.com/matchbook/matchbook-api/pkg/response"
)

// Service finalizes matched orders. Accepting fills an order as a
// whole, rejecting cancels it; either way the order leaves the active
// set through a single winning transition in the store.
type Service struct {
	store *engine.Store
}

func NewService(store *engine.Store) *Service {
	return &Service{
		store: store,
	}
}

// Accept transitions the order to filled
func (s *Service) Accept(orderID string) (engine.Order, error) {
	logger := log.With().
		Str("component", "settlement").
		Str("order_id", orderID).
		Logger()

	order, err := s.store.UpdateStatus(orderID, engine.StatusFilled)
	if err != nil {
		logger.Warn().Err(err).Msg("accept rejected")
		return engine.Order{}, err
	}

	logger.Info().
		Str("asset", order.Asset).
		Float64("price", order.Price).
		Float64("quantity", order.Quantity).
		Msg("order accepted and filled")

	return order, nil
}

// Reject transitions the order to cancelled
func (s *Service) Reject(orderID string) (engine.Order, error) {
	logger := log.With().
		Str("component", "settlement").
		Str("order_id", orderID).
		Logger()

	order, err := s.store.UpdateStatus(orderID, engine.StatusCancelled)
	if err != nil {
		logger.Warn().Err(err).Msg("reject rejected")
		return engine.Order{}, err
	}

	logger.Info().
		Str("asset", order.Asset).
		Msg("order rejected and cancelled")

	return order, nil
}

// GinHandlers contains HTTP handlers for settlement endpoints
type GinHandlers struct {
	service *Service
}

func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// AcceptOrderHandler handles POST requests to accept a matched order.
// URL parameter: order_id
func (h *GinHandlers) AcceptOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := h.service.Accept(c.Param("order_id"))
		response.Handle(c, order, err)
	}
}

// RejectOrderHandler handles POST requests to reject a matched order.
// URL parameter: order_id
func (h *GinHandlers) RejectOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := h.service.Reject(c.Param("order_id"))
		response.Handle(c, order, err)
	}
}
