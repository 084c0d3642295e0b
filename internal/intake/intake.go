package intake

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/matchbook/matchbook-api/internal/engine"
	"github.com/matchbook/matchbook-api/internal/types"
	"github.com/matchbook/matchbook-api/pkg/response"
)

// Datetime layouts accepted for absolute expirations. The second form is
// what an HTML datetime-local input submits.
var expirationLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Service handles order submission and the read side of the order book
type Service struct {
	store *engine.Store
}

// NewService creates a new intake service backed by the given store
func NewService(store *engine.Store) *Service {
	return &Service{
		store: store,
	}
}

// Submit validates the request shape, resolves the expiration spec to an
// absolute timestamp, and inserts the order. Numeric and string
// constraints on the order itself are enforced by the store.
func (s *Service) Submit(req types.SubmitOrderRequest) (engine.Order, error) {
	side := engine.Side(req.Side)
	if !side.Valid() {
		return engine.Order{}, &engine.ValidationError{Field: "side", Reason: "must be buy or sell"}
	}

	expiration, err := resolveExpiration(req.ExpirationType, req.ExpirationValue, time.Now())
	if err != nil {
		return engine.Order{}, err
	}

	order, err := s.store.Insert(engine.Order{
		Side:       side,
		Asset:      req.Asset,
		Quantity:   req.Quantity,
		Price:      req.Price,
		Expiration: expiration,
	})
	if err != nil {
		return engine.Order{}, err
	}

	log.Info().
		Str("component", "intake").
		Str("order_id", order.ID).
		Str("side", string(order.Side)).
		Str("asset", order.Asset).
		Float64("quantity", order.Quantity).
		Float64("price", order.Price).
		Time("expiration", order.Expiration).
		Msg("order accepted")

	return order, nil
}

// Get retrieves a single order by id
func (s *Service) Get(orderID string) (engine.Order, error) {
	return s.store.Get(orderID)
}

// List returns a snapshot of orders, optionally filtered by status
func (s *Service) List(status string) ([]engine.Order, error) {
	if status == "" {
		return s.store.Snapshot(nil), nil
	}
	st := engine.Status(status)
	if !st.Valid() {
		return nil, &engine.ValidationError{Field: "status", Reason: "unknown status filter"}
	}
	return s.store.Snapshot(func(o engine.Order) bool { return o.Status == st }), nil
}

// Matches returns the active orders that have at least one compatible
// counter-order. Derived on demand, never persisted.
func (s *Service) Matches() []engine.Order {
	return engine.FindMatchable(s.store.ActiveOrders())
}

// resolveExpiration converts an expiration spec into an absolute
// timestamp relative to now.
func resolveExpiration(kind, value string, now time.Time) (time.Time, error) {
	switch kind {
	case types.ExpirationDuration:
		seconds, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return time.Time{}, &engine.ValidationError{Field: "expiration_value", Reason: "duration must be a whole number of seconds"}
		}
		if seconds <= 0 {
			return time.Time{}, &engine.ValidationError{Field: "expiration_value", Reason: "duration must be positive"}
		}
		return now.Add(time.Duration(seconds) * time.Second), nil

	case types.ExpirationDatetime:
		for _, layout := range expirationLayouts {
			if ts, err := time.ParseInLocation(layout, value, time.Local); err == nil {
				return ts, nil
			}
		}
		return time.Time{}, &engine.ValidationError{Field: "expiration_value", Reason: "unparsable date-time"}

	default:
		return time.Time{}, &engine.ValidationError{Field: "expiration_type", Reason: "must be duration or datetime"}
	}
}

// GinHandlers contains HTTP handlers for order endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for order endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// SubmitOrderHandler handles POST requests to place new orders
func (h *GinHandlers) SubmitOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.SubmitOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}

		order, err := h.service.Submit(req)
		response.Handle(c, order, err)
	}
}

// ListOrdersHandler handles GET requests for the order collection.
// Query parameter: status (optional filter)
func (h *GinHandlers) ListOrdersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := h.service.List(c.Query("status"))
		response.Handle(c, orders, err)
	}
}

// GetOrderHandler handles GET requests for a single order.
// URL parameter: order_id
func (h *GinHandlers) GetOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("order_id")
		if orderID == "" {
			response.BadRequest(c, "Order ID is required")
			return
		}

		order, err := h.service.Get(orderID)
		response.Handle(c, order, err)
	}
}

// MatchesHandler handles GET requests for the current match candidates
func (h *GinHandlers) MatchesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		matches := h.service.Matches()
		if matches == nil {
			matches = []engine.Order{}
		}
		response.Success(c, matches)
	}
}
