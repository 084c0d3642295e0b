package engine

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const eventBuffer = 256

// record pairs an order with its own lock so transitions on one order
// never contend with transitions on another. The map lock only guards
// membership.
type record struct {
	mu    sync.Mutex
	order Order
}

// Store is the single source of truth for all orders. It serializes
// concurrent mutation per order: at most one status transition wins,
// losers observe ErrInvalidTransition or ErrNotFound.
type Store struct {
	mu     sync.RWMutex
	orders map[string]*record

	clock  Clock
	events chan Event
}

// NewStore creates an empty order store
func NewStore() *Store {
	return newStore(realClock{})
}

func newStore(clock Clock) *Store {
	return &Store{
		orders: make(map[string]*record),
		clock:  clock,
		events: make(chan Event, eventBuffer),
	}
}

// Events exposes the store's change feed. Mutations publish best-effort:
// if nothing drains the channel the oldest unread events are dropped.
func (s *Store) Events() <-chan Event {
	return s.events
}

// Insert validates and stores a new order in state active, assigning it
// a fresh id. The order becomes visible to subsequent reads on return.
func (s *Store) Insert(order Order) (Order, error) {
	now := s.clock.Now()

	if order.Asset == "" {
		return Order{}, newValidationError("asset", "must not be empty")
	}
	if !order.Side.Valid() {
		return Order{}, newValidationError("side", "must be buy or sell")
	}
	if order.Quantity <= 0 {
		return Order{}, newValidationError("quantity", "must be positive")
	}
	if order.Price <= 0 {
		return Order{}, newValidationError("price", "must be positive")
	}
	if !order.Expiration.After(now) {
		return Order{}, newValidationError("expiration", "must be in the future")
	}

	order.ID = uuid.New().String()
	order.Status = StatusActive
	order.CreatedAt = now
	order.UpdatedAt = now

	s.mu.Lock()
	s.orders[order.ID] = &record{order: order}
	s.mu.Unlock()

	s.publish(Event{
		Type:     EventOrderCreated,
		Order:    order,
		ToStatus: StatusActive,
		At:       now,
	})

	return order, nil
}

// Get returns a copy of the order with the given id
func (s *Store) Get(id string) (Order, error) {
	s.mu.RLock()
	rec, ok := s.orders[id]
	s.mu.RUnlock()
	if !ok {
		return Order{}, ErrNotFound
	}

	rec.mu.Lock()
	order := rec.order
	rec.mu.Unlock()
	return order, nil
}

// UpdateStatus atomically transitions the order to newStatus and returns
// the updated copy. Exactly one transition wins per order: once the
// status is terminal every further call fails with ErrInvalidTransition.
func (s *Store) UpdateStatus(id string, newStatus Status) (Order, error) {
	if !newStatus.Valid() || newStatus == StatusActive {
		return Order{}, newValidationError("status", "must be filled, cancelled or expired")
	}

	s.mu.RLock()
	rec, ok := s.orders[id]
	s.mu.RUnlock()
	if !ok {
		return Order{}, ErrNotFound
	}

	rec.mu.Lock()
	if rec.order.Status.Terminal() {
		rec.mu.Unlock()
		return Order{}, ErrInvalidTransition
	}
	from := rec.order.Status
	rec.order.Status = newStatus
	rec.order.UpdatedAt = s.clock.Now()
	order := rec.order
	rec.mu.Unlock()

	s.publish(Event{
		Type:       EventStatusChanged,
		Order:      order,
		FromStatus: from,
		ToStatus:   newStatus,
		At:         order.UpdatedAt,
	})

	return order, nil
}

// Remove deletes the order from the store. Removing an id twice yields
// ErrNotFound on the second call, which callers such as the sweeper
// treat as benign.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	rec, ok := s.orders[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.orders, id)
	s.mu.Unlock()

	rec.mu.Lock()
	order := rec.order
	rec.mu.Unlock()

	s.publish(Event{
		Type:       EventOrderRemoved,
		Order:      order,
		FromStatus: order.Status,
		ToStatus:   order.Status,
		At:         s.clock.Now(),
	})

	return nil
}

// Snapshot returns a point-in-time copy of every order matching the
// filter, ordered by creation time then id. Each order is copied under
// its own lock, so no single record is ever observed mid-transition.
// A nil filter matches everything.
func (s *Store) Snapshot(filter func(Order) bool) []Order {
	s.mu.RLock()
	recs := make([]*record, 0, len(s.orders))
	for _, rec := range s.orders {
		recs = append(recs, rec)
	}
	s.mu.RUnlock()

	orders := make([]Order, 0, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		order := rec.order
		rec.mu.Unlock()
		if filter == nil || filter(order) {
			orders = append(orders, order)
		}
	}

	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID < orders[j].ID
		}
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})

	return orders
}

// ActiveOrders is a convenience snapshot of orders still eligible for
// matching and settlement.
func (s *Store) ActiveOrders() []Order {
	return s.Snapshot(func(o Order) bool { return o.Status == StatusActive })
}

func (s *Store) publish(ev Event) {
	for {
		select {
		case s.events <- ev:
			return
		default:
		}
		// Channel full: drop the oldest event to make room.
		select {
		case dropped := <-s.events:
			log.Debug().
				Str("component", "order_store").
				Str("order_id", dropped.Order.ID).
				Str("event_type", string(dropped.Type)).
				Msg("event buffer full, dropping oldest event")
		default:
		}
	}
}
