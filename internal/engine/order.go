package engine

import (
	"time"
)

// Side indicates whether an order buys or sells the asset
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Valid reports whether the side is one of the two known values
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Status is the lifecycle state of an order
type Status string

const (
	StatusActive    Status = "active"
	StatusFilled    Status = "filled"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Valid reports whether the status is one of the known lifecycle states
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusFilled, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// Terminal reports whether the status permits no further transition
func (s Status) Terminal() bool {
	return s == StatusFilled || s == StatusCancelled || s == StatusExpired
}

// Order is a single trade order. Side, asset, quantity, price and
// expiration are fixed at creation; only Status changes afterwards,
// and only through Store.UpdateStatus.
type Order struct {
	ID         string    `json:"order_id"`
	Side       Side      `json:"side"`
	Asset      string    `json:"asset"`
	Quantity   float64   `json:"quantity"`
	Price      float64   `json:"price"`
	Expiration time.Time `json:"expiration"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
