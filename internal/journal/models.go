package journal

import (
	"time"

	"gorm.io/gorm"
)

// OrderEvent is one committed change to an order, recorded append-only.
// The journal is an audit trail: it is never read back into the store.
type OrderEvent struct {
	gorm.Model `json:"-"`
	EventID    string    `gorm:"uniqueIndex" json:"event_id"`
	OrderID    string    `gorm:"index" json:"order_id"`
	EventType  string    `json:"event_type"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Side       string    `json:"side"`
	Asset      string    `json:"asset"`
	Quantity   float64   `json:"quantity"`
	Price      float64   `json:"price"`
	Expiration time.Time `json:"expiration"`
	OccurredAt time.Time `json:"occurred_at"`
}
