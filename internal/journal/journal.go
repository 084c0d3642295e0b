package journal

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/matchbook/matchbook-api/internal/engine"
)

// Journal drains the store's event feed into the database. Writes are
// best-effort: a failed append is logged and the feed keeps moving, so
// the engine never waits on storage.
type Journal struct {
	db     *Database
	events <-chan engine.Event
}

func New(gormDB *gorm.DB, events <-chan engine.Event) *Journal {
	return &Journal{
		db:     NewDatabase(gormDB),
		events: events,
	}
}

// GetDB exposes the database wrapper for read access
func (j *Journal) GetDB() *Database {
	return j.db
}

// Start consumes order events until ctx is cancelled
func (j *Journal) Start(ctx context.Context) {
	logger := log.With().Str("component", "journal").Logger()
	logger.Info().Msg("starting order event journal")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down order event journal")
			return
		case ev := <-j.events:
			if err := j.record(ev); err != nil {
				logger.Error().
					Err(err).
					Str("order_id", ev.Order.ID).
					Str("event_type", string(ev.Type)).
					Msg("failed to record order event")
			}
		}
	}
}

func (j *Journal) record(ev engine.Event) error {
	return j.db.Append(&OrderEvent{
		EventID:    uuid.New().String(),
		OrderID:    ev.Order.ID,
		EventType:  string(ev.Type),
		FromStatus: string(ev.FromStatus),
		ToStatus:   string(ev.ToStatus),
		Side:       string(ev.Order.Side),
		Asset:      ev.Order.Asset,
		Quantity:   ev.Order.Quantity,
		Price:      ev.Order.Price,
		Expiration: ev.Order.Expiration,
		OccurredAt: ev.At,
	})
}
