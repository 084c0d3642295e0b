package engine

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper reclaims orders whose expiration has passed. It runs on a
// fixed interval and competes with the settlement path: if another
// transition wins first, the sweeper leaves that order alone.
type Sweeper struct {
	store    *Store
	interval time.Duration
	clock    Clock
}

func NewSweeper(store *Store, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		clock:    store.clock,
	}
}

// Start begins the expiry sweep loop and blocks until ctx is cancelled
func (s *Sweeper) Start(ctx context.Context) {
	logger := log.With().Str("component", "expiry_sweeper").Logger()
	logger.Info().Dur("interval", s.interval).Msg("starting expiry sweeper")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down expiry sweeper")
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep runs one expiry pass: transition each overdue active order to
// expired, then purge it. Both steps are best-effort; a lost race means
// the order reached a terminal state via another path and no longer
// qualifies for expiry handling.
func (s *Sweeper) sweep() {
	logger := log.With().Str("component", "expiry_sweeper").Logger()

	now := s.clock.Now()
	expired := s.store.Snapshot(func(o Order) bool {
		return o.Status == StatusActive && !o.Expiration.After(now)
	})

	if len(expired) == 0 {
		return
	}
	logger.Info().Int("expired_count", len(expired)).Msg("sweeping expired orders")

	for _, order := range expired {
		if _, err := s.store.UpdateStatus(order.ID, StatusExpired); err != nil {
			// Settlement got there first, or the order is already gone.
			if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrNotFound) {
				logger.Debug().
					Str("order_id", order.ID).
					Err(err).
					Msg("order settled concurrently, skipping expiry")
				continue
			}
			logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to expire order")
			continue
		}

		if err := s.store.Remove(order.ID); err != nil && !errors.Is(err, ErrNotFound) {
			logger.Error().Err(err).Str("order_id", order.ID).Msg("failed to purge expired order")
			continue
		}

		logger.Info().
			Str("order_id", order.ID).
			Str("asset", order.Asset).
			Time("expiration", order.Expiration).
			Msg("order expired and purged")
	}
}
