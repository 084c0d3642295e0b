package feed

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Quote is the most recent trade price observed for the tracked symbol
type Quote struct {
	Symbol     string    `json:"symbol"`
	Price      float64   `json:"price"`
	ObservedAt time.Time `json:"observed_at"`
}

// Adapter consumes an external trade-price stream and exposes the last
// observed price. It never touches the order store: its only output is
// the single-slot quote, overwritten on every tick. A lost connection
// degrades to a stale quote, never an error for readers.
type Adapter struct {
	url     string
	symbol  string
	backoff time.Duration

	mu     sync.RWMutex
	last   Quote
	seen   bool
	dialer *websocket.Dialer
}

func NewAdapter(url, symbol string, backoff time.Duration) *Adapter {
	return &Adapter{
		url:     url,
		symbol:  strings.ToUpper(symbol),
		backoff: backoff,
		dialer:  websocket.DefaultDialer,
	}
}

// LastPrice returns the most recent quote and whether one has been
// observed yet.
func (a *Adapter) LastPrice() (Quote, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last, a.seen
}

// Start consumes the stream until ctx is cancelled, reconnecting with a
// fixed backoff whenever the connection drops.
func (a *Adapter) Start(ctx context.Context) {
	logger := log.With().
		Str("component", "price_feed").
		Str("symbol", a.symbol).
		Logger()
	logger.Info().Str("url", a.url).Msg("starting price feed")

	for {
		if ctx.Err() != nil {
			logger.Info().Msg("shutting down price feed")
			return
		}

		conn, _, err := a.dialer.DialContext(ctx, a.url, nil)
		if err != nil {
			logger.Warn().Err(err).Dur("backoff", a.backoff).Msg("feed connect failed, retrying")
			if !sleep(ctx, a.backoff) {
				logger.Info().Msg("shutting down price feed")
				return
			}
			continue
		}

		logger.Info().Msg("feed connected")
		a.consume(ctx, conn)
		conn.Close()

		if ctx.Err() != nil {
			logger.Info().Msg("shutting down price feed")
			return
		}
		logger.Warn().Dur("backoff", a.backoff).Msg("feed disconnected, reconnecting")
		if !sleep(ctx, a.backoff) {
			logger.Info().Msg("shutting down price feed")
			return
		}
	}
}

// consume reads ticks from one connection until it fails or ctx ends
func (a *Adapter) consume(ctx context.Context, conn *websocket.Conn) {
	logger := log.With().Str("component", "price_feed").Logger()

	// Unblock the blocking read when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		a.ingest(message, logger)
	}
}

// tick is the shape of one trade event. The upstream stream sends the
// price as a JSON string; the generic form uses a number. Both are
// accepted.
type tick struct {
	Symbol string          `json:"s"`
	Price  json.RawMessage `json:"p"`
}

func (a *Adapter) ingest(message []byte, logger zerolog.Logger) {
	var t tick
	if err := json.Unmarshal(message, &t); err != nil {
		logger.Warn().Err(err).Msg("dropping malformed tick")
		return
	}

	if !strings.EqualFold(t.Symbol, a.symbol) {
		return
	}

	price, err := parsePrice(t.Price)
	if err != nil {
		logger.Warn().Err(err).Str("raw", string(t.Price)).Msg("dropping tick with bad price")
		return
	}

	a.mu.Lock()
	a.last = Quote{Symbol: a.symbol, Price: price, ObservedAt: time.Now()}
	a.seen = true
	a.mu.Unlock()
}

// parsePrice accepts both quoted and bare decimal forms
func parsePrice(raw json.RawMessage) (float64, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	return strconv.ParseFloat(s, 64)
}

// sleep waits for d unless ctx ends first, reporting whether to go on
func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
