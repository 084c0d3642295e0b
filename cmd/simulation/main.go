package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/matchbook/matchbook-api/internal/engine"
	"github.com/matchbook/matchbook-api/internal/types"
)

// apiResponse mirrors the server's response envelope
type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// simulator generates random traffic against the API: submit a random
// order each tick, then settle a random slice of the current match
// candidates.
type simulator struct {
	baseURL string
	asset   string
	client  *http.Client
}

func init() {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	zlog.Logger = zerolog.New(output).With().Timestamp().Logger()
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "API base URL")
	asset := flag.String("asset", "BTC-USDT", "asset to trade")
	interval := flag.Duration("interval", 5*time.Second, "time between simulation ticks")
	flag.Parse()

	sim := &simulator{
		baseURL: *baseURL,
		asset:   *asset,
		client:  &http.Client{Timeout: 5 * time.Second},
	}

	zlog.Info().
		Str("url", sim.baseURL).
		Str("asset", sim.asset).
		Dur("interval", *interval).
		Msg("starting order simulation")

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-quit:
			zlog.Info().Msg("simulation stopped")
			return
		case <-ticker.C:
			sim.tick()
		}
	}
}

func (s *simulator) tick() {
	if err := s.submitRandomOrder(); err != nil {
		zlog.Error().Err(err).Msg("order submission failed")
	}
	if err := s.settleRandomMatches(); err != nil {
		zlog.Error().Err(err).Msg("settlement pass failed")
	}
}

// submitRandomOrder places an order with randomized side, size, price
// and expiration around the reference range of the tracked asset.
func (s *simulator) submitRandomOrder() error {
	side := "buy"
	if rand.Float64() > 0.5 {
		side = "sell"
	}

	req := types.SubmitOrderRequest{
		Side:            side,
		Asset:           s.asset,
		Quantity:        round8(rand.Float64() * 2),
		Price:           round2(rand.Float64()*2000 + 29000),
		ExpirationType:  types.ExpirationDuration,
		ExpirationValue: fmt.Sprintf("%d", rand.Intn(86400)+60),
	}
	if req.Quantity == 0 {
		req.Quantity = 0.00000001
	}

	var order engine.Order
	if err := s.post("/api/v1/orders", req, &order); err != nil {
		return err
	}

	zlog.Info().
		Str("order_id", order.ID).
		Str("side", string(order.Side)).
		Float64("price", order.Price).
		Float64("quantity", order.Quantity).
		Msg("order placed")
	return nil
}

// settleRandomMatches fetches the current match candidates and accepts
// or rejects a random subset, tolerating lost races against the sweeper.
func (s *simulator) settleRandomMatches() error {
	var matches []engine.Order
	if err := s.get("/api/v1/orders/matches", &matches); err != nil {
		return err
	}

	for _, order := range matches {
		if rand.Float64() < 0.8 {
			continue
		}

		action := "accept"
		if rand.Float64() > 0.5 {
			action = "reject"
		}

		path := fmt.Sprintf("/api/v1/settlement/%s/%s", order.ID, action)
		var settled engine.Order
		if err := s.post(path, nil, &settled); err != nil {
			// Conflicts and not-found are expected: the sweeper or an
			// earlier decision may have won.
			zlog.Debug().Err(err).Str("order_id", order.ID).Msg("settlement lost race")
			continue
		}

		zlog.Info().
			Str("order_id", settled.ID).
			Str("status", string(settled.Status)).
			Msg("order settled")
	}
	return nil
}

func (s *simulator) post(path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	resp, err := s.client.Post(s.baseURL+path, "application/json", reader)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decode(resp, out)
}

func (s *simulator) get(path string, out interface{}) error {
	resp, err := s.client.Get(s.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decode(resp, out)
}

func decode(resp *http.Response, out interface{}) error {
	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return err
	}
	if !envelope.Success {
		if envelope.Error != nil {
			return fmt.Errorf("%s: %s", envelope.Error.Code, envelope.Error.Message)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	return json.Unmarshal(envelope.Data, out)
}

func round2(v float64) float64 {
	return float64(int(v*100)) / 100
}

func round8(v float64) float64 {
	return float64(int(v*1e8)) / 1e8
}
