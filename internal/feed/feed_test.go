package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// tickServer is a websocket endpoint that pushes canned messages to
// every connection it accepts.
type tickServer struct {
	*httptest.Server
	messages []string
	conns    int64
}

func newTickServer(messages []string) *tickServer {
	ts := &tickServer{messages: messages}
	upgrader := websocket.Upgrader{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		atomic.AddInt64(&ts.conns, 1)
		for _, m := range ts.messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				break
			}
		}
		conn.Close()
	}))
	return ts
}

func (ts *tickServer) wsURL() string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func waitForPrice(t *testing.T, a *Adapter, want float64) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if q, ok := a.LastPrice(); ok && q.Price == want {
			return
		}
		select {
		case <-deadline:
			q, ok := a.LastPrice()
			t.Fatalf("expected price %v, got %v (seen=%v)", want, q.Price, ok)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestIngestUpdatesLastPrice(t *testing.T) {
	a := NewAdapter("ws://unused", "BTCUSDT", time.Second)
	logger := zerolog.Nop()

	a.ingest([]byte(`{"e":"trade","s":"BTCUSDT","p":"30274.71"}`), logger)

	q, ok := a.LastPrice()
	if !ok {
		t.Fatal("expected a quote after a valid tick")
	}
	if q.Price != 30274.71 {
		t.Errorf("expected price 30274.71, got %v", q.Price)
	}
	if q.Symbol != "BTCUSDT" {
		t.Errorf("expected symbol BTCUSDT, got %s", q.Symbol)
	}
}

func TestIngestAcceptsNumericPrice(t *testing.T) {
	a := NewAdapter("ws://unused", "BTCUSDT", time.Second)
	a.ingest([]byte(`{"s":"BTCUSDT","p":29500.5}`), zerolog.Nop())

	q, ok := a.LastPrice()
	if !ok || q.Price != 29500.5 {
		t.Errorf("expected price 29500.5, got %v (seen=%v)", q.Price, ok)
	}
}

func TestIngestIgnoresOtherSymbols(t *testing.T) {
	a := NewAdapter("ws://unused", "BTCUSDT", time.Second)
	a.ingest([]byte(`{"s":"ETHUSDT","p":"2000.00"}`), zerolog.Nop())

	if _, ok := a.LastPrice(); ok {
		t.Error("tick for an unrelated symbol must be ignored")
	}
}

func TestIngestDropsMalformedTicks(t *testing.T) {
	a := NewAdapter("ws://unused", "BTCUSDT", time.Second)
	logger := zerolog.Nop()

	a.ingest([]byte(`{"s":"BTCUSDT","p":"30000.00"}`), logger)
	a.ingest([]byte(`not json`), logger)
	a.ingest([]byte(`{"s":"BTCUSDT","p":"not-a-number"}`), logger)

	q, ok := a.LastPrice()
	if !ok || q.Price != 30000 {
		t.Errorf("malformed ticks must not replace the last price, got %v (seen=%v)", q.Price, ok)
	}
}

func TestStartConsumesStream(t *testing.T) {
	ts := newTickServer([]string{
		`{"e":"trade","s":"BTCUSDT","p":"30100.00"}`,
		`{"e":"trade","s":"BTCUSDT","p":"30200.00"}`,
	})
	defer ts.Close()

	a := NewAdapter(ts.wsURL(), "BTCUSDT", 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Start(ctx)
		close(done)
	}()

	waitForPrice(t, a, 30200)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("adapter did not shut down on context cancellation")
	}
}

func TestStartReconnectsAfterDisconnect(t *testing.T) {
	ts := newTickServer([]string{`{"s":"BTCUSDT","p":"30300.00"}`})
	defer ts.Close()

	a := NewAdapter(ts.wsURL(), "BTCUSDT", 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Start(ctx)

	waitForPrice(t, a, 30300)

	// The server closes each connection after its messages; the adapter
	// should come back for more.
	deadline := time.After(2 * time.Second)
	for atomic.LoadInt64(&ts.conns) < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected a reconnect, saw %d connections", atomic.LoadInt64(&ts.conns))
		case <-time.After(5 * time.Millisecond):
		}
	}

	// Readers keep seeing the stale price throughout.
	if q, ok := a.LastPrice(); !ok || q.Price != 30300 {
		t.Errorf("stale price must remain readable across reconnects, got %v (seen=%v)", q.Price, ok)
	}
}
