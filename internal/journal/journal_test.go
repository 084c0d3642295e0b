package journal

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/matchbook/matchbook-api/internal/engine"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&OrderEvent{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestJournalRecordsStoreEvents(t *testing.T) {
	store := engine.NewStore()
	j := New(newTestDB(t), store.Events())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Start(ctx)
		close(done)
	}()

	order, err := store.Insert(engine.Order{
		Side:       engine.SideBuy,
		Asset:      "BTC-USDT",
		Quantity:   1,
		Price:      30000,
		Expiration: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if _, err := store.UpdateStatus(order.ID, engine.StatusFilled); err != nil {
		t.Fatalf("transition failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	var events []OrderEvent
	for {
		events, err = j.GetDB().EventsByOrderID(order.ID)
		if err != nil {
			t.Fatalf("query failed: %v", err)
		}
		if len(events) >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("expected 2 recorded events, got %d", len(events))
		case <-time.After(5 * time.Millisecond):
		}
	}

	if events[0].EventType != string(engine.EventOrderCreated) {
		t.Errorf("first event should be creation, got %s", events[0].EventType)
	}
	if events[1].EventType != string(engine.EventStatusChanged) {
		t.Errorf("second event should be the transition, got %s", events[1].EventType)
	}
	if events[1].FromStatus != string(engine.StatusActive) || events[1].ToStatus != string(engine.StatusFilled) {
		t.Errorf("transition recorded as %s -> %s", events[1].FromStatus, events[1].ToStatus)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("journal did not shut down on context cancellation")
	}
}

func TestDatabaseAppendAndCount(t *testing.T) {
	db := NewDatabase(newTestDB(t))

	for i := 0; i < 3; i++ {
		err := db.Append(&OrderEvent{
			EventID:    fmt.Sprintf("ev-%d", i),
			OrderID:    "order-1",
			EventType:  string(engine.EventOrderCreated),
			OccurredAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	count, err := db.CountByType(string(engine.EventOrderCreated))
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 events, got %d", count)
	}
}
