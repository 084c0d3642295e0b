package engine

import (
	"testing"
	"time"
)

func activeOrder(id string, side Side, asset string, price float64) Order {
	return Order{
		ID:         id,
		Side:       side,
		Asset:      asset,
		Quantity:   1,
		Price:      price,
		Status:     StatusActive,
		Expiration: time.Now().Add(time.Hour),
	}
}

func TestCrossesBoundaryEquality(t *testing.T) {
	buy := activeOrder("b", SideBuy, "BTC-USDT", 100)
	sell := activeOrder("s", SideSell, "BTC-USDT", 100)

	if !Crosses(buy, sell) {
		t.Error("buy@100 should cross sell@100")
	}
	if !Crosses(sell, buy) {
		t.Error("sell@100 should cross buy@100")
	}
}

func TestCrossesRejections(t *testing.T) {
	cases := []struct {
		name           string
		order, counter Order
	}{
		{"buy below ask", activeOrder("b", SideBuy, "BTC-USDT", 99), activeOrder("s", SideSell, "BTC-USDT", 100)},
		{"sell above bid", activeOrder("s", SideSell, "BTC-USDT", 100), activeOrder("b", SideBuy, "BTC-USDT", 99)},
		{"same side", activeOrder("b1", SideBuy, "BTC-USDT", 100), activeOrder("b2", SideBuy, "BTC-USDT", 100)},
		{"different asset", activeOrder("b", SideBuy, "BTC-USDT", 100), activeOrder("s", SideSell, "ETH-USDT", 100)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if Crosses(tc.order, tc.counter) {
				t.Error("orders should not cross")
			}
		})
	}
}

func TestCrossesPriceImprovement(t *testing.T) {
	buy := activeOrder("b", SideBuy, "BTC-USDT", 30000)
	sell := activeOrder("s", SideSell, "BTC-USDT", 29500)

	if !Crosses(buy, sell) {
		t.Error("buy@30000 should cross sell@29500")
	}
	if !Crosses(sell, buy) {
		t.Error("sell@29500 should cross buy@30000")
	}
}

func TestFindMatchable(t *testing.T) {
	active := []Order{
		activeOrder("buy-high", SideBuy, "BTC-USDT", 30000),
		activeOrder("sell-low", SideSell, "BTC-USDT", 29500),
		activeOrder("sell-high", SideSell, "BTC-USDT", 31000),
		activeOrder("eth-buy", SideBuy, "ETH-USDT", 2000),
	}

	matchable := FindMatchable(active)

	got := make(map[string]bool, len(matchable))
	for _, o := range matchable {
		got[o.ID] = true
	}

	if !got["buy-high"] || !got["sell-low"] {
		t.Errorf("crossing pair should both be matchable, got %v", got)
	}
	if got["sell-high"] {
		t.Error("sell above every bid must not be matchable")
	}
	if got["eth-buy"] {
		t.Error("order with no counter-orders on its asset must not be matchable")
	}
}

func TestFindMatchableEmptyAndSingle(t *testing.T) {
	if m := FindMatchable(nil); len(m) != 0 {
		t.Errorf("empty set: expected no matches, got %d", len(m))
	}
	one := []Order{activeOrder("b", SideBuy, "BTC-USDT", 100)}
	if m := FindMatchable(one); len(m) != 0 {
		t.Errorf("single order cannot match itself, got %d", len(m))
	}
}
