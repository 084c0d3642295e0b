package engine

// Crosses reports whether counter is a compatible counter-order for
// order: opposite side, same asset, and a crossing price. Price equality
// on the boundary counts as compatible.
func Crosses(order, counter Order) bool {
	if counter.Side == order.Side || counter.Asset != order.Asset {
		return false
	}
	if order.Side == SideBuy {
		return counter.Price <= order.Price
	}
	return counter.Price >= order.Price
}

// FindMatchable returns the orders in the active set that have at least
// one compatible counter-order in the same set, preserving input order.
//
// The predicate is evaluated independently per order: two orders can
// each be reported matchable without being committed as a pair.
// Finalization is a separate, explicit settlement action. Quadratic in
// the size of the active set, which is expected to stay small and is
// only scanned on demand.
func FindMatchable(active []Order) []Order {
	var matchable []Order
	for _, order := range active {
		for _, counter := range active {
			if counter.ID == order.ID {
				continue
			}
			if Crosses(order, counter) {
				matchable = append(matchable, order)
				break
			}
		}
	}
	return matchable
}
