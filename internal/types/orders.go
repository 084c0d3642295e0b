package types

// Expiration spec kinds accepted at order submission
const (
	ExpirationDuration = "duration"
	ExpirationDatetime = "datetime"
)

// SubmitOrderRequest is the payload for placing a new order. Expiration
// is given either as a relative duration in seconds or as an absolute
// date-time; the engine converts it to an absolute timestamp at
// insertion time.
type SubmitOrderRequest struct {
	Side            string  `json:"side" binding:"required"`
	Asset           string  `json:"asset" binding:"required"`
	Quantity        float64 `json:"quantity"`
	Price           float64 `json:"price"`
	ExpirationType  string  `json:"expiration_type" binding:"required"`
	ExpirationValue string  `json:"expiration_value" binding:"required"`
}
