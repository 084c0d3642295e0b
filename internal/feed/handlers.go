package feed

import (
	"github.com/gin-gonic/gin"

	"github.com/matchbook/matchbook-api/pkg/response"
)

// GinHandlers contains HTTP handlers for market data endpoints
type GinHandlers struct {
	adapter *Adapter
}

func NewGinHandlers(adapter *Adapter) *GinHandlers {
	return &GinHandlers{
		adapter: adapter,
	}
}

// LastPriceHandler handles GET requests for the last observed price.
// Before the first tick arrives there is no price to report, which is a
// not-found rather than an error condition.
func (h *GinHandlers) LastPriceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		quote, ok := h.adapter.LastPrice()
		if !ok {
			response.NotFound(c, "No price observed yet")
			return
		}
		response.Success(c, quote)
	}
}
