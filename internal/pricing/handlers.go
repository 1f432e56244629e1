package pricing

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ksred/portfolio-api/internal/types"
	"github.com/ksred/portfolio-api/pkg/response"
)

// GinHandlers contains HTTP handlers for price probe endpoints
type GinHandlers struct {
	service *Service
}

func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{service: service}
}

type quoteResponse struct {
	Symbol string `json:"symbol"`
	types.PriceQuote
}

type fxResponse struct {
	Pair string `json:"pair"`
	types.PriceQuote
}

// QuoteHandler handles GET requests for a resolved price.
// Query parameters: symbol=AAPL for an instrument, fx=USDILS for the
// exchange rate. Resolution never fails; degraded prices carry
// is_live=false and a reason.
func (h *GinHandlers) QuoteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		symbol := strings.TrimSpace(c.Query("symbol"))
		fx := strings.TrimSpace(c.Query("fx"))

		switch {
		case symbol != "":
			quote := h.service.ResolvePrice(c.Request.Context(), symbol)
			response.Success(c, quoteResponse{
				Symbol:     strings.ToUpper(symbol),
				PriceQuote: quote,
			})
		case strings.EqualFold(fx, "USDILS"):
			quote := h.service.ResolveUsdIls(c.Request.Context())
			response.Success(c, fxResponse{
				Pair:       "USD/ILS",
				PriceQuote: quote,
			})
		default:
			response.BadRequest(c, "Provide ?symbol=AAPL or ?fx=USDILS")
		}
	}
}
