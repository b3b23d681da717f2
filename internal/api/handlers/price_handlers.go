package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/foliolink/folio_service/internal/adapters/marketdata"
	"github.com/foliolink/folio_service/internal/domain/entities"
	"github.com/foliolink/folio_service/internal/domain/services/portfolio"
)

type PriceHandler struct {
	service *portfolio.Service
	market  *marketdata.Client
	logger  *zap.Logger
}

func NewPriceHandler(service *portfolio.Service, market *marketdata.Client, logger *zap.Logger) *PriceHandler {
	return &PriceHandler{
		service: service,
		market:  market,
		logger:  logger,
	}
}

// BulkPrices handles POST /api/prices. Every requested ticker gets a
// result; failures are carried inline and never fail the call.
func (h *PriceHandler) BulkPrices(c *gin.Context) {
	var req entities.BulkPricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body", map[string]interface{}{"reason": err.Error()})
		return
	}
	if req.Tickers == nil {
		respondBadRequest(c, "tickers array required", nil)
		return
	}

	results := h.service.BulkQuotes(c.Request.Context(), req.Tickers)
	c.JSON(http.StatusOK, entities.BulkPricesResponse{Success: true, Prices: results})
}

// ValidateTicker handles GET /api/validate-ticker/:ticker. The check is
// best-effort and never authoritative.
func (h *PriceHandler) ValidateTicker(c *gin.Context) {
	v := h.market.ValidateTicker(c.Request.Context(), c.Param("ticker"))
	c.JSON(http.StatusOK, v)
}
