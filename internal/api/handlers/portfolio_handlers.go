package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/foliolink/folio_service/internal/domain/entities"
	"github.com/foliolink/folio_service/internal/domain/services/portfolio"
)

type PortfolioHandler struct {
	service *portfolio.Service
	logger  *zap.Logger
}

func NewPortfolioHandler(service *portfolio.Service, logger *zap.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		service: service,
		logger:  logger,
	}
}

// Create handles POST /api/portfolios
func (h *PortfolioHandler) Create(c *gin.Context) {
	var req entities.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body", map[string]interface{}{"reason": err.Error()})
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.logger.Warn("portfolio create failed",
			zap.String("request_id", getRequestID(c)),
			zap.Error(err))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// View handles GET /api/portfolios/:id
func (h *PortfolioHandler) View(c *gin.Context) {
	resp, err := h.service.View(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Prices handles GET /api/portfolios/:id/prices
func (h *PortfolioHandler) Prices(c *gin.Context) {
	resp, err := h.service.Prices(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EditLoad handles GET /api/edit/:id/:secret
func (h *PortfolioHandler) EditLoad(c *gin.Context) {
	resp, err := h.service.EditLoad(c.Request.Context(), c.Param("id"), c.Param("secret"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update handles PUT /api/portfolios/:id/:secret
func (h *PortfolioHandler) Update(c *gin.Context) {
	var req entities.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body", map[string]interface{}{"reason": err.Error()})
		return
	}

	resp, err := h.service.Update(c.Request.Context(), c.Param("id"), c.Param("secret"), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete handles DELETE /api/portfolios/:id/:secret
func (h *PortfolioHandler) Delete(c *gin.Context) {
	resp, err := h.service.Delete(c.Request.Context(), c.Param("id"), c.Param("secret"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
