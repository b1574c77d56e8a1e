package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"concierge-llm/internal/service"
)

// OrchestratorHandler expone el aggregate, el router de requests y los
// endpoints de descubrimiento.
type OrchestratorHandler struct {
	logger *zap.Logger
	orch   *service.Orchestrator
}

func NewOrchestratorHandler(logger *zap.Logger, orch *service.Orchestrator) *OrchestratorHandler {
	return &OrchestratorHandler{logger: logger, orch: orch}
}

// Aggregate maneja POST /aggregate.
func (h *OrchestratorHandler) Aggregate(c *gin.Context) {
	var req struct {
		Entity    string `json:"entity" binding:"required"`
		SessionID string `json:"session_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid aggregate request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	out := h.orch.GatherAggregate(c.Request.Context(), req.Entity, req.SessionID)
	if out.IsError() {
		respondError(c, out.Err())
		return
	}
	c.JSON(http.StatusOK, gin.H{"aggregate": out.Value()})
}

// Route maneja POST /route.
func (h *OrchestratorHandler) Route(c *gin.Context) {
	var req struct {
		RequestType string            `json:"request_type" binding:"required"`
		Params      map[string]string `json:"params"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid route request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	out := h.orch.RouteRequest(c.Request.Context(), req.RequestType, req.Params)
	if out.IsError() {
		respondError(c, out.Err())
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": out.Value()})
}

// Health maneja GET /health.
func (h *OrchestratorHandler) Health(c *gin.Context) {
	out := h.orch.ServiceHealth(c.Request.Context())
	report := out.Value()
	status := http.StatusOK
	if !report.Healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}

// Capabilities maneja GET /capabilities.
func (h *OrchestratorHandler) Capabilities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"capabilities": h.orch.ServiceCapabilities()})
}
