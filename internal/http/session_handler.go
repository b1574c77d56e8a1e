package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"concierge-llm/internal/domain"
	"concierge-llm/internal/service"
)

// SessionHandler expone el ciclo de vida de sesiones del registro.
type SessionHandler struct {
	logger   *zap.Logger
	registry *service.SessionRegistry
}

func NewSessionHandler(logger *zap.Logger, registry *service.SessionRegistry) *SessionHandler {
	return &SessionHandler{logger: logger, registry: registry}
}

// Start maneja POST /sessions.
func (h *SessionHandler) Start(c *gin.Context) {
	var req struct {
		Context map[string]string `json:"context"`
	}
	// Body vacío es válido: sesión sin contexto inicial.
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.logger.Warn("invalid start session request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	out := h.registry.StartConversation(c.Request.Context(), req.Context)
	if out.IsError() {
		respondError(c, out.Err())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": out.Value()})
}

// SaveMessages maneja POST /sessions/:id/messages.
func (h *SessionHandler) SaveMessages(c *gin.Context) {
	var req struct {
		Messages []domain.Message `json:"messages" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid save messages request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	out := h.registry.SaveConversation(c.Request.Context(), req.Messages, c.Param("id"))
	if out.IsError() {
		respondError(c, out.Err())
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": out.Value()})
}

// History maneja GET /sessions/:id/history.
func (h *SessionHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	out := h.registry.GetHistory(c.Request.Context(), c.Param("id"), limit)
	if out.IsError() {
		respondError(c, out.Err())
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": out.Value()})
}

// Info maneja GET /sessions/:id.
func (h *SessionHandler) Info(c *gin.Context) {
	out := h.registry.GetSessionInfo(c.Param("id"))
	if out.IsError() {
		respondError(c, out.Err())
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": out.Value()})
}

// End maneja POST /sessions/:id/end.
func (h *SessionHandler) End(c *gin.Context) {
	out := h.registry.EndConversation(c.Request.Context(), c.Param("id"))
	if out.IsError() {
		respondError(c, out.Err())
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": out.Value()})
}

// Cleanup maneja POST /sessions/cleanup.
func (h *SessionHandler) Cleanup(c *gin.Context) {
	var req struct {
		Hours int `json:"hours" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid cleanup request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	out := h.registry.CleanupInactive(c.Request.Context(), req.Hours)
	if out.IsError() {
		respondError(c, out.Err())
		return
	}
	c.JSON(http.StatusOK, gin.H{"ended": out.Value()})
}
