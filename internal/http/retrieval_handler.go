package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"concierge-llm/internal/domain"
	"concierge-llm/internal/service"
)

// RetrievalHandler expone el pipeline de decisión de retrieval.
type RetrievalHandler struct {
	logger    *zap.Logger
	retrieval *service.RetrievalService
}

func NewRetrievalHandler(logger *zap.Logger, retrieval *service.RetrievalService) *RetrievalHandler {
	return &RetrievalHandler{logger: logger, retrieval: retrieval}
}

// Decide maneja POST /retrieval/decide.
func (h *RetrievalHandler) Decide(c *gin.Context) {
	var req struct {
		History     []domain.Message  `json:"history"`
		Message     string            `json:"message" binding:"required"`
		UserContext map[string]string `json:"user_context"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid decide request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	out := h.retrieval.DecideQuery(c.Request.Context(), req.History, req.Message, req.UserContext)
	if out.IsError() {
		respondError(c, out.Err())
		return
	}
	decision := out.Value()
	c.JSON(http.StatusOK, gin.H{"decision": decision, "query": decision.Query()})
}

// Search maneja POST /retrieval/search.
func (h *RetrievalHandler) Search(c *gin.Context) {
	var req struct {
		Query          string            `json:"query" binding:"required"`
		ScoreThreshold float64           `json:"score_threshold"`
		Limit          int               `json:"limit"`
		UserContext    map[string]string `json:"user_context"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid search request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}

	out := h.retrieval.SearchWithFiltering(c.Request.Context(), req.Query, req.ScoreThreshold, req.Limit, req.UserContext)
	if out.IsError() {
		respondError(c, out.Err())
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": out.Value()})
}
