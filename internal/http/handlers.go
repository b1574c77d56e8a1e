package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"concierge-llm/internal/domain"
)

// statusFor traduce la taxonomía de errores del núcleo a códigos HTTP.
// Los errores esperados llegan siempre como Outcome, nunca como panic.
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.ErrKindValidation:
		return http.StatusBadRequest
	case domain.ErrKindNotFound:
		return http.StatusNotFound
	case domain.ErrKindCollaborator:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
