package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dealdesk/internal/authz"
	"dealdesk/internal/services"
)

func getPrincipal(c *gin.Context) authz.Principal {
	v, ok := c.Get("principal")
	if !ok {
		return authz.Principal{}
	}
	p, _ := v.(authz.Principal)
	return p
}

// respondError переводит таксономию ядра в HTTP. BusinessRuleViolation
// отдаётся с человекочитаемой причиной, остальное — generic.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, services.ErrDuplicateNumber):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case services.IsRuleError(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
