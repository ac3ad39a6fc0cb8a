package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// operatorIDKey holds the id of the signed-in operator in the gin context.
const operatorIDKey = "operatorId"

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// operatorIdMiddleware guards the control routes: it accepts only
// "Authorization: Bearer <token>" with a token issued by sign-in.
func (h *Handler) operatorIdMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		unauthorized(c, "missing Authorization header")
		return
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		unauthorized(c, "invalid Authorization header format")
		return
	}

	operatorID, err := h.services.ParseToken(token)
	if err != nil {
		if h.log != nil {
			h.log.Debugw("operator_token_rejected", "path", c.FullPath(), "err", err)
		}
		unauthorized(c, "invalid or expired token")
		return
	}
	c.Set(operatorIDKey, operatorID)
	c.Next()
}
