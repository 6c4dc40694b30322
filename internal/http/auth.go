package http

import (
	"strings"

	"github.com/gin-gonic/gin"

	"recipe-api/internal/domain"
	"recipe-api/internal/service"
)

// authedHandlerFunc receives the identity resolved from the request token.
type authedHandlerFunc func(c *gin.Context, caller *domain.User)

// requireAuth resolves the Authorization header to a user and hands it to
// next. Requests without a valid token stop here with 401.
func (h *Handler) requireAuth(next authedHandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := tokenFromHeader(c.GetHeader("Authorization"))
		if !ok {
			h.writeError(c, service.ErrUnauthenticated)
			return
		}

		caller, err := h.tokens.Resolve(c.Request.Context(), key)
		if err != nil {
			h.writeError(c, err)
			return
		}

		next(c, caller)
	}
}

// tokenFromHeader accepts "Token <key>" and "Bearer <key>".
func tokenFromHeader(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", false
	}
	switch strings.ToLower(parts[0]) {
	case "token", "bearer":
		return parts[1], true
	default:
		return "", false
	}
}

func (h *Handler) methodNotAllowed(allowed ...string) authedHandlerFunc {
	allow := strings.Join(allowed, ", ")
	return func(c *gin.Context, _ *domain.User) {
		c.Header("Allow", allow)
		h.writeError(c, service.ErrMethodNotAllowed)
	}
}
