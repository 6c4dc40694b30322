package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"recipe-api/internal/readiness"
	"recipe-api/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users  service.UserService
	tokens service.TokenService
	tags   service.TagService
	store  readiness.Pinger
	logger *logrus.Logger
}

func NewHandler(users service.UserService, tokens service.TokenService, tags service.TagService, store readiness.Pinger, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:  users,
		tokens: tokens,
		tags:   tags,
		store:  store,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.HandleMethodNotAllowed = true
	router.Use(requestLogger(h.logger), corsMiddleware())

	router.GET("/health", h.health)

	users := router.Group("/users")
	{
		users.POST("", h.createUser)
		users.POST("/token", h.createToken)
		users.GET("/me", h.requireAuth(h.getProfile))
		users.PATCH("/me", h.requireAuth(h.updateProfile))
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
			users.Handle(method, "/me", h.requireAuth(h.methodNotAllowed(http.MethodGet, http.MethodPatch)))
		}
	}

	tags := router.Group("/tags")
	{
		tags.GET("", h.requireAuth(h.listTags))
		tags.POST("", h.requireAuth(h.createTag))
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", requestIDHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) health(c *gin.Context) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.PingContext(ctx); err != nil {
			h.logger.Warnf("health check: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
