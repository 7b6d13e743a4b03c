package handlers

import (
	"time"

	"tabletrack/internal/apperrors"
	"tabletrack/internal/models"
	"tabletrack/internal/policy"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderUserID    = "X-User-ID"
	HeaderUserRole  = "X-User-Role"

	requestIDKey = "requestID"
	userIDKey    = "userID"
	userRoleKey  = "userRole"
)

// RequestID reuses the caller's X-Request-ID or mints one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if userID := c.GetString(userIDKey); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}
		if c.Writer.Status() >= 500 {
			log.Error("request", fields...)
			return
		}
		log.Info("request", fields...)
	}
}

// Identity reads the identity asserted by the upstream auth proxy. It does
// not reject anything; RequireAuth does.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := uuid.Parse(c.GetHeader(HeaderUserID)); err == nil {
			c.Set(userIDKey, id.String())
		}
		if role, ok := models.ParseUserRole(c.GetHeader(HeaderUserRole)); ok {
			c.Set(userRoleKey, string(role))
		}
		c.Next()
	}
}

func RequireAuth(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(userIDKey) == "" || c.GetString(userRoleKey) == "" {
			respondError(c, log, apperrors.NewUnauthorized("authentication required"))
			return
		}
		c.Next()
	}
}

func RequireCapability(authz *policy.Authorizer, capability policy.Capability, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := models.UserRole(c.GetString(userRoleKey))
		if err := authz.Authorize(role, capability); err != nil {
			respondError(c, log, err)
			return
		}
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
