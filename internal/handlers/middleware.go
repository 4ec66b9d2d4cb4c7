package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	callerKey = "caller"
	tokenKey  = "session_token"
)

// RequestLogger logs one line per request.
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"latency":  time.Since(start).String(),
			"clientIP": c.ClientIP(),
		})
		if caller, ok := c.Get(callerKey); ok {
			entry = entry.WithField("staff_id", caller.(models.CallerContext).StaffID)
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request")
		case status >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}

// RequestTimeout bounds the context every handler passes down.
func RequestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireSession resolves the bearer token into a CallerContext.
func RequireSession(sessions services.SessionService, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		caller, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			respondError(c, log, err)
			c.Abort()
			return
		}

		c.Set(callerKey, *caller)
		c.Set(tokenKey, token)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func callerFrom(c *gin.Context) models.CallerContext {
	if v, ok := c.Get(callerKey); ok {
		return v.(models.CallerContext)
	}
	return models.CallerContext{}
}
