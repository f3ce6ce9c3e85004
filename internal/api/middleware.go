package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"animeverse/internal/logging"
	"animeverse/internal/metrics"
	"animeverse/internal/services"
)

const (
	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 1 << 20
)

// requestIDMiddleware tags each request with a correlation id, reusing the
// client's X-Request-ID when present.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(services.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func accessLogMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		attrs := []logging.Attr{
			logging.String("method", c.Request.Method),
			logging.String("route", route),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("elapsed", time.Since(start)),
		}
		if sessionID := c.Param("id"); sessionID != "" {
			attrs = append(attrs, logging.String(logging.FieldSessionID, sessionID))
		}
		log := logging.WithContext(c.Request.Context(), logger)
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Warn("http request failed", logging.Args(attrs...)...)
		case route == "/health" || route == "/metrics":
			log.Debug("http request", logging.Args(attrs...)...)
		default:
			log.Info("http request", logging.Args(attrs...)...)
		}
	}
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		metrics.RecordHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status())
	}
}

// authMiddleware validates bearer tokens. An empty token disables the check.
// Browsers cannot set headers on websocket handshakes, so upgrade requests
// may pass the token as the "token" query parameter instead.
func authMiddleware(token string) gin.HandlerFunc {
	if token == "" {
		return func(c *gin.Context) { c.Next() }
	}
	want := []byte(token)
	return func(c *gin.Context) {
		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok && websocket.IsWebSocketUpgrade(c.Request) {
			got, ok = c.Query("token"), c.Query("token") != ""
		}
		if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "missing or invalid bearer token"})
			return
		}
		c.Next()
	}
}

func bodyLimitMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
