package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"student-manager-go/app"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger tags each request with an id and writes one access line
// through logrus
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"request_id": id,
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
		})
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("request failed")
		case c.Writer.Status() >= 400:
			entry.Warn("request rejected")
		default:
			entry.Debug("request served")
		}
	}
}

// NewRouter builds the gin engine with middleware and all API routes
func NewRouter(session *app.Session) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger())
	NewAPIHandler(session).RegisterRoutes(router)
	return router
}
