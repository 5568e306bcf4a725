package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/sessiongate/internal/common"
	"github.com/gin-gonic/gin"
)

const bearerKey = "bearerToken"

// requireBearer aborts with 401 unless the request carries
// "Authorization: Bearer <token>", and stores the token for the handler.
func requireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := common.BearerToken(c.GetHeader(common.AuthorizationHeaderName))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "missing or malformed authorization header"})
			return
		}
		c.Set(bearerKey, token)
		c.Next()
	}
}

func bearerFrom(c *gin.Context) string {
	return c.GetString(bearerKey)
}

// requestLogger logs each request and feeds the latency histogram.
func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", elapsed,
		)

		if s.metrics != nil {
			s.metrics.ObserveRequest(c.Request.Method, route, status, elapsed)
		}
	}
}
