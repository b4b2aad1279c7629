package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gtfsreview/backend/internal/interfaces/http/dto"
)

// BodyLimit returns a middleware that limits request body size
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return BodyLimitWithRoutes(maxBytes, nil)
}

// BodyLimitWithRoutes limits request bodies to maxBytes, except for the
// routes listed in routes (keyed by gin full path) which get their own limit
func BodyLimitWithRoutes(maxBytes int64, routes map[string]int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		maxBytes := maxBytes
		if limit, ok := routes[c.FullPath()]; ok {
			maxBytes = limit
		}
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size",
				GetRequestID(c),
			))
			return
		}

		// chunked uploads have no Content-Length
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
