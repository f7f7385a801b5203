package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hms/backend/internal/interfaces/http/dto"
)

// BodyLimit caps request body size. Declared oversizes are rejected
// up front; streaming bodies are wrapped so reads past the cap fail.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse("REQUEST_TOO_LARGE", "Request body exceeds maximum allowed size"))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
