// cmd/middleware/auth.go
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireUploadToken gates the upload route: the first path segment must
// equal the configured shared secret. Wrong secrets get the same 404 an
// unrouted path would, so the endpoint is not discoverable by probing.
func RequireUploadToken(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.Next()
	}
}

// MaxBodySize rejects request bodies over maxMB megabytes. The limit
// surfaces as a read error inside the multipart parser.
func MaxBodySize(maxMB int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxMB<<20)
		c.Next()
	}
}
