package middleware

import "github.com/gin-gonic/gin"

// userIDHeader carries the caller identity from the gateway in front of
// this service. There is no in-process authentication.
const userIDHeader = "X-User-ID"

// Identity copies the gateway-provided user identity into the Gin context so
// logging, rate limiting and handlers all see the same value.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid := c.GetHeader(userIDHeader); uid != "" {
			c.Set(userIDKey, uid)
		}
		c.Next()
	}
}
