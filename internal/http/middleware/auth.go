// README: Shared-secret auth for the exchange-rate feeder. End users are not authenticated here.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const FeederTokenHeader = "X-Feeder-Token"

// FeederAuth rejects requests whose feeder token does not match. An empty
// token disables the check.
func FeederAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		got := strings.TrimSpace(c.GetHeader(FeederTokenHeader))
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
