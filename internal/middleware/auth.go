// Package middleware holds control-API middleware specific to the sync
// engine.
package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/limkokwing/registry-sync/pkg/errors"
	"github.com/limkokwing/registry-sync/pkg/response"
)

// Auth gates every control endpoint behind a static bearer token. An
// empty configured token disables the check, for local use.
func Auth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		presented, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			response.Error(c, appErrors.Wrap(nil, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "missing or invalid token"))
			c.Abort()
			return
		}
		c.Next()
	}
}
