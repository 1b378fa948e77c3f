package middlewares

import (
	"net/http"
	"strings"

	"munhub/models"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// TokenVerifier turns a bearer token into the caller's principal.
type TokenVerifier func(token string) (models.Principal, error)

// AuthMiddleware verifies the bearer JWT and stores the principal in the context.
func AuthMiddleware(verify TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization token"})
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid Authorization token format"})
			return
		}

		p, err := verify(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(principalKey, p)
		c.Next()
	}
}

// Principal returns the caller set by AuthMiddleware.
func Principal(c *gin.Context) (models.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok
}
