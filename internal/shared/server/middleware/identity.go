package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gradtrack-backend/internal/shared/auth"
)

const (
	identityIDKey   = "identityId"
	identityNameKey = "identityName"
	identityRoleKey = "identityRole"
)

// Identity extracts the caller identity from a bearer token and stores it in
// context. It never rejects a request: an absent or invalid token simply
// leaves the identity unset, and downstream code treats the initiator or
// reviewer reference as null. Identity resolution failures must not block an
// import, so the failure mode is a null identity rather than a 401.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.Next()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if token == "" {
			c.Next()
			return
		}

		claims, err := auth.VerifyJWT(token)
		if err != nil {
			c.Next()
			return
		}

		c.Set(identityIDKey, claims.Sub)
		if claims.Name != "" {
			c.Set(identityNameKey, claims.Name)
		}
		if claims.Role != "" {
			c.Set(identityRoleKey, claims.Role)
		}
		c.Next()
	}
}

// IdentityFromContext returns the caller identity, or nil when the request
// carried no resolvable identity.
func IdentityFromContext(c *gin.Context) *string {
	if c == nil {
		return nil
	}
	val, _ := c.Get(identityIDKey)
	if id, ok := val.(string); ok && id != "" {
		return &id
	}
	return nil
}

// IdentityRoleFromContext fetches the role claim set by the Identity middleware.
func IdentityRoleFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(identityRoleKey)
	if role, ok := val.(string); ok {
		return role
	}
	return ""
}
