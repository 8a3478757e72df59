package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ojttracker.com/ojttracker/security"
	"ojttracker.com/ojttracker/web/common"
)

const (
	CookieName  = "ojt.session"
	IdentityKey = "identity"
)

// Authentication accepts a Bearer token or the session cookie and stores the
// verified claims under IdentityKey.
func Authentication(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// Try to get from cookie
			cookie, err := c.Cookie(CookieName)
			if err != nil || cookie == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse(http.StatusUnauthorized, "authentication required"))
				return
			}
			tokenStr = cookie
		} else {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse(http.StatusUnauthorized, "authentication required"))
				return
			}
			tokenStr = parts[1]
		}

		claims, err := security.ParseIdentityToken(tokenStr, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse(http.StatusUnauthorized, "invalid or expired token"))
			return
		}

		c.Set(IdentityKey, claims)
		c.Next()
	}
}

// RequireRole lets the request through only for the listed roles.
func RequireRole(roles ...security.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := GetIdentity(c)
		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse(http.StatusUnauthorized, "authentication required"))
			return
		}
		for _, r := range roles {
			if identity.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, common.NewErrorResponse(http.StatusForbidden, "forbidden"))
	}
}

func GetIdentity(c *gin.Context) *security.IdentityClaims {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*security.IdentityClaims)
	return claims
}
