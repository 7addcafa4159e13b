package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ContextIdentity is the gin context key carrying the authenticated identity
// value for the current request.
const ContextIdentity = "identity"

// Identity resolves the requester's identity and sets it on the context:
// the subject claim of an HS256 bearer token when a secret is configured,
// otherwise the Basic auth username. Requests without credentials proceed
// anonymously; a malformed or badly signed bearer token is rejected.
func Identity(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.Next()
			return
		}

		if raw, ok := strings.CutPrefix(auth, "Bearer "); ok {
			if jwtSecret == "" {
				c.Next()
				return
			}
			claims := jwt.MapClaims{}
			_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return []byte(jwtSecret), nil
			})
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "details": err.Error()})
				return
			}
			if sub, ok := claims["sub"].(string); ok && sub != "" {
				c.Set(ContextIdentity, sub)
			}
			c.Next()
			return
		}

		if user, _, ok := c.Request.BasicAuth(); ok && user != "" {
			c.Set(ContextIdentity, user)
		}
		c.Next()
	}
}

// IdentityValue returns the identity resolved for this request, or "".
func IdentityValue(c *gin.Context) string {
	if v, ok := c.Get(ContextIdentity); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
