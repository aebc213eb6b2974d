package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextClaims is the gin context key holding the parsed Claims.
const ContextClaims = "claims"

// RequireRoles enforces a bearer JWT whose tipo is one of the allowed roles,
// mirroring the route guards of the original API.
func RequireRoles(signingKey, issuer string, roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"estatus": "ERROR", "mensaje": "Token inválido o expirado",
			})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"estatus": "ERROR", "mensaje": "Token inválido o expirado",
			})
			return
		}
		if _, ok := allowed[claims.Tipo]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"estatus": "ERROR", "mensaje": "Acceso solo permitido a usuarios tipo: " + strings.Join(roles, ", "),
			})
			return
		}
		c.Set(ContextClaims, claims)
		c.Next()
	}
}
