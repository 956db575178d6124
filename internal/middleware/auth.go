package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/hospital-staff-api/internal/apperror"
	"github.com/harentsoaR/hospital-staff-api/internal/authz"
	"github.com/harentsoaR/hospital-staff-api/internal/response"
	"github.com/harentsoaR/hospital-staff-api/internal/utils"
)

const principalKey = "principal"

type tokenVerifier interface {
	Verify(token string) (*utils.Claims, error)
}

// AuthMiddleware requires a valid bearer token and stores the caller in the
// gin context.
func AuthMiddleware(tokens tokenVerifier, r *response.Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			r.Error(c, apperror.InvalidToken("Token is required"))
			return
		}

		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			r.Error(c, apperror.InvalidToken("Invalid token"))
			return
		}

		claims, err := tokens.Verify(strings.TrimSpace(tokenString))
		if err != nil {
			r.Error(c, apperror.InvalidToken("Invalid token"))
			return
		}

		c.Set(principalKey, authz.Principal{ID: claims.ID, Email: claims.Email, Role: claims.Role})
		// Read by the request logger.
		c.Set("userID", claims.ID)

		c.Next()
	}
}

// RequireRoles rejects callers whose role is not listed.
func RequireRoles(r *response.Responder, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := CurrentUser(c)
		if !ok || !authz.HasRole(p.Role, roles...) {
			r.Error(c, apperror.Forbidden("You are not authorized to perform this action"))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the caller stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (authz.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return authz.Principal{}, false
	}
	p, ok := v.(authz.Principal)
	return p, ok
}
