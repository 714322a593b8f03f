package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/aesthiq-api/internal/handler"
	"github.com/jwalitptl/aesthiq-api/internal/model"
	apperrors "github.com/jwalitptl/aesthiq-api/pkg/errors"
)

// Authenticator resolves a session token to its principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Principal, error)
}

type AuthMiddleware struct {
	auth       Authenticator
	cookieName string
}

func NewAuthMiddleware(auth Authenticator, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		auth:       auth,
		cookieName: cookieName,
	}
}

// Authenticate loads the session from the cookie, falling back to a bearer
// token, and stores the principal in the context. Anonymous requests pass
// through; gating is left to RequireAuth and RequireRole.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.Token(c)
		if token == "" {
			c.Next()
			return
		}

		p, err := m.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !apperrors.IsKind(err, apperrors.KindUnauthorized) {
				handler.RespondError(c, err)
				return
			}
			c.Next()
			return
		}

		handler.SetPrincipal(c, p)
		c.Set(ContextUserID, p.UserID.String())
		c.Next()
	}
}

// Token returns the raw session token of the request, if any.
func (m *AuthMiddleware) Token(c *gin.Context) string {
	if cookie, err := c.Cookie(m.cookieName); err == nil && cookie != "" {
		return cookie
	}

	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if handler.GetPrincipal(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
			return
		}
		c.Next()
	}
}

// RequireRole rejects anonymous requests with 401 and other roles with 403.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := handler.GetPrincipal(c)
		if p == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
			return
		}

		for _, role := range roles {
			if p.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, handler.NewErrorResponse("permission denied"))
	}
}
