package middleware

import (
	"context"

	"github.com/curriculum/planner/internal/app/models"
	"github.com/curriculum/planner/internal/pkg/apperrors"
	"github.com/curriculum/planner/internal/pkg/auth"
	"github.com/gin-gonic/gin"

	appAuth "github.com/curriculum/planner/internal/app/auth"
)

// Context keys set by JWTAuth
const (
	ContextKeyUser     = "currentUser"
	ContextKeyUserID   = "userID"
	ContextKeyEmail    = "email"
	ContextKeyRoleType = "roleType"
)

// Authenticator resolves an access token to the user it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	authenticator Authenticator
	authz         *appAuth.AuthorizationService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(authenticator Authenticator, authz *appAuth.AuthorizationService) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		authz:         authz,
	}
}

// JWTAuth requires a valid, unrevoked access token in the Authorization header
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}

		user, err := m.authenticator.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}

		c.Set(ContextKeyUser, user)
		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyEmail, user.Email)
		c.Set(ContextKeyRoleType, user.Role)

		c.Next()
	}
}

// RoleRequired lets the request through only when the authenticated user holds one of roles.
// It must run after JWTAuth.
func (m *AuthMiddleware) RoleRequired(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			HandleAPIError(c, apperrors.ErrMissingToken)
			c.Abort()
			return
		}

		if err := m.authz.ValidateRole(user, roles...); err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentUser returns the user placed in the context by JWTAuth
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}
