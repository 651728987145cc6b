package middleware

import (
	"strings"

	"blog-api/helper"
	"blog-api/models"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID   = "user_id"
	ContextEmail    = "email"
	ContextUsername = "username"
	ContextRoles    = "roles"
)

var HTTPHelper = &helper.HTTPHelper{}

// TokenVerifier validates an access token and returns the identity it carries.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*models.AuthenticatedUser, error)
}

func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			HTTPHelper.SendUnauthorizedError(c, "Authorization header required", HTTPHelper.EmptyJsonMap())
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			HTTPHelper.SendUnauthorizedError(c, "Bearer token required", HTTPHelper.EmptyJsonMap())
			c.Abort()
			return
		}

		user, err := verifier.VerifyAccessToken(tokenString)
		if err != nil {
			HTTPHelper.SendUnauthorizedError(c, err.Error(), HTTPHelper.EmptyJsonMap())
			c.Abort()
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid bearer token is present and
// lets anonymous requests through untouched.
func OptionalAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if tokenString != "" {
			if user, err := verifier.VerifyAccessToken(tokenString); err == nil {
				setUser(c, user)
			}
		}
		c.Next()
	}
}

func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			HTTPHelper.SendUnauthorizedError(c, "User role not found", HTTPHelper.EmptyJsonMap())
			c.Abort()
			return
		}

		if !user.Roles.Has(roles...) {
			HTTPHelper.SendForbiddenError(c, "Insufficient permissions", HTTPHelper.EmptyJsonMap())
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentUser returns the identity stored by AuthMiddleware or OptionalAuth.
func CurrentUser(c *gin.Context) (models.AuthenticatedUser, bool) {
	id := c.GetString(ContextUserID)
	if id == "" {
		return models.AuthenticatedUser{}, false
	}

	roles, _ := c.Get(ContextRoles)
	userRoles, _ := roles.(models.Roles)

	return models.AuthenticatedUser{
		ID:       id,
		Email:    c.GetString(ContextEmail),
		Username: c.GetString(ContextUsername),
		Roles:    userRoles,
	}, true
}

func setUser(c *gin.Context, user *models.AuthenticatedUser) {
	c.Set(ContextUserID, user.ID)
	c.Set(ContextEmail, user.Email)
	c.Set(ContextUsername, user.Username)
	c.Set(ContextRoles, user.Roles)
}
