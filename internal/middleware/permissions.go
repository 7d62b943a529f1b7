package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "gastos/internal/errors"
	"gastos/internal/models"
)

const currentUserKey = "currentUser"

// UserLookup resolves an authenticated caller with its role loaded.
type UserLookup interface {
	GetUserByID(id string) (*models.User, error)
}

// Permission reports whether user may perform the request in c.
type Permission func(c *gin.Context, user *models.User) bool

// IsAdmin allows only callers whose role is admin.
func IsAdmin(_ *gin.Context, user *models.User) bool {
	return user.IsAdmin()
}

// IsAdminOrReadOnly allows safe methods to every caller and mutations to admins.
func IsAdminOrReadOnly(c *gin.Context, user *models.User) bool {
	switch c.Request.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return user.IsAdmin()
}

// IsAdminUser is IsAdmin under the name used by the dedicated admin routes.
func IsAdminUser(c *gin.Context, user *models.User) bool {
	return IsAdmin(c, user)
}

// RequirePermission loads the caller set by AuthMiddleware and applies perm.
// It must run after AuthMiddleware. The loaded user is stored in the context
// for handlers, see CurrentUser.
func RequirePermission(lookup UserLookup, perm Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		user, err := lookup.GetUserByID(userID)
		if err != nil || !user.IsActive {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		if !perm(c, user) {
			abortWithError(c, apperrors.ErrForbidden)
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the caller stored by RequirePermission.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
