package middleware

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/campus-portal/internal/constants"
	apierrors "github.com/yukikurage/campus-portal/internal/errors"
	"github.com/yukikurage/campus-portal/internal/models"
	"github.com/yukikurage/campus-portal/internal/registry"
	"github.com/yukikurage/campus-portal/internal/repository"
	"github.com/yukikurage/campus-portal/internal/services"
)

const (
	contextKeyCurrentUser    = "current_user"
	contextKeyClassifiedUser = "classified_user"
)

// LoadUser loads the authenticated user into the context. Must run after RequireAuth.
func LoadUser(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := authService.GetUser(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				apierrors.Unauthorized(c, "")
			} else {
				apierrors.InternalError(c, "Failed to load user")
			}
			c.Abort()
			return
		}

		c.Set(contextKeyCurrentUser, user)
		c.Next()
	}
}

// RequireStaff allows only staff accounts. Must run after LoadUser.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if !user.IsStaff {
			apierrors.Forbidden(c, "Only staff can perform this action")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireUserType allows only users linked to a classified record of one of the
// given types, and stores the first such record in the context. A user may hold
// records of several types; any of them satisfies the check.
func RequireUserType(reg *registry.Registry, types ...constants.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		for _, t := range types {
			record, err := reg.Resolve(c.Request.Context(), t, userID, repository.LookupOptions{})
			if err == nil {
				c.Set(contextKeyClassifiedUser, record)
				c.Next()
				return
			}
			if errors.Is(err, repository.ErrClassifiedUserNotFound) {
				continue
			}

			if errors.Is(err, repository.ErrAmbiguousClassifiedUser) {
				log.Printf("classified user invariant violated for user %d: %v", userID, err)
				apierrors.InternalError(c, "")
			} else {
				apierrors.InternalError(c, "Failed to check account type")
			}
			c.Abort()
			return
		}

		apierrors.WrongAccountType(c, fmt.Sprintf("Please log in with a %s account", joinTypes(types)))
		c.Abort()
	}
}

// GetCurrentUser retrieves the user stored by LoadUser
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(contextKeyCurrentUser)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// GetClassifiedUser retrieves the record stored by RequireUserType
func GetClassifiedUser(c *gin.Context) (models.ClassifiedUser, bool) {
	v, exists := c.Get(contextKeyClassifiedUser)
	if !exists {
		return nil, false
	}
	record, ok := v.(models.ClassifiedUser)
	return record, ok
}

func joinTypes(types []constants.UserType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = strings.ToLower(t.String())
	}
	return strings.Join(names, " or ")
}
