package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aliskhannn/debt-notifier/internal/api/respond"
)

const (
	HeaderUserID = "X-User-ID"
	ownerKey     = "owner"
)

var errMissingOwner = errors.New("missing user id")

// Owner resolves the acting user from the X-User-ID header or the user_id
// query parameter and rejects requests carrying neither.
func Owner() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if userID == "" {
			userID = strings.TrimSpace(c.Query("user_id"))
		}

		if userID == "" {
			respond.Fail(c.Writer, http.StatusUnauthorized, errMissingOwner)
			c.Abort()
			return
		}

		c.Set(ownerKey, userID)
		c.Next()
	}
}

// UserID returns the owner resolved by Owner.
func UserID(c *gin.Context) string {
	return c.GetString(ownerKey)
}

// SetUserID stores the owner on c, for handlers used without the middleware.
func SetUserID(c *gin.Context, userID string) {
	c.Set(ownerKey, userID)
}
