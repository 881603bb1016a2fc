package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/pravaha-app/expense_backend/internal/core/domain"
)

// requesterKey is the key used to store the authenticated requester context.
const requesterKey = contextKey("requester")

// GetRequesterFromContext retrieves the authenticated requester (user ID,
// company ID and role) placed in the context by the auth middleware.
// It returns the requester and a boolean indicating if it was found.
func GetRequesterFromContext(c *gin.Context) (domain.Requester, bool) {
	val, exists := c.Get(string(requesterKey))
	if !exists {
		// check in the request context as well
		ctxVal := c.Request.Context().Value(requesterKey)
		if ctxVal != nil {
			if requester, ok := ctxVal.(domain.Requester); ok {
				return requester, true
			}
		}
		return domain.Requester{}, false
	}

	requester, ok := val.(domain.Requester)
	if !ok {
		return domain.Requester{}, false
	}
	return requester, true
}
