package middleware

import (
	"github.com/gin-gonic/gin"

	"lunchdesk/internal/services"
)

// UserAuth accepts any signed-in caller, customers and admins alike.
func UserAuth(secret string) gin.HandlerFunc {
	return AuthGuard(secret)
}

// ActorFrom returns the caller stored by AuthGuard.
func ActorFrom(c *gin.Context) (services.Actor, bool) {
	value, ok := c.Get(actorKey)
	if !ok {
		return services.Actor{}, false
	}
	actor, ok := value.(services.Actor)
	return actor, ok
}
